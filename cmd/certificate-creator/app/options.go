package app

import (
	"context"
	"flag"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"
	runtimelog "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/michelfeldheim/certificate-creator/internal/aws"
	"github.com/michelfeldheim/certificate-creator/internal/config"
	"github.com/michelfeldheim/certificate-creator/internal/provisioner"
)

// ClientFactory builds the AWS clients for the ACM region
type ClientFactory func(ctx context.Context, region string) (aws.ACMClient, aws.Route53Client, error)

// Options holds the command line options of the certificate creator
type Options struct {
	ConfigPath        string
	ValidationTimeout time.Duration

	zapOptions zap.Options
	newClients ClientFactory
}

// NewOptions returns Options with defaults and the AWS SDK client factory
func NewOptions() *Options {
	o := &Options{
		ConfigPath:        config.DefaultConfigPath,
		ValidationTimeout: provisioner.DefaultValidationTimeout,
		zapOptions: zap.Options{
			Development: true,
		},
		newClients: NewSDKClients,
	}
	o.zapOptions.StacktraceLevel = zapcore.FatalLevel
	return o
}

// AddFlags adds the options to fs
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.ConfigPath, "config", o.ConfigPath, "Path to the deploy configuration file.")
	fs.DurationVar(&o.ValidationTimeout, "validation-timeout", o.ValidationTimeout,
		"How long to wait for ACM to generate the DNS validation record. 0 describes the certificate once.")

	goFlags := flag.NewFlagSet("zap", flag.ContinueOnError)
	o.zapOptions.BindFlags(goFlags)
	fs.AddGoFlagSet(goFlags)
}

// loadConfig resolves the configuration. An explicit --validation-timeout beats the environment,
// which beats the flag default.
func (o *Options) loadConfig(fs *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	if cfg.ValidationTimeout == nil || fs.Changed("validation-timeout") {
		timeout := o.ValidationTimeout
		cfg.ValidationTimeout = &timeout
	}
	return cfg, nil
}

// NewSDKClients loads the default AWS configuration and credentials and creates the SDK clients
func NewSDKClients(ctx context.Context, region string) (aws.ACMClient, aws.Route53Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	acmClient, route53Client := newSDKClients(awsCfg, region)
	runtimelog.FromContext(ctx).V(1).Info("Created AWS clients",
		"acmRegion", acmClient.Region(),
		"route53Region", route53Client.Region())
	return acmClient, route53Client, nil
}

// newSDKClients pins ACM to region. Route53 keeps the region of awsCfg and falls back to
// region when the environment has none, so a run never fails at the DNS step for lack of one.
func newSDKClients(awsCfg sdkaws.Config, region string) (*aws.SDKACMClient, *aws.SDKRoute53Client) {
	return aws.NewSDKACMClient(awsCfg, region), aws.NewSDKRoute53Client(awsCfg, region)
}
