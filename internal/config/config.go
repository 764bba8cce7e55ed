// Package config resolves the certificate creator configuration from the deploy
// configuration file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	certv1alpha1 "github.com/michelfeldheim/certificate-creator/api/v1alpha1"
	"github.com/michelfeldheim/certificate-creator/internal/aws"
)

// DefaultConfigPath is the deploy configuration file read when no path is given
const DefaultConfigPath = "serverless.yml"

var (
	// ErrAmbiguousEnablement is returned when the enabled flag is neither a boolean nor "true"/"false"
	ErrAmbiguousEnablement = errors.New("ambiguous enablement boolean")

	// ErrInvalidConfig is returned when the resolved domain spec fails validation
	ErrInvalidConfig = errors.New("invalid certificate configuration")
)

var idempotencyTokenPattern = regexp.MustCompile(`^\w{1,32}$`)

// Config is the resolved configuration of one invocation
type Config struct {
	// Enabled is false when the deploy configuration turns the certificate creator off.
	// Spec is not validated in that case.
	Enabled bool
	Spec    certv1alpha1.DomainSpec

	// ValidationTimeout bounds the wait for validation metadata; nil keeps the caller's default.
	// Zero is kept as set and means a single describe.
	ValidationTimeout *time.Duration
}

// EnvironmentOverrides are read from the process environment and take precedence over the file
type EnvironmentOverrides struct {
	DomainName        string         `env:"CERT_CREATOR_DOMAIN"`
	Region            string         `env:"CERT_CREATOR_REGION"`
	HostedZoneId      string         `env:"CERT_CREATOR_HOSTED_ZONE_ID"`
	IdempotencyToken  string         `env:"CERT_CREATOR_IDEMPOTENCY_TOKEN"`
	Enabled           string         `env:"CERT_CREATOR_ENABLED"`
	ValidationTimeout *time.Duration `env:"CERT_CREATOR_VALIDATION_TIMEOUT"`
}

// LoadFile reads the deploy configuration file.
// A missing file is not an error and yields an empty configuration.
func LoadFile(path string) (*certv1alpha1.ServiceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &certv1alpha1.ServiceConfig{}, nil
		}
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg certv1alpha1.ServiceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config from %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadEnvironment parses the environment overrides
func LoadEnvironment() (EnvironmentOverrides, error) {
	var overrides EnvironmentOverrides
	if err := env.Parse(&overrides); err != nil {
		return overrides, fmt.Errorf("error parsing environment: %w", err)
	}
	return overrides, nil
}

// Load reads the file at path, applies environment overrides, and resolves the result
func Load(path string) (*Config, error) {
	file, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	overrides, err := LoadEnvironment()
	if err != nil {
		return nil, err
	}
	return Resolve(file, overrides)
}

// Resolve merges the file and the overrides into a Config.
// The enablement flag is resolved first so a malformed value fails before anything else.
func Resolve(file *certv1alpha1.ServiceConfig, overrides EnvironmentOverrides) (*Config, error) {
	cert := file.Custom.CustomCertificate

	var enabledValue interface{}
	switch {
	case overrides.Enabled != "":
		enabledValue = overrides.Enabled
	case cert.Enabled != nil:
		enabledValue = cert.Enabled
	default:
		enabledValue = file.Custom.CustomDomain.Enabled
	}
	enabled, err := ResolveEnabled(enabledValue)
	if err != nil {
		return nil, err
	}

	spec := certv1alpha1.DomainSpec{
		DomainName:             firstNonEmpty(overrides.DomainName, cert.CertificateName),
		Region:                 firstNonEmpty(overrides.Region, cert.Region, aws.DefaultRegion),
		HostedZoneId:           firstNonEmpty(overrides.HostedZoneId, cert.HostedZoneId),
		IdempotencyToken:       firstNonEmpty(overrides.IdempotencyToken, cert.IdempotencyToken),
		RepairValidationRecord: cert.RepairValidationRecord,
	}

	cfg := &Config{Enabled: enabled, Spec: spec, ValidationTimeout: overrides.ValidationTimeout}
	if !enabled {
		return cfg, nil
	}
	if err := Validate(spec); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolveEnabled evaluates the tri-state enabled flag.
// An absent value means enabled; booleans and the strings "true"/"false" are taken
// literally; anything else is ErrAmbiguousEnablement.
func ResolveEnabled(value interface{}) (bool, error) {
	switch v := value.(type) {
	case nil:
		return true, nil
	case bool:
		return v, nil
	case string:
		switch v {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: '%v'", ErrAmbiguousEnablement, value)
}

// Validate checks a DomainSpec before any remote call is made
func Validate(spec certv1alpha1.DomainSpec) error {
	if err := newValidator().Struct(spec); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q check (value %q)", fe.Field(), fe.Tag(), fe.Value()))
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("acmregion", func(fl validator.FieldLevel) bool {
		return aws.IsKnownRegion(fl.Field().String())
	})
	_ = v.RegisterValidation("idempotencytoken", func(fl validator.FieldLevel) bool {
		return idempotencyTokenPattern.MatchString(fl.Field().String())
	})
	// ACM accepts a single leading wildcard label
	_ = v.RegisterValidation("certdomain", func(fl validator.FieldLevel) bool {
		domain := strings.TrimPrefix(fl.Field().String(), "*.")
		return v.Var(domain, "fqdn") == nil
	})
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
