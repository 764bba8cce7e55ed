package app

import (
	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"
	runtimelog "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/michelfeldheim/certificate-creator/internal/provisioner"
)

// NewCertificateCreatorCommand creates the root command with the create-cert and summary subcommands
func NewCertificateCreatorCommand() *cobra.Command {
	return newCommand(NewOptions())
}

func newCommand(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "certificate-creator",
		Short:         "Creates a DNS-validated ACM certificate for an existing domain and hosted zone.",
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctrl.SetLogger(zap.New(zap.UseFlagOptions(&o.zapOptions)))
		},
	}
	o.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(newCreateCertCommand(o), newSummaryCommand(o))
	return cmd
}

func newCreateCertCommand(o *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "create-cert",
		Short: "Creates a certificate for an existing domain/hosted zone.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			ctx := runtimelog.IntoContext(cmd.Context(), runtimelog.Log.WithName("create-cert"))
			p := &provisioner.Provisioner{
				Disabled:          !cfg.Enabled,
				ValidationTimeout: *cfg.ValidationTimeout,
			}
			if cfg.Enabled {
				p.ACMClient, p.Route53Client, err = o.newClients(ctx, cfg.Spec.Region)
				if err != nil {
					return err
				}
			}

			_, err = p.Provision(ctx, cfg.Spec)
			return err
		},
	}
}

func newSummaryCommand(o *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "summary",
		Aliases: []string{"info"},
		Short:   "Prints the certificate that exists for the configured domain. Run after deploy or info.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			ctx := runtimelog.IntoContext(cmd.Context(), runtimelog.Log.WithName("summary"))
			r := &provisioner.Reporter{
				Out:      cmd.OutOrStdout(),
				Disabled: !cfg.Enabled,
			}
			if cfg.Enabled {
				r.ACMClient, _, err = o.newClients(ctx, cfg.Spec.Region)
				if err != nil {
					return err
				}
			}

			return r.Summary(ctx, cfg.Spec)
		},
	}
}
