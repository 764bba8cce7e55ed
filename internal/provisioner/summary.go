package provisioner

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"sigs.k8s.io/controller-runtime/pkg/log"

	certv1alpha1 "github.com/michelfeldheim/certificate-creator/api/v1alpha1"
	"github.com/michelfeldheim/certificate-creator/internal/aws"
)

// SummaryTitle heads the summary block
const SummaryTitle = "Certificate Creator Summary"

var (
	titleColor   = color.New(color.FgYellow, color.Underline)
	sectionColor = color.New(color.FgYellow)
)

// Reporter prints the certificate known to ACM for a domain
type Reporter struct {
	ACMClient aws.ACMClient
	Out       io.Writer

	// Disabled turns Summary into a no-op that reports the disabled status
	Disabled bool
}

// Summary writes the summary block for spec.DomainName:
//
//	Certificate Creator Summary
//	Certificate
//	  arn:aws:acm:...:certificate/... => api.example.com
func (r *Reporter) Summary(ctx context.Context, spec certv1alpha1.DomainSpec) error {
	logger := log.FromContext(ctx).WithValues("domain", spec.DomainName, "region", spec.Region)
	if r.Disabled {
		logger.Info("Custom domain is disabled.")
		return nil
	}

	awsCtx, cancel := context.WithTimeout(ctx, AWSCallTimeout)
	defer cancel()

	certs, err := r.ACMClient.ListCertificates(awsCtx)
	if err != nil {
		logStepError(logger, ListFailed, err)
		return &StepError{Step: ListFailed, Err: err}
	}
	cert, found := FindExisting(certs, spec.DomainName)

	if _, err := titleColor.Fprintln(r.Out, SummaryTitle); err != nil {
		return err
	}
	if _, err := sectionColor.Fprintln(r.Out, "Certificate"); err != nil {
		return err
	}
	if !found {
		_, err = fmt.Fprintf(r.Out, "  no certificate for %s\n", spec.DomainName)
		return err
	}
	_, err = fmt.Fprintf(r.Out, "  %s => %s\n", cert.Arn, cert.DomainName)
	return err
}
