package provisioner

import (
	"github.com/go-logr/logr"
	"github.com/samber/lo"

	"github.com/michelfeldheim/certificate-creator/internal/aws"
)

// MatchingCertificates returns the certificates issued for exactly domain, in listing order.
// The comparison is case-sensitive.
func MatchingCertificates(certs []aws.CertificateSummary, domain string) []aws.CertificateSummary {
	return lo.Filter(certs, func(cert aws.CertificateSummary, _ int) bool {
		return cert.DomainName == domain
	})
}

// FindExisting returns the certificate treated as the existing one for domain.
// When several match, the first in listing order wins.
func FindExisting(certs []aws.CertificateSummary, domain string) (aws.CertificateSummary, bool) {
	matches := MatchingCertificates(certs, domain)
	if len(matches) == 0 {
		return aws.CertificateSummary{}, false
	}
	return matches[0], true
}

// checkCertificateRegion reports an existing certificate whose ARN names a region other than
// the configured one. Such a certificate cannot be attached to resources in the configured region.
func checkCertificateRegion(logger logr.Logger, cert aws.CertificateSummary, region string) bool {
	certRegion, err := aws.ExtractRegionFromCertificateArn(cert.Arn)
	if err != nil {
		logger.V(1).Info("Unable to read region from certificate ARN", "certificateArn", cert.Arn, "error", err.Error())
		return false
	}
	if certRegion != region {
		logger.Info("Existing certificate is in a different region than configured",
			"certificateArn", cert.Arn,
			"certificateRegion", certRegion,
			"configuredRegion", region)
		return false
	}
	return true
}
