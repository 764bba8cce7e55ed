package aws

import (
	"context"
)

// Certificate statuses reported by ACM that the provisioner acts on
const (
	StatusPendingValidation  = "PENDING_VALIDATION"
	StatusIssued             = "ISSUED"
	StatusFailed             = "FAILED"
	StatusValidationTimedOut = "VALIDATION_TIMED_OUT"
	StatusRevoked            = "REVOKED"
)

// ACMClient defines the interface for ACM operations
type ACMClient interface {
	// ListCertificates returns every certificate in the account and region, in listing order
	ListCertificates(ctx context.Context) ([]CertificateSummary, error)

	// RequestCertificate requests a new DNS-validated certificate for the given domain.
	// An empty idempotencyToken is not sent.
	RequestCertificate(ctx context.Context, domain, idempotencyToken string) (certArn string, err error)

	// DescribeCertificate gets the current status and validation records of a certificate
	DescribeCertificate(ctx context.Context, certArn string) (*CertificateDetails, error)
}

// CertificateSummary is one entry of the ACM certificate listing
type CertificateSummary struct {
	Arn        string
	DomainName string
	Status     string // PENDING_VALIDATION, ISSUED, FAILED, etc.
}

// CertificateDetails represents ACM certificate information
type CertificateDetails struct {
	Arn        string
	DomainName string
	Status     string

	// ValidationRecords holds the DNS records of the domain validation options,
	// in the order ACM returns them. Options without a resource record yet are skipped.
	ValidationRecords []ValidationRecord
}

// ValidationRecord represents a DNS validation record for ACM
type ValidationRecord struct {
	Name       string
	Type       string // CNAME
	Value      string
	DomainName string // domain the record validates
}
