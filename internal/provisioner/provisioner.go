// Package provisioner implements the certificate provisioning workflow: find an existing
// ACM certificate for a domain, or request one and publish its DNS validation record.
package provisioner

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/log"

	certv1alpha1 "github.com/michelfeldheim/certificate-creator/api/v1alpha1"
	"github.com/michelfeldheim/certificate-creator/internal/aws"
)

const (
	// AWSCallTimeout is the default timeout for AWS API calls
	AWSCallTimeout = 30 * time.Second

	// DefaultValidationTimeout bounds the wait for ACM to generate validation metadata
	DefaultValidationTimeout = 2 * time.Minute

	// DefaultPollInterval is the first delay between describes while waiting for validation metadata
	DefaultPollInterval = 2 * time.Second

	// DefaultMaxPollInterval caps the delay between describes
	DefaultMaxPollInterval = 15 * time.Second
)

// State is a step of the provisioning workflow
type State string

const (
	StateIdle               State = "Idle"
	StateListing            State = "Listing"
	StateRequesting         State = "Requesting"
	StateAwaitingValidation State = "AwaitingValidation"
	StateDescribing         State = "Describing"
	StateApplyingDnsChange  State = "ApplyingDnsChange"
	StateDone               State = "Done"
	StateFailed             State = "Failed"
)

// OutcomeKind tells which path a provisioning run took
type OutcomeKind string

const (
	OutcomeDisabled      OutcomeKind = "Disabled"
	OutcomeAlreadyExists OutcomeKind = "AlreadyExists"
	OutcomeProvisioned   OutcomeKind = "Provisioned"
)

// Outcome is the result of a successful provisioning run
type Outcome struct {
	Kind OutcomeKind

	// Certificate is the existing certificate on the AlreadyExists path
	Certificate *aws.CertificateSummary

	// CertificateArn is the provisioned or existing certificate
	CertificateArn string

	// ChangeId is the Route53 change that created the validation record, if one was made
	ChangeId string
}

// Provisioner provisions a DNS-validated ACM certificate for one domain
type Provisioner struct {
	ACMClient     aws.ACMClient
	Route53Client aws.Route53Client

	// Disabled turns Provision into a no-op that reports the disabled status
	Disabled bool

	// ValidationTimeout bounds the wait for validation metadata.
	// Zero describes the certificate once without waiting.
	ValidationTimeout time.Duration

	// PollInterval and MaxPollInterval shape the exponential backoff between describes.
	// Zero values use the defaults.
	PollInterval    time.Duration
	MaxPollInterval time.Duration
}

// run tracks the state of one Provision call
type run struct {
	logger logr.Logger
	state  State
}

func (r *run) transition(state State) {
	r.logger.V(1).Info("Provisioning state changed", "from", r.state, "to", state)
	r.state = state
}

// fail moves the run to Failed and wraps err with the step it failed in
func (r *run) fail(step Step, err error) error {
	r.transition(StateFailed)
	logStepError(r.logger, step, err)
	return &StepError{Step: step, Err: err}
}

// Provision makes sure a certificate exists for spec.DomainName. It is idempotent:
// an existing certificate for the domain short-circuits the workflow.
// No step is retried and nothing is rolled back; re-running is the recovery path.
func (p *Provisioner) Provision(ctx context.Context, spec certv1alpha1.DomainSpec) (*Outcome, error) {
	logger := log.FromContext(ctx).WithValues("domain", spec.DomainName, "region", spec.Region)
	ctx = log.IntoContext(ctx, logger)

	if p.Disabled {
		logger.Info("Custom domain is disabled.")
		return &Outcome{Kind: OutcomeDisabled}, nil
	}

	r := &run{logger: logger, state: StateIdle}
	logger.Info("Trying to create certificate")

	// Step 1: Check for an existing certificate
	r.transition(StateListing)
	existing, found, err := p.findExisting(ctx, spec.DomainName)
	if err != nil {
		return nil, r.fail(ListFailed, err)
	}
	if found {
		logger.Info("Certificate already exists, skipping", "certificateArn", existing.Arn, "status", existing.Status)
		checkCertificateRegion(logger, existing, spec.Region)
		outcome := &Outcome{
			Kind:           OutcomeAlreadyExists,
			Certificate:    &existing,
			CertificateArn: existing.Arn,
		}
		if spec.RepairValidationRecord {
			changeId, err := p.repairValidationRecord(ctx, r, spec, existing)
			if err != nil {
				return nil, err
			}
			outcome.ChangeId = changeId
		}
		r.transition(StateDone)
		return outcome, nil
	}

	// Step 2: Request the certificate
	r.transition(StateRequesting)
	certArn, err := p.requestCertificate(ctx, spec)
	if err != nil {
		return nil, r.fail(RequestFailed, err)
	}
	logger.Info("Requested certificate", "certificateArn", certArn)

	// Steps 3 and 4: Wait for ACM to generate the validation record and describe it
	r.transition(StateAwaitingValidation)
	record, err := p.awaitValidationRecord(ctx, r, certArn)
	if err != nil {
		return nil, err
	}
	logger.Info("Retrieved validation record from ACM",
		"certificateArn", certArn,
		"name", record.Name,
		"type", record.Type)

	// Step 5: Publish the validation record
	r.transition(StateApplyingDnsChange)
	change := NewChangeRequest(*record, spec.HostedZoneId, spec.DomainName)
	changeId, err := p.applyChange(ctx, change)
	if err != nil {
		return nil, r.fail(DnsChangeFailed, err)
	}
	logger.Info("DNS validation record created, the certificate is issued once ACM sees it",
		"changeId", changeId,
		"zoneId", spec.HostedZoneId)

	r.transition(StateDone)
	return &Outcome{
		Kind:           OutcomeProvisioned,
		CertificateArn: certArn,
		ChangeId:       changeId,
	}, nil
}

// NewChangeRequest builds the Route53 change that publishes a validation record
func NewChangeRequest(record aws.ValidationRecord, hostedZoneId, domain string) aws.ChangeRequest {
	if record.DomainName != "" {
		domain = record.DomainName
	}
	return aws.ChangeRequest{
		Action:       aws.ChangeActionCreate,
		Name:         record.Name,
		Type:         record.Type,
		Value:        record.Value,
		TTL:          aws.ValidationRecordTTL,
		HostedZoneId: hostedZoneId,
		Comment:      fmt.Sprintf("DNS Validation for certificate %s", domain),
	}
}

// findExisting lists all certificates and picks the one for domain
func (p *Provisioner) findExisting(ctx context.Context, domain string) (aws.CertificateSummary, bool, error) {
	awsCtx, cancel := context.WithTimeout(ctx, AWSCallTimeout)
	defer cancel()

	certs, err := p.ACMClient.ListCertificates(awsCtx)
	if err != nil {
		return aws.CertificateSummary{}, false, err
	}

	cert, found := FindExisting(certs, domain)
	if count := len(MatchingCertificates(certs, domain)); count > 1 {
		log.FromContext(ctx).Info("Multiple certificates match the domain, using the first listed",
			"count", count,
			"certificateArn", cert.Arn)
	}
	return cert, found, nil
}

// requestCertificate requests a new DNS-validated certificate for the domain
func (p *Provisioner) requestCertificate(ctx context.Context, spec certv1alpha1.DomainSpec) (string, error) {
	awsCtx, cancel := context.WithTimeout(ctx, AWSCallTimeout)
	defer cancel()

	return p.ACMClient.RequestCertificate(awsCtx, spec.DomainName, spec.IdempotencyToken)
}

// describeCertificate describes a certificate under the AWS call timeout
func (p *Provisioner) describeCertificate(ctx context.Context, certArn string) (*aws.CertificateDetails, error) {
	awsCtx, cancel := context.WithTimeout(ctx, AWSCallTimeout)
	defer cancel()

	return p.ACMClient.DescribeCertificate(awsCtx, certArn)
}

// applyChange submits the change to Route53
func (p *Provisioner) applyChange(ctx context.Context, change aws.ChangeRequest) (string, error) {
	awsCtx, cancel := context.WithTimeout(ctx, AWSCallTimeout)
	defer cancel()

	return p.Route53Client.ChangeRecord(awsCtx, change.HostedZoneId, change)
}
