package provisioner

import (
	"context"
	"fmt"
	"math"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	certv1alpha1 "github.com/michelfeldheim/certificate-creator/api/v1alpha1"
	"github.com/michelfeldheim/certificate-creator/internal/aws"
)

// backoff returns the describe backoff, doubling from PollInterval up to MaxPollInterval
func (p *Provisioner) backoff() wait.Backoff {
	interval := p.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	maxInterval := p.MaxPollInterval
	if maxInterval <= 0 {
		maxInterval = DefaultMaxPollInterval
	}
	return wait.Backoff{
		Duration: interval,
		Factor:   2,
		Jitter:   0.1,
		Steps:    math.MaxInt32,
		Cap:      maxInterval,
	}
}

// awaitValidationRecord describes the certificate until its first DNS validation option
// carries a resource record.
// ACM generates the record asynchronously after the request, so an empty option list on a
// PENDING_VALIDATION certificate means "not yet"; on any other status it is final.
func (p *Provisioner) awaitValidationRecord(ctx context.Context, r *run, certArn string) (*aws.ValidationRecord, error) {
	if p.ValidationTimeout <= 0 {
		r.transition(StateDescribing)
		cert, err := p.describeCertificate(ctx, certArn)
		if err != nil {
			return nil, r.fail(DescribeFailed, err)
		}
		if len(cert.ValidationRecords) == 0 {
			r.transition(StateFailed)
			return nil, fmt.Errorf("%w: %s", ErrNoValidationChallenge, certArn)
		}
		return &cert.ValidationRecords[0], nil
	}

	pollCtx, cancel := context.WithTimeout(ctx, p.ValidationTimeout)
	defer cancel()

	backoff := p.backoff()
	start := time.Now()
	for attempt := 1; ; attempt++ {
		r.transition(StateDescribing)
		cert, err := p.describeCertificate(pollCtx, certArn)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, r.fail(DescribeFailed, ctx.Err())
		case err != nil && pollCtx.Err() != nil:
			r.transition(StateFailed)
			return nil, fmt.Errorf("%w after %s: %s", ErrValidationMetadataTimeout, p.ValidationTimeout, certArn)
		case err != nil:
			return nil, r.fail(DescribeFailed, err)
		case len(cert.ValidationRecords) > 0:
			r.logger.V(1).Info("Validation metadata available", "attempts", attempt, "elapsed", time.Since(start))
			return &cert.ValidationRecords[0], nil
		case cert.Status != aws.StatusPendingValidation:
			r.transition(StateFailed)
			return nil, fmt.Errorf("%w: %s is %s", ErrNoValidationChallenge, certArn, cert.Status)
		}

		r.transition(StateAwaitingValidation)
		delay := backoff.Step()
		r.logger.V(1).Info("Validation metadata not generated yet", "certificateArn", certArn, "retryIn", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, r.fail(DescribeFailed, ctx.Err())
		case <-pollCtx.Done():
			timer.Stop()
			// pollCtx is derived from ctx, so a cancelled ctx can surface here too
			if ctx.Err() != nil {
				return nil, r.fail(DescribeFailed, ctx.Err())
			}
			r.transition(StateFailed)
			return nil, fmt.Errorf("%w after %s: %s", ErrValidationMetadataTimeout, p.ValidationTimeout, certArn)
		case <-timer.C:
		}
	}
}

// repairValidationRecord re-creates the validation record of an existing certificate that is
// still pending validation, covering a previous run that stopped between the request and the
// DNS change. It returns the change ID, or "" when nothing had to be done.
func (p *Provisioner) repairValidationRecord(ctx context.Context, r *run, spec certv1alpha1.DomainSpec, cert aws.CertificateSummary) (string, error) {
	if cert.Status != aws.StatusPendingValidation {
		return "", nil
	}

	r.transition(StateDescribing)
	details, err := p.describeCertificate(ctx, cert.Arn)
	if err != nil {
		return "", r.fail(DescribeFailed, err)
	}
	if len(details.ValidationRecords) == 0 {
		r.logger.Info("Existing certificate has no validation record yet, nothing to repair", "certificateArn", cert.Arn)
		return "", nil
	}
	record := details.ValidationRecords[0]

	awsCtx, cancel := context.WithTimeout(ctx, AWSCallTimeout)
	existing, err := p.Route53Client.GetRecord(awsCtx, spec.HostedZoneId, record.Name, record.Type)
	cancel()
	if err != nil {
		return "", r.fail(DnsLookupFailed, err)
	}
	if existing != nil {
		r.logger.V(1).Info("Validation record present", "name", record.Name, "zoneId", spec.HostedZoneId)
		return "", nil
	}

	r.logger.Info("Validation record missing for pending certificate, creating it",
		"certificateArn", cert.Arn,
		"name", record.Name,
		"zoneId", spec.HostedZoneId)
	r.transition(StateApplyingDnsChange)
	changeId, err := p.applyChange(ctx, NewChangeRequest(record, spec.HostedZoneId, spec.DomainName))
	if err != nil {
		return "", r.fail(DnsChangeFailed, err)
	}
	return changeId, nil
}
