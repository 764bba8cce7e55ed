package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	"github.com/aws/aws-sdk-go-v2/service/acm/types"
)

// acmAPI is the subset of the ACM SDK client used here
type acmAPI interface {
	acm.ListCertificatesAPIClient
	RequestCertificate(ctx context.Context, params *acm.RequestCertificateInput, optFns ...func(*acm.Options)) (*acm.RequestCertificateOutput, error)
	DescribeCertificate(ctx context.Context, params *acm.DescribeCertificateInput, optFns ...func(*acm.Options)) (*acm.DescribeCertificateOutput, error)
}

// SDKACMClient implements ACMClient using AWS SDK v2
type SDKACMClient struct {
	client acmAPI
	region string
}

// NewSDKACMClient creates a new ACM client using the provided AWS config.
// A non-empty region overrides the region of cfg.
func NewSDKACMClient(cfg aws.Config, region string) *SDKACMClient {
	if region != "" {
		cfg.Region = region
	}
	return &SDKACMClient{
		client: acm.NewFromConfig(cfg),
		region: cfg.Region,
	}
}

// Region returns the region certificates are listed and requested in
func (c *SDKACMClient) Region() string {
	return c.region
}

func (c *SDKACMClient) ListCertificates(ctx context.Context) ([]CertificateSummary, error) {
	var certs []CertificateSummary

	paginator := acm.NewListCertificatesPaginator(c.client, &acm.ListCertificatesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list certificates: %w", err)
		}
		for _, summary := range page.CertificateSummaryList {
			certs = append(certs, CertificateSummary{
				Arn:        aws.ToString(summary.CertificateArn),
				DomainName: aws.ToString(summary.DomainName),
				Status:     string(summary.Status),
			})
		}
	}

	return certs, nil
}

func (c *SDKACMClient) RequestCertificate(ctx context.Context, domain, idempotencyToken string) (string, error) {
	input := &acm.RequestCertificateInput{
		DomainName:       aws.String(domain),
		ValidationMethod: types.ValidationMethodDns,
	}
	if idempotencyToken != "" {
		input.IdempotencyToken = aws.String(idempotencyToken)
	}

	result, err := c.client.RequestCertificate(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to request certificate: %w", err)
	}

	return aws.ToString(result.CertificateArn), nil
}

func (c *SDKACMClient) DescribeCertificate(ctx context.Context, arn string) (*CertificateDetails, error) {
	input := &acm.DescribeCertificateInput{
		CertificateArn: aws.String(arn),
	}

	result, err := c.client.DescribeCertificate(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to describe certificate: %w", err)
	}
	if result.Certificate == nil {
		return nil, fmt.Errorf("describe certificate %s returned no certificate", arn)
	}

	details := &CertificateDetails{
		Arn:        arn,
		DomainName: aws.ToString(result.Certificate.DomainName),
		Status:     string(result.Certificate.Status),
	}
	for _, dvo := range result.Certificate.DomainValidationOptions {
		if dvo.ResourceRecord == nil {
			continue
		}
		details.ValidationRecords = append(details.ValidationRecords, ValidationRecord{
			Name:       aws.ToString(dvo.ResourceRecord.Name),
			Type:       string(dvo.ResourceRecord.Type),
			Value:      aws.ToString(dvo.ResourceRecord.Value),
			DomainName: aws.ToString(dvo.DomainName),
		})
	}

	return details, nil
}
