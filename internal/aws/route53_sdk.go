package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
)

// route53API is the subset of the Route53 SDK client used here
type route53API interface {
	ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
	ListResourceRecordSets(ctx context.Context, params *route53.ListResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error)
}

// SDKRoute53Client implements Route53Client using AWS SDK v2
type SDKRoute53Client struct {
	client route53API
	region string
}

// NewSDKRoute53Client creates a new Route53 client using the provided AWS config.
// Route53 is global but the SDK needs a region to resolve its endpoint, so region is
// used when cfg has none.
func NewSDKRoute53Client(cfg aws.Config, region string) *SDKRoute53Client {
	if cfg.Region == "" {
		cfg.Region = region
	}
	return &SDKRoute53Client{
		client: route53.NewFromConfig(cfg),
		region: cfg.Region,
	}
}

// Region returns the region the client signs requests for
func (c *SDKRoute53Client) Region() string {
	return c.region
}

func (c *SDKRoute53Client) ChangeRecord(ctx context.Context, zoneId string, change ChangeRequest) (string, error) {
	changeBatch := &types.ChangeBatch{
		Changes: []types.Change{
			{
				Action: types.ChangeAction(change.Action),
				ResourceRecordSet: &types.ResourceRecordSet{
					Name: aws.String(change.Name),
					Type: types.RRType(change.Type),
					TTL:  aws.Int64(change.TTL),
					ResourceRecords: []types.ResourceRecord{
						{Value: aws.String(change.Value)},
					},
				},
			},
		},
	}
	if change.Comment != "" {
		changeBatch.Comment = aws.String(change.Comment)
	}

	input := &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(normalizeZoneId(zoneId)),
		ChangeBatch:  changeBatch,
	}

	result, err := c.client.ChangeResourceRecordSets(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to change record set: %w", err)
	}
	if result.ChangeInfo == nil {
		return "", nil
	}

	return aws.ToString(result.ChangeInfo.Id), nil
}

func (c *SDKRoute53Client) GetRecord(ctx context.Context, zoneId, name, recordType string) (*DNSRecord, error) {
	input := &route53.ListResourceRecordSetsInput{
		HostedZoneId:    aws.String(normalizeZoneId(zoneId)),
		StartRecordName: aws.String(name),
		StartRecordType: types.RRType(recordType),
		MaxItems:        aws.Int32(1),
	}

	result, err := c.client.ListResourceRecordSets(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	for _, rrs := range result.ResourceRecordSets {
		// Route53 returns names with trailing dot
		recordName := aws.ToString(rrs.Name)
		if !sameRecordName(recordName, name) || string(rrs.Type) != recordType {
			continue
		}

		record := &DNSRecord{
			Name: recordName,
			Type: string(rrs.Type),
			TTL:  aws.ToInt64(rrs.TTL),
		}
		if len(rrs.ResourceRecords) > 0 {
			record.Value = aws.ToString(rrs.ResourceRecords[0].Value)
		}
		return record, nil
	}

	return nil, nil // Not found
}

// sameRecordName compares DNS names ignoring case and the trailing dot
func sameRecordName(a, b string) bool {
	return strings.EqualFold(strings.TrimSuffix(a, "."), strings.TrimSuffix(b, "."))
}

// normalizeZoneId ensures the zone ID has the correct format
func normalizeZoneId(zoneId string) string {
	// Remove /hostedzone/ prefix if present
	return strings.TrimPrefix(zoneId, "/hostedzone/")
}
