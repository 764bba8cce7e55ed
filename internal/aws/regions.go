package aws

import (
	"fmt"
	"strings"
)

// DefaultRegion is the ACM region used when none is configured.
// Certificates used by CloudFront must live here.
const DefaultRegion = "us-east-1"

// ACMRegions lists the commercial AWS regions where ACM issues certificates
var ACMRegions = map[string]bool{
	"us-east-1":      true,
	"us-east-2":      true,
	"us-west-1":      true,
	"us-west-2":      true,
	"ca-central-1":   true,
	"eu-central-1":   true,
	"eu-central-2":   true,
	"eu-west-1":      true,
	"eu-west-2":      true,
	"eu-west-3":      true,
	"eu-north-1":     true,
	"eu-south-1":     true,
	"eu-south-2":     true,
	"ap-east-1":      true,
	"ap-northeast-1": true,
	"ap-northeast-2": true,
	"ap-northeast-3": true,
	"ap-southeast-1": true,
	"ap-southeast-2": true,
	"ap-southeast-3": true,
	"ap-south-1":     true,
	"ap-south-2":     true,
	"sa-east-1":      true,
	"me-south-1":     true,
	"me-central-1":   true,
	"af-south-1":     true,
	"il-central-1":   true,
}

// IsKnownRegion reports whether ACM is available in the given region
func IsKnownRegion(region string) bool {
	return ACMRegions[region]
}

// ExtractRegionFromCertificateArn returns the region segment of an ACM certificate ARN
// ARNs follow the pattern: arn:<partition>:acm:<region>:<account>:certificate/<id>
func ExtractRegionFromCertificateArn(arn string) (string, error) {
	parts := strings.SplitN(arn, ":", 6)
	if len(parts) < 6 || parts[0] != "arn" || parts[2] != "acm" {
		return "", fmt.Errorf("invalid ACM certificate ARN: %s", arn)
	}
	if parts[3] == "" {
		return "", fmt.Errorf("ACM certificate ARN has no region: %s", arn)
	}
	return parts[3], nil
}
