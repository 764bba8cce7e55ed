package aws

import (
	"context"
)

// Route53Client defines the interface for Route53 operations
type Route53Client interface {
	// ChangeRecord applies a single record change to the hosted zone and returns the change ID
	ChangeRecord(ctx context.Context, zoneId string, change ChangeRequest) (changeId string, err error)

	// GetRecord retrieves a DNS record from Route53. It returns nil, nil when the record does not exist.
	GetRecord(ctx context.Context, zoneId string, name, recordType string) (*DNSRecord, error)
}

// ChangeAction is the action of a resource record set change
type ChangeAction string

const (
	ChangeActionCreate ChangeAction = "CREATE"
)

// ValidationRecordTTL is the TTL of DNS validation records, in seconds
const ValidationRecordTTL int64 = 60

// ChangeRequest describes one resource record set change
type ChangeRequest struct {
	Action       ChangeAction
	Name         string
	Type         string
	Value        string
	TTL          int64
	HostedZoneId string
	Comment      string
}

// DNSRecord represents a Route53 DNS record
type DNSRecord struct {
	Name  string
	Type  string
	Value string
	TTL   int64
}
