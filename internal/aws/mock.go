package aws

import (
	"context"
	"fmt"
)

// MockACMClient is a mock implementation for testing
type MockACMClient struct {
	// Order holds certificate ARNs in listing order
	Order             []string
	Certificates      map[string]*CertificateDetails
	ValidationRecords map[string][]ValidationRecord

	// DescribesBeforeRecords hides validation records from the first N describes of a
	// certificate, the way ACM does right after a request
	DescribesBeforeRecords int

	ListErr     error
	RequestErr  error
	DescribeErr error

	ListCalls     int
	RequestCalls  int
	DescribeCalls int

	// LastIdempotencyToken is the token of the most recent request
	LastIdempotencyToken string

	describes map[string]int
}

func NewMockACMClient() *MockACMClient {
	return &MockACMClient{
		Certificates:      make(map[string]*CertificateDetails),
		ValidationRecords: make(map[string][]ValidationRecord),
		describes:         make(map[string]int),
	}
}

// AddCertificate stores a certificate without validation records, as if it was created outside the mock
func (m *MockACMClient) AddCertificate(arn, domain, status string) {
	if _, ok := m.Certificates[arn]; !ok {
		m.Order = append(m.Order, arn)
	}
	m.Certificates[arn] = &CertificateDetails{
		Arn:        arn,
		DomainName: domain,
		Status:     status,
	}
}

func (m *MockACMClient) ListCertificates(ctx context.Context) ([]CertificateSummary, error) {
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	summaries := make([]CertificateSummary, 0, len(m.Order))
	for _, arn := range m.Order {
		cert := m.Certificates[arn]
		summaries = append(summaries, CertificateSummary{
			Arn:        cert.Arn,
			DomainName: cert.DomainName,
			Status:     cert.Status,
		})
	}
	return summaries, nil
}

func (m *MockACMClient) RequestCertificate(ctx context.Context, domain, idempotencyToken string) (string, error) {
	m.RequestCalls++
	m.LastIdempotencyToken = idempotencyToken
	if m.RequestErr != nil {
		return "", m.RequestErr
	}
	arn := fmt.Sprintf("arn:aws:acm:us-east-1:123456789012:certificate/%s", domain)
	m.AddCertificate(arn, domain, StatusPendingValidation)
	m.ValidationRecords[arn] = []ValidationRecord{
		{
			Name:       fmt.Sprintf("_acm-validation.%s.", domain),
			Type:       "CNAME",
			Value:      "_validation-value.acm-validations.aws.",
			DomainName: domain,
		},
	}
	return arn, nil
}

func (m *MockACMClient) DescribeCertificate(ctx context.Context, certArn string) (*CertificateDetails, error) {
	m.DescribeCalls++
	if m.DescribeErr != nil {
		return nil, m.DescribeErr
	}
	cert, ok := m.Certificates[certArn]
	if !ok {
		return nil, fmt.Errorf("certificate not found: %s", certArn)
	}

	details := *cert
	m.describes[certArn]++
	if m.describes[certArn] > m.DescribesBeforeRecords {
		details.ValidationRecords = append([]ValidationRecord(nil), m.ValidationRecords[certArn]...)
	}
	return &details, nil
}

// MockRoute53Client is a mock implementation for testing
type MockRoute53Client struct {
	Records map[string]DNSRecord // key: zoneId:name:type

	// Changes records every change passed to ChangeRecord, in order
	Changes []ChangeRequest

	ChangeErr error
	GetErr    error
}

func NewMockRoute53Client() *MockRoute53Client {
	return &MockRoute53Client{
		Records: make(map[string]DNSRecord),
	}
}

func (m *MockRoute53Client) ChangeRecord(ctx context.Context, zoneId string, change ChangeRequest) (string, error) {
	m.Changes = append(m.Changes, change)
	if m.ChangeErr != nil {
		return "", m.ChangeErr
	}
	key := recordKey(normalizeZoneId(zoneId), change.Name, change.Type)
	if _, exists := m.Records[key]; exists && change.Action == ChangeActionCreate {
		return "", fmt.Errorf("record %s already exists", change.Name)
	}
	m.Records[key] = DNSRecord{
		Name:  change.Name,
		Type:  change.Type,
		Value: change.Value,
		TTL:   change.TTL,
	}
	return fmt.Sprintf("/change/C%d", len(m.Changes)), nil
}

func (m *MockRoute53Client) GetRecord(ctx context.Context, zoneId string, name, recordType string) (*DNSRecord, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	record, ok := m.Records[recordKey(normalizeZoneId(zoneId), name, recordType)]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func recordKey(zoneId, name, recordType string) string {
	return fmt.Sprintf("%s:%s:%s", zoneId, name, recordType)
}
