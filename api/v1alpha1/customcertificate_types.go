package v1alpha1

// ServiceConfig is the part of the deploy configuration file read by the certificate creator
type ServiceConfig struct {
	Custom CustomSection `yaml:"custom"`
}

// CustomSection holds the plugin sections of the deploy configuration
type CustomSection struct {
	CustomCertificate CustomCertificate `yaml:"customCertificate"`

	// CustomDomain is only consulted for its enabled flag
	CustomDomain CustomDomain `yaml:"customDomain"`
}

// CustomCertificate defines the certificate to provision
type CustomCertificate struct {
	// CertificateName is the domain name the certificate is issued for (e.g., api.example.com)
	CertificateName string `yaml:"certificateName"`

	// HostedZoneId is the Route53 hosted zone where the validation record is created
	HostedZoneId string `yaml:"hostedZoneId"`

	// Region is the ACM region, us-east-1 when empty
	Region string `yaml:"region,omitempty"`

	// IdempotencyToken lets ACM deduplicate retried requests
	IdempotencyToken string `yaml:"idempotencyToken,omitempty"`

	// Enabled is a tri-state flag: absent, a boolean, or the strings "true"/"false"
	Enabled interface{} `yaml:"enabled,omitempty"`

	// RepairValidationRecord re-creates a missing validation record for a
	// certificate that already exists but is still pending validation
	RepairValidationRecord bool `yaml:"repairValidationRecord,omitempty"`
}

// CustomDomain is the legacy location of the enabled flag
type CustomDomain struct {
	Enabled interface{} `yaml:"enabled,omitempty"`
}

// DomainSpec is the resolved, immutable input of one provisioning run
type DomainSpec struct {
	DomainName       string `validate:"required,certdomain"`
	Region           string `validate:"required,acmregion"`
	HostedZoneId     string `validate:"required"`
	IdempotencyToken string `validate:"omitempty,idempotencytoken"`

	RepairValidationRecord bool
}
