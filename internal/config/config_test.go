package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	certv1alpha1 "github.com/michelfeldheim/certificate-creator/api/v1alpha1"
)

func TestResolveEnabled(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    bool
		wantErr bool
	}{
		{name: "absent", value: nil, want: true},
		{name: "bool true", value: true, want: true},
		{name: "bool false", value: false, want: false},
		{name: "string true", value: "true", want: true},
		{name: "string false", value: "false", want: false},
		{name: "maybe", value: "maybe", wantErr: true},
		{name: "capitalised string", value: "True", wantErr: true},
		{name: "integer", value: 1, wantErr: true},
		{name: "empty string", value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveEnabled(tt.value)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrAmbiguousEnablement)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveEnabled_ErrorNamesValue(t *testing.T) {
	_, err := ResolveEnabled("maybe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'maybe'")
}

func validFile() *certv1alpha1.ServiceConfig {
	return &certv1alpha1.ServiceConfig{
		Custom: certv1alpha1.CustomSection{
			CustomCertificate: certv1alpha1.CustomCertificate{
				CertificateName: "cert.example.com",
				HostedZoneId:    "Z123",
			},
		},
	}
}

func TestResolve_Defaults(t *testing.T) {
	cfg, err := Resolve(validFile(), EnvironmentOverrides{})
	require.NoError(t, err)

	assert.True(t, cfg.Enabled)
	assert.Equal(t, certv1alpha1.DomainSpec{
		DomainName:   "cert.example.com",
		Region:       "us-east-1",
		HostedZoneId: "Z123",
	}, cfg.Spec)
	assert.Nil(t, cfg.ValidationTimeout)
}

func TestResolve_EnvironmentOverridesFile(t *testing.T) {
	file := validFile()
	file.Custom.CustomCertificate.Region = "eu-west-1"
	file.Custom.CustomCertificate.Enabled = true

	cfg, err := Resolve(file, EnvironmentOverrides{
		DomainName:        "other.example.com",
		Region:            "us-west-2",
		IdempotencyToken:  "deploy42",
		Enabled:           "false",
		ValidationTimeout: durationPtr(time.Minute),
	})
	require.NoError(t, err)

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "other.example.com", cfg.Spec.DomainName)
	assert.Equal(t, "us-west-2", cfg.Spec.Region)
	assert.Equal(t, "Z123", cfg.Spec.HostedZoneId)
	assert.Equal(t, "deploy42", cfg.Spec.IdempotencyToken)
	require.NotNil(t, cfg.ValidationTimeout)
	assert.Equal(t, time.Minute, *cfg.ValidationTimeout)
}

func TestResolve_EnabledPrecedence(t *testing.T) {
	tests := []struct {
		name        string
		certEnabled interface{}
		domEnabled  interface{}
		envEnabled  string
		want        bool
	}{
		{name: "nothing set", want: true},
		{name: "legacy customDomain flag", domEnabled: false, want: false},
		{name: "customCertificate flag beats customDomain", certEnabled: "true", domEnabled: false, want: true},
		{name: "environment beats file", certEnabled: true, envEnabled: "false", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := validFile()
			file.Custom.CustomCertificate.Enabled = tt.certEnabled
			file.Custom.CustomDomain.Enabled = tt.domEnabled

			cfg, err := Resolve(file, EnvironmentOverrides{Enabled: tt.envEnabled})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Enabled)
		})
	}
}

func TestResolve_AmbiguousEnablementFailsFirst(t *testing.T) {
	// Domain fields are invalid too, but the enablement error wins
	file := &certv1alpha1.ServiceConfig{}
	file.Custom.CustomCertificate.Enabled = "maybe"

	_, err := Resolve(file, EnvironmentOverrides{})
	require.ErrorIs(t, err, ErrAmbiguousEnablement)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestResolve_DisabledSkipsValidation(t *testing.T) {
	file := &certv1alpha1.ServiceConfig{}
	file.Custom.CustomCertificate.Enabled = false

	cfg, err := Resolve(file, EnvironmentOverrides{})
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
}

func TestValidate(t *testing.T) {
	valid := certv1alpha1.DomainSpec{
		DomainName:   "cert.example.com",
		Region:       "us-east-1",
		HostedZoneId: "Z123",
	}

	tests := []struct {
		name    string
		mutate  func(*certv1alpha1.DomainSpec)
		wantErr bool
	}{
		{name: "valid", mutate: func(*certv1alpha1.DomainSpec) {}},
		{name: "wildcard domain", mutate: func(s *certv1alpha1.DomainSpec) { s.DomainName = "*.example.com" }},
		{name: "valid token", mutate: func(s *certv1alpha1.DomainSpec) { s.IdempotencyToken = "deploy_42" }},
		{name: "missing domain", mutate: func(s *certv1alpha1.DomainSpec) { s.DomainName = "" }, wantErr: true},
		{name: "domain with spaces", mutate: func(s *certv1alpha1.DomainSpec) { s.DomainName = "not a domain" }, wantErr: true},
		{name: "missing zone", mutate: func(s *certv1alpha1.DomainSpec) { s.HostedZoneId = "" }, wantErr: true},
		{name: "unknown region", mutate: func(s *certv1alpha1.DomainSpec) { s.Region = "mars-1" }, wantErr: true},
		{name: "token too long", mutate: func(s *certv1alpha1.DomainSpec) { s.IdempotencyToken = "0123456789012345678901234567890123" }, wantErr: true},
		{name: "token with dash", mutate: func(s *certv1alpha1.DomainSpec) { s.IdempotencyToken = "deploy-42" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid
			tt.mutate(&spec)
			err := Validate(spec)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "serverless.yml")
	content := `
service: my-api
custom:
  customCertificate:
    certificateName: cert.example.com
    hostedZoneId: /hostedzone/Z123
    region: eu-central-1
    idempotencyToken: abc
    repairValidationRecord: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CERT_CREATOR_VALIDATION_TIMEOUT", "45s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "cert.example.com", cfg.Spec.DomainName)
	assert.Equal(t, "/hostedzone/Z123", cfg.Spec.HostedZoneId)
	assert.Equal(t, "eu-central-1", cfg.Spec.Region)
	assert.Equal(t, "abc", cfg.Spec.IdempotencyToken)
	assert.True(t, cfg.Spec.RepairValidationRecord)
	require.NotNil(t, cfg.ValidationTimeout)
	assert.Equal(t, 45*time.Second, *cfg.ValidationTimeout)
}

func TestLoad_ZeroValidationTimeoutIsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serverless.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
custom:
  customCertificate:
    certificateName: cert.example.com
    hostedZoneId: Z123
`), 0o600))
	t.Setenv("CERT_CREATOR_VALIDATION_TIMEOUT", "0s")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.ValidationTimeout)
	assert.Zero(t, *cfg.ValidationTimeout)
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}

func TestLoad_YAMLEnabledForms(t *testing.T) {
	tests := []struct {
		name    string
		enabled string
		want    bool
		wantErr error
	}{
		{name: "yaml bool", enabled: "false", want: false},
		{name: "quoted string", enabled: `"false"`, want: false},
		{name: "quoted true", enabled: `"true"`, want: true},
		{name: "ambiguous", enabled: "maybe", wantErr: ErrAmbiguousEnablement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "serverless.yml")
			content := "custom:\n  customCertificate:\n    certificateName: cert.example.com\n    hostedZoneId: Z123\n    enabled: " + tt.enabled + "\n"
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			cfg, err := Load(path)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Enabled)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, &certv1alpha1.ServiceConfig{}, cfg)
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serverless.yml")
	require.NoError(t, os.WriteFile(path, []byte("custom: [unclosed"), 0o600))

	_, err := LoadFile(path)
	require.Error(t, err)
}
