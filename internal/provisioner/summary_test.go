package provisioner

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michelfeldheim/certificate-creator/internal/aws"
)

func init() {
	color.NoColor = true
}

func TestReporter_Summary(t *testing.T) {
	acmClient := aws.NewMockACMClient()
	acmClient.AddCertificate("arn:other", "other.example.com", aws.StatusIssued)
	acmClient.AddCertificate("arn:cert:1", "cert.example.com", aws.StatusIssued)

	var out bytes.Buffer
	r := &Reporter{ACMClient: acmClient, Out: &out}

	require.NoError(t, r.Summary(context.Background(), testSpec()))

	assert.Equal(t, "Certificate Creator Summary\nCertificate\n  arn:cert:1 => cert.example.com\n", out.String())
}

func TestReporter_SummaryWithoutCertificate(t *testing.T) {
	var out bytes.Buffer
	r := &Reporter{ACMClient: aws.NewMockACMClient(), Out: &out}

	require.NoError(t, r.Summary(context.Background(), testSpec()))

	assert.Contains(t, out.String(), "no certificate for cert.example.com")
}

func TestReporter_Disabled(t *testing.T) {
	acmClient := aws.NewMockACMClient()
	var out bytes.Buffer
	r := &Reporter{ACMClient: acmClient, Out: &out, Disabled: true}

	require.NoError(t, r.Summary(context.Background(), testSpec()))

	assert.Empty(t, out.String())
	assert.Zero(t, acmClient.ListCalls)
}

func TestReporter_ListFails(t *testing.T) {
	cause := errors.New("expired token")
	acmClient := aws.NewMockACMClient()
	acmClient.ListErr = cause
	var out bytes.Buffer
	r := &Reporter{ACMClient: acmClient, Out: &out}

	err := r.Summary(context.Background(), testSpec())

	require.ErrorIs(t, err, cause)
	assert.Equal(t, ListFailed, FailedStep(err))
	assert.Empty(t, out.String())
}

func TestReporter_ListFailsLogsErrorCode(t *testing.T) {
	acmClient := aws.NewMockACMClient()
	acmClient.ListErr = &smithy.GenericAPIError{Code: "ExpiredTokenException", Message: "token expired"}
	var out bytes.Buffer
	r := &Reporter{ACMClient: acmClient, Out: &out}
	ctx, logs := captureLogs(context.Background())

	err := r.Summary(ctx, testSpec())

	require.Error(t, err)
	assert.Equal(t, ListFailed, FailedStep(err))
	line := logs.find("AWS call failed")
	assert.Contains(t, line, `"step"="ListFailed"`)
	assert.Contains(t, line, `"code"="ExpiredTokenException"`)
}
