package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/riskcore/internal/application/dto"
	"github.com/bibbank/riskcore/pkg/auth"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, nil, 0o600))
	rootCmd.SetArgs(append(args, "--config", cfg))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLaborCommand(t *testing.T) {
	out, err := run(t, "labor", "--start", "2024-01-01", "--end", "2024-12-31", "--salary", "50000")
	require.NoError(t, err)

	var resp dto.BenefitsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.Years)
	assert.Equal(t, 28, resp.NoticeDays)
	assert.Equal(t, 21, resp.SeveranceDays)
}

func TestLaborCommand_InvalidSalary(t *testing.T) {
	_, err := run(t, "labor", "--start", "2024-01-01", "--end", "2024-12-31", "--salary", "lots")
	assert.ErrorContains(t, err, "invalid --salary")
}

func TestEvaluateCommand_Local(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.json")
	body := `{
		"tenant_id": "` + uuid.NewString() + `",
		"applicant_id": "cli-001",
		"requested_amount": "40000",
		"term_months": 24,
		"declared_salary": "60000",
		"credit_score": 780,
		"dependents": 0,
		"employer_name": "Grupo Ramos S.A.",
		"employment_start_date": "2020-01-15",
		"has_vehicle": true,
		"has_property": false,
		"documents": {"uploaded": 3, "processed": 3, "errors": 0, "bank_account_verified": true},
		"osint": {"ran": false, "skip": false, "digital_veracity_score": "0"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	out, err := run(t, "evaluate", "--file", path)
	require.NoError(t, err)

	var resp dto.AssessmentResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "cli-001", resp.ApplicantID)
	assert.NotEmpty(t, resp.Decision)
	require.NotNil(t, resp.IRSScore)
}

func TestEvaluateCommand_RejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"applicant": "typo"}`), 0o600))

	_, err := run(t, "evaluate", "--file", path)
	assert.ErrorContains(t, err, "unknown field")
}

func TestTokenCommand(t *testing.T) {
	tenantID := uuid.New()
	out, err := run(t, "token", "--secret", "dev-secret", "--tenant", tenantID.String(), "--role", "auditor")
	require.NoError(t, err)

	svc, err := auth.NewJWTService(auth.JWTConfig{Secret: "dev-secret"})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, tenantID, claims.TenantID)
	assert.True(t, claims.HasRole(auth.RoleAuditor))
}

func TestCertsCommand(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "certs", "--out", dir)
	require.NoError(t, err)

	for _, name := range []string{"ca.pem", "server.pem", "server-key.pem", "client.pem"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, splitList(" a:9092,,b:9092 "))
	assert.Empty(t, splitList(""))
}
