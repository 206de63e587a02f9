package models

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemeSelection(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected string
		kind     CredentialKind
	}{
		{"short api token", "abcdefghijklmnopqr", SchemeToken, CredentialStatic},
		{"workload token", "xx::yy", SchemeWorkloadToken, CredentialWorkload},
		{"long workload token", "OIDC::" + strings.Repeat("a", 80), SchemeWorkloadToken, CredentialWorkload},
		{"long bearer", "eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig", SchemeBearer, CredentialBearer},
		{"exactly fifty chars", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", SchemeBearer, CredentialBearer},
		{"forty nine chars", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", SchemeToken, CredentialStatic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred := NewCredential(tt.token)
			assert.Equal(t, tt.kind, cred.Kind)
			assert.Equal(t, tt.expected, cred.Scheme())
			assert.Equal(t, tt.expected, SchemeFor(tt.token))
			assert.Equal(t, tt.expected+" "+tt.token, cred.AuthorizationHeader())
		})
	}
}

func TestFederatedCredentialUsesWorkloadScheme(t *testing.T) {
	cred := NewFederatedCredential("AWS::abc", time.Time{})
	assert.Equal(t, "WorkloadToken AWS::abc", cred.AuthorizationHeader())
}

func TestCredentialExpiresWithin(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, Credential{Token: "x"}.ExpiresWithin(now, time.Hour))

	cred := Credential{Token: "x", Expiry: now.Add(time.Minute)}
	assert.False(t, cred.ExpiresWithin(now, 30*time.Second))
	assert.True(t, cred.ExpiresWithin(now, time.Minute))
	assert.True(t, cred.ExpiresWithin(now.Add(2*time.Minute), 0))
}

func TestRequestValidate(t *testing.T) {
	assert.NoError(t, (&Request{Method: "patch", URL: "https://acme.britive-app.com/api/x"}).Validate())
	assert.Error(t, (&Request{Method: "HEAD", URL: "https://acme.britive-app.com/api/x"}).Validate())
	assert.Error(t, (&Request{Method: "GET", URL: "/api/x"}).Validate())

	var nilRequest *Request
	assert.Error(t, nilRequest.Validate())
}

func TestRequestCloneCopiesQuery(t *testing.T) {
	req := &Request{Method: "GET", URL: "https://x/api", Query: map[string][]string{"page": {"0"}}}
	clone := req.Clone()
	clone.Query.Set("page", "1")

	assert.Equal(t, "0", req.Query.Get("page"))
	assert.Equal(t, "1", clone.Query.Get("page"))
}

func TestResponseResult(t *testing.T) {
	var nilResponse *Response
	assert.Nil(t, nilResponse.Result())
	assert.Nil(t, (&Response{Empty: true, Value: "ignored"}).Result())

	file := &FileDownload{Filename: "a.txt", Content: []byte("hi")}
	assert.Equal(t, file, (&Response{File: file}).Result())

	obj, ok := (&Response{Value: map[string]any{"a": 1.0}}).Object()
	require.True(t, ok)
	assert.Equal(t, 1.0, obj["a"])
}

func TestTransactionMatches(t *testing.T) {
	tx := &Transaction{ProfileID: "p1", EnvironmentID: "e1", AccessType: "programmatic", Status: TransactionCheckedOut}
	assert.True(t, tx.Matches("p1", "e1", AccessProgrammatic))
	assert.False(t, tx.Matches("p1", "e2", AccessProgrammatic))
	assert.False(t, tx.Matches("p1", "e1", AccessConsole))
	assert.True(t, tx.IsCheckedOut())
	assert.False(t, tx.IsTerminal())

	tx.Status = TransactionCheckInSubmitted
	assert.True(t, tx.IsTerminal())
}

func TestParseAccessKind(t *testing.T) {
	kind, ok := ParseAccessKind("console")
	assert.True(t, ok)
	assert.Equal(t, AccessConsole, kind)

	kind, ok = ParseAccessKind("")
	assert.True(t, ok)
	assert.Equal(t, AccessProgrammatic, kind)

	_, ok = ParseAccessKind("shell")
	assert.False(t, ok)
}

func TestApprovalStatusNormalization(t *testing.T) {
	assert.Equal(t, ApprovalApproved, NormalizeApprovalStatus(" APPROVED "))
	assert.True(t, (&ApprovalRequest{Status: "PENDING"}).IsPending())
	assert.False(t, (&ApprovalRequest{Status: "rejected"}).IsPending())
}

func TestBasicConfig(t *testing.T) {
	cfg := BasicConfig{
		"name":    "acme",
		"count":   3.0,
		"enabled": true,
		"flag":    "true",
		"nested":  map[string]any{"a": "b"},
	}

	assert.Equal(t, "acme", cfg.GetStringWithDefault("name", "x"))
	assert.Equal(t, "x", cfg.GetStringWithDefault("missing", "x"))
	assert.Equal(t, 3, cfg.GetIntWithDefault("count", 0))
	assert.True(t, cfg.Enabled("enabled"))
	assert.True(t, cfg.Enabled("flag"))
	assert.False(t, cfg.Enabled("missing"))

	nested, ok := cfg.GetMap("nested")
	require.True(t, ok)
	assert.Equal(t, "b", nested.GetStringWithDefault("a", ""))

	var empty *BasicConfig
	assert.Equal(t, map[string]any{}, empty.AsMap())
}

func TestEnvironmentPlatformFederationProvider(t *testing.T) {
	assert.Equal(t, "azuresmi", Azure.FederationProvider())
	assert.Equal(t, "github", GitHubActions.FederationProvider())
	assert.Equal(t, "", Local.FederationProvider())
	assert.True(t, Spacelift.IsCI())
	assert.False(t, AWS.IsCI())
}

func TestNewLogEntryMasksSecrets(t *testing.T) {
	entry := &logrus.Entry{
		Message: "token s3cret rejected",
		Data:    logrus.Fields{"token": "s3cret", "attempt": 2},
		Level:   logrus.WarnLevel,
	}
	logEntry := NewLogEntry(entry, func(s string) string {
		return strings.ReplaceAll(s, "s3cret", "****")
	})

	assert.Equal(t, "token **** rejected", logEntry.Message)
	assert.Equal(t, "****", logEntry.Data["token"])
	assert.Equal(t, 2, logEntry.Data["attempt"])
	assert.Equal(t, "s3cret", entry.Data["token"])
}
