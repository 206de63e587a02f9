package apierror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     any
		kind     Kind
		code     string
		expected string
	}{
		{
			name:     "status default",
			status:   404,
			body:     map[string]any{"message": "no such thing"},
			kind:     KindNotFound,
			code:     DefaultErrorCode,
			expected: "404 - E0000 - no such thing",
		},
		{
			name:     "bad request table",
			status:   400,
			body:     map[string]any{"errorCode": "MA-0009", "message": "approval required"},
			kind:     KindApprovalRequired,
			code:     "MA-0009",
			expected: "400 - MA-0009 - approval required",
		},
		{
			name:     "unauthorized table wins",
			status:   403,
			body:     map[string]any{"errorCode": "PE-0028", "message": "step up", "details": "totp"},
			kind:     KindStepUpAuthenticationRequired,
			code:     "PE-0028",
			expected: "403 - PE-0028 - step up - totp",
		},
		{
			name:     "generic table",
			status:   404,
			body:     map[string]any{"errorCode": "PA-0011", "message": "profile missing"},
			kind:     KindProfileNotFound,
			code:     "PA-0011",
			expected: "404 - PA-0011 - profile missing",
		},
		{
			name:     "unknown code falls back to status",
			status:   409,
			body:     map[string]any{"errorCode": "XX-1", "message": "conflict"},
			kind:     KindConflict,
			code:     "XX-1",
			expected: "409 - XX-1 - conflict",
		},
		{
			name:     "raw text body",
			status:   500,
			body:     "upstream exploded",
			kind:     KindInternalServerError,
			code:     DefaultErrorCode,
			expected: "500 - E0000 - upstream exploded",
		},
		{
			name:     "structured details",
			status:   400,
			body:     map[string]any{"message": "bad", "details": []any{"a", "b"}},
			kind:     KindInvalidRequest,
			code:     DefaultErrorCode,
			expected: `400 - E0000 - bad - ["a","b"]`,
		},
		{
			name:     "bad gateway",
			status:   502,
			body:     "",
			kind:     KindServiceUnavailable,
			code:     DefaultErrorCode,
			expected: "502 - E0000 - ",
		},
		{
			name:     "throttled",
			status:   429,
			body:     map[string]any{"message": "slow down"},
			kind:     KindServiceUnavailable,
			code:     DefaultErrorCode,
			expected: "429 - E0000 - slow down",
		},
		{
			name:     "unrecognized status",
			status:   418,
			body:     map[string]any{"errorCode": "MA-0009", "message": "teapot"},
			kind:     KindUnexpectedStatus,
			code:     DefaultErrorCode,
			expected: "418 - E0000 - teapot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(tt.status, tt.body)
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.code, err.ErrorCode)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestMaintenance(t *testing.T) {
	msg, ok := Maintenance(503, map[string]any{"errorCode": "MAINT0001", "message": "down"})
	assert.True(t, ok)
	assert.Equal(t, "down", msg)

	_, ok = Maintenance(500, map[string]any{"errorCode": "MAINT0001"})
	assert.False(t, ok)

	_, ok = Maintenance(503, map[string]any{"errorCode": "SRV0001"})
	assert.False(t, ok)

	_, ok = Maintenance(503, "MAINT0001")
	assert.False(t, ok)

	err := NewMaintenance(503, map[string]any{"errorCode": "MAINT0001", "message": "down"})
	assert.Equal(t, KindTenantUnderMaintenance, err.Kind)
	assert.Equal(t, "503 - MAINT0001 - down", err.Error())
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("checkout failed: %w", Classify(400, map[string]any{"errorCode": "MA-0010"}))

	assert.True(t, errors.Is(err, KindJustificationRequired))
	assert.False(t, errors.Is(err, KindApprovalRequired))
	assert.True(t, Is(err, KindApprovalRequired, KindJustificationRequired))
	assert.Equal(t, KindJustificationRequired, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestClientSideErrors(t *testing.T) {
	cause := errors.New("no such host")
	err := Wrap(KindInvalidTenant, cause, "tenant %s did not resolve", "acme")

	assert.Equal(t, "InvalidTenant: tenant acme did not resolve: no such host", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, KindInvalidTenant)

	assert.Equal(t, "TokenMissing: no token", New(KindTokenMissing, "no token").Error())
}

func TestReclassifyKeepsHTTPDetails(t *testing.T) {
	original := Classify(403, map[string]any{"errorCode": "PE-0002", "message": "denied"})
	err := Reclassify(KindAccessDenied, original)

	require.Equal(t, KindAccessDenied, err.Kind)
	assert.Equal(t, 403, err.StatusCode)
	assert.Equal(t, "PE-0002", err.ErrorCode)
	assert.ErrorIs(t, err, KindEvaluationError)
	assert.Equal(t, "403 - PE-0002 - denied", err.Error())
}
