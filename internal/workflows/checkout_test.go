package workflows

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thand-io/britive/internal/apierror"
	"github.com/thand-io/britive/internal/models"
)

const (
	submitRoute   = "access/p1/environments/e1"
	approvalRoute = "access/p1/environments/e1/approvalRequest"
)

func baseOptions() CheckoutOptions {
	return CheckoutOptions{
		ProfileID:     "p1",
		EnvironmentID: "e1",
		WaitTime:      time.Second,
		MaxWaitTime:   time.Minute,
	}
}

func TestCheckoutWithApproval(t *testing.T) {
	api := newFakeAPI()
	api.on(http.MethodGet, checkedOutPath, respond([]any{}))
	api.on(http.MethodPost, submitRoute, sequence(
		fail(apiError(apierror.KindApprovalRequired, 400, "MA-0009", "approval required")),
		respond(transaction("t1", "checkedOut")),
	))
	api.on(http.MethodPost, approvalRoute, respond(map[string]any{"requestId": "r1"}))
	api.on(http.MethodGet, "v1/approvals/r1", sequence(
		respond(map[string]any{"requestId": "r1", "status": "PENDING"}),
		respond(map[string]any{"requestId": "r1", "status": "PENDING"}),
		respond(map[string]any{"requestId": "r1", "status": "APPROVED"}),
	))
	api.on(http.MethodGet, "access/t1/tokens", respond(map[string]any{"accessKeyID": "AKIA"}))

	engine, clock := newTestEngine(api)

	var labels []string
	opts := baseOptions()
	opts.Justification = "incident 42"
	opts.IncludeCredentials = true
	opts.Progress = func(label string) { labels = append(labels, label) }

	tx, err := engine.Checkout(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, "t1", tx.TransactionID)
	assert.Equal(t, models.TransactionCheckedOut, tx.Status)
	assert.Equal(t, map[string]any{"accessKeyID": "AKIA"}, tx.Credentials)

	assert.Equal(t, 2, api.count(http.MethodPost, submitRoute))
	assert.Equal(t, 3, api.count(http.MethodGet, "v1/approvals/r1"))
	assert.Equal(t, 1, api.count(http.MethodGet, "access/t1/tokens"))
	assert.Equal(t, []time.Duration{time.Second, time.Second}, clock.sleeps)

	assert.Equal(t, []string{
		ProgressProbing,
		ProgressSubmitting,
		ProgressApprovalRequested,
		ProgressAwaitingApproval,
		ProgressApproved,
		ProgressSubmitting,
		ProgressRetrievingCredentials,
		ProgressComplete,
	}, labels)
}

func TestCheckoutAdoptsExistingTransaction(t *testing.T) {
	api := newFakeAPI()
	api.on(http.MethodGet, checkedOutPath, respond([]any{
		transaction("old", "checkedIn"),
		transaction("t1", "checkedOut"),
	}))

	engine, _ := newTestEngine(api)

	for i := 0; i < 2; i++ {
		tx, err := engine.Checkout(context.Background(), baseOptions())
		require.NoError(t, err)
		assert.Equal(t, "t1", tx.TransactionID)
	}
	assert.Equal(t, 0, api.count(http.MethodPost, submitRoute))
}

func TestCheckoutSubmitOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		submitErr error
		expected  apierror.Kind
	}{
		{
			name:      "step-up required",
			submitErr: apiError(apierror.KindStepUpAuthenticationRequired, 401, "PE-0028", "step up"),
			expected:  apierror.KindStepUpAuthRequiredButNotProvided,
		},
		{
			name:      "approval without justification",
			submitErr: apiError(apierror.KindApprovalRequired, 400, "MA-0009", "approval required"),
			expected:  apierror.KindApprovalRequiredButNoJustificationProvided,
		},
		{
			name:      "justification required without justification",
			submitErr: apiError(apierror.KindJustificationRequired, 400, "MA-0010", "justification required"),
			expected:  apierror.KindApprovalRequiredButNoJustificationProvided,
		},
		{
			name:      "other errors pass through",
			submitErr: apiError(apierror.KindProfileNotFound, 404, "PA-0011", "no profile"),
			expected:  apierror.KindProfileNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			api.on(http.MethodGet, checkedOutPath, respond([]any{}))
			api.on(http.MethodPost, submitRoute, fail(tt.submitErr))

			engine, _ := newTestEngine(api)

			_, err := engine.Checkout(context.Background(), baseOptions())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected)

			var apiErr *apierror.Error
			require.ErrorAs(t, err, &apiErr)
			assert.NotZero(t, apiErr.StatusCode)
		})
	}
}

func TestCheckoutRaceLost(t *testing.T) {
	raceErr := apiError(apierror.KindInvalidRequest, 400, "E0000", "Error: "+RaceMarker)

	t.Run("adopts the winner", func(t *testing.T) {
		api := newFakeAPI()
		api.on(http.MethodGet, checkedOutPath, sequence(
			respond([]any{}),
			respond([]any{transaction("t1", "checkedOut")}),
		))
		api.on(http.MethodPost, submitRoute, fail(raceErr))

		engine, _ := newTestEngine(api)
		tx, err := engine.Checkout(context.Background(), baseOptions())
		require.NoError(t, err)
		assert.Equal(t, "t1", tx.TransactionID)
		assert.Equal(t, 2, api.count(http.MethodGet, checkedOutPath))
	})

	t.Run("bounded re-entry", func(t *testing.T) {
		api := newFakeAPI()
		api.on(http.MethodGet, checkedOutPath, respond([]any{}))
		api.on(http.MethodPost, submitRoute, fail(raceErr))

		engine, _ := newTestEngine(api)
		_, err := engine.Checkout(context.Background(), baseOptions())
		require.Error(t, err)
		assert.ErrorIs(t, err, apierror.KindInvalidRequest)
		assert.Equal(t, 2, api.count(http.MethodPost, submitRoute))
	})
}

func TestCheckoutApprovalDispositions(t *testing.T) {
	tests := []struct {
		status   string
		expected apierror.Kind
	}{
		{"rejected", apierror.KindProfileApprovalRejected},
		{"cancelled", apierror.KindProfileApprovalWithdrawn},
		{"withdrawn", apierror.KindProfileApprovalWithdrawn},
		{"timeout", apierror.KindProfileApprovalTimedOut},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			api := newFakeAPI()
			api.on(http.MethodGet, checkedOutPath, respond([]any{}))
			api.on(http.MethodPost, submitRoute, fail(apiError(apierror.KindApprovalRequired, 400, "MA-0009", "approval required")))
			api.on(http.MethodPost, approvalRoute, respond(map[string]any{"requestId": "r1"}))
			api.on(http.MethodGet, "v1/approvals/r1", respond(map[string]any{"status": tt.status}))

			engine, _ := newTestEngine(api)
			opts := baseOptions()
			opts.Justification = "please"

			_, err := engine.Checkout(context.Background(), opts)
			assert.ErrorIs(t, err, tt.expected)
			assert.Equal(t, 1, api.count(http.MethodPost, submitRoute))
		})
	}
}

func TestCheckoutAlreadyApproved(t *testing.T) {
	api := newFakeAPI()
	api.on(http.MethodGet, checkedOutPath, respond([]any{}))
	api.on(http.MethodPost, submitRoute, sequence(
		fail(apiError(apierror.KindApprovalRequired, 400, "MA-0009", "approval required")),
		respond(transaction("t1", "checkedOut")),
	))
	api.on(http.MethodPost, approvalRoute, fail(apiError(apierror.KindProfileCheckoutAlreadyApproved, 400, "MA-0011", "already approved")))

	engine, _ := newTestEngine(api)
	opts := baseOptions()
	opts.Justification = "please"

	tx, err := engine.Checkout(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "t1", tx.TransactionID)
	assert.Equal(t, 0, api.count(http.MethodGet, "v1/approvals/r1"))
}

func TestCheckoutApprovalMaxWait(t *testing.T) {
	api := newFakeAPI()
	api.on(http.MethodGet, checkedOutPath, respond([]any{}))
	api.on(http.MethodPost, submitRoute, fail(apiError(apierror.KindApprovalRequired, 400, "MA-0009", "approval required")))
	api.on(http.MethodPost, approvalRoute, respond(map[string]any{"requestId": "r1"}))
	api.on(http.MethodGet, "v1/approvals/r1", respond(map[string]any{"status": "pending"}))

	engine, _ := newTestEngine(api)
	opts := baseOptions()
	opts.Justification = "please"
	opts.WaitTime = 10 * time.Second
	opts.MaxWaitTime = 30 * time.Second

	_, err := engine.Checkout(context.Background(), opts)
	assert.ErrorIs(t, err, apierror.KindProfileApprovalMaxBlockTimeExceeded)
	assert.Equal(t, 4, api.count(http.MethodGet, "v1/approvals/r1"))
	assert.Equal(t, 0, api.count(http.MethodDelete, approvalBaseURI))
}

func TestCheckoutCancelWithdraws(t *testing.T) {
	token := NewCancelToken()

	api := newFakeAPI()
	api.on(http.MethodGet, checkedOutPath, respond([]any{}))
	api.on(http.MethodPost, submitRoute, fail(apiError(apierror.KindApprovalRequired, 400, "MA-0009", "approval required")))
	api.on(http.MethodPost, approvalRoute, respond(map[string]any{"requestId": "r1"}))
	api.on(http.MethodGet, "v1/approvals/r1", func(call) (any, error) {
		token.Cancel()
		return map[string]any{"status": "pending"}, nil
	})
	api.on(http.MethodDelete, approvalBaseURI, respond(nil))

	engine, _ := newTestEngine(api)
	opts := baseOptions()
	opts.Justification = "please"
	opts.Cancel = token

	_, err := engine.Checkout(context.Background(), opts)
	assert.ErrorIs(t, err, apierror.KindProfileApprovalWithdrawn)
	assert.Equal(t, 1, api.count(http.MethodDelete, approvalBaseURI))
	assert.Equal(t, "p1/e1", api.calls[len(api.calls)-1].query.Get("resourceId"))
}

func TestCheckoutStepUp(t *testing.T) {
	t.Run("passcode accepted", func(t *testing.T) {
		api := newFakeAPI()
		api.on(http.MethodGet, checkedOutPath, respond([]any{}))
		api.on(http.MethodPost, stepUpPath, func(c call) (any, error) {
			assert.Equal(t, map[string]any{"otp": "123456"}, c.body)
			return map[string]any{"result": "SUCCESS"}, nil
		})
		api.on(http.MethodPost, submitRoute, respond(transaction("t1", "checkedOut")))

		engine, _ := newTestEngine(api)
		opts := baseOptions()
		opts.OTP = "123456"

		_, err := engine.Checkout(context.Background(), opts)
		require.NoError(t, err)
		assert.Equal(t, 1, api.count(http.MethodPost, stepUpPath))
	})

	t.Run("passcode rejected", func(t *testing.T) {
		api := newFakeAPI()
		api.on(http.MethodGet, checkedOutPath, respond([]any{}))
		api.on(http.MethodPost, stepUpPath, respond(map[string]any{"result": "FAILED"}))

		engine, _ := newTestEngine(api)
		opts := baseOptions()
		opts.OTP = "123456"

		_, err := engine.Checkout(context.Background(), opts)
		assert.ErrorIs(t, err, apierror.KindStepUpAuthFailed)
		assert.Equal(t, 0, api.count(http.MethodPost, submitRoute))
	})

	t.Run("server errors pass through", func(t *testing.T) {
		tests := []struct {
			name     string
			err      error
			expected apierror.Kind
		}{
			{
				name:     "maintenance",
				err:      apiError(apierror.KindTenantUnderMaintenance, 503, apierror.MaintenanceCode, "down"),
				expected: apierror.KindTenantUnderMaintenance,
			},
			{
				name:     "expired token",
				err:      apiError(apierror.KindUnauthorized, 401, "AT-0003", "expired"),
				expected: apierror.KindUnauthorized,
			},
			{
				name:     "server error",
				err:      apiError(apierror.KindInternalServerError, 500, apierror.DefaultErrorCode, "boom"),
				expected: apierror.KindInternalServerError,
			},
			{
				name:     "bad passcode",
				err:      apiError(apierror.KindInvalidRequest, 400, apierror.DefaultErrorCode, "invalid otp"),
				expected: apierror.KindStepUpAuthFailed,
			},
			{
				name:     "passcode forbidden",
				err:      apiError(apierror.KindForbidden, 403, apierror.DefaultErrorCode, "denied"),
				expected: apierror.KindStepUpAuthFailed,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				api := newFakeAPI()
				api.on(http.MethodGet, checkedOutPath, respond([]any{}))
				api.on(http.MethodPost, stepUpPath, fail(tt.err))

				engine, _ := newTestEngine(api)
				opts := baseOptions()
				opts.OTP = "123456"

				_, err := engine.Checkout(context.Background(), opts)
				require.Error(t, err)
				assert.Equal(t, tt.expected, apierror.KindOf(err))
				assert.Equal(t, 0, api.count(http.MethodPost, submitRoute))
			})
		}
	})

	t.Run("passcode generated from secret", func(t *testing.T) {
		api := newFakeAPI()
		api.on(http.MethodGet, checkedOutPath, respond([]any{}))
		api.on(http.MethodPost, stepUpPath, func(c call) (any, error) {
			body := c.body.(map[string]any)
			assert.Len(t, body["otp"], 6)
			return map[string]any{"result": "success"}, nil
		})
		api.on(http.MethodPost, submitRoute, respond(transaction("t1", "checkedOut")))

		engine, _ := newTestEngine(api)
		opts := baseOptions()
		opts.OTPSecret = "JBSWY3DPEHPK3PXP"

		_, err := engine.Checkout(context.Background(), opts)
		require.NoError(t, err)
	})
}

func TestCredentialsWaitForCheckout(t *testing.T) {
	api := newFakeAPI()
	api.on(http.MethodGet, checkedOutPath, sequence(
		respond([]any{}),
		respond([]any{transaction("t1", "checkOutSubmitted")}),
		respond([]any{transaction("t1", "checkedOut")}),
	))
	api.on(http.MethodPost, submitRoute, respond(transaction("t1", "checkOutSubmitted")))
	api.on(http.MethodGet, "access/t1/tokens", respond(map[string]any{"token": "x"}))

	engine, clock := newTestEngine(api)
	opts := baseOptions()
	opts.IncludeCredentials = true

	tx, err := engine.Checkout(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionCheckedOut, tx.Status)
	assert.NotNil(t, tx.Credentials)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, clock.sleeps)
}

func TestConsoleCredentials(t *testing.T) {
	api := newFakeAPI()
	api.on(http.MethodGet, "access/t2/url", respond("https://console.example.com/signin"))

	engine, _ := newTestEngine(api)
	creds, err := engine.Credentials(context.Background(), &models.Transaction{
		TransactionID: "t2",
		Status:        models.TransactionCheckedOut,
		AccessType:    models.AccessConsole,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://console.example.com/signin", creds)

	_, err = engine.Credentials(context.Background(), &models.Transaction{
		TransactionID: "t3",
		Status:        models.TransactionCheckedIn,
	})
	assert.ErrorIs(t, err, apierror.KindTransactionNotFound)
}

func TestCheckin(t *testing.T) {
	api := newFakeAPI()
	api.on(http.MethodPut, "access/t1", func(c call) (any, error) {
		assert.Equal(t, "API", c.query.Get("type"))
		return transaction("t1", "checkInSubmitted"), nil
	})

	engine, _ := newTestEngine(api)
	tx, err := engine.Checkin(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionCheckInSubmitted, tx.Status)

	_, err = engine.Checkin(context.Background(), "")
	assert.ErrorIs(t, err, apierror.KindTransactionNotFound)
}

func TestLegacyApprovalLayout(t *testing.T) {
	api := newFakeAPI()
	api.on(http.MethodPost, approvalBaseURI, func(c call) (any, error) {
		assert.Equal(t, "papservice", c.query.Get("consumer"))
		assert.Equal(t, "p1/e1", c.query.Get("resourceId"))
		return "r9", nil
	})
	api.on(http.MethodDelete, "v1/approvals/r9", respond(nil))

	engine := NewEngine(api, LayoutLegacy)
	request, err := engine.RequestApproval(context.Background(), "p1", "e1", "why", "", "")
	require.NoError(t, err)
	assert.Equal(t, "r9", request.RequestID)
	assert.True(t, request.IsPending())

	require.NoError(t, engine.WithdrawApproval(context.Background(), "r9", "p1", "e1"))
}
