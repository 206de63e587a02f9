package apierror

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	DefaultErrorCode = "E0000"
	MaintenanceCode  = "MAINT0001"
)

// Statuses whose body carries a server error code worth looking up.
var recognizedStatuses = map[int]bool{
	http.StatusBadRequest:          true,
	http.StatusUnauthorized:        true,
	http.StatusForbidden:           true,
	http.StatusNotFound:            true,
	http.StatusMethodNotAllowed:    true,
	http.StatusConflict:            true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// The three code tables are consulted in order; the first hit wins.
var unauthorizedCodes = map[string]Kind{
	"PE-0028": KindStepUpAuthenticationRequired,
	"PE-0002": KindEvaluationError,
	"PE-0029": KindSecretApprovalPending,
	"PE-0030": KindSecretApprovalRequired,
	"AT-0003": KindUnauthorized,
}

var badRequestCodes = map[string]Kind{
	"MA-0009": KindApprovalRequired,
	"MA-0010": KindJustificationRequired,
	"MA-0011": KindProfileCheckoutAlreadyApproved,
	"U-0008":  KindUserNotAllowedToChangePassword,
	"U-0009":  KindUserDoesNotHaveMFAEnabled,
}

var genericCodes = map[string]Kind{
	MaintenanceCode: KindTenantUnderMaintenance,
	"PA-0011":       KindProfileNotFound,
	"PA-0010":       KindTransactionNotFound,
	"AT-0001":       KindApiTokenNotFound,
	"EG-0001":       KindRootEnvironmentGroupNotFound,
	"U-0001":        KindTooManyUsersFound,
	"SM-0001":       KindNoSecretsVaultFound,
}

var statusKinds = map[int]Kind{
	http.StatusBadRequest:          KindInvalidRequest,
	http.StatusUnauthorized:        KindUnauthorized,
	http.StatusForbidden:           KindForbidden,
	http.StatusNotFound:            KindNotFound,
	http.StatusMethodNotAllowed:    KindMethodNotAllowed,
	http.StatusConflict:            KindConflict,
	http.StatusInternalServerError: KindInternalServerError,
	http.StatusServiceUnavailable:  KindServiceUnavailable,

	// retryable statuses left over once retries run out
	http.StatusTooManyRequests: KindServiceUnavailable,
	http.StatusBadGateway:      KindServiceUnavailable,
	http.StatusGatewayTimeout:  KindServiceUnavailable,
}

// KindForCode looks a server error code up in the code tables.
func KindForCode(code string) (Kind, bool) {
	for _, table := range []map[string]Kind{unauthorizedCodes, badRequestCodes, genericCodes} {
		if kind, ok := table[code]; ok {
			return kind, true
		}
	}
	return "", false
}

// Classify maps a failed response onto the taxonomy. body is the decoded
// response: a map for JSON objects, otherwise whatever the decoder produced.
func Classify(status int, body any) *Error {
	apiErr := &Error{
		StatusCode: status,
		ErrorCode:  DefaultErrorCode,
		Message:    messageOf(body),
		Details:    detailsOf(body),
	}

	if !recognizedStatuses[status] {
		apiErr.Kind = KindUnexpectedStatus
		return apiErr
	}

	if code := errorCodeOf(body); len(code) > 0 {
		apiErr.ErrorCode = code
	}

	if kind, ok := KindForCode(apiErr.ErrorCode); ok {
		apiErr.Kind = kind
		return apiErr
	}

	apiErr.Kind = statusKinds[status]
	return apiErr
}

// Maintenance returns the server message when the response is the tenant
// maintenance sentinel: a 503 whose JSON object carries MAINT0001.
func Maintenance(status int, body any) (string, bool) {
	if status != http.StatusServiceUnavailable {
		return "", false
	}
	if _, ok := body.(map[string]any); !ok {
		return "", false
	}
	if errorCodeOf(body) != MaintenanceCode {
		return "", false
	}
	return messageOf(body), true
}

// NewMaintenance builds the TenantUnderMaintenance error for a sentinel
// response.
func NewMaintenance(status int, body any) *Error {
	return &Error{
		Kind:       KindTenantUnderMaintenance,
		StatusCode: status,
		ErrorCode:  MaintenanceCode,
		Message:    messageOf(body),
		Details:    detailsOf(body),
	}
}

func errorCodeOf(body any) string {
	obj, ok := body.(map[string]any)
	if !ok {
		return ""
	}
	return stringValue(obj["errorCode"])
}

func messageOf(body any) string {
	switch v := body.(type) {
	case map[string]any:
		return stringValue(v["message"])
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return stringValue(v)
	}
}

func detailsOf(body any) string {
	obj, ok := body.(map[string]any)
	if !ok {
		return ""
	}
	return stringValue(obj["details"])
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64, bool, int:
		return fmt.Sprint(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}
