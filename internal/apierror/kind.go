package apierror

// Kind is a member of the closed error taxonomy. A Kind is itself an error so
// it can be used as the target of errors.Is.
type Kind string

func (k Kind) Error() string {
	return string(k)
}

// Transport and generic status kinds
const (
	KindInvalidRequest         Kind = "InvalidRequest"
	KindUnauthorized           Kind = "Unauthorized"
	KindForbidden              Kind = "Forbidden"
	KindNotFound               Kind = "NotFound"
	KindMethodNotAllowed       Kind = "MethodNotAllowed"
	KindConflict               Kind = "Conflict"
	KindInternalServerError    Kind = "InternalServerError"
	KindServiceUnavailable     Kind = "ServiceUnavailable"
	KindTenantUnderMaintenance Kind = "TenantUnderMaintenance"
	KindUnexpectedStatus       Kind = "UnexpectedStatus"
)

// Authentication kinds
const (
	KindTenantMissing              Kind = "TenantMissing"
	KindTokenMissing               Kind = "TokenMissing"
	KindInvalidTenant              Kind = "InvalidTenant"
	KindInvalidFederationProvider  Kind = "InvalidFederationProvider"
	KindFederationTokenUnavailable Kind = "FederationTokenUnavailable"
)

// Approval workflow kinds
const (
	KindApprovalRequired                           Kind = "ApprovalRequired"
	KindJustificationRequired                      Kind = "JustificationRequired"
	KindApprovalRequiredButNoJustificationProvided Kind = "ApprovalRequiredButNoJustificationProvided"
	KindProfileApprovalRejected                    Kind = "ProfileApprovalRejected"
	KindProfileApprovalTimedOut                    Kind = "ProfileApprovalTimedOut"
	KindProfileApprovalWithdrawn                   Kind = "ProfileApprovalWithdrawn"
	KindProfileApprovalMaxBlockTimeExceeded        Kind = "ProfileApprovalMaxBlockTimeExceeded"
	KindProfileCheckoutAlreadyApproved             Kind = "ProfileCheckoutAlreadyApproved"
)

// Step-up kinds
const (
	KindStepUpAuthenticationRequired     Kind = "StepUpAuthenticationRequired"
	KindStepUpAuthRequiredButNotProvided Kind = "StepUpAuthRequiredButNotProvided"
	KindStepUpAuthFailed                 Kind = "StepUpAuthFailed"
)

// Secret vault kinds
const (
	KindNoSecretsVaultFound      Kind = "NoSecretsVaultFound"
	KindEvaluationError          Kind = "EvaluationError"
	KindAccessDenied             Kind = "AccessDenied"
	KindSecretApprovalPending    Kind = "SecretApprovalPending"
	KindSecretApprovalRequired   Kind = "SecretApprovalRequired"
	KindApprovalWorkflowRejected Kind = "ApprovalWorkflowRejected"
	KindApprovalWorkflowTimedOut Kind = "ApprovalWorkflowTimedOut"
)

// Domain kinds
const (
	KindProfileNotFound                Kind = "ProfileNotFound"
	KindTransactionNotFound            Kind = "TransactionNotFound"
	KindApiTokenNotFound               Kind = "ApiTokenNotFound"
	KindRootEnvironmentGroupNotFound   Kind = "RootEnvironmentGroupNotFound"
	KindTooManyUsersFound              Kind = "TooManyUsersFound"
	KindUserNotAllowedToChangePassword Kind = "UserNotAllowedToChangePassword"
	KindUserDoesNotHaveMFAEnabled      Kind = "UserDoesNotHaveMFAEnabled"
)
