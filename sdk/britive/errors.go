package britive

import "github.com/thand-io/britive/internal/apierror"

// Error is returned for every API and workflow failure. Match a kind with
// errors.Is(err, britive.KindNotFound).
type Error = apierror.Error

type ErrorKind = apierror.Kind

// KindOf returns the kind of err, or an empty kind for foreign errors.
func KindOf(err error) ErrorKind {
	return apierror.KindOf(err)
}

const (
	KindInvalidRequest                             = apierror.KindInvalidRequest
	KindUnauthorized                               = apierror.KindUnauthorized
	KindForbidden                                  = apierror.KindForbidden
	KindNotFound                                   = apierror.KindNotFound
	KindMethodNotAllowed                           = apierror.KindMethodNotAllowed
	KindConflict                                   = apierror.KindConflict
	KindInternalServerError                        = apierror.KindInternalServerError
	KindServiceUnavailable                         = apierror.KindServiceUnavailable
	KindTenantUnderMaintenance                     = apierror.KindTenantUnderMaintenance
	KindUnexpectedStatus                           = apierror.KindUnexpectedStatus
	KindTenantMissing                              = apierror.KindTenantMissing
	KindTokenMissing                               = apierror.KindTokenMissing
	KindInvalidTenant                              = apierror.KindInvalidTenant
	KindInvalidFederationProvider                  = apierror.KindInvalidFederationProvider
	KindFederationTokenUnavailable                 = apierror.KindFederationTokenUnavailable
	KindApprovalRequired                           = apierror.KindApprovalRequired
	KindJustificationRequired                      = apierror.KindJustificationRequired
	KindApprovalRequiredButNoJustificationProvided = apierror.KindApprovalRequiredButNoJustificationProvided
	KindProfileApprovalRejected                    = apierror.KindProfileApprovalRejected
	KindProfileApprovalTimedOut                    = apierror.KindProfileApprovalTimedOut
	KindProfileApprovalWithdrawn                   = apierror.KindProfileApprovalWithdrawn
	KindProfileApprovalMaxBlockTimeExceeded        = apierror.KindProfileApprovalMaxBlockTimeExceeded
	KindProfileCheckoutAlreadyApproved             = apierror.KindProfileCheckoutAlreadyApproved
	KindStepUpAuthenticationRequired               = apierror.KindStepUpAuthenticationRequired
	KindStepUpAuthRequiredButNotProvided           = apierror.KindStepUpAuthRequiredButNotProvided
	KindStepUpAuthFailed                           = apierror.KindStepUpAuthFailed
	KindNoSecretsVaultFound                        = apierror.KindNoSecretsVaultFound
	KindEvaluationError                            = apierror.KindEvaluationError
	KindAccessDenied                               = apierror.KindAccessDenied
	KindSecretApprovalPending                      = apierror.KindSecretApprovalPending
	KindSecretApprovalRequired                     = apierror.KindSecretApprovalRequired
	KindApprovalWorkflowRejected                   = apierror.KindApprovalWorkflowRejected
	KindApprovalWorkflowTimedOut                   = apierror.KindApprovalWorkflowTimedOut
	KindProfileNotFound                            = apierror.KindProfileNotFound
	KindTransactionNotFound                        = apierror.KindTransactionNotFound
	KindApiTokenNotFound                           = apierror.KindApiTokenNotFound
	KindRootEnvironmentGroupNotFound               = apierror.KindRootEnvironmentGroupNotFound
	KindTooManyUsersFound                          = apierror.KindTooManyUsersFound
	KindUserNotAllowedToChangePassword             = apierror.KindUserNotAllowedToChangePassword
	KindUserDoesNotHaveMFAEnabled                  = apierror.KindUserDoesNotHaveMFAEnabled
)
