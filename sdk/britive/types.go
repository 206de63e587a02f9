// Package britive is the public client for the privileged access service.
// It wraps tenant resolution, authentication, the retrying transport,
// pagination and the checkout and secret workflows.
package britive

import (
	"github.com/thand-io/britive/internal/workflows"
)

type CheckoutOptions = workflows.CheckoutOptions

type SecretOptions = workflows.SecretOptions

type ProgressFunc = workflows.ProgressFunc

// CancelToken stops an approval wait. See NewCancelToken.
type CancelToken = workflows.CancelToken

func NewCancelToken() *CancelToken {
	return workflows.NewCancelToken()
}

var (
	DecodeCheckoutOptions = workflows.DecodeCheckoutOptions
	DecodeSecretOptions   = workflows.DecodeSecretOptions
)

const (
	ProgressProbing               = workflows.ProgressProbing
	ProgressStepUp                = workflows.ProgressStepUp
	ProgressSubmitting            = workflows.ProgressSubmitting
	ProgressApprovalRequested     = workflows.ProgressApprovalRequested
	ProgressAwaitingApproval      = workflows.ProgressAwaitingApproval
	ProgressApproved              = workflows.ProgressApproved
	ProgressProvisioning          = workflows.ProgressProvisioning
	ProgressRetrievingCredentials = workflows.ProgressRetrievingCredentials
	ProgressComplete              = workflows.ProgressComplete
)
