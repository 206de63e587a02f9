package workflows

const (
	ProgressProbing               = "probing"
	ProgressStepUp                = "step-up"
	ProgressSubmitting            = "submitting"
	ProgressApprovalRequested     = "approval-requested"
	ProgressAwaitingApproval      = "awaiting-approval"
	ProgressApproved              = "approved"
	ProgressProvisioning          = "provisioning"
	ProgressRetrievingCredentials = "retrieving-credentials"
	ProgressComplete              = "complete"
)

func (f ProgressFunc) emit(label string) {
	if f != nil {
		f(label)
	}
}
