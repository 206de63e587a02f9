package workflows

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/thand-io/britive/internal/apierror"
	"github.com/thand-io/britive/internal/common"
	"github.com/thand-io/britive/internal/models"
)

// RequestApproval files an approval request for a profile checkout. A
// ProfileCheckoutAlreadyApproved error means an earlier request already
// covers this checkout.
func (e *Engine) RequestApproval(ctx context.Context, profileID, environmentID, justification, ticketID, ticketType string) (*models.ApprovalRequest, error) {
	body := map[string]any{"justification": justification}
	if len(ticketID) > 0 {
		body["ticketId"] = ticketID
		body["ticketType"] = ticketType
	}

	path, query := e.layout.requestApproval(profileID, environmentID)

	result, err := e.api.Post(ctx, path, query, body)
	if err != nil {
		return nil, err
	}

	request, err := decodeApproval(result)
	if err != nil {
		return nil, err
	}
	if len(request.Status) == 0 {
		request.Status = models.ApprovalPending
	}
	if len(request.Justification) == 0 {
		request.Justification = justification
	}

	logrus.WithFields(logrus.Fields{
		"profile":     profileID,
		"environment": environmentID,
		"request":     request.RequestID,
	}).Infoln("Approval requested")

	return request, nil
}

// ApprovalStatus returns the current disposition of an approval request.
func (e *Engine) ApprovalStatus(ctx context.Context, requestID string) (models.ApprovalStatus, error) {
	result, err := e.api.GetPage(ctx, e.layout.approvalStatus(requestID), nil)
	if err != nil {
		return "", err
	}
	request, err := decodeApproval(result)
	if err != nil {
		return "", err
	}
	return models.NormalizeApprovalStatus(string(request.Status)), nil
}

// WithdrawApproval cancels a pending approval request.
func (e *Engine) WithdrawApproval(ctx context.Context, requestID, profileID, environmentID string) error {
	path, query := e.layout.withdrawApproval(requestID, profileID, environmentID)
	_, err := e.api.Delete(ctx, path, query, nil)
	return err
}

// awaitApproval requests approval and blocks until it is disposed of.
func (e *Engine) awaitApproval(ctx context.Context, opts *CheckoutOptions) error {
	opts.Progress.emit(ProgressApprovalRequested)

	request, err := e.RequestApproval(ctx, opts.ProfileID, opts.EnvironmentID, opts.Justification, opts.TicketID, opts.TicketType)
	if errors.Is(err, apierror.KindProfileCheckoutAlreadyApproved) {
		logrus.WithFields(logrus.Fields{
			"profile":     opts.ProfileID,
			"environment": opts.EnvironmentID,
		}).Infoln("Checkout already approved")
		opts.Progress.emit(ProgressApproved)
		return nil
	}
	if err != nil {
		return err
	}

	opts.Progress.emit(ProgressAwaitingApproval)

	status, err := e.waitForDisposition(ctx, request, opts)
	if err != nil {
		return err
	}

	switch status {
	case models.ApprovalApproved:
		opts.Progress.emit(ProgressApproved)
		return nil
	case models.ApprovalRejected:
		return apierror.New(apierror.KindProfileApprovalRejected, "approval request %s was rejected", request.RequestID)
	case models.ApprovalCancelled, models.ApprovalWithdrawn:
		return apierror.New(apierror.KindProfileApprovalWithdrawn, "approval request %s was %s", request.RequestID, status)
	case models.ApprovalTimeout:
		return apierror.New(apierror.KindProfileApprovalTimedOut, "approval request %s timed out", request.RequestID)
	default:
		return apierror.New(apierror.KindProfileApprovalRejected, "approval request %s ended with status %q", request.RequestID, status)
	}
}

// waitForDisposition polls at WaitTime intervals until the request leaves
// pending, MaxWaitTime passes or the caller cancels.
func (e *Engine) waitForDisposition(ctx context.Context, request *models.ApprovalRequest, opts *CheckoutOptions) (models.ApprovalStatus, error) {
	deadline := e.now().Add(opts.MaxWaitTime)

	for {
		if opts.Cancel.Cancelled() {
			return "", e.withdraw(ctx, request, opts)
		}

		status, err := e.ApprovalStatus(ctx, request.RequestID)
		if err != nil {
			return "", err
		}

		logrus.WithFields(logrus.Fields{
			"request": request.RequestID,
			"status":  status,
		}).Debugln("Polled approval status")

		if status != models.ApprovalPending {
			return status, nil
		}

		if !e.now().Before(deadline) {
			return "", apierror.New(apierror.KindProfileApprovalMaxBlockTimeExceeded,
				"approval request %s still pending after %s", request.RequestID, opts.MaxWaitTime)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-opts.Cancel.Done():
			return "", e.withdraw(ctx, request, opts)
		case <-e.after(opts.WaitTime):
		}
	}
}

// withdraw makes a best-effort attempt to cancel the request. It runs on a
// context detached from the caller so an interrupted caller still withdraws,
// and a second Cancel abandons it.
func (e *Engine) withdraw(ctx context.Context, request *models.ApprovalRequest, opts *CheckoutOptions) error {
	withdrawCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.withdrawTimeout)
	defer cancel()

	go func() {
		select {
		case <-opts.Cancel.Aborted():
			cancel()
		case <-withdrawCtx.Done():
		}
	}()

	if err := e.WithdrawApproval(withdrawCtx, request.RequestID, opts.ProfileID, opts.EnvironmentID); err != nil {
		logrus.WithFields(logrus.Fields{
			"request": request.RequestID,
		}).WithError(err).Warnln("Failed to withdraw approval request")
	} else {
		logrus.WithField("request", request.RequestID).Infoln("Withdrew approval request")
	}

	return apierror.New(apierror.KindProfileApprovalWithdrawn, "approval request %s was withdrawn by the caller", request.RequestID)
}

func decodeApproval(result any) (*models.ApprovalRequest, error) {
	var request models.ApprovalRequest
	switch v := result.(type) {
	case nil:
		return &request, nil
	case string:
		request.RequestID = v
		return &request, nil
	}
	if err := common.DecodeResponse(result, &request); err != nil {
		return nil, err
	}
	return &request, nil
}
