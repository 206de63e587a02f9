package workflows

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/thand-io/britive/internal/apierror"
	"github.com/thand-io/britive/internal/common"
	"github.com/thand-io/britive/internal/models"
)

// RaceMarker is the server message returned when a concurrent checkout of
// the same profile won.
const RaceMarker = "user has already checked out profile for this environment"

// maxRaceRetries bounds re-entry after a lost checkout race.
const maxRaceRetries = 1

type submitKind int

const (
	submitOK submitKind = iota
	submitApprovalRequired
	submitStepUpRequired
	submitRaceLost
	submitFailed
)

// submitResult is the outcome of one checkout POST.
type submitResult struct {
	kind        submitKind
	transaction *models.Transaction
	err         error
}

// Checkout returns a usable transaction for the profile and environment,
// driving approval, step-up and provisioning as needed.
func (e *Engine) Checkout(ctx context.Context, opts CheckoutOptions) (*models.Transaction, error) {
	opts.applyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	tx, err := e.checkout(ctx, &opts, 0)
	if err != nil {
		return nil, err
	}

	if opts.IncludeCredentials {
		if err := e.attachCredentials(ctx, tx, opts.Progress); err != nil {
			return nil, err
		}
	}

	opts.Progress.emit(ProgressComplete)
	return tx, nil
}

func (e *Engine) checkout(ctx context.Context, opts *CheckoutOptions, raceRetries int) (*models.Transaction, error) {
	fields := logrus.Fields{
		"profile":     opts.ProfileID,
		"environment": opts.EnvironmentID,
		"access":      opts.AccessType,
	}

	opts.Progress.emit(ProgressProbing)

	existing, err := e.findCheckedOut(ctx, opts.ProfileID, opts.EnvironmentID, opts.AccessType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logrus.WithFields(fields).WithField("transaction", existing.TransactionID).Infoln("Adopting existing checkout")
		return existing, nil
	}

	if err := e.stepUpIfRequested(ctx, opts.OTP, opts.OTPSecret, opts.Progress); err != nil {
		return nil, err
	}

	approved := false

	for {
		opts.Progress.emit(ProgressSubmitting)

		result := e.submit(ctx, opts)

		switch result.kind {
		case submitOK:
			logrus.WithFields(fields).WithFields(logrus.Fields{
				"transaction": result.transaction.TransactionID,
				"status":      result.transaction.Status,
			}).Infoln("Checkout submitted")
			return result.transaction, nil

		case submitStepUpRequired:
			return nil, apierror.Reclassify(apierror.KindStepUpAuthRequiredButNotProvided, result.err)

		case submitApprovalRequired:
			if len(strings.TrimSpace(opts.Justification)) == 0 {
				return nil, apierror.Reclassify(apierror.KindApprovalRequiredButNoJustificationProvided, result.err)
			}
			if approved {
				// approved once already; the server still refuses
				return nil, result.err
			}
			logrus.WithFields(fields).Infoln("Checkout requires approval")
			if err := e.awaitApproval(ctx, opts); err != nil {
				return nil, err
			}
			approved = true

		case submitRaceLost:
			if raceRetries >= maxRaceRetries {
				return nil, result.err
			}
			logrus.WithFields(fields).Infoln("Lost checkout race, probing again")
			return e.checkout(ctx, opts, raceRetries+1)

		default:
			return nil, result.err
		}
	}
}

func (e *Engine) submit(ctx context.Context, opts *CheckoutOptions) submitResult {
	body := map[string]any{}
	if len(opts.Justification) > 0 {
		body["justification"] = opts.Justification
	}
	if len(opts.TicketID) > 0 {
		body["ticketId"] = opts.TicketID
		body["ticketType"] = opts.TicketType
	}

	query := url.Values{"accessType": {string(opts.AccessType)}}

	result, err := e.api.Post(ctx, checkoutPath(opts.ProfileID, opts.EnvironmentID), query, body)
	if err != nil {
		return classifySubmit(err)
	}

	tx, err := decodeTransaction(result)
	if err != nil {
		return submitResult{kind: submitFailed, err: err}
	}
	if len(tx.ProfileID) == 0 {
		tx.ProfileID = opts.ProfileID
	}
	if len(tx.EnvironmentID) == 0 {
		tx.EnvironmentID = opts.EnvironmentID
	}
	if len(tx.AccessType) == 0 {
		tx.AccessType = opts.AccessType
	}

	return submitResult{kind: submitOK, transaction: tx}
}

func classifySubmit(err error) submitResult {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) && strings.Contains(apiErr.Message+" "+apiErr.Details, RaceMarker) {
		return submitResult{kind: submitRaceLost, err: err}
	}

	switch apierror.KindOf(err) {
	case apierror.KindApprovalRequired, apierror.KindJustificationRequired:
		return submitResult{kind: submitApprovalRequired, err: err}
	case apierror.KindStepUpAuthenticationRequired:
		return submitResult{kind: submitStepUpRequired, err: err}
	}

	return submitResult{kind: submitFailed, err: err}
}

// ListCheckedOut returns the caller's current transactions.
func (e *Engine) ListCheckedOut(ctx context.Context) ([]models.Transaction, error) {
	result, err := e.api.Get(ctx, checkedOutPath, nil)
	if err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	if result == nil {
		return transactions, nil
	}
	if err := common.DecodeResponse(result, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// findCheckedOut returns a live transaction for the tuple, or nil.
func (e *Engine) findCheckedOut(ctx context.Context, profileID, environmentID string, access models.AccessKind) (*models.Transaction, error) {
	transactions, err := e.ListCheckedOut(ctx)
	if err != nil {
		return nil, err
	}
	for i := range transactions {
		tx := &transactions[i]
		if tx.Matches(profileID, environmentID, access) && !tx.IsTerminal() {
			return tx, nil
		}
	}
	return nil, nil
}

// Checkin releases a checked out transaction.
func (e *Engine) Checkin(ctx context.Context, transactionID string) (*models.Transaction, error) {
	if len(transactionID) == 0 {
		return nil, apierror.New(apierror.KindTransactionNotFound, "no transaction id provided")
	}

	result, err := e.api.Put(ctx, transactionPath(transactionID), url.Values{"type": {"API"}}, nil)
	if err != nil {
		return nil, err
	}

	logrus.WithField("transaction", transactionID).Infoln("Checked in")

	if result == nil {
		return &models.Transaction{TransactionID: transactionID, Status: models.TransactionCheckInSubmitted}, nil
	}
	return decodeTransaction(result)
}

func decodeTransaction(result any) (*models.Transaction, error) {
	var tx models.Transaction
	if err := common.DecodeResponse(result, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}
