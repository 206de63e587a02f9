package workflows

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/thand-io/britive/internal/apierror"
	"github.com/thand-io/britive/internal/models"
)

// Credentials waits for tx to reach checkedOut and fetches its credentials:
// access keys for programmatic checkouts, a sign-in URL for console ones.
func (e *Engine) Credentials(ctx context.Context, tx *models.Transaction) (any, error) {
	if err := e.attachCredentials(ctx, tx, nil); err != nil {
		return nil, err
	}
	return tx.Credentials, nil
}

func (e *Engine) attachCredentials(ctx context.Context, tx *models.Transaction, progress ProgressFunc) error {
	if tx == nil || len(tx.TransactionID) == 0 {
		return apierror.New(apierror.KindTransactionNotFound, "no transaction to fetch credentials for")
	}

	if !tx.IsCheckedOut() {
		progress.emit(ProgressProvisioning)
	}

	for !tx.IsCheckedOut() {
		if tx.IsTerminal() {
			return apierror.New(apierror.KindTransactionNotFound, "transaction %s is %s", tx.TransactionID, tx.Status)
		}

		if err := e.sleep(ctx, e.pollInterval); err != nil {
			return err
		}

		current, err := e.transaction(ctx, tx.TransactionID)
		if err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"transaction": tx.TransactionID,
			"status":      current.Status,
		}).Debugln("Polled checkout status")

		*tx = *current
	}

	progress.emit(ProgressRetrievingCredentials)

	suffix := "tokens"
	if tx.AccessType == models.AccessConsole {
		suffix = "url"
	}

	credentials, err := e.api.GetPage(ctx, transactionPath(tx.TransactionID)+"/"+suffix, nil)
	if err != nil {
		return err
	}

	tx.Credentials = credentials
	return nil
}

func (e *Engine) transaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	transactions, err := e.ListCheckedOut(ctx)
	if err != nil {
		return nil, err
	}
	for i := range transactions {
		if transactions[i].TransactionID == transactionID {
			return &transactions[i], nil
		}
	}
	return nil, apierror.New(apierror.KindTransactionNotFound, "transaction %s is no longer listed", transactionID)
}
