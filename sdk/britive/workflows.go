package britive

import (
	"context"

	"github.com/thand-io/britive/internal/models"
)

// Checkout returns a usable transaction for a profile, handling approval,
// step-up and provisioning. Repeated calls for the same profile,
// environment and access type return the live transaction.
func (c *Client) Checkout(ctx context.Context, opts CheckoutOptions) (*models.Transaction, error) {
	return c.engine.Checkout(ctx, opts)
}

func (c *Client) Checkin(ctx context.Context, transactionID string) (*models.Transaction, error) {
	return c.engine.Checkin(ctx, transactionID)
}

func (c *Client) ListCheckedOut(ctx context.Context) ([]models.Transaction, error) {
	return c.engine.ListCheckedOut(ctx)
}

// Credentials waits for tx to finish provisioning and fetches its
// credentials.
func (c *Client) Credentials(ctx context.Context, tx *models.Transaction) (any, error) {
	return c.engine.Credentials(ctx, tx)
}

func (c *Client) RequestApproval(ctx context.Context, profileID, environmentID, justification, ticketID, ticketType string) (*models.ApprovalRequest, error) {
	return c.engine.RequestApproval(ctx, profileID, environmentID, justification, ticketID, ticketType)
}

func (c *Client) ApprovalStatus(ctx context.Context, requestID string) (models.ApprovalStatus, error) {
	return c.engine.ApprovalStatus(ctx, requestID)
}

func (c *Client) WithdrawApproval(ctx context.Context, requestID, profileID, environmentID string) error {
	return c.engine.WithdrawApproval(ctx, requestID, profileID, environmentID)
}

func (c *Client) StepUp(ctx context.Context, passcode string) error {
	return c.engine.StepUp(ctx, passcode)
}

func (c *Client) ViewSecret(ctx context.Context, opts SecretOptions) (any, error) {
	return c.engine.ViewSecret(ctx, opts)
}

func (c *Client) DownloadSecret(ctx context.Context, opts SecretOptions) (*models.FileDownload, error) {
	return c.engine.DownloadSecret(ctx, opts)
}
