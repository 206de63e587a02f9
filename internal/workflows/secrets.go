package workflows

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/thand-io/britive/internal/apierror"
	"github.com/thand-io/britive/internal/models"
)

// VaultID returns the tenant's secrets vault id, looked up once.
func (e *Engine) VaultID(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.vaultID) > 0 {
		return e.vaultID, nil
	}

	result, err := e.api.GetPage(ctx, vaultPath, nil)
	if err != nil {
		return "", err
	}

	obj, _ := result.(map[string]any)
	id, _ := obj["id"].(string)
	if len(id) == 0 {
		return "", apierror.New(apierror.KindNoSecretsVaultFound, "no secrets vault configured for this tenant")
	}

	e.vaultID = id
	return id, nil
}

// ViewSecret returns the decrypted value of the secret at opts.Path, waiting
// on the secret's approval workflow when one applies.
func (e *Engine) ViewSecret(ctx context.Context, opts SecretOptions) (any, error) {
	opts.applyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if err := e.stepUpIfRequested(ctx, opts.OTP, opts.OTPSecret, nil); err != nil {
		return nil, err
	}

	vaultID, err := e.VaultID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := e.accessSecret(ctx, vaultID, &opts)
	if err != nil {
		return nil, err
	}

	if obj, ok := result.(map[string]any); ok {
		if value, found := obj["value"]; found {
			return value, nil
		}
	}
	return result, nil
}

// DownloadSecret runs the same approval loop as ViewSecret and then fetches
// the file stored in the secret.
func (e *Engine) DownloadSecret(ctx context.Context, opts SecretOptions) (*models.FileDownload, error) {
	opts.applyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if err := e.stepUpIfRequested(ctx, opts.OTP, opts.OTPSecret, nil); err != nil {
		return nil, err
	}

	vaultID, err := e.VaultID(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := e.accessSecret(ctx, vaultID, &opts); err != nil {
		return nil, err
	}

	return e.api.Download(ctx, secretDownloadPath(vaultID), url.Values{"path": {opts.Path}})
}

// accessSecret polls the access endpoint until the secret is released or
// MaxWaitTime passes. The justification is only sent on the first attempt.
func (e *Engine) accessSecret(ctx context.Context, vaultID string, opts *SecretOptions) (any, error) {
	deadline := e.now().Add(opts.MaxWaitTime)
	justified := len(strings.TrimSpace(opts.Justification)) > 0
	query := url.Values{"path": {opts.Path}, "type": {"secret"}}

	for attempt := 0; ; attempt++ {
		body := map[string]any{}
		if attempt == 0 && justified {
			body["justification"] = opts.Justification
		}

		result, err := e.api.Post(ctx, secretAccessPath(vaultID), query, body)

		switch {
		case err == nil:
			return result, nil

		case errors.Is(err, apierror.KindEvaluationError):
			return nil, apierror.Reclassify(apierror.KindAccessDenied, err)

		case errors.Is(err, apierror.KindSecretApprovalRequired):
			if !justified {
				return nil, apierror.Reclassify(apierror.KindApprovalRequiredButNoJustificationProvided, err)
			}
			return nil, apierror.Reclassify(apierror.KindApprovalWorkflowRejected, err)

		case errors.Is(err, apierror.KindSecretApprovalPending):
			logrus.WithFields(logrus.Fields{
				"path":    opts.Path,
				"attempt": attempt,
			}).Debugln("Secret approval pending")

		default:
			return nil, err
		}

		if !e.now().Before(deadline) {
			return nil, apierror.New(apierror.KindApprovalWorkflowTimedOut,
				"secret %s still awaiting approval after %s", opts.Path, opts.MaxWaitTime)
		}

		if err := e.sleep(ctx, opts.WaitTime); err != nil {
			return nil, err
		}
	}
}
