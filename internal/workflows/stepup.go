package workflows

import (
	"context"
	"strings"

	"github.com/pquerna/otp/totp"
	"github.com/sirupsen/logrus"

	"github.com/thand-io/britive/internal/apierror"
	"github.com/thand-io/britive/internal/config"
)

// StepUp authenticates a one-time passcode for the current session.
func (e *Engine) StepUp(ctx context.Context, passcode string) error {
	config.RegisterSecret(passcode)

	result, err := e.api.Post(ctx, stepUpPath, nil, map[string]any{"otp": passcode})
	if err != nil {
		switch apierror.KindOf(err) {
		case apierror.KindInvalidRequest, apierror.KindForbidden:
			// the passcode itself was refused
			return apierror.Reclassify(apierror.KindStepUpAuthFailed, err)
		}
		return err
	}

	obj, _ := result.(map[string]any)
	status, _ := obj["result"].(string)
	if !strings.EqualFold(status, "SUCCESS") {
		return apierror.New(apierror.KindStepUpAuthFailed, "step-up authentication returned %q", status)
	}

	logrus.Debugln("Step-up authentication succeeded")
	return nil
}

// passcode returns the supplied OTP, or a TOTP code generated from secret.
func (e *Engine) passcode(otp, secret string) (string, error) {
	if len(otp) > 0 {
		return otp, nil
	}
	if len(secret) == 0 {
		return "", nil
	}
	config.RegisterSecret(secret)
	code, err := totp.GenerateCode(secret, e.now())
	if err != nil {
		return "", apierror.Wrap(apierror.KindStepUpAuthFailed, err, "failed to generate passcode")
	}
	return code, nil
}

func (e *Engine) stepUpIfRequested(ctx context.Context, otp, secret string, progress ProgressFunc) error {
	code, err := e.passcode(otp, secret)
	if err != nil || len(code) == 0 {
		return err
	}
	progress.emit(ProgressStepUp)
	return e.StepUp(ctx, code)
}
