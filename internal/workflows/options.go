package workflows

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/thand-io/britive/internal/common"
	"github.com/thand-io/britive/internal/models"
)

const (
	DefaultWaitTime    = 60 * time.Second
	DefaultMaxWaitTime = 600 * time.Second
)

// ProgressFunc receives one of the Progress labels at each state transition.
type ProgressFunc func(label string)

type CheckoutOptions struct {
	ProfileID          string            `mapstructure:"profile_id"`
	EnvironmentID      string            `mapstructure:"environment_id"`
	AccessType         models.AccessKind `mapstructure:"access_type"`
	IncludeCredentials bool              `mapstructure:"include_credentials"`
	Justification      string            `mapstructure:"justification"`
	TicketID           string            `mapstructure:"ticket_id"`
	TicketType         string            `mapstructure:"ticket_type"`
	OTP                string            `mapstructure:"otp"`
	OTPSecret          string            `mapstructure:"otp_secret"`
	WaitTime           time.Duration     `mapstructure:"wait_time"`
	MaxWaitTime        time.Duration     `mapstructure:"max_wait_time"`

	Progress ProgressFunc `mapstructure:"-"`
	Cancel   *CancelToken `mapstructure:"-"`
}

// DecodeCheckoutOptions builds options from a loosely typed map. Unknown
// keys are rejected.
func DecodeCheckoutOptions(input map[string]any) (CheckoutOptions, error) {
	var opts CheckoutOptions
	if err := common.DecodeStrict(input, &opts); err != nil {
		return CheckoutOptions{}, err
	}
	return opts, nil
}

func (o *CheckoutOptions) applyDefaults() {
	if access, ok := models.ParseAccessKind(string(o.AccessType)); ok {
		o.AccessType = access
	}
	if o.WaitTime == 0 {
		o.WaitTime = DefaultWaitTime
	}
	if o.MaxWaitTime == 0 {
		o.MaxWaitTime = DefaultMaxWaitTime
	}
}

func (o CheckoutOptions) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.ProfileID, validation.Required),
		validation.Field(&o.EnvironmentID, validation.Required),
		validation.Field(&o.AccessType, validation.In(models.AccessProgrammatic, models.AccessConsole)),
		validation.Field(&o.OTP, validation.By(digitsOnly), validation.Length(6, 8)),
		validation.Field(&o.WaitTime, validation.Min(time.Duration(0))),
		validation.Field(&o.MaxWaitTime, validation.Min(time.Duration(0))),
	)
}

type SecretOptions struct {
	Path          string        `mapstructure:"path"`
	Justification string        `mapstructure:"justification"`
	OTP           string        `mapstructure:"otp"`
	OTPSecret     string        `mapstructure:"otp_secret"`
	WaitTime      time.Duration `mapstructure:"wait_time"`
	MaxWaitTime   time.Duration `mapstructure:"max_wait_time"`
}

func DecodeSecretOptions(input map[string]any) (SecretOptions, error) {
	var opts SecretOptions
	if err := common.DecodeStrict(input, &opts); err != nil {
		return SecretOptions{}, err
	}
	return opts, nil
}

func (o *SecretOptions) applyDefaults() {
	if o.WaitTime == 0 {
		o.WaitTime = DefaultWaitTime
	}
	if o.MaxWaitTime == 0 {
		o.MaxWaitTime = DefaultMaxWaitTime
	}
}

func (o SecretOptions) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Path, validation.Required),
		validation.Field(&o.OTP, validation.By(digitsOnly), validation.Length(6, 8)),
		validation.Field(&o.WaitTime, validation.Min(time.Duration(0))),
		validation.Field(&o.MaxWaitTime, validation.Min(time.Duration(0))),
	)
}

func digitsOnly(value any) error {
	s, _ := value.(string)
	if len(s) == 0 || common.IsAllDigits(s) {
		return nil
	}
	return errors.New("must contain only digits")
}
