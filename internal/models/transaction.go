package models

import "strings"

// TransactionStatus values as reported by the access service.
type TransactionStatus string

const (
	TransactionSubmitted        TransactionStatus = "checkOutSubmitted"
	TransactionCheckedOut       TransactionStatus = "checkedOut"
	TransactionCheckInSubmitted TransactionStatus = "checkInSubmitted"
	TransactionCheckedIn        TransactionStatus = "checkedIn"
)

// AccessKind selects between programmatic keys and a console sign-in URL.
type AccessKind string

const (
	AccessProgrammatic AccessKind = "PROGRAMMATIC"
	AccessConsole      AccessKind = "CONSOLE"
)

func ParseAccessKind(value string) (AccessKind, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", string(AccessProgrammatic):
		return AccessProgrammatic, true
	case string(AccessConsole):
		return AccessConsole, true
	}
	return "", false
}

// Transaction is a checked out (or in-flight) profile.
type Transaction struct {
	TransactionID  string            `json:"transactionId" mapstructure:"transactionId"`
	Status         TransactionStatus `json:"status" mapstructure:"status"`
	AccessType     AccessKind        `json:"accessType" mapstructure:"accessType"`
	ProfileID      string            `json:"papId" mapstructure:"papId"`
	EnvironmentID  string            `json:"environmentId" mapstructure:"environmentId"`
	UserID         string            `json:"userId,omitempty" mapstructure:"userId"`
	Expiration     string            `json:"expiration,omitempty" mapstructure:"expiration"`
	CheckedOutTime string            `json:"checkedOut,omitempty" mapstructure:"checkedOut"`
	Justification  string            `json:"justification,omitempty" mapstructure:"justification"`
	Credentials    any               `json:"credentials,omitempty" mapstructure:"-"`
}

func (t *Transaction) IsCheckedOut() bool {
	return t != nil && t.Status == TransactionCheckedOut
}

// IsTerminal reports whether the transaction is checked in or being checked in.
func (t *Transaction) IsTerminal() bool {
	if t == nil {
		return false
	}
	return t.Status == TransactionCheckedIn || t.Status == TransactionCheckInSubmitted
}

// Matches compares the profile, environment and access kind of a transaction.
func (t *Transaction) Matches(profileID, environmentID string, access AccessKind) bool {
	if t == nil {
		return false
	}
	return t.ProfileID == profileID &&
		t.EnvironmentID == environmentID &&
		strings.EqualFold(string(t.AccessType), string(access))
}
