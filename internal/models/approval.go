package models

import "strings"

type ApprovalStatus string

const (
	ApprovalPending   ApprovalStatus = "pending"
	ApprovalApproved  ApprovalStatus = "approved"
	ApprovalRejected  ApprovalStatus = "rejected"
	ApprovalCancelled ApprovalStatus = "cancelled"
	ApprovalTimeout   ApprovalStatus = "timeout"
	ApprovalWithdrawn ApprovalStatus = "withdrawn"
)

// NormalizeApprovalStatus lowercases the server value. The service reports
// statuses in upper case on some endpoints.
func NormalizeApprovalStatus(value string) ApprovalStatus {
	return ApprovalStatus(strings.ToLower(strings.TrimSpace(value)))
}

type ApprovalRequest struct {
	RequestID     string         `json:"requestId" mapstructure:"requestId"`
	Status        ApprovalStatus `json:"status" mapstructure:"status"`
	Justification string         `json:"justification,omitempty" mapstructure:"justification"`
	TicketID      string         `json:"ticketId,omitempty" mapstructure:"ticketId"`
	TicketType    string         `json:"ticketType,omitempty" mapstructure:"ticketType"`
	Action        string         `json:"action,omitempty" mapstructure:"action"`
}

func (a *ApprovalRequest) IsPending() bool {
	return a != nil && NormalizeApprovalStatus(string(a.Status)) == ApprovalPending
}
