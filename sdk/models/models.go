// Package models provides public SDK types for the privileged access client.
// These types are re-exported from the internal models package to provide
// a stable public API for external consumers.
package models

import internal "github.com/thand-io/britive/internal/models"

// BasicConfig is a loosely typed settings map with typed accessors.
type BasicConfig = internal.BasicConfig

// Credential is the bearer value attached to every request together with
// the kind that selects its Authorization scheme.
type Credential = internal.Credential

type CredentialKind = internal.CredentialKind

// Transaction is a checked out, or checking out, profile.
type Transaction = internal.Transaction

type TransactionStatus = internal.TransactionStatus

type AccessKind = internal.AccessKind

// ApprovalRequest is a pending or disposed approval for a checkout.
type ApprovalRequest = internal.ApprovalRequest

type ApprovalStatus = internal.ApprovalStatus

// FileDownload is a downloaded attachment.
type FileDownload = internal.FileDownload

// MultipartBody is an upload with one file part and optional metadata parts.
type MultipartBody = internal.MultipartBody

const (
	TransactionSubmitted        = internal.TransactionSubmitted
	TransactionCheckedOut       = internal.TransactionCheckedOut
	TransactionCheckInSubmitted = internal.TransactionCheckInSubmitted
	TransactionCheckedIn        = internal.TransactionCheckedIn
)

const (
	AccessProgrammatic = internal.AccessProgrammatic
	AccessConsole      = internal.AccessConsole
)

const (
	ApprovalPending   = internal.ApprovalPending
	ApprovalApproved  = internal.ApprovalApproved
	ApprovalRejected  = internal.ApprovalRejected
	ApprovalCancelled = internal.ApprovalCancelled
	ApprovalTimeout   = internal.ApprovalTimeout
	ApprovalWithdrawn = internal.ApprovalWithdrawn
)
