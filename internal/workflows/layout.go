package workflows

import (
	"fmt"
	"net/url"
)

// Layout selects the endpoint family for approvals. LayoutCurrent requests
// approval under the checkout path and withdraws by resource through the
// consumer path. LayoutLegacy requests through the consumer path and
// withdraws by request id.
type Layout int

const (
	LayoutCurrent Layout = iota
	LayoutLegacy
)

const (
	checkedOutPath  = "access/app-access-status"
	stepUpPath      = "step-up/authenticate/TOTP"
	vaultPath       = "v1/secretmanager/vault"
	approvalsPrefix = "v1/approvals"
	approvalBaseURI = "v1/approvals/consumer/papservice/resource"
)

func checkoutPath(profileID, environmentID string) string {
	return fmt.Sprintf("access/%s/environments/%s", profileID, environmentID)
}

func transactionPath(transactionID string) string {
	return fmt.Sprintf("access/%s", transactionID)
}

func resourceID(profileID, environmentID string) string {
	return fmt.Sprintf("%s/%s", profileID, environmentID)
}

func (l Layout) requestApproval(profileID, environmentID string) (string, url.Values) {
	if l == LayoutLegacy {
		return approvalBaseURI, url.Values{
			"consumer":   {"papservice"},
			"resourceId": {resourceID(profileID, environmentID)},
		}
	}
	return checkoutPath(profileID, environmentID) + "/approvalRequest", nil
}

func (l Layout) approvalStatus(requestID string) string {
	return fmt.Sprintf("%s/%s", approvalsPrefix, requestID)
}

func (l Layout) withdrawApproval(requestID, profileID, environmentID string) (string, url.Values) {
	if l == LayoutLegacy && len(requestID) > 0 {
		return fmt.Sprintf("%s/%s", approvalsPrefix, requestID), nil
	}
	return approvalBaseURI, url.Values{
		"consumer":   {"papservice"},
		"resourceId": {resourceID(profileID, environmentID)},
	}
}

func secretAccessPath(vaultID string) string {
	return fmt.Sprintf("%s/%s/accesssecrets", vaultPath, vaultID)
}

func secretDownloadPath(vaultID string) string {
	return fmt.Sprintf("%s/%s/secrets/file/downloadfile", vaultPath, vaultID)
}
