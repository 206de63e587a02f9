package pagination

import (
	"github.com/thand-io/britive/internal/models"
)

// Shape is the server-side pagination style of a list endpoint.
type Shape string

const (
	ShapeNone   Shape = "none"
	ShapeInline Shape = "inline"
	ShapeReport Shape = "report"
	ShapeAudit  Shape = "audit"
	ShapeSecMgr Shape = "secmgr"
)

const NextPageHeader = "next-page"

// Detect classifies the first page of a list. The result must be latched
// for the rest of the sequence: the terminal page of a header driven list
// has no next-page header and would otherwise look like ShapeNone.
func Detect(res *models.Response) Shape {
	if res == nil || res.Empty || res.File != nil {
		return ShapeNone
	}

	obj, isObject := res.Object()
	hasNextPage := len(res.Header.Get(NextPageHeader)) > 0

	if isObject && hasKeys(obj, "count", "page", "size", "data") {
		return ShapeInline
	}

	if hasNextPage {
		if isObject && hasKeys(obj, "data", "reportId") {
			return ShapeReport
		}
		if !isObject || !hasKeys(obj, "reportId") {
			return ShapeAudit
		}
	}

	if isObject && hasKeys(obj, "result", "pagination") {
		return ShapeSecMgr
	}

	return ShapeNone
}

func hasKeys(obj map[string]any, keys ...string) bool {
	for _, key := range keys {
		if _, ok := obj[key]; !ok {
			return false
		}
	}
	return true
}
