package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// ObligationSortFields contains allowed sort fields for monthly obligations
var ObligationSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"student_id": true,
	"cycle_id":   true,
	"year":       true,
	"month":      true,
	"total":      true,
	"total_paid": true,
	"balance":    true,
	"status":     true,
	"due_date":   true,
	"paid_at":    true,
}

// ReceiptSortFields contains allowed sort fields for receipts
var ReceiptSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"student_id":  true,
	"cycle_id":    true,
	"year":        true,
	"month":       true,
	"correlativo": true,
	"receipt_no":  true,
	"issued_at":   true,
}
