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

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField if the input is invalid, empty, or not in
// the whitelist.
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

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"base_unit":  true,
	"category":   true,
	"status":     true,
}

// StorageLocationSortFields contains allowed sort fields for storage locations
var StorageLocationSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"is_active":  true,
}

// LocationStockSortFields contains allowed sort fields for location stock rows
var LocationStockSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"product_id":    true,
	"batch_id":      true,
	"location_id":   true,
	"quantity":      true,
	"batch_number":  true,
	"location_name": true,
	"product_name":  true,
}

// WithdrawalSortFields contains allowed sort fields for withdrawal requests
var WithdrawalSortFields = map[string]bool{
	"id":                       true,
	"created_at":               true,
	"updated_at":               true,
	"request_number":           true,
	"status":                   true,
	"requested_by_name":        true,
	"approved_at":              true,
	"total_products":           true,
	"total_requested_quantity": true,
	"total_approved_quantity":  true,
	"availability":             true,
}
