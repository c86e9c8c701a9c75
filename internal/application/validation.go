package application

import (
	"fmt"
	"strings"

	"modelrepo/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		// Format field name with spaces for error message (e.g., "parentID" -> "parent ID")
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "parentID" -> "parent ID")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"id":            "ID",
		"parentID":      "parent ID",
		"sourceID":      "source ID",
		"targetID":      "target ID",
		"destinationID": "destination ID",
		"type":          "type",
		"name":          "name",
		"field":         "field",
		"selector":      "selector",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}

	return fieldName
}

// ValidateType checks that typeName is a registered concrete type, optionally
// derived from one of kinds.
func ValidateType(reg *domain.Registry, fieldName, typeName string, kinds ...string) error {
	info, ok := reg.Lookup(typeName)
	if !ok {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("unknown type: %s", typeName),
		}
	}
	if info.Abstract {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is abstract", typeName),
		}
	}
	if len(kinds) == 0 {
		return nil
	}
	for _, k := range kinds {
		if reg.IsKindOf(typeName, k) {
			return nil
		}
	}
	return &ValidationError{
		Field:   fieldName,
		Message: fmt.Sprintf("expected %s, got: %s", strings.Join(kinds, " or "), typeName),
	}
}
