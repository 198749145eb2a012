package structured

import (
	"fmt"
	"sort"
	"strings"
)

// Report is the outcome of a completeness check. Missing holds one
// human-readable descriptor per defect, in the order the walk found them.
// Descriptors are dotted/bracketed paths rooted at the empty path; defects
// other than a plainly absent required field carry the reason in the string.
type Report struct {
	Valid   bool
	Missing []string
}

// Check walks data against schema and reports every required field that is
// absent, null, or blank, every type mismatch, and every array cardinality
// violation. Sibling checks are never short-circuited: a failing branch
// invalidates its ancestors but the walk still visits everything else, so
// Missing lists all defects rather than the first.
func Check(data any, schema *Schema) Report {
	var missing []string
	valid := check(data, schema, "", &missing)
	return Report{Valid: valid, Missing: missing}
}

func check(data any, schema *Schema, path string, missing *[]string) bool {
	if schema == nil {
		return true
	}
	switch schema.Type {
	case KindObject:
		return checkObject(data, schema, path, missing)
	case KindArray:
		return checkArray(data, schema, path, missing)
	case KindString:
		s, ok := data.(string)
		if !ok || strings.TrimSpace(s) == "" {
			*missing = append(*missing, fmt.Sprintf("%s (empty or not a string)", path))
			return false
		}
		return true
	case KindNumber, KindInteger:
		// Integer and float are not distinguished at this layer.
		if !isNumeric(data) {
			*missing = append(*missing, fmt.Sprintf("%s (not a number)", path))
			return false
		}
		return true
	case KindBoolean:
		if _, ok := data.(bool); !ok {
			*missing = append(*missing, fmt.Sprintf("%s (not a boolean)", path))
			return false
		}
		return true
	default:
		// Unknown kinds are trivially valid so that newer schema vocabularies
		// degrade gracefully instead of rejecting data they do not understand.
		return true
	}
}

func checkObject(data any, schema *Schema, path string, missing *[]string) bool {
	obj, ok := data.(map[string]any)
	if !ok {
		*missing = append(*missing, fmt.Sprintf("%s (not an object)", path))
		return false
	}

	valid := true
	for _, name := range schema.Required {
		fieldPath := joinPath(path, name)
		val, present := obj[name]
		if !present || val == nil {
			*missing = append(*missing, fieldPath)
			valid = false
			continue
		}
		if child := schema.Property(name); child != nil {
			if !check(val, child, fieldPath, missing) {
				valid = false
			}
		} else if s, isStr := val.(string); isStr && strings.TrimSpace(s) == "" {
			// No child schema to consult; a blank string is still missing.
			*missing = append(*missing, fieldPath)
			valid = false
		}
	}

	// Optional fields are still shape-checked once provided. Sorted order
	// keeps the descriptor list deterministic.
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		if !schema.IsRequired(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		val, present := obj[name]
		if !present || val == nil {
			continue
		}
		if !check(val, schema.Properties[name], joinPath(path, name), missing) {
			valid = false
		}
	}
	return valid
}

func checkArray(data any, schema *Schema, path string, missing *[]string) bool {
	arr, ok := data.([]any)
	if !ok {
		*missing = append(*missing, fmt.Sprintf("%s (not an array)", path))
		return false
	}

	valid := true
	if schema.ExactItems != nil {
		if len(arr) != *schema.ExactItems {
			*missing = append(*missing, fmt.Sprintf("%s (expected exactly %d items, got %d)", path, *schema.ExactItems, len(arr)))
			valid = false
		}
	} else {
		// Floor and ceiling are independent checks; both may fire.
		if schema.MinItems != nil && len(arr) < *schema.MinItems {
			*missing = append(*missing, fmt.Sprintf("%s (expected at least %d items, got %d)", path, *schema.MinItems, len(arr)))
			valid = false
		}
		if schema.MaxItems != nil && len(arr) > *schema.MaxItems {
			*missing = append(*missing, fmt.Sprintf("%s (expected at most %d items, got %d)", path, *schema.MaxItems, len(arr)))
			valid = false
		}
	}

	// An empty array has nothing to descend into; only the count checks
	// above apply.
	if len(arr) == 0 {
		return valid
	}
	for i, item := range arr {
		if !check(item, schema.Items, fmt.Sprintf("%s[%d]", path, i), missing) {
			valid = false
		}
	}
	return valid
}

func isNumeric(v any) bool {
	switch v.(type) {
	case float64, float32, int, int32, int64:
		return true
	default:
		return false
	}
}

func joinPath(base, segment string) string {
	if base == "" {
		return segment
	}
	return base + "." + segment
}
