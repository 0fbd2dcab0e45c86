package model

import "fmt"

// RowInput is the body of a create or update request for a reference book row
type RowInput map[string]any

// Validate checks the input against the set of editable columns and returns field errors
func (in RowInput) Validate(editable map[string]bool) map[string]string {
	errors := make(map[string]string)

	if len(in) == 0 {
		errors["_"] = "at least one field is required"
		return errors
	}

	for field, value := range in {
		if !editable[field] {
			errors[field] = "field is not editable"
			continue
		}
		switch value.(type) {
		case string, float64, bool, nil:
		default:
			errors[field] = fmt.Sprintf("unsupported value type %T", value)
		}
	}

	return errors
}
