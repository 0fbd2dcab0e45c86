package model

import (
	"testing"
)

func TestRowInput_Validate(t *testing.T) {
	editable := map[string]bool{
		"countryCode": true,
		"weekendDate": true,
		"description": true,
		"working":     true,
	}

	tests := []struct {
		name           string
		input          RowInput
		expectedErrors map[string]string
	}{
		{
			name: "valid input",
			input: RowInput{
				"countryCode": "BY",
				"weekendDate": "2026-01-07",
				"working":     false,
			},
			expectedErrors: map[string]string{},
		},
		{
			name:           "numeric and null values",
			input:          RowInput{"countryCode": float64(112), "description": nil},
			expectedErrors: map[string]string{},
		},
		{
			name:  "empty input",
			input: RowInput{},
			expectedErrors: map[string]string{
				"_": "at least one field is required",
			},
		},
		{
			name:  "unknown field",
			input: RowInput{"weekendId": float64(3)},
			expectedErrors: map[string]string{
				"weekendId": "field is not editable",
			},
		},
		{
			name:  "nested object",
			input: RowInput{"description": map[string]any{"a": "b"}},
			expectedErrors: map[string]string{
				"description": "unsupported value type map[string]interface {}",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := tt.input.Validate(editable)

			if len(errors) != len(tt.expectedErrors) {
				t.Errorf("expected %d errors, got %d: %v", len(tt.expectedErrors), len(errors), errors)
			}

			for field, expectedMsg := range tt.expectedErrors {
				if msg, ok := errors[field]; !ok {
					t.Errorf("expected error for field %s", field)
				} else if msg != expectedMsg {
					t.Errorf("expected error message %q for field %s, got %q", expectedMsg, field, msg)
				}
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		resource string
		selected ClientStatus
		want     ClientStatus
	}{
		{"/reference-book/calendar", StatusClosed, StatusNotDeleted},
		{"/reference-book/currencies", "", StatusNotDeleted},
		{"/business-partner", StatusClosed, StatusClosed},
		{"/business-partner", "", StatusOpen},
		{"/business-partner-accounts", StatusAll, StatusAll},
	}

	for _, tt := range tests {
		if got := StatusFor(tt.resource, tt.selected); got != tt.want {
			t.Errorf("StatusFor(%q, %q) = %q, want %q", tt.resource, tt.selected, got, tt.want)
		}
	}
}

func TestParseClientStatus(t *testing.T) {
	if s, ok := ParseClientStatus(" open "); !ok || s != StatusOpen {
		t.Errorf("expected OPEN, got %q (ok=%v)", s, ok)
	}
	if _, ok := ParseClientStatus("archived"); ok {
		t.Error("expected archived to be rejected")
	}
}

func TestParseViewKind(t *testing.T) {
	if v, ok := ParseViewKind(""); !ok || v != ViewTable {
		t.Errorf("expected TABLE default, got %q", v)
	}
	if v, ok := ParseViewKind("main_table"); !ok || v != ViewMainTable {
		t.Errorf("expected MAIN_TABLE, got %q", v)
	}
	if _, ok := ParseViewKind("grid"); ok {
		t.Error("expected grid to be rejected")
	}
}
