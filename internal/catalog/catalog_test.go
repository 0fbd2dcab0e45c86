package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Sapuran-Berperan/backoffice-tables/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const calendarYAML = `
resources:
  - path: reference-book/calendar/
    table: weekend_calendar
    idColumn: weekend_id
    editable: true
    softDelete: true
    columns:
      - key: weekendId
        name: weekend_id
        label: ID
      - key: countryCode
        name: country_code
        label: Country
        filterable: true
        editable: true
      - key: weekendDate
        name: weekend_date
        label: Date
        editable: true
        views: [table, main_table]
      - key: description
        searchable: true
        editable: true
        views: [CARD]
`

func TestParse_AppliesDefaults(t *testing.T) {
	cat, err := Parse([]byte(calendarYAML))
	require.NoError(t, err)

	r, ok := cat.Lookup("/reference-book/calendar")
	require.True(t, ok)
	assert.Equal(t, "weekend_calendar", r.Table)
	assert.Equal(t, "weekend_id", r.IDColumn)
	assert.Equal(t, "deleted", r.DeletedColumn)

	c, ok := r.Column("description")
	require.True(t, ok)
	assert.Equal(t, "description", c.Name)
	assert.True(t, c.Searchable)

	_, ok = r.Column("missing")
	assert.False(t, ok)
}

func TestResource_ColumnMappingPerView(t *testing.T) {
	cat, err := Parse([]byte(calendarYAML))
	require.NoError(t, err)
	r, _ := cat.Lookup("/reference-book/calendar")

	tests := []struct {
		view model.ViewKind
		keys []string
	}{
		{model.ViewTable, []string{"weekendId", "countryCode", "weekendDate"}},
		{model.ViewMainTable, []string{"weekendId", "countryCode", "weekendDate"}},
		{model.ViewCard, []string{"weekendId", "countryCode", "description"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.view), func(t *testing.T) {
			assert.Equal(t, tt.keys, r.ColumnMapping(tt.view).Keys())
		})
	}

	label, _ := r.ColumnMapping(model.ViewCard).Get("description")
	assert.Empty(t, label)
}

func TestResource_EditableFields(t *testing.T) {
	cat, err := Parse([]byte(calendarYAML))
	require.NoError(t, err)
	r, _ := cat.Lookup("/reference-book/calendar")

	assert.Equal(t, map[string]bool{
		"countryCode": true,
		"weekendDate": true,
		"description": true,
	}, r.EditableFields())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ``},
		{"unknown field", "resources:\n  - path: /a\n    table: a\n    colour: red\n"},
		{"no columns", "resources:\n  - path: /a\n    table: a\n"},
		{"bad table", "resources:\n  - path: /a\n    table: \"a; drop\"\n    columns:\n      - key: x\n"},
		{"bad column name", "resources:\n  - path: /a\n    table: a\n    columns:\n      - key: x\n        name: X-Y\n"},
		{"duplicate column", "resources:\n  - path: /a\n    table: a\n    columns:\n      - key: x\n      - key: x\n"},
		{"unknown view", "resources:\n  - path: /a\n    table: a\n    columns:\n      - key: x\n        views: [GRID]\n"},
		{"editable id", "resources:\n  - path: /a\n    table: a\n    editable: true\n    columns:\n      - key: id\n        editable: true\n"},
		{"editable without columns", "resources:\n  - path: /a\n    table: a\n    editable: true\n    columns:\n      - key: x\n"},
		{"duplicate path", "resources:\n  - path: /a\n    table: a\n    columns:\n      - key: x\n  - path: a/\n    table: b\n    columns:\n      - key: x\n"},
		{"id key on other column", "resources:\n  - path: /a\n    table: a\n    columns:\n      - key: id\n        name: code\n"},
		{"missing path", "resources:\n  - table: a\n    columns:\n      - key: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_SampleCatalog(t *testing.T) {
	cat, err := Load(filepath.Join("..", "..", "configs", "catalog.yaml"))
	require.NoError(t, err)

	for _, path := range []string{
		"/business-partner",
		"/business-partner/accounts",
		"/reference-book/currencies",
		"/reference-book/countries",
		"/reference-book/calendar",
	} {
		_, ok := cat.Lookup(path)
		assert.True(t, ok, path)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
