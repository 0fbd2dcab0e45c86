package sheet

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/catalog"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/model"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
resources:
  - path: /reference-book/calendar
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
        editable: true
      - key: weekendDate
        name: weekend_date
        label: Date
        editable: true
      - key: createdAt
        name: created_at
        label: Created
`

func calendar(t *testing.T) *catalog.Resource {
	t.Helper()
	cat, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)
	res, ok := cat.Lookup("/reference-book/calendar")
	require.True(t, ok)
	return res
}

// workbook builds an .xlsx file with one row per slice
func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	wb := excelize.NewFile()
	for i, row := range rows {
		row := row
		wb.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &row)
	}
	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestRead(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"ID", "Country", "weekendDate", "Created"},
		[]interface{}{"", "BY", "2024-01-06", "2023-12-01"},
		[]interface{}{"", "", "", ""},
		[]interface{}{"42", "PL", "2024-01-07", ""},
	)

	rows, err := Read(buf, calendar(t))
	require.NoError(t, err)
	assert.Equal(t, []repository.ImportRow{
		{Line: 2, Input: model.RowInput{"countryCode": "BY", "weekendDate": "2024-01-06"}},
		{Line: 4, ID: 42, Input: model.RowInput{"countryCode": "PL", "weekendDate": "2024-01-07"}},
	}, rows)
}

func TestRead_UnknownHeader(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"Country", "Colour", "Size"},
		[]interface{}{"BY", "red", "L"},
	)

	_, err := Read(buf, calendar(t))

	var headerErr *HeaderError
	require.ErrorAs(t, err, &headerErr)
	assert.Equal(t, []string{"Colour", "Size"}, headerErr.Unknown)
}

func TestRead_InvalidID(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"weekendId", "Country"},
		[]interface{}{"7", "BY"},
		[]interface{}{"seven", "PL"},
	)

	_, err := Read(buf, calendar(t))

	var importErr *repository.ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, 3, importErr.Line)
}

func TestRead_HeaderOnly(t *testing.T) {
	buf := workbook(t, []interface{}{"Country", "Date"})

	_, err := Read(buf, calendar(t))
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestRead_NotAWorkbook(t *testing.T) {
	_, err := Read(strings.NewReader("code,name\nUSD,Dollar\n"), calendar(t))
	assert.Error(t, err)
}
