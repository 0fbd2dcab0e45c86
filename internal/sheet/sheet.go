// Package sheet reads reference book rows from uploaded .xlsx workbooks.
//
// The first worksheet is read. Its first row names the columns, by accessor key or by
// label, and every following non-blank row becomes one import row. A column naming the
// record id turns its row into an update of that record.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/catalog"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/model"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/repository"
)

var (
	// ErrNoWorksheet is returned for workbooks without worksheets
	ErrNoWorksheet = errors.New("the workbook has no worksheets")
	// ErrNoRows is returned when the first worksheet has a header but no data rows
	ErrNoRows = errors.New("the worksheet has no data rows")
)

// HeaderError lists header cells that name no column of the resource
type HeaderError struct {
	Unknown []string
}

func (e *HeaderError) Error() string {
	return "unknown columns: " + strings.Join(e.Unknown, ", ")
}

// header cell targets
const (
	skipCell = iota
	valueCell
	idCell
)

type cellTarget struct {
	kind int
	key  string
}

// Read parses a workbook into import rows for res. Line numbers are 1-based worksheet rows.
func Read(r io.Reader, res *catalog.Resource) ([]repository.ImportRow, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	name := firstSheet(wb.GetSheetMap())
	if name == "" {
		return nil, ErrNoWorksheet
	}
	cells := wb.GetRows(name)
	if len(cells) == 0 {
		return nil, ErrNoRows
	}

	targets, err := mapHeader(res, cells[0])
	if err != nil {
		return nil, err
	}

	var rows []repository.ImportRow
	for i, line := range cells[1:] {
		row, ok, err := readRow(targets, line, i+2)
		if err != nil {
			return nil, err
		}
		if ok {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}

// firstSheet returns the worksheet with the lowest index
func firstSheet(sheets map[int]string) string {
	if len(sheets) == 0 {
		return ""
	}
	indexes := make([]int, 0, len(sheets))
	for idx := range sheets {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	return sheets[indexes[0]]
}

// mapHeader resolves header cells to columns. Read-only columns are skipped so an exported
// listing can be uploaded back as is.
func mapHeader(res *catalog.Resource, header []string) ([]cellTarget, error) {
	targets := make([]cellTarget, len(header))
	var unknown []string
	for i, cell := range header {
		title := strings.TrimSpace(cell)
		if title == "" {
			continue
		}
		if strings.EqualFold(title, model.RowIDKey) {
			targets[i] = cellTarget{kind: idCell}
			continue
		}
		c, ok := findColumn(res, title)
		switch {
		case !ok:
			unknown = append(unknown, title)
		case c.Name == res.IDColumn:
			targets[i] = cellTarget{kind: idCell}
		case c.Editable:
			targets[i] = cellTarget{kind: valueCell, key: c.Key}
		}
	}
	if len(unknown) > 0 {
		return nil, &HeaderError{Unknown: unknown}
	}
	return targets, nil
}

func findColumn(res *catalog.Resource, title string) (catalog.Column, bool) {
	if c, ok := res.Column(title); ok {
		return c, true
	}
	for _, c := range res.Columns {
		if strings.EqualFold(c.Key, title) || (c.Label != "" && strings.EqualFold(c.Label, title)) {
			return c, true
		}
	}
	return catalog.Column{}, false
}

// readRow converts one worksheet row. Blank rows are reported as not ok; blank cells
// leave their column out of the input.
func readRow(targets []cellTarget, line []string, lineNo int) (repository.ImportRow, bool, error) {
	row := repository.ImportRow{Line: lineNo, Input: model.RowInput{}}
	blank := true
	for i, cell := range line {
		if i >= len(targets) {
			break
		}
		value := strings.TrimSpace(cell)
		if value == "" {
			continue
		}
		blank = false

		switch targets[i].kind {
		case idCell:
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil || id <= 0 {
				return row, false, &repository.ImportError{
					Line: lineNo,
					Err:  &repository.ValidationError{Fields: map[string]string{model.RowIDKey: "invalid record id"}},
				}
			}
			row.ID = id
		case valueCell:
			row.Input[targets[i].key] = value
		}
	}
	return row, !blank, nil
}
