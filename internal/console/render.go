package console

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/Sapuran-Berperan/backoffice-tables/internal/model"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/table"
	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderRows writes the visible rows as a table followed by a status line.
// The record id is shown next to the row number unless a column already carries it.
func RenderRows(w io.Writer, cols []model.ColumnDescriptor, rows []model.Row, first int, st table.State) {
	if len(cols) == 0 {
		_, _ = fmt.Fprintln(w, "(no columns)")
	} else if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
	} else {
		t := newTableWriter(w)
		showID := !hasColumn(cols, model.RowIDKey)

		header := prettytable.Row{"#"}
		if showID {
			header = append(header, "ID")
		}
		for _, c := range cols {
			header = append(header, c.Header)
		}
		t.AppendHeader(header)

		for i, r := range rows {
			row := prettytable.Row{first + i + 1}
			if showID {
				row = append(row, formatValue(r[model.RowIDKey]))
			}
			for _, c := range cols {
				row = append(row, formatValue(r[c.AccessorKey]))
			}
			t.AppendRow(row)
		}
		t.Render()
	}

	_, _ = fmt.Fprintln(w, statusLine(first, len(rows), st))
}

// RenderRecord prints one record as field and value pairs. Without card columns every
// field of the record is listed by key.
func RenderRecord(w io.Writer, cols []model.ColumnDescriptor, row model.Row) {
	if len(cols) == 0 {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			cols = append(cols, model.ColumnDescriptor{AccessorKey: k, Header: k})
		}
	}

	t := newTableWriter(w)
	t.AppendHeader(prettytable.Row{"Field", "Value"})
	for _, c := range cols {
		t.AppendRow(prettytable.Row{c.Header, formatValue(row[c.AccessorKey])})
	}
	t.Render()
}

// RenderColumns lists the translated columns
func RenderColumns(w io.Writer, cols []model.ColumnDescriptor) {
	if len(cols) == 0 {
		_, _ = fmt.Fprintln(w, "(no columns)")
		return
	}
	t := newTableWriter(w)
	t.AppendHeader(prettytable.Row{"Accessor key", "Header"})
	for _, c := range cols {
		t.AppendRow(prettytable.Row{c.AccessorKey, c.Header})
	}
	t.Render()
}

func hasColumn(cols []model.ColumnDescriptor, key string) bool {
	for _, c := range cols {
		if c.AccessorKey == key {
			return true
		}
	}
	return false
}

// newTableWriter keeps header labels as given instead of upper-casing them
func newTableWriter(w io.Writer) prettytable.Writer {
	t := prettytable.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(prettytable.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	return t
}

func statusLine(first, visible int, st table.State) string {
	var b strings.Builder
	if visible > 0 {
		fmt.Fprintf(&b, "rows %d-%d", first+1, first+visible)
	} else {
		b.WriteString("rows 0")
	}
	fmt.Fprintf(&b, " | fetched %d of %d", st.TotalFetched, st.TotalDBRowCount)

	var flags []string
	if st.IsLoading {
		flags = append(flags, "loading")
	}
	if st.IsFetchingNext {
		flags = append(flags, "fetching more")
	}
	if st.IsRefetching {
		flags = append(flags, "refreshing")
	}
	if !st.HasMore && st.Pages > 0 {
		flags = append(flags, "end")
	}
	if len(flags) > 0 {
		b.WriteString(" | " + strings.Join(flags, ", "))
	}
	return b.String()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", val)
	}
}
