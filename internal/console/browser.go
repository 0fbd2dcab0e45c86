// Package console is a terminal front end for the table API: it renders the rows of one
// resource, loads more as the viewport nears the bottom and edits reference book rows.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/Sapuran-Berperan/backoffice-tables/internal/client"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/model"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/table"
)

// maxRenderFetches bounds how many pages one render may pull in to fill the viewport
const maxRenderFetches = 5

// Records reads single records and edits reference books
type Records interface {
	GetRow(ctx context.Context, resource string, id int64) (model.Row, error)
	Columns(ctx context.Context, resource string, view model.ViewKind) (*model.ColumnMapping, error)
	CreateRow(ctx context.Context, resource string, in model.RowInput) (model.Row, error)
	UpdateRow(ctx context.Context, resource string, id int64, in model.RowInput) (model.Row, error)
	DeleteRow(ctx context.Context, resource string, id int64) error
	UploadFile(ctx context.Context, resource, name string, content io.Reader) (*client.UploadResult, error)
}

// Messenger publishes user-visible notices
type Messenger interface {
	Error(title, message string)
	Success(title, message string)
}

// ErrQuit is returned by Execute for the quit command
var ErrQuit = errors.New("quit")

// Browser executes console commands against one table controller
type Browser struct {
	resource string
	ctrl     *table.Controller
	records  Records
	notices  Messenger
	view     *Viewport
	out      io.Writer

	filters []table.ColumnFilter
}

// NewBrowser creates a Browser and binds its viewport to the controller
func NewBrowser(resource string, ctrl *table.Controller, records Records, notices Messenger, view *Viewport, out io.Writer) *Browser {
	ctrl.Bind(view)
	return &Browser{
		resource: resource,
		ctrl:     ctrl,
		records:  records,
		notices:  notices,
		view:     view,
		out:      out,
	}
}

// Start loads the columns and the first page, then renders
func (b *Browser) Start(ctx context.Context) error {
	// Column metadata failures were published; rows still render with no columns
	_, _ = b.ctrl.LoadColumns(ctx)
	if err := b.ctrl.Load(ctx); err != nil && !isPublished(err) {
		return err
	}
	return b.Render(ctx)
}

// Render draws the visible rows, then lets the controller fetch more when the rendered
// rows leave the viewport short of the bottom
func (b *Browser) Render(ctx context.Context) error {
	for i := 0; i < maxRenderFetches; i++ {
		rows := b.ctrl.Rows()
		fetched, err := b.ctrl.AfterRender(ctx, b.view.Metrics(len(rows)))
		if err != nil && !isPublished(err) {
			return err
		}
		if !fetched {
			break
		}
	}

	rows := b.ctrl.Rows()
	window, first := b.view.Window(rows)
	RenderRows(b.out, b.ctrl.Columns(), window, first, b.ctrl.State())
	return nil
}

// Execute runs one command line. It returns ErrQuit for the quit command.
func (b *Browser) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch cmd {
	case "quit", "exit":
		return ErrQuit
	case "help":
		printHelp(b.out)
		return nil
	case "columns":
		RenderColumns(b.out, b.ctrl.Columns())
		return nil
	case "show":
		return b.show(ctx, args)
	case "search":
		b.ctrl.SetSearchText(strings.Join(args, " "))
		b.ctrl.Flush()
	case "filter":
		err = b.filter(args)
	case "sort":
		err = b.sort(ctx, args)
	case "status":
		err = b.status(ctx, args)
	case "down", "up":
		err = b.scroll(ctx, cmd, args)
	case "more":
		err = b.more(ctx)
	case "top":
		b.view.ScrollTo(0, 0)
	case "refresh":
		err = b.ctrl.OnManualRefresh(ctx)
	case "create":
		err = b.create(ctx, args)
	case "update":
		err = b.update(ctx, args)
	case "delete":
		err = b.delete(ctx, args)
	case "upload":
		err = b.upload(ctx, args)
	default:
		return fmt.Errorf("unknown command %q (type help for commands)", cmd)
	}
	if err != nil && !isPublished(err) {
		return err
	}
	return b.Render(ctx)
}

func (b *Browser) filter(args []string) error {
	if len(args) == 1 && args[0] == "clear" {
		b.filters = nil
	} else {
		assignments, err := parseAssignments(args)
		if err != nil {
			return err
		}
		for _, a := range assignments {
			b.filters = setFilter(b.filters, a.key, a.value)
		}
	}
	b.ctrl.SetColumnFilters(b.filters)
	b.ctrl.Flush()
	return nil
}

func (b *Browser) sort(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: sort <column>[:asc|:desc] ... | sort clear")
	}
	var sorting []table.SortingState
	if !(len(args) == 1 && args[0] == "clear") {
		for _, arg := range args {
			id, dir, _ := strings.Cut(arg, ":")
			switch strings.ToLower(dir) {
			case "", "asc":
				sorting = append(sorting, table.SortingState{ID: id})
			case "desc":
				sorting = append(sorting, table.SortingState{ID: id, Desc: true})
			default:
				return fmt.Errorf("invalid sort direction %q", dir)
			}
		}
	}
	return b.ctrl.SetSorting(ctx, sorting)
}

func (b *Browser) status(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: status ALL|OPEN|CLOSED")
	}
	status, ok := model.ParseClientStatus(args[0])
	if !ok {
		return fmt.Errorf("invalid status %q", args[0])
	}
	return b.ctrl.SetClientStatus(ctx, status)
}

func (b *Browser) scroll(ctx context.Context, dir string, args []string) error {
	n := b.view.Height()
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return fmt.Errorf("invalid row count %q", args[0])
		}
		n = v
	}
	if dir == "up" {
		n = -n
	}

	total := len(b.ctrl.Rows())
	b.view.Scroll(n, total)
	_, err := b.ctrl.OnScroll(ctx, b.view.Metrics(total))
	return err
}

func (b *Browser) more(ctx context.Context) error {
	total := len(b.ctrl.Rows())
	b.view.ScrollToBottom(total)
	_, err := b.ctrl.OnScroll(ctx, b.view.Metrics(total))
	return err
}

func (b *Browser) create(ctx context.Context, args []string) error {
	in, err := parseRowInput(args)
	if err != nil {
		return err
	}
	if _, err := b.records.CreateRow(ctx, b.resource, in); err != nil {
		b.notifyError(err)
		return nil
	}
	b.notices.Success("Success", "Record created")
	return b.ctrl.OnManualRefresh(ctx)
}

func (b *Browser) update(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: update <id> column=value ...")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}
	in, err := parseRowInput(args[1:])
	if err != nil {
		return err
	}
	if _, err := b.records.UpdateRow(ctx, b.resource, id, in); err != nil {
		b.notifyError(err)
		return nil
	}
	b.notices.Success("Success", "Record updated")
	return b.ctrl.OnManualRefresh(ctx)
}

func (b *Browser) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}
	if err := b.records.DeleteRow(ctx, b.resource, id); err != nil {
		b.notifyError(err)
		return nil
	}
	b.notices.Success("Success", "Record deleted")
	return b.ctrl.OnManualRefresh(ctx)
}

// show prints one record with the CARD view columns
func (b *Browser) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: show <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}

	row, err := b.records.GetRow(ctx, b.resource, id)
	if err != nil {
		b.notifyError(err)
		return nil
	}
	mapping, err := b.records.Columns(ctx, b.resource, model.ViewCard)
	if err != nil {
		b.notifyError(err)
		return nil
	}
	RenderRecord(b.out, table.TranslateColumns(mapping), row)
	return nil
}

// upload sends a workbook and refreshes the listing
func (b *Browser) upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: upload <file.xlsx>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	res, err := b.records.UploadFile(ctx, b.resource, f.Name(), f)
	if err != nil {
		b.notifyUploadError(err)
		return nil
	}
	b.notices.Success("Success", fmt.Sprintf("Reference book updated: %d created, %d updated", res.Created, res.Updated))
	return b.ctrl.OnManualRefresh(ctx)
}

// notifyUploadError lists the server's per-row details under its message
func (b *Browser) notifyUploadError(err error) {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Details) == 0 {
		b.notifyError(err)
		return
	}
	keys := make([]string, 0, len(apiErr.Details))
	for k := range apiErr.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := []string{apiErr.Message}
	for _, k := range keys {
		lines = append(lines, k+": "+apiErr.Details[k])
	}
	b.notices.Error("Upload failed", strings.Join(lines, "\n"))
}

func (b *Browser) notifyError(err error) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		b.notices.Error("Error", apiErr.Message)
		return
	}
	b.notices.Error("Error", err.Error())
}

// isPublished reports errors the coordinator already surfaced as notifications, or that
// only mean nothing needed doing
func isPublished(err error) bool {
	var fetchErr *table.FetchError
	return errors.As(err, &fetchErr) ||
		errors.Is(err, table.ErrStaleResponse) ||
		errors.Is(err, table.ErrNoMorePages) ||
		errors.Is(err, table.ErrRefreshInFlight)
}

func setFilter(filters []table.ColumnFilter, id string, value any) []table.ColumnFilter {
	for i := range filters {
		if filters[i].ID == id {
			if value == nil {
				return append(filters[:i:i], filters[i+1:]...)
			}
			filters[i].Value = value
			return filters
		}
	}
	if value == nil {
		return filters
	}
	return append(filters, table.ColumnFilter{ID: id, Value: value})
}

type assignment struct {
	key   string
	value any
}

// parseAssignments parses key=value arguments. Numeric values become numbers, an empty
// value becomes nil.
func parseAssignments(args []string) ([]assignment, error) {
	out := make([]assignment, 0, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected column=value, got %q", arg)
		}
		out = append(out, assignment{key: key, value: parseValue(raw)})
	}
	return out, nil
}

func parseRowInput(args []string) (model.RowInput, error) {
	if len(args) == 0 {
		return nil, errors.New("expected column=value arguments")
	}
	assignments, err := parseAssignments(args)
	if err != nil {
		return nil, err
	}
	in := make(model.RowInput, len(assignments))
	for _, a := range assignments {
		in[a.key] = a.value
	}
	return in, nil
}

func parseValue(raw string) any {
	switch {
	case raw == "":
		return nil
	case raw == "true" || raw == "false":
		return raw == "true"
	}
	// NaN and infinities stay text; they cannot be sent as JSON numbers
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return raw
}

func printHelp(w io.Writer) {
	help := `
Commands:
  search <text>                  Search all searchable columns
  filter <col>=<value> ...       Filter columns (empty value removes), filter clear
  sort <col>[:asc|:desc] ...     Sort by columns in order, sort clear
  status ALL|OPEN|CLOSED         Select client status
  down [n] / up [n]              Scroll n rows (default one screen)
  more                           Scroll to the bottom, loading the next page
  top                            Scroll to the top
  refresh                        Reload the first page
  columns                        Show columns
  show <id>                      Show one record with its card fields
  create <col>=<value> ...       Create a reference book row
  update <id> <col>=<value> ...  Update a reference book row
  delete <id>                    Delete a reference book row
  upload <file.xlsx>             Import reference book rows from a workbook
  quit                           Exit
`
	_, _ = fmt.Fprintln(w, help)
}
