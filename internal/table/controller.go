package table

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Sapuran-Berperan/backoffice-tables/internal/model"
	"github.com/sirupsen/logrus"
)

// DefaultPageSize is the page size used when a SessionConfig leaves it unset
const DefaultPageSize = 30

// ColumnSource loads the column mapping of a resource for a view
type ColumnSource interface {
	Columns(ctx context.Context, resource string, view model.ViewKind) (*model.ColumnMapping, error)
}

// SessionConfig is the static configuration of one table instance
type SessionConfig struct {
	Resource      string
	PageSize      int
	View          model.ViewKind
	Status        model.ClientStatus
	DebounceDelay time.Duration
}

func (cfg SessionConfig) withDefaults() SessionConfig {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.View == "" {
		cfg.View = model.ViewTable
	}
	if cfg.Status == "" {
		cfg.Status = model.StatusOpen
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultDebounceDelay
	}
	return cfg
}

// Controller holds the input state of one table and drives its Coordinator.
// Sorting and status changes apply immediately; search text and column filter edits
// apply once they have been stable for the debounce delay.
type Controller struct {
	ctx      context.Context
	cfg      SessionConfig
	coord    *Coordinator
	columns  ColumnSource
	notifier Notifier
	log      logrus.FieldLogger

	mu         sync.Mutex
	searchText string
	sorting    []SortingState
	filters    []ColumnFilter
	status     model.ClientStatus
	cols       []model.ColumnDescriptor
	scroll     ScrollContainer

	search *Debouncer[string]
	filter *Debouncer[[]ColumnFilter]
}

// NewController creates a Controller. ctx bounds fetches started by debounced input.
func NewController(ctx context.Context, cfg SessionConfig, fetcher PageFetcher, columns ColumnSource, notifier Notifier, log logrus.FieldLogger) *Controller {
	cfg = cfg.withDefaults()
	coord := NewCoordinator(fetcher, notifier, log)

	c := &Controller{
		ctx:      ctx,
		cfg:      cfg,
		coord:    coord,
		columns:  columns,
		notifier: coord.notifier,
		log:      coord.log.WithField("resource", cfg.Resource),
		status:   cfg.Status,
		cols:     []model.ColumnDescriptor{},
	}
	c.search = NewDebouncer(cfg.DebounceDelay, c.applySearchText)
	c.filter = NewDebouncer(cfg.DebounceDelay, c.applyFilters)
	return c
}

// Coordinator returns the underlying coordinator
func (c *Controller) Coordinator() *Coordinator {
	return c.coord
}

// Bind sets the container rows are rendered into
func (c *Controller) Bind(container ScrollContainer) {
	c.mu.Lock()
	c.scroll = container
	c.mu.Unlock()
	c.coord.Bind(container)
}

// Request builds the page 0 request for the current input state
func (c *Controller) Request() model.PageRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requestLocked()
}

func (c *Controller) requestLocked() model.PageRequest {
	return model.PageRequest{
		Resource:       c.cfg.Resource,
		Page:           0,
		Size:           c.cfg.PageSize,
		SearchText:     c.searchText,
		SortCriteria:   ToSortCriteria(c.sorting),
		SearchCriteria: ToFilterCriteria(c.filters),
		Status:         model.StatusFor(c.cfg.Resource, c.status),
	}
}

// Load fetches the first page for the current input state
func (c *Controller) Load(ctx context.Context) error {
	return c.apply(ctx, false)
}

// LoadColumns fetches and translates the column metadata. A failure is published and
// leaves the previous columns in place.
func (c *Controller) LoadColumns(ctx context.Context) ([]model.ColumnDescriptor, error) {
	mapping, err := c.columns.Columns(ctx, c.cfg.Resource, c.cfg.View)
	if err != nil {
		c.log.WithError(err).Warn("failed to load columns")
		c.notifier.Error("Error", err.Error())
		return c.Columns(), err
	}

	cols := TranslateColumns(mapping)
	if len(cols) == 0 {
		c.log.Debug("column metadata is empty")
	}

	c.mu.Lock()
	c.cols = cols
	c.mu.Unlock()
	return cols, nil
}

// Columns returns the translated columns
func (c *Controller) Columns() []model.ColumnDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	cols := make([]model.ColumnDescriptor, len(c.cols))
	copy(cols, c.cols)
	return cols
}

// SetSearchText schedules a global search text change
func (c *Controller) SetSearchText(text string) {
	c.search.Call(text)
}

// SetColumnFilters schedules a column filter change
func (c *Controller) SetColumnFilters(filters []ColumnFilter) {
	cp := make([]ColumnFilter, len(filters))
	copy(cp, filters)
	c.filter.Call(cp)
}

// SetSorting applies a sort change and loads the first page of the new ordering
func (c *Controller) SetSorting(ctx context.Context, sorting []SortingState) error {
	cp := make([]SortingState, len(sorting))
	copy(cp, sorting)

	c.mu.Lock()
	c.sorting = cp
	c.mu.Unlock()
	return c.apply(ctx, true)
}

// SetClientStatus applies a status change and loads the first page
func (c *Controller) SetClientStatus(ctx context.Context, status model.ClientStatus) error {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
	return c.apply(ctx, false)
}

// Flush applies pending debounced input immediately
func (c *Controller) Flush() {
	c.search.Flush()
	c.filter.Flush()
}

// OnScroll is the scroll event handler of the bound container
func (c *Controller) OnScroll(ctx context.Context, m ScrollMetrics) (bool, error) {
	return c.coord.TriggerFetchMore(ctx, m)
}

// AfterRender checks once more after rows were rendered, for first pages that do not
// fill the viewport
func (c *Controller) AfterRender(ctx context.Context, m ScrollMetrics) (bool, error) {
	return c.coord.TriggerFetchMore(ctx, m)
}

// OnManualRefresh reloads the first page and drops the pages loaded by scrolling
func (c *Controller) OnManualRefresh(ctx context.Context) error {
	return c.coord.ForceRefresh(ctx)
}

// Rows returns the merged rows of the active session
func (c *Controller) Rows() []model.Row {
	return c.coord.Rows()
}

// State returns the state of the active session
func (c *Controller) State() State {
	return c.coord.State()
}

// Close stops the debouncers; pending input is dropped
func (c *Controller) Close() {
	c.search.Stop()
	c.filter.Stop()
}

func (c *Controller) applySearchText(text string) {
	c.mu.Lock()
	c.searchText = text
	c.mu.Unlock()
	c.applyAsync(true)
}

func (c *Controller) applyFilters(filters []ColumnFilter) {
	c.mu.Lock()
	c.filters = filters
	c.mu.Unlock()
	c.applyAsync(false)
}

// applyAsync applies input settled by a debouncer. Fetch failures were already
// published by the coordinator.
func (c *Controller) applyAsync(scrollTop bool) {
	if err := c.apply(c.ctx, scrollTop); err != nil && !errors.Is(err, ErrStaleResponse) {
		c.log.WithError(err).Debug("debounced input fetch failed")
	}
}

// apply starts a new session when the input state changed the request fingerprint
func (c *Controller) apply(ctx context.Context, scrollTop bool) error {
	req := c.Request()
	fp, err := Fingerprint(req)
	if err != nil {
		return err
	}
	if fp == c.coord.ActiveFingerprint() {
		if st := c.coord.State(); st.Pages > 0 || st.IsLoading {
			return nil
		}
	}

	if scrollTop {
		c.mu.Lock()
		container := c.scroll
		c.mu.Unlock()
		if container != nil {
			container.ScrollTo(0, 0)
		}
	}

	_, err = c.coord.Fetch(ctx, req)
	if errors.Is(err, ErrStaleResponse) {
		return nil
	}
	return err
}
