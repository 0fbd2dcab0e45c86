package table

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Sapuran-Berperan/backoffice-tables/internal/model"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrStaleResponse is returned when a response arrives for a session that is no longer
	// active or was refreshed meanwhile. The response is dropped.
	ErrStaleResponse = errors.New("table: stale response discarded")
	// ErrNoMorePages is returned when the last fetched page was empty
	ErrNoMorePages = errors.New("table: no more pages")
	// ErrNoSession is returned by refresh when nothing was fetched yet
	ErrNoSession = errors.New("table: no active session")
	// ErrRefreshInFlight is returned when a page fetch is requested during a refresh
	ErrRefreshInFlight = errors.New("table: refresh in progress")
)

// FetchError is a failed page fetch
type FetchError struct {
	Resource string
	Page     int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s page %d: %v", e.Resource, e.Page, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// PageFetcher loads one page of a listing
type PageFetcher interface {
	FetchPage(ctx context.Context, req model.PageRequest) (*model.PageResult, error)
}

// Notifier receives user-visible failure messages.
// Error is called with the Coordinator's lock held and must not block or call back into it.
type Notifier interface {
	Error(title, message string)
}

// ScrollContainer is the scrollable element rows are rendered into
type ScrollContainer interface {
	ScrollTo(x, y int)
}

// State is a snapshot of the active session for the rendering layer
type State struct {
	SessionID       uuid.UUID
	Pages           int
	TotalFetched    int
	TotalDBRowCount int64
	IsLoading       bool
	IsFetchingNext  bool
	IsRefetching    bool
	HasMore         bool
	Err             error
}

// Coordinator fetches pages, keeps one session per request fingerprint and merges
// pages in index order. Only one session, the one for the latest fingerprint, is active.
type Coordinator struct {
	fetcher  PageFetcher
	notifier Notifier
	log      logrus.FieldLogger
	group    singleflight.Group

	mu     sync.Mutex
	active *Session
	scroll ScrollContainer
}

// NewCoordinator creates a Coordinator. notifier and log may be nil.
func NewCoordinator(fetcher PageFetcher, notifier Notifier, log logrus.FieldLogger) *Coordinator {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Coordinator{
		fetcher:  fetcher,
		notifier: notifier,
		log:      log,
	}
}

// Bind sets the container that is scrolled back to the top after a refresh
func (c *Coordinator) Bind(container ScrollContainer) {
	c.mu.Lock()
	c.scroll = container
	c.mu.Unlock()
}

// ActiveFingerprint returns the fingerprint of the active session, or "" if none
func (c *Coordinator) ActiveFingerprint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return ""
	}
	return c.active.fingerprint
}

// Fetch loads page 0 for a new fingerprint, or the next unfetched page of the active
// session when req has the active fingerprint. req.Page is ignored.
// Concurrent calls for the same page share a single request.
func (c *Coordinator) Fetch(ctx context.Context, req model.PageRequest) (*model.PageResult, error) {
	fp, err := Fingerprint(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint request: %w", err)
	}

	c.mu.Lock()
	s := c.activate(fp, req)
	if s.refetching {
		c.mu.Unlock()
		return nil, ErrRefreshInFlight
	}
	if !s.hasMore() {
		c.mu.Unlock()
		return nil, ErrNoMorePages
	}
	page := len(s.pages)
	epoch := s.epoch
	s.inflight++
	s.lastErr = nil
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		s.inflight--
		c.mu.Unlock()
	}()

	return c.fetchPage(ctx, s, epoch, page)
}

// fetchPage loads page of s through the singleflight group. A caller that computed
// page before an earlier flight merged it gets the merged page without a new request.
func (c *Coordinator) fetchPage(ctx context.Context, s *Session, epoch, page int) (*model.PageResult, error) {
	key := fmt.Sprintf("%s/%d/%d", s.id, epoch, page)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if res, ok := c.merged(s, epoch, page); ok {
			return res, nil
		}
		res, err := c.fetcher.FetchPage(ctx, s.request.WithPage(page))
		return c.merge(s, epoch, page, res, err)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.PageResult), nil
}

// merged returns page of s if it is already cached for epoch
func (c *Coordinator) merged(s *Session, epoch, page int) (*model.PageResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != s || s.epoch != epoch || page >= len(s.pages) {
		return nil, false
	}
	return s.pages[page], true
}

// merge appends a fetched page to s unless the response is stale
func (c *Coordinator) merge(s *Session, epoch, page int, res *model.PageResult, fetchErr error) (*model.PageResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.log.WithFields(logrus.Fields{
		"session":  s.id,
		"resource": s.request.Resource,
		"page":     page,
	})

	if c.active != s || s.epoch != epoch || len(s.pages) != page {
		log.Debug("discarding stale page response")
		return nil, ErrStaleResponse
	}

	if fetchErr != nil {
		return nil, c.fail(s, page, fetchErr)
	}
	if res == nil {
		res = &model.PageResult{}
	}

	s.pages = append(s.pages, res)
	s.pageParams = append(s.pageParams, page)
	log.WithField("rows", len(res.Content)).Debug("page merged")
	return res, nil
}

// fail records and publishes a fetch failure. Cached pages are left as they were.
func (c *Coordinator) fail(s *Session, page int, err error) error {
	fe := &FetchError{Resource: s.request.Resource, Page: page, Err: err}
	s.lastErr = fe
	c.log.WithError(err).WithFields(logrus.Fields{
		"session":  s.id,
		"resource": s.request.Resource,
		"page":     page,
	}).Warn("page fetch failed")
	c.notifier.Error("Error", err.Error())
	return fe
}

// activate returns the session for fp, replacing the active one if fp differs.
// Callers must hold c.mu.
func (c *Coordinator) activate(fp string, req model.PageRequest) *Session {
	if c.active != nil && c.active.fingerprint == fp {
		return c.active
	}

	s := newSession(fp, req)
	if c.active != nil {
		c.log.WithFields(logrus.Fields{
			"session":  c.active.id,
			"resource": c.active.request.Resource,
			"pages":    len(c.active.pages),
		}).Debug("session discarded")
	}
	c.active = s
	c.log.WithFields(logrus.Fields{
		"session":  s.id,
		"resource": req.Resource,
	}).Debug("session started")
	return s
}

// TriggerFetchMore fetches the next page of the active session when the scroll position
// is near the bottom and more rows exist. It reports whether a page was merged.
func (c *Coordinator) TriggerFetchMore(ctx context.Context, m ScrollMetrics) (bool, error) {
	c.mu.Lock()
	s := c.active
	if s == nil || s.inflight > 0 ||
		!ShouldFetchMore(m, s.refetching, s.totalFetched(), s.totalDBRowCount()) {
		c.mu.Unlock()
		return false, nil
	}
	req := s.request
	c.mu.Unlock()

	_, err := c.Fetch(ctx, req)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNoMorePages), errors.Is(err, ErrRefreshInFlight):
		return false, nil
	default:
		return false, err
	}
}

// ForceRefresh reloads page 0 of the active session. On success the session holds only
// the fresh first page, whatever was loaded before, and the bound container is scrolled
// to the top. A failed refresh keeps the cached pages.
func (c *Coordinator) ForceRefresh(ctx context.Context) error {
	c.mu.Lock()
	s := c.active
	if s == nil {
		c.mu.Unlock()
		return ErrNoSession
	}
	s.refetching = true
	c.mu.Unlock()

	_, err, _ := c.group.Do(s.id.String()+"/refresh", func() (interface{}, error) {
		res, err := c.fetcher.FetchPage(ctx, s.request.WithPage(0))

		c.mu.Lock()
		defer c.mu.Unlock()
		s.refetching = false

		if c.active != s {
			return nil, ErrStaleResponse
		}
		if err != nil {
			return nil, c.fail(s, 0, err)
		}
		if res == nil {
			res = &model.PageResult{}
		}

		if cached := len(s.pages); cached > 1 {
			c.log.WithFields(logrus.Fields{
				"session":  s.id,
				"resource": s.request.Resource,
				"dropped":  cached - 1,
			}).Info("refresh truncated session to first page")
		}
		s.epoch++
		s.lastErr = nil
		s.pages = []*model.PageResult{res}
		s.pageParams = []int{0}
		return res, nil
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	container := c.scroll
	c.mu.Unlock()
	if container != nil {
		container.ScrollTo(0, 0)
	}
	return nil
}

// Rows returns the rows of all pages of the active session, in page order
func (c *Coordinator) Rows() []model.Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return []model.Row{}
	}
	return c.active.rows()
}

// PageParams returns the page indexes cached by the active session
func (c *Coordinator) PageParams() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil
	}
	params := make([]int, len(c.active.pageParams))
	copy(params, c.active.pageParams)
	return params
}

// State returns a snapshot of the active session
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.active
	if s == nil {
		return State{}
	}
	return State{
		SessionID:       s.id,
		Pages:           len(s.pages),
		TotalFetched:    s.totalFetched(),
		TotalDBRowCount: s.totalDBRowCount(),
		IsLoading:       s.inflight > 0 && len(s.pages) == 0,
		IsFetchingNext:  s.inflight > 0 && len(s.pages) > 0,
		IsRefetching:    s.refetching,
		HasMore:         s.hasMore(),
		Err:             s.lastErr,
	}
}

type nopNotifier struct{}

func (nopNotifier) Error(string, string) {}
