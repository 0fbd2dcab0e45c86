package table

import (
	"encoding/json"
	"time"

	"github.com/Sapuran-Berperan/backoffice-tables/internal/model"
	"github.com/google/uuid"
)

// Session holds the pages fetched for one request fingerprint
type Session struct {
	id          uuid.UUID
	fingerprint string
	request     model.PageRequest
	createdAt   time.Time

	pages      []*model.PageResult
	pageParams []int

	// inflight counts callers waiting on a page fetch of this session
	inflight   int
	refetching bool
	// epoch changes when a refresh replaces the cached pages, so page fetches
	// issued before the refresh cannot be merged after it
	epoch   int
	lastErr error
}

func newSession(fingerprint string, req model.PageRequest) *Session {
	return &Session{
		id:          uuid.New(),
		fingerprint: fingerprint,
		request:     req.WithPage(0),
		createdAt:   time.Now(),
	}
}

func (s *Session) totalFetched() int {
	n := 0
	for _, p := range s.pages {
		n += len(p.Content)
	}
	return n
}

// totalDBRowCount is the row count reported with the first page
func (s *Session) totalDBRowCount() int64 {
	if len(s.pages) == 0 {
		return 0
	}
	return s.pages[0].Page.TotalElements
}

func (s *Session) hasMore() bool {
	if len(s.pages) == 0 {
		return true
	}
	_, more := NextPageCursor(s.pages[len(s.pages)-1], len(s.pages))
	return more
}

func (s *Session) rows() []model.Row {
	rows := make([]model.Row, 0, s.totalFetched())
	for _, p := range s.pages {
		rows = append(rows, p.Content...)
	}
	return rows
}

// Fingerprint identifies the logical dataset a request reads: every request field
// except the page index. Sort and filter key order is part of the identity.
func Fingerprint(req model.PageRequest) (string, error) {
	key := struct {
		Resource       string               `json:"resource"`
		Size           int                  `json:"size"`
		SearchText     string               `json:"searchText"`
		SortCriteria   model.SortCriteria   `json:"sortCriteria"`
		SearchCriteria model.FilterCriteria `json:"searchCriteria"`
		Status         model.ClientStatus   `json:"status"`
	}{
		Resource:       req.Resource,
		Size:           req.Size,
		SearchText:     req.SearchText,
		SortCriteria:   req.SortCriteria,
		SearchCriteria: req.SearchCriteria,
		Status:         req.Status,
	}

	b, err := json.Marshal(key)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// NextPageCursor returns the index of the page to fetch after lastPage, or false
// when lastPage is empty and the listing is exhausted.
func NextPageCursor(lastPage *model.PageResult, pagesSoFar int) (int, bool) {
	if lastPage == nil || len(lastPage.Content) == 0 {
		return 0, false
	}
	return pagesSoFar, true
}

// ScrollMetrics describes the scroll position of the container showing the rows
type ScrollMetrics struct {
	ScrollHeight float64
	ScrollTop    float64
	ClientHeight float64
}

// DistanceToBottom is how far the viewport bottom is from the end of the content
func (m ScrollMetrics) DistanceToBottom() float64 {
	return m.ScrollHeight - m.ScrollTop - m.ClientHeight
}

// FetchThreshold is the distance to the bottom, in pixels, under which more rows are fetched
const FetchThreshold = 200

// ShouldFetchMore reports whether the viewport is close enough to the bottom to load the
// next page, no refresh is running and the server reported more rows than were fetched.
func ShouldFetchMore(m ScrollMetrics, isRefetching bool, totalFetched int, totalDBRowCount int64) bool {
	return m.DistanceToBottom() < FetchThreshold &&
		!isRefetching &&
		int64(totalFetched) < totalDBRowCount
}
