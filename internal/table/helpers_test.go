package table

import (
	"context"
	"sync"

	"github.com/Sapuran-Berperan/backoffice-tables/internal/model"
)

// fakeFetcher serves pages of an in-memory dataset
type fakeFetcher struct {
	mu       sync.Mutex
	rows     []model.Row
	requests []model.PageRequest
	err      error
	gate     chan struct{}
}

func newFakeFetcher(n int) *fakeFetcher {
	return &fakeFetcher{rows: makeRows(n)}
}

func makeRows(n int) []model.Row {
	rows := make([]model.Row, n)
	for i := range rows {
		rows[i] = model.Row{"id": i + 1}
	}
	return rows
}

func (f *fakeFetcher) FetchPage(ctx context.Context, req model.PageRequest) (*model.PageResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	gate, err, rows := f.gate, f.err, f.rows
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	start := req.Page * req.Size
	if start > len(rows) {
		start = len(rows)
	}
	end := start + req.Size
	if end > len(rows) {
		end = len(rows)
	}
	content := make([]model.Row, end-start)
	copy(content, rows[start:end])

	return &model.PageResult{
		Content: content,
		Page: model.PageMeta{
			Size:          req.Size,
			Number:        req.Page,
			TotalElements: int64(len(rows)),
		},
	}, nil
}

func (f *fakeFetcher) setGate(gate chan struct{}) {
	f.mu.Lock()
	f.gate = gate
	f.mu.Unlock()
}

func (f *fakeFetcher) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeFetcher) setRows(rows []model.Row) {
	f.mu.Lock()
	f.rows = rows
	f.mu.Unlock()
}

func (f *fakeFetcher) calls() []model.PageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	reqs := make([]model.PageRequest, len(f.requests))
	copy(reqs, f.requests)
	return reqs
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Error(_, message string) {
	n.mu.Lock()
	n.messages = append(n.messages, message)
	n.mu.Unlock()
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type recordingContainer struct {
	mu    sync.Mutex
	reset int
}

func (c *recordingContainer) ScrollTo(x, y int) {
	if x == 0 && y == 0 {
		c.mu.Lock()
		c.reset++
		c.mu.Unlock()
	}
}

func (c *recordingContainer) resets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reset
}

func ids(rows []model.Row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r["id"].(int)
	}
	return out
}

// nearBottom is a scroll position within the fetch threshold
var nearBottom = ScrollMetrics{ScrollHeight: 1000, ScrollTop: 450, ClientHeight: 400}

// farFromBottom is a scroll position outside the fetch threshold
var farFromBottom = ScrollMetrics{ScrollHeight: 5000, ScrollTop: 0, ClientHeight: 400}
