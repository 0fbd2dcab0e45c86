package console

import (
	"sync"

	"github.com/Sapuran-Berperan/backoffice-tables/internal/model"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/table"
)

// RowHeight is the height of one rendered row in scroll units
const RowHeight = 35

var _ table.ScrollContainer = (*Viewport)(nil)

// Viewport is a window of Height rows over the loaded rows. It reports scroll metrics
// the way a browser container would, one row being RowHeight units tall.
type Viewport struct {
	mu     sync.Mutex
	height int
	offset int
}

// NewViewport creates a viewport showing height rows
func NewViewport(height int) *Viewport {
	if height < 1 {
		height = 1
	}
	return &Viewport{height: height}
}

// ScrollTo moves the top of the viewport to y scroll units
func (v *Viewport) ScrollTo(_, y int) {
	v.mu.Lock()
	v.offset = max(y/RowHeight, 0)
	v.mu.Unlock()
}

// Scroll moves the viewport by n rows, clamped to the loaded rows
func (v *Viewport) Scroll(n, total int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offset = clamp(v.offset+n, 0, max(total-v.height, 0))
}

// ScrollToBottom shows the last loaded rows
func (v *Viewport) ScrollToBottom(total int) {
	v.mu.Lock()
	v.offset = max(total-v.height, 0)
	v.mu.Unlock()
}

// Offset is the index of the first visible row
func (v *Viewport) Offset() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset
}

// Height is the number of visible rows
func (v *Viewport) Height() int {
	return v.height
}

// Window returns the visible rows and the index of the first one
func (v *Viewport) Window(rows []model.Row) ([]model.Row, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offset = clamp(v.offset, 0, max(len(rows)-v.height, 0))
	end := min(v.offset+v.height, len(rows))
	return rows[v.offset:end], v.offset
}

// Metrics reports the scroll position over total loaded rows
func (v *Viewport) Metrics(total int) table.ScrollMetrics {
	v.mu.Lock()
	defer v.mu.Unlock()
	return table.ScrollMetrics{
		ScrollHeight: float64(total * RowHeight),
		ScrollTop:    float64(v.offset * RowHeight),
		ClientHeight: float64(v.height * RowHeight),
	}
}

func clamp(n, lo, hi int) int {
	return min(max(n, lo), hi)
}
