package console

import (
	"testing"

	"github.com/Sapuran-Berperan/backoffice-tables/internal/model"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/table"
	"github.com/stretchr/testify/assert"
)

func rowsN(n int) []model.Row {
	rows := make([]model.Row, n)
	for i := range rows {
		rows[i] = model.Row{"id": i}
	}
	return rows
}

func TestViewport_ScrollClamps(t *testing.T) {
	v := NewViewport(10)

	v.Scroll(25, 30)
	assert.Equal(t, 20, v.Offset())

	v.Scroll(-50, 30)
	assert.Equal(t, 0, v.Offset())

	v.Scroll(5, 4)
	assert.Equal(t, 0, v.Offset())
}

func TestViewport_WindowAndMetrics(t *testing.T) {
	v := NewViewport(10)
	rows := rowsN(30)

	v.ScrollToBottom(len(rows))
	window, first := v.Window(rows)
	assert.Equal(t, 20, first)
	assert.Len(t, window, 10)

	m := v.Metrics(len(rows))
	assert.Equal(t, float64(0), m.DistanceToBottom())
	assert.True(t, table.ShouldFetchMore(m, false, 30, 100))

	v.ScrollTo(0, 0)
	m = v.Metrics(len(rows))
	assert.Equal(t, float64(20*RowHeight), m.DistanceToBottom())
	assert.False(t, table.ShouldFetchMore(m, false, 30, 100))
}

func TestViewport_ShortListFitsWithoutScroll(t *testing.T) {
	v := NewViewport(15)
	rows := rowsN(3)

	window, first := v.Window(rows)
	assert.Equal(t, 0, first)
	assert.Len(t, window, 3)

	// the first page does not fill the viewport, so rendering asks for more
	assert.Less(t, v.Metrics(len(rows)).DistanceToBottom(), float64(table.FetchThreshold))
}

func TestViewport_ScrollToUsesRowHeight(t *testing.T) {
	v := NewViewport(5)
	v.ScrollTo(0, 3*RowHeight+10)
	assert.Equal(t, 3, v.Offset())
}
