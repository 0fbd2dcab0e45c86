package table

import (
	"math"

	"github.com/Sapuran-Berperan/backoffice-tables/internal/model"
)

// SortingState is one entry of the grid's sort state, primary key first
type SortingState struct {
	ID   string
	Desc bool
}

// ColumnFilter is one entry of the grid's column filter state
type ColumnFilter struct {
	ID    string
	Value any
}

// ToSortCriteria reduces the grid sort state to request sort criteria.
// If an id repeats, the last direction wins and the id keeps its first position.
func ToSortCriteria(state []SortingState) model.SortCriteria {
	var criteria model.SortCriteria
	for _, s := range state {
		dir := model.SortAsc
		if s.Desc {
			dir = model.SortDesc
		}
		criteria.Set(s.ID, dir)
	}
	return criteria
}

// ToFilterCriteria reduces the grid filter state to request filter criteria.
// Only string and finite numeric values are kept; on repeated ids the last kept value wins.
func ToFilterCriteria(state []ColumnFilter) model.FilterCriteria {
	var criteria model.FilterCriteria
	for _, f := range state {
		if isScalar(f.Value) {
			criteria.Set(f.ID, f.Value)
		}
	}
	return criteria
}

func isScalar(v any) bool {
	switch n := v.(type) {
	case string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return isFinite(float64(n))
	case float64:
		return isFinite(n)
	}
	return false
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
