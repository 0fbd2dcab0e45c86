package handler

import (
	"strings"

	"github.com/Sapuran-Berperan/backoffice-tables/internal/catalog"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/model"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	minPageSize     = 1
	// maxPage keeps the row offset far from integer overflow
	maxPage = 1_000_000
)

// NormalizePageRequest clamps paging and drops criteria the resource does not allow
func NormalizePageRequest(res *catalog.Resource, req model.PageRequest) model.PageRequest {
	out := model.PageRequest{
		Resource:   res.Path,
		Page:       req.Page,
		Size:       req.Size,
		SearchText: strings.TrimSpace(req.SearchText),
		Status:     model.StatusAll,
	}

	// Parse page
	if out.Page < 0 {
		out.Page = 0
	}
	if out.Page > maxPage {
		out.Page = maxPage
	}

	// Parse size
	if out.Size < minPageSize {
		out.Size = defaultPageSize
	}
	if out.Size > maxPageSize {
		out.Size = maxPageSize
	}

	// Keep sortable columns with a known direction, in request order
	req.SortCriteria.Each(func(key string, dir model.SortDirection) {
		c, ok := res.Column(key)
		if !ok || !c.Sortable {
			return
		}
		dir = model.SortDirection(strings.ToUpper(string(dir)))
		if dir.Valid() {
			out.SortCriteria.Set(key, dir)
		}
	})

	// Keep filterable columns with string or number values
	req.SearchCriteria.Each(func(key string, value any) {
		c, ok := res.Column(key)
		if !ok || !c.Filterable {
			return
		}
		switch value.(type) {
		case string, float64:
			out.SearchCriteria.Set(key, value)
		}
	})

	// Parse status
	if status, ok := model.ParseClientStatus(string(req.Status)); ok {
		out.Status = status
	}

	return out
}

// CalculateTotalPages calculates total pages from total items and page size
func CalculateTotalPages(totalItems int64, size int) int {
	if totalItems == 0 || size <= 0 {
		return 0
	}
	pages := int(totalItems) / size
	if int(totalItems)%size > 0 {
		pages++
	}
	return pages
}
