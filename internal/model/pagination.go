package model

import (
	"strings"
)

// SortDirection is the direction of a single sort key
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// Valid reports whether d is ASC or DESC
func (d SortDirection) Valid() bool {
	return d == SortAsc || d == SortDesc
}

// SortCriteria maps column id to direction. Key order is sort precedence, primary key first.
type SortCriteria = OrderedMap[SortDirection]

// FilterCriteria maps column id to a string or numeric filter value
type FilterCriteria = OrderedMap[any]

// ClientStatus selects which records a listing returns
type ClientStatus string

const (
	StatusAll        ClientStatus = "ALL"
	StatusOpen       ClientStatus = "OPEN"
	StatusClosed     ClientStatus = "CLOSED"
	StatusNotDeleted ClientStatus = "NOT_DELETED"
)

// ParseClientStatus parses a user supplied status, case-insensitively
func ParseClientStatus(s string) (ClientStatus, bool) {
	switch cs := ClientStatus(strings.ToUpper(strings.TrimSpace(s))); cs {
	case StatusAll, StatusOpen, StatusClosed, StatusNotDeleted:
		return cs, true
	}
	return "", false
}

// StatusFor returns the status a listing of resource is requested with.
// Reference books always list their non-deleted rows.
func StatusFor(resource string, selected ClientStatus) ClientStatus {
	if strings.Contains(resource, "/reference-book") {
		return StatusNotDeleted
	}
	if selected == "" {
		return StatusOpen
	}
	return selected
}

// ViewKind tags which column set the metadata endpoint returns
type ViewKind string

const (
	ViewTable     ViewKind = "TABLE"
	ViewCard      ViewKind = "CARD"
	ViewMainTable ViewKind = "MAIN_TABLE"
)

// ParseViewKind parses a view kind, defaulting to TABLE when s is empty
func ParseViewKind(s string) (ViewKind, bool) {
	if s == "" {
		return ViewTable, true
	}
	switch v := ViewKind(strings.ToUpper(s)); v {
	case ViewTable, ViewCard, ViewMainTable:
		return v, true
	}
	return "", false
}

// PageRequest is the body of a page fetch. Resource is carried out of band in the URL.
type PageRequest struct {
	Resource       string         `json:"-"`
	Page           int            `json:"page"`
	Size           int            `json:"size"`
	SearchText     string         `json:"searchText"`
	SortCriteria   SortCriteria   `json:"sortCriteria"`
	SearchCriteria FilterCriteria `json:"searchCriteria"`
	Status         ClientStatus   `json:"status"`
}

// WithPage returns a copy of r requesting page
func (r PageRequest) WithPage(page int) PageRequest {
	r.Page = page
	return r
}

// Row is a single server-defined record keyed by column id
type Row = map[string]any

// RowIDKey is the row key that always carries the record id used by update, delete and detail calls
const RowIDKey = "id"

// PageMeta contains pagination metadata for a page of rows
type PageMeta struct {
	Size          int   `json:"size"`
	Number        int   `json:"number"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// PageResult is one page of a listing
type PageResult struct {
	Content []Row    `json:"content"`
	Page    PageMeta `json:"page"`
}

// ColumnMapping maps raw column keys to localized header labels, in display order
type ColumnMapping = OrderedMap[string]

// ColumnDescriptor describes one displayed column
type ColumnDescriptor struct {
	AccessorKey string `json:"accessorKey"`
	Header      string `json:"header"`
}
