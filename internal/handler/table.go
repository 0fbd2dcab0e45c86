package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Sapuran-Berperan/backoffice-tables/internal/catalog"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/model"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/repository"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/sheet"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// TableStore runs catalog-driven table queries
type TableStore interface {
	ListPage(ctx context.Context, res *catalog.Resource, req model.PageRequest) (*repository.PageRows, error)
	CreateRow(ctx context.Context, res *catalog.Resource, in model.RowInput) (model.Row, error)
	UpdateRow(ctx context.Context, res *catalog.Resource, id int64, in model.RowInput) (model.Row, error)
	DeleteRow(ctx context.Context, res *catalog.Resource, id int64) error
	GetRow(ctx context.Context, res *catalog.Resource, id int64) (model.Row, error)
	ImportRows(ctx context.Context, res *catalog.Resource, rows []repository.ImportRow) (*repository.ImportResult, error)
}

// maxUploadSize bounds reference book uploads
const maxUploadSize = 10 << 20

// TableHandler serves page, column metadata and row endpoints for every catalog resource
type TableHandler struct {
	store   TableStore
	catalog *catalog.Catalog
	log     logrus.FieldLogger
}

// NewTableHandler creates a new TableHandler
func NewTableHandler(store TableStore, cat *catalog.Catalog, log logrus.FieldLogger) *TableHandler {
	return &TableHandler{
		store:   store,
		catalog: cat,
		log:     log,
	}
}

// Routes mounts the endpoints of every resource on r
func (h *TableHandler) Routes(r chi.Router) {
	for _, res := range h.catalog.Resources {
		r.Post(res.Path+"/page", h.Page(res))
		r.Get(res.Path+"/columns", h.Columns(res))
		r.Get(res.Path+"/{id}", h.Show(res))

		if res.Editable {
			r.Post(res.Path+"/", h.Create(res))
			r.Post(res.Path+"/upload-file", h.Upload(res))
			r.Put(res.Path+"/{id}", h.Update(res))
			r.Delete(res.Path+"/{id}", h.Delete(res))
		}
	}
}

// Page returns one page of rows as {content, page}
func (h *TableHandler) Page(res *catalog.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// An empty body requests the first page
		var req model.PageRequest
		if !decodeBody(w, r, &req, true) {
			return
		}
		req = NormalizePageRequest(res, req)

		rows, err := h.store.ListPage(r.Context(), res, req)
		if err != nil {
			h.log.WithError(err).WithField("resource", res.Path).Error("list page failed")
			respondError(w, http.StatusInternalServerError, "Failed to fetch rows", nil)
			return
		}

		respondJSON(w, http.StatusOK, model.PageResult{
			Content: rows.Rows,
			Page: model.PageMeta{
				Size:          req.Size,
				Number:        req.Page,
				TotalElements: rows.TotalCount,
				TotalPages:    CalculateTotalPages(rows.TotalCount, req.Size),
			},
		})
	}
}

// Columns returns the ordered accessor key to label mapping of a view
func (h *TableHandler) Columns(res *catalog.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := model.ParseViewKind(r.URL.Query().Get("type"))
		if !ok {
			respondError(w, http.StatusBadRequest, "Invalid view type", nil)
			return
		}
		respondJSON(w, http.StatusOK, res.ColumnMapping(view))
	}
}

// Show returns one record as a bare row object
func (h *TableHandler) Show(res *catalog.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseRowID(w, r)
		if !ok {
			return
		}

		row, err := h.store.GetRow(r.Context(), res, id)
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Record not found", nil)
			return
		}
		if err != nil {
			h.log.WithError(err).WithField("resource", res.Path).Error("get row failed")
			respondError(w, http.StatusInternalServerError, "Failed to fetch the record", nil)
			return
		}

		respondJSON(w, http.StatusOK, row)
	}
}

// Upload imports the rows of an .xlsx workbook sent as the multipart field "file"
func (h *TableHandler) Upload(res *catalog.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		file, _, err := r.FormFile("file")
		if err != nil {
			respondError(w, http.StatusBadRequest, "File is required", nil)
			return
		}
		defer file.Close()

		rows, err := sheet.Read(file, res)
		if err != nil {
			h.respondUploadError(w, res, err)
			return
		}

		result, err := h.store.ImportRows(r.Context(), res, rows)
		if err != nil {
			h.respondUploadError(w, res, err)
			return
		}

		h.log.WithFields(logrus.Fields{
			"resource": res.Path,
			"created":  result.Created,
			"updated":  result.Updated,
		}).Info("reference book imported")
		respondSuccess(w, http.StatusOK, "Reference book updated", result)
	}
}

// Create inserts a row
func (h *TableHandler) Create(res *catalog.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in model.RowInput
		if !decodeBody(w, r, &in, false) {
			return
		}

		row, err := h.store.CreateRow(r.Context(), res, in)
		if err != nil {
			h.respondStoreError(w, res, err)
			return
		}

		respondSuccess(w, http.StatusCreated, "Record created", row)
	}
}

// Update changes the editable fields of a row
func (h *TableHandler) Update(res *catalog.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseRowID(w, r)
		if !ok {
			return
		}

		var in model.RowInput
		if !decodeBody(w, r, &in, false) {
			return
		}

		row, err := h.store.UpdateRow(r.Context(), res, id, in)
		if err != nil {
			h.respondStoreError(w, res, err)
			return
		}

		respondSuccess(w, http.StatusOK, "Record updated", row)
	}
}

// Delete removes a row
func (h *TableHandler) Delete(res *catalog.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseRowID(w, r)
		if !ok {
			return
		}

		if err := h.store.DeleteRow(r.Context(), res, id); err != nil {
			h.respondStoreError(w, res, err)
			return
		}

		respondSuccess(w, http.StatusOK, "Record deleted", nil)
	}
}

func parseRowID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid record ID", nil)
		return 0, false
	}
	return id, true
}

// respondUploadError reports unreadable files as 400 and failed rows with their line number
func (h *TableHandler) respondUploadError(w http.ResponseWriter, res *catalog.Resource, err error) {
	var importErr *repository.ImportError
	if !errors.As(err, &importErr) {
		if errors.Is(err, repository.ErrNoTransactions) {
			h.log.WithError(err).WithField("resource", res.Path).Error("import failed")
			respondError(w, http.StatusInternalServerError, "Failed to save the record", nil)
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid file", map[string]string{"file": err.Error()})
		return
	}

	status, message, fields, expected := storeFailure(importErr.Err)
	if !expected {
		h.log.WithError(err).WithField("resource", res.Path).Error("import failed")
	}
	row := fmt.Sprintf("row %d", importErr.Line)
	details := map[string]string{row: message}
	if len(fields) > 0 {
		details = make(map[string]string, len(fields))
		for field, msg := range fields {
			details[row+" "+field] = msg
		}
	}
	respondError(w, status, message, details)
}

func (h *TableHandler) respondStoreError(w http.ResponseWriter, res *catalog.Resource, err error) {
	status, message, details, expected := storeFailure(err)
	if !expected {
		h.log.WithError(err).WithField("resource", res.Path).Error("row mutation failed")
	}
	respondError(w, status, message, details)
}
