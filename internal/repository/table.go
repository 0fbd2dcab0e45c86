package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/catalog"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/model"
)

// PageRows contains one page of rows and the total matching row count
type PageRows struct {
	Rows       []model.Row
	TotalCount int64
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ListPage retrieves one page of a resource with search, filters, status and sorting.
// Unknown sort and filter columns are ignored.
func (s *Store) ListPage(ctx context.Context, res *catalog.Resource, req model.PageRequest) (*PageRows, error) {
	conditions := sq.And{}

	// Search over every searchable column
	if search := strings.TrimSpace(req.SearchText); search != "" {
		pattern := containsPattern(search)
		searchCondition := sq.Or{}
		for _, c := range res.Columns {
			if c.Searchable {
				searchCondition = append(searchCondition, sq.ILike{textExpr(c.Name): pattern})
			}
		}
		if len(searchCondition) > 0 {
			conditions = append(conditions, searchCondition)
		}
	}

	// Per-column filters
	for _, key := range req.SearchCriteria.Keys() {
		c, ok := res.Column(key)
		if !ok || !c.Filterable {
			continue
		}
		value, _ := req.SearchCriteria.Get(key)
		if cond := filterCondition(c, value); cond != nil {
			conditions = append(conditions, cond)
		}
	}

	if cond := statusCondition(res, req.Status); cond != nil {
		conditions = append(conditions, cond)
	}

	// Get total count first
	countQuery := psql.Select("COUNT(*)").From(res.Table)
	if len(conditions) > 0 {
		countQuery = countQuery.Where(conditions)
	}

	countSQL, countArgs, err := countQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to execute count query: %w", err)
	}

	// If no results, return early
	if totalCount == 0 {
		return &PageRows{Rows: []model.Row{}}, nil
	}

	names, keys := selectColumns(res)
	selectQuery := psql.Select(names...).From(res.Table)
	if len(conditions) > 0 {
		selectQuery = selectQuery.Where(conditions)
	}
	selectQuery = selectQuery.OrderBy(orderBy(res, req.SortCriteria)...)

	if req.Size > 0 {
		selectQuery = selectQuery.Limit(uint64(req.Size)).Offset(uint64(req.Page) * uint64(req.Size))
	}

	selectSQL, selectArgs, err := selectQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, selectSQL, selectArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute select query: %w", err)
	}
	defer rows.Close()

	result := []model.Row{}
	for rows.Next() {
		row, err := scanRow(rows, keys)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", res.Table, err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", res.Table, err)
	}

	return &PageRows{
		Rows:       result,
		TotalCount: totalCount,
	}, nil
}

// GetRow returns one row by id. Deleted rows of soft-deleting resources are not found.
func (s *Store) GetRow(ctx context.Context, res *catalog.Resource, id int64) (model.Row, error) {
	names, keys := selectColumns(res)
	query, args, err := psql.Select(names...).
		From(res.Table).
		Where(rowCondition(res, id)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	return s.queryRow(ctx, query, args, keys, "select "+res.Table)
}

// CreateRow inserts a row and returns it as stored
func (s *Store) CreateRow(ctx context.Context, res *catalog.Resource, in model.RowInput) (model.Row, error) {
	if errs := in.Validate(res.EditableFields()); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	names, keys := selectColumns(res)
	insert := psql.Insert(res.Table).Suffix("RETURNING " + strings.Join(names, ", "))
	var columns []string
	var values []interface{}
	for _, c := range res.Columns {
		if v, ok := in[c.Key]; ok {
			columns = append(columns, c.Name)
			values = append(values, v)
		}
	}
	insert = insert.Columns(columns...).Values(values...)

	query, args, err := insert.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	return s.queryRow(ctx, query, args, keys, "insert "+res.Table)
}

// UpdateRow updates the editable fields of a row and returns it as stored
func (s *Store) UpdateRow(ctx context.Context, res *catalog.Resource, id int64, in model.RowInput) (model.Row, error) {
	if errs := in.Validate(res.EditableFields()); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	names, keys := selectColumns(res)
	update := psql.Update(res.Table).
		Where(rowCondition(res, id)).
		Suffix("RETURNING " + strings.Join(names, ", "))
	for _, c := range res.Columns {
		if v, ok := in[c.Key]; ok {
			update = update.Set(c.Name, v)
		}
	}

	query, args, err := update.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	return s.queryRow(ctx, query, args, keys, "update "+res.Table)
}

// DeleteRow removes a row, or marks it deleted on soft-deleting resources
func (s *Store) DeleteRow(ctx context.Context, res *catalog.Resource, id int64) error {
	var (
		query string
		args  []interface{}
		err   error
	)
	if res.SoftDelete {
		query, args, err = psql.Update(res.Table).
			Set(res.DeletedColumn, true).
			Where(rowCondition(res, id)).
			ToSql()
	} else {
		query, args, err = psql.Delete(res.Table).
			Where(rowCondition(res, id)).
			ToSql()
	}
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translateError(err, "delete "+res.Table)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) queryRow(ctx context.Context, query string, args []interface{}, keys []string, op string) (model.Row, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, op)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, translateError(err, op)
		}
		return nil, ErrNotFound
	}
	row, err := scanRow(rows, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	return row, nil
}

// selectColumns returns the database columns to select and the accessor key of each.
// The id column is always selected under model.RowIDKey so rows can be addressed, even
// when the catalog lists it under another key.
func selectColumns(res *catalog.Resource) (names, keys []string) {
	hasID := false
	for _, c := range res.Columns {
		names = append(names, c.Name)
		keys = append(keys, c.Key)
		if c.Name == res.IDColumn && c.Key == model.RowIDKey {
			hasID = true
		}
	}
	if !hasID {
		names = append(names, res.IDColumn)
		keys = append(keys, model.RowIDKey)
	}
	return names, keys
}

func rowCondition(res *catalog.Resource, id int64) sq.Sqlizer {
	cond := sq.And{sq.Eq{res.IDColumn: id}}
	if res.SoftDelete {
		cond = append(cond, sq.Eq{res.DeletedColumn: false})
	}
	return cond
}

func statusCondition(res *catalog.Resource, status model.ClientStatus) sq.Sqlizer {
	switch status {
	case model.StatusNotDeleted:
		if res.SoftDelete {
			return sq.Eq{res.DeletedColumn: false}
		}
	case model.StatusOpen, model.StatusClosed:
		if res.StatusColumn != "" {
			return sq.Eq{res.StatusColumn: string(status)}
		}
	}
	return nil
}

// filterCondition matches strings as case-insensitive substrings and numbers exactly
func filterCondition(c catalog.Column, value any) sq.Sqlizer {
	switch v := value.(type) {
	case string:
		if v == "" {
			return nil
		}
		return sq.ILike{textExpr(c.Name): containsPattern(v)}
	case json.Number:
		return sq.Eq{c.Name: v.String()}
	case nil, bool:
		return nil
	}

	switch reflect.ValueOf(value).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return sq.Eq{c.Name: value}
	}
	return nil
}

// orderBy follows the sort criteria order and breaks ties by id
func orderBy(res *catalog.Resource, criteria model.SortCriteria) []string {
	var clauses []string
	sortedByID := false
	for _, key := range criteria.Keys() {
		c, ok := res.Column(key)
		if !ok || !c.Sortable {
			continue
		}
		dir, _ := criteria.Get(key)
		if !dir.Valid() {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s %s", c.Name, dir))
		if c.Name == res.IDColumn {
			sortedByID = true
		}
	}
	if !sortedByID {
		clauses = append(clauses, res.IDColumn+" ASC")
	}
	return clauses
}

// likeEscaper escapes LIKE wildcards with PostgreSQL's default escape character
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern matches text literally anywhere in a value
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

func textExpr(column string) string {
	return "CAST(" + column + " AS TEXT)"
}

func scanRow(rows *sql.Rows, keys []string) (model.Row, error) {
	values := make([]interface{}, len(keys))
	ptrs := make([]interface{}, len(keys))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	row := make(model.Row, len(keys))
	for i, key := range keys {
		// NUMERIC and text columns arrive as raw bytes
		if b, ok := values[i].([]byte); ok {
			row[key] = string(b)
			continue
		}
		row[key] = values[i]
	}
	return row, nil
}
