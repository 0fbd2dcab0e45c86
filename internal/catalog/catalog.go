// Package catalog describes the resources served by the table API: which table backs each
// resource path, which columns are exposed and how they may be queried or edited.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/Sapuran-Berperan/backoffice-tables/internal/model"
	"gopkg.in/yaml.v3"
)

const (
	defaultIDColumn      = "id"
	defaultDeletedColumn = "deleted"
)

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Column is one exposed column of a resource
type Column struct {
	// Key is the accessor key used on the wire
	Key string `yaml:"key"`
	// Name is the database column; defaults to Key
	Name       string           `yaml:"name"`
	Label      string           `yaml:"label"`
	Searchable bool             `yaml:"searchable"`
	Sortable   bool             `yaml:"sortable"`
	Filterable bool             `yaml:"filterable"`
	Editable   bool             `yaml:"editable"`
	Views      []model.ViewKind `yaml:"views"`
}

// InView reports whether the column is shown in the given view. A column without views is
// shown everywhere.
func (c Column) InView(view model.ViewKind) bool {
	if len(c.Views) == 0 {
		return true
	}
	for _, v := range c.Views {
		if v == view {
			return true
		}
	}
	return false
}

// Resource maps a resource path to a table
type Resource struct {
	Path     string `yaml:"path"`
	Table    string `yaml:"table"`
	IDColumn string `yaml:"idColumn"`
	// StatusColumn backs the OPEN/CLOSED client status; empty ignores the status
	StatusColumn string `yaml:"statusColumn"`
	// SoftDelete marks rows deleted instead of removing them
	SoftDelete    bool     `yaml:"softDelete"`
	DeletedColumn string   `yaml:"deletedColumn"`
	Editable      bool     `yaml:"editable"`
	Columns       []Column `yaml:"columns"`
}

// Column looks up a column by accessor key
func (r *Resource) Column(key string) (Column, bool) {
	for _, c := range r.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnMapping returns the accessor key to label mapping of the view, in catalog order
func (r *Resource) ColumnMapping(view model.ViewKind) *model.ColumnMapping {
	mapping := &model.ColumnMapping{}
	for _, c := range r.Columns {
		if c.InView(view) {
			mapping.Set(c.Key, c.Label)
		}
	}
	return mapping
}

// EditableFields returns the accessor keys accepted by create and update
func (r *Resource) EditableFields() map[string]bool {
	fields := make(map[string]bool)
	for _, c := range r.Columns {
		if c.Editable {
			fields[c.Key] = true
		}
	}
	return fields
}

// Catalog is the set of resources served by the API
type Catalog struct {
	Resources []*Resource `yaml:"resources"`

	byPath map[string]*Resource
}

// Lookup finds a resource by path
func (c *Catalog) Lookup(path string) (*Resource, bool) {
	r, ok := c.byPath[path]
	return r, ok
}

// Load reads and validates a catalog file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes and validates catalog YAML. Unknown fields are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cat Catalog
	if err := dec.Decode(&cat); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	if err := cat.init(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Catalog) init() error {
	if len(c.Resources) == 0 {
		return errors.New("catalog has no resources")
	}

	c.byPath = make(map[string]*Resource, len(c.Resources))
	for i, r := range c.Resources {
		if r == nil {
			return fmt.Errorf("resource %d is empty", i)
		}
		applyDefaults(r)
		if err := validateResource(r); err != nil {
			return fmt.Errorf("resource %q: %w", r.Path, err)
		}
		if _, dup := c.byPath[r.Path]; dup {
			return fmt.Errorf("resource %q: duplicate path", r.Path)
		}
		c.byPath[r.Path] = r
	}
	return nil
}

func applyDefaults(r *Resource) {
	r.Path = "/" + strings.Trim(strings.TrimSpace(r.Path), "/")
	if r.IDColumn == "" {
		r.IDColumn = defaultIDColumn
	}
	if r.SoftDelete && r.DeletedColumn == "" {
		r.DeletedColumn = defaultDeletedColumn
	}
	for i := range r.Columns {
		if r.Columns[i].Name == "" {
			r.Columns[i].Name = r.Columns[i].Key
		}
		for j, v := range r.Columns[i].Views {
			r.Columns[i].Views[j] = model.ViewKind(strings.ToUpper(string(v)))
		}
	}
}

func validateResource(r *Resource) error {
	if r.Path == "/" {
		return errors.New("path is required")
	}
	for _, ident := range []string{r.Table, r.IDColumn} {
		if !identPattern.MatchString(ident) {
			return fmt.Errorf("invalid identifier %q", ident)
		}
	}
	for _, ident := range []string{r.StatusColumn, r.DeletedColumn} {
		if ident != "" && !identPattern.MatchString(ident) {
			return fmt.Errorf("invalid identifier %q", ident)
		}
	}
	if len(r.Columns) == 0 {
		return errors.New("no columns")
	}

	keys := make(map[string]bool, len(r.Columns))
	editable := 0
	for _, c := range r.Columns {
		if c.Key == "" {
			return errors.New("column key is required")
		}
		if keys[c.Key] {
			return fmt.Errorf("duplicate column %q", c.Key)
		}
		keys[c.Key] = true

		if !identPattern.MatchString(c.Name) {
			return fmt.Errorf("column %q: invalid identifier %q", c.Key, c.Name)
		}
		if c.Key == model.RowIDKey && c.Name != r.IDColumn {
			return fmt.Errorf("column %q is reserved for the id column %q", c.Key, r.IDColumn)
		}
		for _, v := range c.Views {
			if _, ok := model.ParseViewKind(string(v)); v == "" || !ok {
				return fmt.Errorf("column %q: unknown view %q", c.Key, v)
			}
		}
		if c.Editable {
			if c.Name == r.IDColumn {
				return fmt.Errorf("column %q: id column cannot be editable", c.Key)
			}
			editable++
		}
	}
	if r.Editable && editable == 0 {
		return errors.New("editable resource has no editable columns")
	}
	return nil
}
