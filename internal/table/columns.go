package table

import "github.com/Sapuran-Berperan/backoffice-tables/internal/model"

// ExcludedColumn is an identifier column that is never displayed
const ExcludedColumn = "weekendId"

// TranslateColumns converts a server column mapping into display column descriptors.
// A nil mapping yields no columns. A column without a label uses its key as header.
func TranslateColumns(mapping *model.ColumnMapping) []model.ColumnDescriptor {
	columns := []model.ColumnDescriptor{}
	if mapping == nil {
		return columns
	}

	mapping.Each(func(key, label string) {
		if key == ExcludedColumn {
			return
		}
		header := label
		if header == "" {
			header = key
		}
		columns = append(columns, model.ColumnDescriptor{
			AccessorKey: key,
			Header:      header,
		})
	})

	return columns
}
