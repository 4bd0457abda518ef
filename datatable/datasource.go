package datatable

import "fmt"

// DataSource provides read-only access to tabular data.
// Implementations must be thread-safe for concurrent reads.
// All methods should return errors rather than panic.
type DataSource interface {
	// RowCount returns the total number of rows in the data source.
	RowCount() int

	// ColumnCount returns the total number of columns in the data source.
	ColumnCount() int

	// ColumnName returns the name of the column at the given index.
	// Returns ErrInvalidColumn if col is out of range.
	ColumnName(col int) (string, error)

	// ColumnType returns the data type of the column at the given index.
	// Returns ErrInvalidColumn if col is out of range.
	ColumnType(col int) (DataType, error)

	// Cell returns the value at the specified row and column.
	// Returns ErrInvalidRow if row is out of range.
	// Returns ErrInvalidColumn if col is out of range.
	Cell(row, col int) (Value, error)

	// Row returns all values for the specified row.
	// Returns ErrInvalidRow if row is out of range.
	Row(row int) ([]Value, error)

	// Metadata returns optional metadata about the data source.
	// Returns an empty Metadata map if no metadata is available.
	Metadata() Metadata
}

// ColumnsFromSource declares one column per source column, in source order,
// typed after the source schema.
func ColumnsFromSource(src DataSource) ([]Column, error) {
	if src == nil {
		return nil, ErrNoDataSource
	}
	cols := make([]Column, 0, src.ColumnCount())
	for i := 0; i < src.ColumnCount(); i++ {
		name, err := src.ColumnName(i)
		if err != nil {
			return nil, err
		}
		dt, err := src.ColumnType(i)
		if err != nil {
			return nil, err
		}
		cols = append(cols, Column{ID: name, Header: name, Type: dt})
	}
	return cols, nil
}

// RecordsFromSource materializes every source row as a Record keyed by
// column name. Null cells are stored as nil.
func RecordsFromSource(src DataSource) ([]Record, error) {
	if src == nil {
		return nil, ErrNoDataSource
	}
	names := make([]string, src.ColumnCount())
	for i := range names {
		name, err := src.ColumnName(i)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}

	records := make([]Record, src.RowCount())
	for r := range records {
		values, err := src.Row(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", r, err)
		}
		rec := make(Record, len(names))
		for c, name := range names {
			if c >= len(values) || values[c].IsNull {
				rec[name] = nil
				continue
			}
			rec[name] = values[c].Raw
		}
		records[r] = rec
	}
	return records, nil
}
