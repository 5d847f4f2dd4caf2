// Package validate implements the layered constraint validators the
// executor runs before every INSERT and UPDATE (spec §4.6). Each layer
// fails fast on first violation.
package validate

import (
	"fmt"

	"ledgerlite/internal/index"
	"ledgerlite/internal/types"
	"ledgerlite/internal/value"
)

// ConstraintError reports a primary-key or unique-column violation, or
// a NULL value in a primary-key slot.
type ConstraintError struct {
	Table   string
	Column  string
	Value   any
	Message string
}

func (e *ConstraintError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("table %q: %s", e.Table, e.Message)
	}
	return fmt.Sprintf("table %q, column %q: %s", e.Table, e.Column, e.Message)
}

// ArityError reports an INSERT whose value count does not match its
// table's column count.
type ArityError struct {
	Table    string
	Expected int
	Got      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("table %q: expected %d values, got %d", e.Table, e.Expected, e.Got)
}

// RowArity validates that values has exactly one entry per column and
// that every non-NULL value is assignable to its column's type; a NULL
// primary-key value is rejected outright (spec §4.6 step 1).
func RowArity(values []any, table *types.Table) error {
	if len(values) != len(table.Columns) {
		return &ArityError{Table: table.Name, Expected: len(table.Columns), Got: len(values)}
	}
	for i, col := range table.Columns {
		v := values[i]
		if v == nil && col.IsPrimaryKey {
			return &ConstraintError{Table: table.Name, Column: col.Name, Message: "primary key cannot be NULL"}
		}
		if v != nil && !value.Assignable(v, col.DataType) {
			return &value.TypeError{Column: col.Name, DataType: col.DataType, Value: v}
		}
	}
	return nil
}

// PrimaryKey validates that row's primary-key value is non-NULL and
// absent from idx's primary-key index for table.Name (spec §4.6 step 2).
func PrimaryKey(table *types.Table, row types.Row, idx *index.Manager) error {
	pkCol := table.PrimaryKeyColumn()
	pkVal := row[pkCol.Name]
	if pkVal == nil {
		return &ConstraintError{Table: table.Name, Column: pkCol.Name, Message: "primary key cannot be NULL"}
	}
	if idx.PrimaryKeyExists(table.Name, pkVal) {
		return &ConstraintError{Table: table.Name, Column: pkCol.Name, Value: pkVal, Message: "primary key value already exists"}
	}
	return nil
}

// Unique validates that, for every non-PK UNIQUE column with a
// non-NULL value in row, that value is absent from idx's unique index
// (spec §4.6 step 3).
func Unique(table *types.Table, row types.Row, idx *index.Manager) error {
	for _, col := range table.Columns {
		if !col.IsUnique || col.IsPrimaryKey {
			continue
		}
		val := row[col.Name]
		if val == nil {
			continue
		}
		if idx.UniqueValueExists(table.Name, col.Name, val) {
			return &ConstraintError{Table: table.Name, Column: col.Name, Value: val, Message: "unique constraint violated"}
		}
	}
	return nil
}

// ForUpdate validates an UPDATE's post-mutation row. An unchanged
// primary key is not re-checked against its own slot; each unique
// column whose value actually changed is re-checked, also skipping
// its own slot (spec §4.6's UPDATE validation path).
func ForUpdate(table *types.Table, oldRow, newRow types.Row, idx *index.Manager) error {
	pkCol := table.PrimaryKeyColumn()
	oldPK, newPK := oldRow[pkCol.Name], newRow[pkCol.Name]
	if !value.Equal(oldPK, newPK) {
		if newPK == nil {
			return &ConstraintError{Table: table.Name, Column: pkCol.Name, Message: "primary key cannot be NULL"}
		}
		if idx.PrimaryKeyExists(table.Name, newPK) {
			return &ConstraintError{Table: table.Name, Column: pkCol.Name, Value: newPK, Message: "primary key value already exists"}
		}
	}

	for _, col := range table.Columns {
		if !col.IsUnique || col.IsPrimaryKey {
			continue
		}
		oldVal, newVal := oldRow[col.Name], newRow[col.Name]
		if value.Equal(oldVal, newVal) || newVal == nil {
			continue
		}
		if idx.UniqueValueExists(table.Name, col.Name, newVal) {
			return &ConstraintError{Table: table.Name, Column: col.Name, Value: newVal, Message: "unique constraint violated"}
		}
	}
	return nil
}
