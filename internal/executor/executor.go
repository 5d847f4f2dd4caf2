// Package executor dispatches parsed ast.Statement values against the
// schema registry, ledger store, and index manager, implementing the
// read/validate/append/index pipeline of spec §4.7.
package executor

import (
	"fmt"

	"ledgerlite/internal/ast"
	"ledgerlite/internal/index"
	"ledgerlite/internal/ledger"
	"ledgerlite/internal/schema"
	"ledgerlite/internal/types"
	"ledgerlite/internal/validate"
	"ledgerlite/internal/value"
)

// Result is what Execute returns: either a status string (CREATE,
// INSERT, UPDATE, DELETE) or a slice of result rows (SELECT).
type Result struct {
	Status string
	Rows   []types.Row
}

// Executor evaluates AST nodes against the three collaborators that
// make up engine state.
type Executor struct {
	schema *schema.Manager
	ledger *ledger.Store
	index  *index.Manager
}

// New builds an Executor over the given schema registry, ledger store,
// and index manager.
func New(s *schema.Manager, l *ledger.Store, idx *index.Manager) *Executor {
	return &Executor{schema: s, ledger: l, index: idx}
}

// Execute dispatches stmt to the handler for its concrete type. The
// type switch is exhaustive over ast.Statement's closed set of five
// variants, the idiomatic substitute for isinstance dispatch (spec §9).
func (ex *Executor) Execute(stmt ast.Statement) (Result, error) {
	switch s := stmt.(type) {
	case *ast.CreateTable:
		return ex.executeCreateTable(s)
	case *ast.Insert:
		return ex.executeInsert(s)
	case *ast.Select:
		return ex.executeSelect(s)
	case *ast.Update:
		return ex.executeUpdate(s)
	case *ast.Delete:
		return ex.executeDelete(s)
	default:
		return Result{}, fmt.Errorf("unknown statement type %T", stmt)
	}
}

// executeCreateTable registers the table schema. It never writes a
// ledger entry: schema is session-scoped, and the ledger records row
// data only (spec §4.7.1).
func (ex *Executor) executeCreateTable(stmt *ast.CreateTable) (Result, error) {
	columns := make([]*types.Column, len(stmt.Columns))
	for i, c := range stmt.Columns {
		columns[i] = &types.Column{
			Name:         c.Name,
			DataType:     c.DataType,
			IsPrimaryKey: c.IsPrimaryKey,
			IsUnique:     c.IsUnique,
		}
	}
	table, err := types.NewTable(stmt.Table, columns)
	if err != nil {
		return Result{}, err
	}
	if err := ex.schema.Add(table); err != nil {
		return Result{}, err
	}
	return Result{Status: fmt.Sprintf("Table %q created successfully", stmt.Table)}, nil
}

func (ex *Executor) executeInsert(stmt *ast.Insert) (Result, error) {
	table, err := ex.schema.Get(stmt.Table)
	if err != nil {
		return Result{}, err
	}

	if err := validate.RowArity(stmt.Values, table); err != nil {
		return Result{}, err
	}
	row, err := value.BuildRow(stmt.Values, table)
	if err != nil {
		return Result{}, err
	}

	if err := validate.PrimaryKey(table, row, ex.index); err != nil {
		return Result{}, err
	}
	if err := validate.Unique(table, row, ex.index); err != nil {
		return Result{}, err
	}

	entry := ex.ledger.CreateEntry(stmt.Table, types.OpInsert, nil, row)
	if err := ex.ledger.Append(entry); err != nil {
		return Result{}, err
	}
	ex.index.AddRow(table, row)

	return Result{Status: fmt.Sprintf("1 row inserted into %q", stmt.Table)}, nil
}

func (ex *Executor) reconstruct(table *types.Table) ([]types.Row, error) {
	return ex.ledger.Reconstruct(table.Name, table.PrimaryKeyColumn().Name)
}

func (ex *Executor) executeSelect(stmt *ast.Select) (Result, error) {
	table, err := ex.schema.Get(stmt.Table)
	if err != nil {
		return Result{}, err
	}
	rows, err := ex.reconstruct(table)
	if err != nil {
		return Result{}, err
	}

	for _, join := range stmt.Joins {
		joinTable, err := ex.schema.Get(join.Table)
		if err != nil {
			return Result{}, err
		}
		joinRows, err := ex.reconstruct(joinTable)
		if err != nil {
			return Result{}, err
		}
		rows = equiJoin(rows, joinRows, join.Left.Name, join.Right.Name)
	}

	if stmt.Where != nil {
		rows = filterRows(rows, stmt.Where)
	}

	if stmt.Star {
		return Result{Rows: rows}, nil
	}
	return Result{Rows: project(rows, stmt.Columns)}, nil
}

// equiJoin performs the inner equi-join A ⋈ B ON leftCol = rightCol,
// merging matched rows with right-wins semantics on name collisions
// (spec §4.7.3, §8 property 6). Column lookup is by unqualified name
// regardless of whether the condition used a qualified spelling.
func equiJoin(left, right []types.Row, leftCol, rightCol string) []types.Row {
	var out []types.Row
	for _, l := range left {
		for _, r := range right {
			if !value.Equal(l[leftCol], r[rightCol]) {
				continue
			}
			merged := make(types.Row, len(l)+len(r))
			for k, v := range l {
				merged[k] = v
			}
			for k, v := range r {
				merged[k] = v
			}
			out = append(out, merged)
		}
	}
	return out
}

// project returns a new row per input row, populated per spec
// §4.7.3's asymmetric qualified-column rule: each requested column is
// looked up by its unqualified name, and stored in the output row
// under its (possibly qualified) requested key.
func project(rows []types.Row, columns []ast.SelectColumn) []types.Row {
	out := make([]types.Row, len(rows))
	for i, row := range rows {
		projected := make(types.Row, len(columns))
		for _, col := range columns {
			key := col.Name
			if col.Table != "" {
				key = col.Table + "." + col.Name
			}
			projected[key] = row[col.Name]
		}
		out[i] = projected
	}
	return out
}

func (ex *Executor) executeUpdate(stmt *ast.Update) (Result, error) {
	table, err := ex.schema.Get(stmt.Table)
	if err != nil {
		return Result{}, err
	}
	rows, err := ex.reconstruct(table)
	if err != nil {
		return Result{}, err
	}

	candidates := rows
	if stmt.Where != nil {
		candidates = filterRows(rows, stmt.Where)
	}

	updated := 0
	for _, oldRow := range candidates {
		newRow := oldRow.Clone()
		for _, set := range stmt.Set {
			newRow[set.Column] = set.Value
			if col := table.Column(set.Column); col != nil {
				// spec §4.7.4 / §9: a failing coercion silently keeps
				// the original SET value rather than erroring.
				if coerced, err := value.Coerce(set.Value, col.DataType); err == nil {
					newRow[set.Column] = coerced
				}
			}
		}

		if err := validate.ForUpdate(table, oldRow, newRow, ex.index); err != nil {
			return Result{}, fmt.Errorf("update failed: %w", err)
		}

		entry := ex.ledger.CreateEntry(stmt.Table, types.OpUpdate, oldRow, newRow)
		if err := ex.ledger.Append(entry); err != nil {
			return Result{}, err
		}
		ex.index.UpdateRow(table, oldRow, newRow)
		updated++
	}

	return Result{Status: fmt.Sprintf("%d row(s) updated in %q", updated, stmt.Table)}, nil
}

func (ex *Executor) executeDelete(stmt *ast.Delete) (Result, error) {
	table, err := ex.schema.Get(stmt.Table)
	if err != nil {
		return Result{}, err
	}
	rows, err := ex.reconstruct(table)
	if err != nil {
		return Result{}, err
	}

	matched := rows
	if stmt.Where != nil {
		matched = filterRows(rows, stmt.Where)
	}

	deleted := 0
	for _, row := range matched {
		entry := ex.ledger.CreateEntry(stmt.Table, types.OpDelete, row, nil)
		if err := ex.ledger.Append(entry); err != nil {
			return Result{}, err
		}
		ex.index.RemoveRow(table, row)
		deleted++
	}

	return Result{Status: fmt.Sprintf("%d row(s) deleted from %q", deleted, stmt.Table)}, nil
}

// filterRows tree-walks where over rows (spec §4.7.6).
func filterRows(rows []types.Row, where ast.WhereNode) []types.Row {
	var out []types.Row
	for _, row := range rows {
		if evalWhere(row, where) {
			out = append(out, row)
		}
	}
	return out
}

func evalWhere(row types.Row, node ast.WhereNode) bool {
	switch n := node.(type) {
	case *ast.BoolExpr:
		switch n.Op {
		case ast.And:
			return evalWhere(row, n.Left) && evalWhere(row, n.Right)
		case ast.Or:
			return evalWhere(row, n.Left) || evalWhere(row, n.Right)
		default:
			return false
		}
	case *ast.Condition:
		return evalCondition(row, n)
	default:
		return false
	}
}

func evalCondition(row types.Row, cond *ast.Condition) bool {
	rowVal, present := row[cond.Column]
	if !present {
		return false
	}
	switch cond.Operator {
	case ast.OpEq:
		return value.Equal(rowVal, cond.Value)
	case ast.OpNeq:
		return !value.Equal(rowVal, cond.Value)
	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		if rowVal == nil || cond.Value == nil {
			return false
		}
		cmp := value.Compare(rowVal, cond.Value)
		switch cond.Operator {
		case ast.OpLt:
			return cmp < 0
		case ast.OpLte:
			return cmp <= 0
		case ast.OpGt:
			return cmp > 0
		case ast.OpGte:
			return cmp >= 0
		}
	}
	return false
}
