// Package index maintains LedgerLite's primary-key and unique-column
// indexes in lockstep with ledger writes (spec §4.5). Indexes are pure
// caches derived from (schema, ledger) and support cold rebuild; they
// are used only for O(1) membership probes, never for iteration — the
// executor always reads live state through ledger.Reconstruct.
package index

import "ledgerlite/internal/types"

// Manager holds the per-table primary-key index and the set of
// non-primary UNIQUE column indexes.
type Manager struct {
	primaryKey map[string]map[any]types.Row
	unique     map[string]map[string]map[any]types.Row
}

// NewManager returns an empty index manager.
func NewManager() *Manager {
	return &Manager{
		primaryKey: make(map[string]map[any]types.Row),
		unique:     make(map[string]map[string]map[any]types.Row),
	}
}

func (m *Manager) pkIndex(table string) map[any]types.Row {
	idx, ok := m.primaryKey[table]
	if !ok {
		idx = make(map[any]types.Row)
		m.primaryKey[table] = idx
	}
	return idx
}

func (m *Manager) uniqueIndexes(table string) map[string]map[any]types.Row {
	idx, ok := m.unique[table]
	if !ok {
		idx = make(map[string]map[any]types.Row)
		m.unique[table] = idx
	}
	return idx
}

// AddRow indexes row's primary key and any non-NULL unique-column
// values. NULL values in unique (non-PK) columns are never indexed,
// so multiple NULLs are permitted.
func (m *Manager) AddRow(table *types.Table, row types.Row) {
	pkCol := table.PrimaryKeyColumn()
	if pkVal := row[pkCol.Name]; pkVal != nil {
		m.pkIndex(table.Name)[pkVal] = row
	}

	uniques := m.uniqueIndexes(table.Name)
	for _, col := range table.Columns {
		if !col.IsUnique || col.IsPrimaryKey {
			continue
		}
		val := row[col.Name]
		if val == nil {
			continue
		}
		idx, ok := uniques[col.Name]
		if !ok {
			idx = make(map[any]types.Row)
			uniques[col.Name] = idx
		}
		idx[val] = row
	}
}

// UpdateRow removes old's indexed keys and re-indexes new. Missing old
// keys are tolerated.
func (m *Manager) UpdateRow(table *types.Table, oldRow, newRow types.Row) {
	pkCol := table.PrimaryKeyColumn()
	pkIdx := m.pkIndex(table.Name)
	if oldPK := oldRow[pkCol.Name]; oldPK != nil {
		delete(pkIdx, oldPK)
	}
	if newPK := newRow[pkCol.Name]; newPK != nil {
		pkIdx[newPK] = newRow
	}

	uniques := m.uniqueIndexes(table.Name)
	for _, col := range table.Columns {
		if !col.IsUnique || col.IsPrimaryKey {
			continue
		}
		idx, ok := uniques[col.Name]
		if !ok {
			idx = make(map[any]types.Row)
			uniques[col.Name] = idx
		}
		if oldVal := oldRow[col.Name]; oldVal != nil {
			delete(idx, oldVal)
		}
		if newVal := newRow[col.Name]; newVal != nil {
			idx[newVal] = newRow
		}
	}
}

// RemoveRow removes row's primary key and unique-column values,
// tolerating entries that are already absent.
func (m *Manager) RemoveRow(table *types.Table, row types.Row) {
	pkCol := table.PrimaryKeyColumn()
	if pkVal := row[pkCol.Name]; pkVal != nil {
		delete(m.pkIndex(table.Name), pkVal)
	}
	uniques := m.uniqueIndexes(table.Name)
	for _, col := range table.Columns {
		if !col.IsUnique || col.IsPrimaryKey {
			continue
		}
		if val := row[col.Name]; val != nil {
			if idx, ok := uniques[col.Name]; ok {
				delete(idx, val)
			}
		}
	}
}

// PrimaryKeyExists is an O(1) membership probe against the primary-key
// index.
func (m *Manager) PrimaryKeyExists(table string, pkValue any) bool {
	idx, ok := m.primaryKey[table]
	if !ok {
		return false
	}
	_, exists := idx[pkValue]
	return exists
}

// UniqueValueExists is an O(1) membership probe against a named
// unique-column index.
func (m *Manager) UniqueValueExists(table, column string, value any) bool {
	tableIdx, ok := m.unique[table]
	if !ok {
		return false
	}
	colIdx, ok := tableIdx[column]
	if !ok {
		return false
	}
	_, exists := colIdx[value]
	return exists
}

// RebuildIndexes discards any prior index state for table and
// re-indexes rows from scratch. Used to recover indexes from a cold
// start once a schema has been re-declared against an existing ledger.
func (m *Manager) RebuildIndexes(table *types.Table, rows []types.Row) {
	delete(m.primaryKey, table.Name)
	delete(m.unique, table.Name)
	for _, row := range rows {
		m.AddRow(table, row)
	}
}
