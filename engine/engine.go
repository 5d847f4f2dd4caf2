// Package engine is LedgerLite's single external entry point: a ledger
// file path in, a parsed-and-executed Result out (spec §6).
package engine

import (
	"fmt"

	"ledgerlite/internal/executor"
	"ledgerlite/internal/index"
	"ledgerlite/internal/ledger"
	"ledgerlite/internal/parser"
	"ledgerlite/internal/schema"
	"ledgerlite/internal/types"
)

// Result is the outcome of a single Execute call, re-exported from the
// executor so callers never need to import that package directly.
type Result = executor.Result

// Engine owns the schema registry, the ledger store, the index
// manager, and the executor built over them. It is not safe for
// concurrent use (spec §5).
type Engine struct {
	schema   *schema.Manager
	ledger   *ledger.Store
	index    *index.Manager
	executor *executor.Executor
}

// New opens the ledger at ledgerPath (a missing file reads as empty
// and is created by the first write) and returns a ready-to-use Engine. Per spec §6, the ledger file path is the only
// parameter the engine type itself needs; schemas must be re-declared
// each session since they are not persisted (spec §4.4).
func New(ledgerPath string) (*Engine, error) {
	l, err := ledger.Open(ledgerPath)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	s := schema.NewManager()
	idx := index.NewManager()
	ex := executor.New(s, l, idx)
	return &Engine{schema: s, ledger: l, index: idx, executor: ex}, nil
}

// Execute parses sql and runs it against the engine's current schema
// and ledger state.
func (e *Engine) Execute(sql string) (Result, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return Result{}, err
	}
	return e.executor.Execute(stmt)
}

// RebuildIndexes reconstructs every registered table's live rows from
// the ledger and re-populates the index manager from scratch. This
// recovers index state after a fresh session has re-declared schemas
// against a ledger file written by a prior session (spec §8 scenario 6,
// cross-session persistence).
func (e *Engine) RebuildIndexes() error {
	for _, table := range e.schema.GetAll() {
		rows, err := e.ledger.Reconstruct(table.Name, table.PrimaryKeyColumn().Name)
		if err != nil {
			return err
		}
		e.index.RebuildIndexes(table, rows)
	}
	return nil
}

// Tables returns the names of every currently registered table, sorted.
func (e *Engine) Tables() []string {
	return e.schema.List()
}

// Table returns the schema for name, for callers (CLI, mirror) that
// need column metadata outside of an executed statement.
func (e *Engine) Table(name string) (*types.Table, error) {
	return e.schema.Get(name)
}

// LedgerPath returns the path of the ledger file backing this engine.
func (e *Engine) LedgerPath() string {
	return e.ledger.Path()
}
