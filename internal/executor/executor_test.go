package executor

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerlite/internal/ast"
	"ledgerlite/internal/index"
	"ledgerlite/internal/ledger"
	"ledgerlite/internal/schema"
	"ledgerlite/internal/types"
)

func newExecutor(t *testing.T) *Executor {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.jsonl")
	store, err := ledger.Open(path)
	require.NoError(t, err)
	s := schema.NewManager()
	idx := index.NewManager()
	return New(s, store, idx)
}

func createUsers(t *testing.T, ex *Executor) {
	t.Helper()
	_, err := ex.Execute(&ast.CreateTable{
		Table: "users",
		Columns: []ast.ColumnDef{
			{Name: "id", DataType: types.Int, IsPrimaryKey: true},
			{Name: "email", DataType: types.Text, IsUnique: true},
			{Name: "name", DataType: types.Text},
		},
	})
	require.NoError(t, err)
}

func TestExecuteInsertThenSelect(t *testing.T) {
	ex := newExecutor(t)
	createUsers(t, ex)

	_, err := ex.Execute(&ast.Insert{Table: "users", Values: []any{1, "a@example.com", "alice"}})
	require.NoError(t, err)

	result, err := ex.Execute(&ast.Select{Star: true, Table: "users"})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "alice", result.Rows[0]["name"])
}

func TestExecuteInsertRejectsDuplicatePrimaryKey(t *testing.T) {
	ex := newExecutor(t)
	createUsers(t, ex)

	_, err := ex.Execute(&ast.Insert{Table: "users", Values: []any{1, "a@example.com", "alice"}})
	require.NoError(t, err)

	_, err = ex.Execute(&ast.Insert{Table: "users", Values: []any{1, "b@example.com", "bob"}})
	require.Error(t, err)
}

func TestExecuteInsertRejectsDuplicateUnique(t *testing.T) {
	ex := newExecutor(t)
	createUsers(t, ex)

	_, err := ex.Execute(&ast.Insert{Table: "users", Values: []any{1, "a@example.com", "alice"}})
	require.NoError(t, err)

	_, err = ex.Execute(&ast.Insert{Table: "users", Values: []any{2, "a@example.com", "bob"}})
	require.Error(t, err)
}

func TestExecuteSelectWithWhere(t *testing.T) {
	ex := newExecutor(t)
	createUsers(t, ex)
	_, _ = ex.Execute(&ast.Insert{Table: "users", Values: []any{1, "a@example.com", "alice"}})
	_, _ = ex.Execute(&ast.Insert{Table: "users", Values: []any{2, "b@example.com", "bob"}})

	result, err := ex.Execute(&ast.Select{
		Star:  true,
		Table: "users",
		Where: &ast.Condition{Column: "name", Operator: ast.OpEq, Value: "bob"},
	})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 2, result.Rows[0]["id"])
}

func TestExecuteSelectWithAndOr(t *testing.T) {
	ex := newExecutor(t)
	createUsers(t, ex)
	_, _ = ex.Execute(&ast.Insert{Table: "users", Values: []any{1, "a@example.com", "alice"}})
	_, _ = ex.Execute(&ast.Insert{Table: "users", Values: []any{2, "b@example.com", "bob"}})
	_, _ = ex.Execute(&ast.Insert{Table: "users", Values: []any{3, "c@example.com", "carl"}})

	result, err := ex.Execute(&ast.Select{
		Star:  true,
		Table: "users",
		Where: &ast.BoolExpr{
			Op:   ast.Or,
			Left: &ast.Condition{Column: "name", Operator: ast.OpEq, Value: "alice"},
			Right: &ast.BoolExpr{
				Op:   ast.And,
				Left: &ast.Condition{Column: "id", Operator: ast.OpGt, Value: 2},
				Right: &ast.Condition{Column: "name", Operator: ast.OpEq, Value: "carl"},
			},
		},
	})
	require.NoError(t, err)
	assert.Len(t, result.Rows, 2)
}

func TestExecuteUpdateChangesValueAndIndex(t *testing.T) {
	ex := newExecutor(t)
	createUsers(t, ex)
	_, _ = ex.Execute(&ast.Insert{Table: "users", Values: []any{1, "a@example.com", "alice"}})

	result, err := ex.Execute(&ast.Update{
		Table: "users",
		Set:   []ast.SetClause{{Column: "name", Value: "alicia"}},
		Where: &ast.Condition{Column: "id", Operator: ast.OpEq, Value: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "1 row(s) updated in \"users\"", result.Status)

	sel, err := ex.Execute(&ast.Select{Star: true, Table: "users"})
	require.NoError(t, err)
	require.Len(t, sel.Rows, 1)
	assert.Equal(t, "alicia", sel.Rows[0]["name"])
}

func TestExecuteUpdateRejectsUniqueCollision(t *testing.T) {
	ex := newExecutor(t)
	createUsers(t, ex)
	_, _ = ex.Execute(&ast.Insert{Table: "users", Values: []any{1, "a@example.com", "alice"}})
	_, _ = ex.Execute(&ast.Insert{Table: "users", Values: []any{2, "b@example.com", "bob"}})

	_, err := ex.Execute(&ast.Update{
		Table: "users",
		Set:   []ast.SetClause{{Column: "email", Value: "a@example.com"}},
		Where: &ast.Condition{Column: "id", Operator: ast.OpEq, Value: 2},
	})
	require.Error(t, err)
}

func TestExecuteDeleteRemovesRow(t *testing.T) {
	ex := newExecutor(t)
	createUsers(t, ex)
	_, _ = ex.Execute(&ast.Insert{Table: "users", Values: []any{1, "a@example.com", "alice"}})

	result, err := ex.Execute(&ast.Delete{
		Table: "users",
		Where: &ast.Condition{Column: "id", Operator: ast.OpEq, Value: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "1 row(s) deleted from \"users\"", result.Status)

	sel, err := ex.Execute(&ast.Select{Star: true, Table: "users"})
	require.NoError(t, err)
	assert.Empty(t, sel.Rows)
}

func TestExecuteDeleteAllowsReinsertOfPrimaryKey(t *testing.T) {
	ex := newExecutor(t)
	createUsers(t, ex)
	_, _ = ex.Execute(&ast.Insert{Table: "users", Values: []any{1, "a@example.com", "alice"}})
	_, err := ex.Execute(&ast.Delete{Table: "users", Where: &ast.Condition{Column: "id", Operator: ast.OpEq, Value: 1}})
	require.NoError(t, err)

	_, err = ex.Execute(&ast.Insert{Table: "users", Values: []any{1, "new@example.com", "newalice"}})
	require.NoError(t, err)
}

func TestExecuteJoin(t *testing.T) {
	ex := newExecutor(t)
	createUsers(t, ex)
	_, _ = ex.Execute(&ast.Insert{Table: "users", Values: []any{1, "a@example.com", "alice"}})

	_, err := ex.Execute(&ast.CreateTable{
		Table: "orders",
		Columns: []ast.ColumnDef{
			{Name: "id", DataType: types.Int, IsPrimaryKey: true},
			{Name: "user_id", DataType: types.Int},
		},
	})
	require.NoError(t, err)
	_, err = ex.Execute(&ast.Insert{Table: "orders", Values: []any{100, 1}})
	require.NoError(t, err)

	result, err := ex.Execute(&ast.Select{
		Star:  true,
		Table: "orders",
		Joins: []ast.Join{
			{Table: "users", Left: ast.SelectColumn{Name: "user_id"}, Right: ast.SelectColumn{Name: "id"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "alice", result.Rows[0]["name"])
}

func TestExecuteSelectProjection(t *testing.T) {
	ex := newExecutor(t)
	createUsers(t, ex)
	_, _ = ex.Execute(&ast.Insert{Table: "users", Values: []any{1, "a@example.com", "alice"}})

	result, err := ex.Execute(&ast.Select{
		Table:   "users",
		Columns: []ast.SelectColumn{{Name: "name"}},
	})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "alice", result.Rows[0]["name"])
	_, hasID := result.Rows[0]["id"]
	assert.False(t, hasID)
}
