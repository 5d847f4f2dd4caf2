// Package mirror connects to an external MySQL database and mirrors a
// LedgerLite table's reconstructed rows into it for inspection with
// ordinary SQL tools. It is read-only with respect to the ledger: it
// never feeds mirrored writes back into LedgerLite, and it is only
// ever invoked explicitly (spec §10).
package mirror

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"ledgerlite/internal/types"
)

// Options configures a Mirrorer, mirroring the teacher's apply.Options
// shape; it carries only the DSN.
type Options struct {
	DSN string
}

// Mirrorer holds the live connection used to mirror table state.
type Mirrorer struct {
	db *sql.DB
}

// New opens (but does not yet ping) a MySQL connection for opts.DSN.
func New(opts Options) (*Mirrorer, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("mirror: DSN is required")
	}
	db, err := sql.Open("mysql", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("mirror: failed to open connection: %w", err)
	}
	return &Mirrorer{db: db}, nil
}

// Connect verifies the connection is reachable.
func (m *Mirrorer) Connect(ctx context.Context) error {
	if err := m.db.PingContext(ctx); err != nil {
		return fmt.Errorf("mirror: failed to ping database: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (m *Mirrorer) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// mysqlType maps a LedgerLite column type to the MySQL column type
// used to mirror it (spec §10). TIMESTAMP is stored as an opaque
// string, matching the engine's own "TIMESTAMP as opaque string"
// treatment rather than MySQL's native temporal type.
func mysqlType(dt types.DataType) string {
	switch dt {
	case types.Int:
		return "BIGINT"
	case types.Text:
		return "TEXT"
	case types.Float:
		return "DOUBLE"
	case types.Boolean:
		return "TINYINT(1)"
	case types.Timestamp:
		return "VARCHAR(64)"
	default:
		return "TEXT"
	}
}

// EnsureTable issues CREATE TABLE IF NOT EXISTS for table, mapping
// each column to its MySQL equivalent and marking the primary-key
// column as such so that Sync's ON DUPLICATE KEY UPDATE can key on it.
func (m *Mirrorer) EnsureTable(ctx context.Context, table *types.Table) error {
	var cols []string
	for _, col := range table.Columns {
		typ := mysqlType(col.DataType)
		if col.Unique() && typ == "TEXT" {
			// MySQL cannot index a TEXT column without a key length.
			typ = "VARCHAR(255)"
		}
		def := fmt.Sprintf("`%s` %s", col.Name, typ)
		if col.IsPrimaryKey {
			def += " NOT NULL PRIMARY KEY"
		} else if col.IsUnique {
			def += " UNIQUE"
		}
		cols = append(cols, def)
	}

	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` (%s)", table.Name, strings.Join(cols, ", "))
	if _, err := m.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("mirror: failed to ensure table %q: %w", table.Name, err)
	}
	return nil
}

// Sync upserts the given reconstructed rows into table's mirror, inside
// a single transaction, using INSERT ... ON DUPLICATE KEY UPDATE keyed
// on the primary key (spec §10), following the teacher's
// single-*sql.Tx transactional-apply shape. Mirrored rows whose key is
// absent from rows are not deleted.
func (m *Mirrorer) Sync(ctx context.Context, table *types.Table, rows []types.Row) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mirror: failed to begin transaction: %w", err)
	}

	colNames := columnNames(table)
	stmt := upsertStatement(table.Name, colNames)

	for _, row := range rows {
		args := make([]any, len(colNames))
		for i, name := range colNames {
			args[i] = row[name]
		}
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("mirror: sync failed: %w; rollback also failed: %w", err, rbErr)
			}
			return fmt.Errorf("mirror: sync failed (rolled back): %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mirror: failed to commit sync: %w", err)
	}
	return nil
}

func columnNames(table *types.Table) []string {
	names := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		names[i] = col.Name
	}
	sort.Strings(names)
	return names
}

func upsertStatement(table string, cols []string) string {
	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	updates := make([]string, 0, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("`%s`", c)
		placeholders[i] = "?"
		updates = append(updates, fmt.Sprintf("`%s` = VALUES(`%s`)", c, c))
	}
	return fmt.Sprintf(
		"INSERT INTO `%s` (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s",
		table, strings.Join(quoted, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "),
	)
}
