// Package main contains the CLI implementation of ledgerlite. It uses
// the cobra package for CLI tool implementation.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ledgerlite/engine"
	"ledgerlite/internal/config"
	"ledgerlite/internal/display"
	"ledgerlite/internal/mirror"
)

type rootFlags struct {
	configFile string
	ledgerFile string
}

type mirrorFlags struct {
	dsn   string
	table string
}

func main() {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "ledgerlite",
		Short: "A transaction-first mini relational database",
	}
	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "Path to a TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&flags.ledgerFile, "ledger", "", "Path to the ledger file (overrides config)")

	rootCmd.AddCommand(replCmd(flags))
	rootCmd.AddCommand(execCmd(flags))
	rootCmd.AddCommand(mirrorCmd(flags))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(flags *rootFlags) (config.Config, error) {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return config.Config{}, err
	}
	if flags.ledgerFile != "" {
		cfg.LedgerFile = flags.ledgerFile
	}
	return cfg, nil
}

func replCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive SQL session",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runRepl(flags)
		},
	}
}

func runRepl(flags *rootFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg.LedgerFile)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}

	fmt.Println("LedgerLite - A Transaction-First Mini Relational Database")
	fmt.Println("Type 'exit' or 'quit' to leave")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print(cfg.Prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			break
		}

		query := strings.TrimSpace(line)
		lower := strings.ToLower(query)
		if lower == "exit" || lower == "quit" {
			fmt.Println("Goodbye!")
			break
		}
		if query == "" {
			continue
		}

		result, err := eng.Execute(query)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		fmt.Println(display.Render(result.Status, result.Rows))
	}
	return nil
}

func execCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <file.sql>",
		Short: "Execute a file of semicolon-separated SQL statements",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runExec(flags, args[0])
		},
	}
	return cmd
}

func runExec(flags *rootFlags, path string) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", path, err)
	}

	eng, err := engine.New(cfg.LedgerFile)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}

	statements := splitStatements(string(content))
	for i, stmt := range statements {
		result, err := eng.Execute(stmt)
		if err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
		fmt.Println(display.Render(result.Status, result.Rows))
	}
	return nil
}

// splitStatements splits a file of SQL text on semicolons, discarding
// blank statements. LedgerLite has no multi-statement transactions
// (spec Non-goals), so each statement is simply executed in turn.
func splitStatements(content string) []string {
	parts := strings.Split(content, ";")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func mirrorCmd(flags *rootFlags) *cobra.Command {
	mf := &mirrorFlags{}
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Mirror a table's reconstructed state into MySQL",
		Long: `Connects to an external MySQL database and mirrors a single
LedgerLite table's current (ledger-reconstructed) rows into it, so the
table can be inspected with ordinary SQL tools. This is read-only with
respect to the ledger: mirrored writes are never read back.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMirror(flags, mf)
		},
	}
	cmd.Flags().StringVar(&mf.dsn, "dsn", "", "MySQL connection string (overrides config)")
	cmd.Flags().StringVar(&mf.table, "table", "", "Table to mirror (required)")
	return cmd
}

func runMirror(flags *rootFlags, mf *mirrorFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	dsn := mf.dsn
	if dsn == "" {
		dsn = cfg.Mirror.DSN
	}
	if dsn == "" {
		return fmt.Errorf("--dsn is required (or set [mirror].dsn in the config file)")
	}
	if mf.table == "" {
		return fmt.Errorf("--table is required")
	}

	eng, err := engine.New(cfg.LedgerFile)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	if err := eng.RebuildIndexes(); err != nil {
		return fmt.Errorf("failed to rebuild indexes: %w", err)
	}

	table, err := eng.Table(mf.table)
	if err != nil {
		return err
	}

	m, err := mirror.New(mirror.Options{DSN: dsn})
	if err != nil {
		return err
	}
	defer func() {
		_ = m.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := m.Connect(ctx); err != nil {
		return err
	}
	if err := m.EnsureTable(ctx, table); err != nil {
		return err
	}

	rows, err := eng.Execute(fmt.Sprintf("SELECT * FROM %s", mf.table))
	if err != nil {
		return fmt.Errorf("failed to read table state: %w", err)
	}
	if err := m.Sync(ctx, table, rows.Rows); err != nil {
		return err
	}

	fmt.Printf("mirrored %d row(s) from %q\n", len(rows.Rows), mf.table)
	return nil
}
