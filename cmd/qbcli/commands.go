package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/queuebridge/quickbase-go/pkg/qbclient"
	"github.com/queuebridge/quickbase-go/pkg/qbsql"
	"github.com/queuebridge/quickbase-go/pkg/snapshot"
	"github.com/queuebridge/quickbase-go/pkg/xlsx"
)

// exportOptions describes one table export command
type exportOptions struct {
	TableName  string
	OutputFile string
	SheetName  string
	Where      string
	OrderBy    string
	Limit      int
	Offset     int
}

// runSQL executes a single SQL statement and prints the result as JSON
func runSQL(ctx context.Context, translator *qbsql.Translator, sql string) error {
	result, err := translator.Execute(ctx, sql)
	if err != nil {
		return err
	}
	return printJSON(result)
}

// runScript executes SQL statements from a file, one statement per line.
// Empty lines and lines starting with -- are skipped. Execution stops
// at the first failing statement.
func runScript(ctx context.Context, translator *qbsql.Translator, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()

	lineNo := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		if _, err := translator.Execute(ctx, line); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		fmt.Printf("✓ line %d: ok\n", lineNo)
	}
	return scanner.Err()
}

// listTables prints tables of the configured application
func listTables(ctx context.Context, client *qbclient.Client) error {
	tables, err := client.GetTables(ctx, "")
	if err != nil {
		return err
	}
	fmt.Printf("Tables in app %s:\n", client.AppID())
	for _, t := range tables {
		fmt.Printf("  %-20s %s\n", t.ID, t.Name)
	}
	fmt.Printf("Total: %d\n", len(tables))
	return nil
}

// listFields prints fields of a table with their ids and types
func listFields(ctx context.Context, client *qbclient.Client, tableName string) error {
	tableID, err := client.ResolveTableID(ctx, tableName)
	if err != nil {
		return err
	}
	fields, err := client.GetFields(ctx, tableID)
	if err != nil {
		return err
	}
	fmt.Printf("Fields of %s (%s):\n", tableName, tableID)
	for _, f := range fields {
		marker := ""
		if f.ID == qbclient.RecordIDField {
			marker = " *"
		}
		fmt.Printf("  %4d  %-30s %s%s\n", f.ID, f.Label, f.FieldType, marker)
	}
	return nil
}

// buildExportSQL assembles the SELECT statement behind an export command
func buildExportSQL(opts exportOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT * FROM %s", opts.TableName)
	if opts.Where != "" {
		fmt.Fprintf(&b, " WHERE %s", opts.Where)
	}
	if opts.OrderBy != "" {
		fmt.Fprintf(&b, " ORDER BY %s", opts.OrderBy)
	}
	if opts.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", opts.Limit)
	}
	if opts.Offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", opts.Offset)
	}
	return b.String()
}

// exportTableXLSX exports a table to an Excel file
func exportTableXLSX(ctx context.Context, translator *qbsql.Translator, opts exportOptions) error {
	resp, err := translator.Query(ctx, buildExportSQL(opts))
	if err != nil {
		return err
	}

	sheet := opts.SheetName
	if sheet == "" {
		sheet = opts.TableName
	}
	if err := xlsx.ToXLSX(resp, opts.OutputFile, sheet); err != nil {
		return err
	}
	fmt.Printf("✓ Exported %d records to %s\n", len(resp.Data), opts.OutputFile)
	return nil
}

// exportTableSnapshot exports a table to a local SQLite snapshot
func exportTableSnapshot(ctx context.Context, translator *qbsql.Translator, opts exportOptions) error {
	resp, err := translator.Query(ctx, buildExportSQL(opts))
	if err != nil {
		return err
	}

	w, err := snapshot.Open(ctx, opts.OutputFile)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Write(ctx, opts.TableName, resp); err != nil {
		return err
	}
	fmt.Printf("✓ Snapshot of %d records written to %s\n", len(resp.Data), opts.OutputFile)
	return nil
}

// printJSON writes a value to stdout as indented JSON
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
