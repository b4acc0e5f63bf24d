package main

import "flag"

// Flags holds all command-line flags
type Flags struct {
	// Commands
	SQL        *string
	Script     *string
	List       *bool
	Fields     *string
	ExportXLSX *string
	Snapshot   *string

	// Query filters for export commands
	Where   *string
	OrderBy *string
	Limit   *int
	Offset  *int

	// Options
	Config      *string
	Output      *string
	Sheet       *string
	StrictTypes *bool

	// Config Creation
	CreateConfig *bool

	// Misc
	Version *bool
	Help    *bool
}

// ParseFlags defines and parses all command-line flags
func ParseFlags() *Flags {
	f := &Flags{}

	// Commands
	f.SQL = flag.String("sql", "", "Execute a single SQL statement")
	f.Script = flag.String("script", "", "Execute SQL statements from a file, one per line")
	f.List = flag.Bool("list", false, "List all tables in the application")
	f.Fields = flag.String("fields", "", "List fields of a table (table name)")
	f.ExportXLSX = flag.String("export-xlsx", "", "Export table to XLSX (table name)")
	f.Snapshot = flag.String("snapshot", "", "Export table to a local SQLite snapshot (table name)")

	// Query filters for export commands
	f.Where = flag.String("where", "", "Filter expression for export (e.g., \"{'Status'.EX.'open'}\")")
	f.OrderBy = flag.String("order-by", "", "ORDER BY clause for export (e.g., 'Name ASC, Age DESC')")
	f.Limit = flag.Int("limit", 0, "LIMIT rows for export")
	f.Offset = flag.Int("offset", 0, "OFFSET rows for export")

	// Options
	f.Config = flag.String("config", "config.yaml", "Configuration file path")
	f.Output = flag.String("output", "", "Output file path (default: auto-generated)")
	f.Sheet = flag.String("sheet", "", "Excel sheet name for XLSX export")
	f.StrictTypes = flag.Bool("strict-types", false, "Reject unknown SQL column types instead of defaulting to text")

	// Config Creation
	f.CreateConfig = flag.Bool("create-config", false, "Create sample config file")

	// Misc
	f.Version = flag.Bool("version", false, "Show version information")
	f.Help = flag.Bool("help", false, "Show detailed help with examples")

	flag.Parse()

	return f
}
