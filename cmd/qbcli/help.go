package main

import "fmt"

const version = "1.0.0"

// PrintVersion shows version information
func PrintVersion() {
	fmt.Printf("qbcli version %s\n", version)
}

// PrintHelp shows detailed help with examples
func PrintHelp() {
	fmt.Print(`qbcli - SQL command line for QuickBase applications

USAGE:
  qbcli [command] [options]

COMMANDS:
  --sql <statement>        Execute a single SQL statement
  --script <file>          Execute SQL statements from a file (one per line)
  --list                   List all tables in the application
  --fields <table>         List fields of a table with ids and types
  --export-xlsx <table>    Export table to an Excel file
  --snapshot <table>       Export table to a local SQLite snapshot
  --create-config          Create a sample config.yaml

SUPPORTED SQL:
  SELECT [TOP n] cols FROM table [WHERE ...] [ORDER BY ...] [LIMIT n] [OFFSET n]
  INSERT INTO table (col1, col2) VALUES ('v1', 'v2')
  UPDATE table SET col = 'v' WHERE ...        (WHERE is mandatory)
  DELETE FROM table WHERE ...                 (WHERE is mandatory)
  CREATE TABLE table (col1 text, col2 int)
  ALTER TABLE table RENAME TO new / ADD COLUMN col type /
              DROP COLUMN col / RENAME COLUMN old TO new
  DROP TABLE table

  WHERE clauses use the platform query syntax with quoted field names:
  {'Status'.EX.'open'} — the quoted name is replaced with the field id.

EXPORT OPTIONS:
  --where <expr>           Filter expression for export
  --order-by <clause>      ORDER BY clause (e.g., 'Name ASC, Age DESC')
  --limit <n>              Maximum rows to export
  --offset <n>             Rows to skip
  --sheet <name>           Excel sheet name (default: table name)
  --output <file>          Output file path (default: auto-generated)

OPTIONS:
  --config <file>          Configuration file path (default: config.yaml)
  --strict-types           Reject unknown SQL column types
  --version                Show version
  --help                   Show this help

EXAMPLES:
  qbcli --create-config
  qbcli --list
  qbcli --sql "SELECT TOP 10 Name, Status FROM Projects ORDER BY Name"
  qbcli --sql "INSERT INTO Projects (Name, Status) VALUES ('Demo', 'open')"
  qbcli --sql "CREATE TABLE Tasks (Title text, Due date, Done bool)"
  qbcli --script migrate.sql
  qbcli --export-xlsx Projects --where "{'Status'.EX.'open'}" --output open.xlsx
  qbcli --snapshot Projects --output projects.db
`)
}
