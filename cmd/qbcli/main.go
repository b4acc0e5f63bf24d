package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/queuebridge/quickbase-go/pkg/qbclient"
	"github.com/queuebridge/quickbase-go/pkg/qbsql"
)

func main() {
	ctx := context.Background()

	// Parse flags
	flags := ParseFlags()

	// Handle version
	if *flags.Version {
		PrintVersion()
		os.Exit(0)
	}

	// Handle help
	if *flags.Help {
		PrintHelp()
		os.Exit(0)
	}

	// Handle config creation
	if *flags.CreateConfig {
		createConfigTemplate()
		return
	}

	// Load configuration
	config, err := qbclient.LoadConfig(*flags.Config)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}

	client, err := qbclient.New(*config)
	if err != nil {
		fatal("Failed to create client: %v", err)
	}
	defer client.Close()

	translator := qbsql.New(client, qbsql.Options{StrictTypes: *flags.StrictTypes})

	// Route commands
	var cmdErr error

	if *flags.SQL != "" {
		cmdErr = runSQL(ctx, translator, *flags.SQL)
	} else if *flags.Script != "" {
		cmdErr = runScript(ctx, translator, *flags.Script)
	} else if *flags.List {
		cmdErr = listTables(ctx, client)
	} else if *flags.Fields != "" {
		cmdErr = listFields(ctx, client, *flags.Fields)
	} else if *flags.ExportXLSX != "" {
		cmdErr = exportTableXLSX(ctx, translator, exportOptions{
			TableName:  *flags.ExportXLSX,
			OutputFile: determineOutputFile(*flags.Output, *flags.ExportXLSX, "xlsx"),
			SheetName:  *flags.Sheet,
			Where:      *flags.Where,
			OrderBy:    *flags.OrderBy,
			Limit:      *flags.Limit,
			Offset:     *flags.Offset,
		})
	} else if *flags.Snapshot != "" {
		cmdErr = exportTableSnapshot(ctx, translator, exportOptions{
			TableName:  *flags.Snapshot,
			OutputFile: determineOutputFile(*flags.Output, *flags.Snapshot, "db"),
			Where:      *flags.Where,
			OrderBy:    *flags.OrderBy,
			Limit:      *flags.Limit,
			Offset:     *flags.Offset,
		})
	}

	// Handle errors
	if cmdErr != nil {
		fatal("Command failed: %v", cmdErr)
	}

	// If no command was specified, show help
	if !commandWasSpecified(flags) {
		PrintHelp()
		os.Exit(1)
	}
}

// createConfigTemplate creates a sample configuration file
func createConfigTemplate() {
	if err := SaveSampleConfig("config.yaml"); err != nil {
		fatal("Failed to save config: %v", err)
	}

	fmt.Println("✓ Created sample config: config.yaml")
	fmt.Println("Edit the file with your realm and user token and run:")
	fmt.Println("  qbcli --list --config config.yaml")
}

// determineOutputFile determines output file name
func determineOutputFile(output, baseName, ext string) string {
	if output != "" {
		return output
	}
	baseName = strings.ReplaceAll(baseName, " ", "_")
	if !strings.HasSuffix(baseName, "."+ext) {
		return baseName + "." + ext
	}
	return baseName
}

// commandWasSpecified checks if any command was specified
func commandWasSpecified(flags *Flags) bool {
	return *flags.SQL != "" ||
		*flags.Script != "" ||
		*flags.List ||
		*flags.Fields != "" ||
		*flags.ExportXLSX != "" ||
		*flags.Snapshot != ""
}

// fatal prints error and exits
func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
