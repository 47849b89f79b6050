package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"

	schemaloader "github.com/usna78/dbix-class-schema-loader"
	"github.com/usna78/dbix-class-schema-loader/loader"
)

const version = "dbicdump v0.1.0"

// CLI is the command-line surface. One positional means a config file, two
// or more mean schema class, DSN and connection credentials.
var CLI struct {
	Include           []string `short:"I" placeholder:"DIR" help:"Add DIR to the component search path. May be repeated; earlier directories win."`
	LoaderOption      []string `short:"o" placeholder:"KEY=VALUE" help:"Set a loader option. May be repeated; the last value per key wins."`
	PrintConfigSchema bool     `help:"Print the JSON Schema of the config file format and exit."`
	Version           bool     `help:"Print version information and exit."`
	Args              []string `arg:"" optional:"" name:"arg" help:"CONFIG_FILE, or SCHEMA_CLASS DSN [USER PASS] [EXTRA...]."`
}

const usageText = `usage:
  dbicdump [-I DIR]... [-o KEY=VALUE]... CONFIG_FILE
  dbicdump [-I DIR]... [-o KEY=VALUE]... SCHEMA_CLASS DSN [USER PASS] [EXTRA...]

examples:
  dbicdump -o dump_directory=./lib -o components='["json"]' \
      My::Schema 'dbi:Pg:dbname=app;host=localhost' user pass
  dbicdump My::Schema app.db
  dbicdump dbicdump.yaml
`

func main() {
	kong.Parse(&CLI,
		kong.Name("dbicdump"),
		kong.Description("Dump a Go schema class package from a live database."),
		kong.UsageOnError(),
	)
	os.Exit(run())
}

// run resolves the invocation and calls the loader once. Exit codes: 0 on
// success, 1 for usage errors, 2 for everything fatal.
func run() int {
	if CLI.Version {
		fmt.Println(version)
		return 0
	}
	if CLI.PrintConfigSchema {
		if err := printConfigSchema(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 2
		}
		return 0
	}

	// -I directories extend the search path before any other processing.
	for _, dir := range CLI.Include {
		schemaloader.AddSearchDir(dir)
	}

	inv, err := resolve(CLI.LoaderOption, CLI.Args)
	if err != nil {
		if isUsageError(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n\n%s", err, usageText)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	for _, dir := range inv.LibDirs {
		schemaloader.AddSearchDir(dir)
	}

	opts, err := schemaloader.DecodeOptions(inv.Options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if opts.Debug {
		fmt.Fprintf(os.Stderr, "resolved loader options:\n\n%s", spew.Sdump(inv.Options))
	}

	result, err := loader.GenerateSchemaAt(inv.SchemaClass, inv.Options, inv.ConnectInfo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if !opts.Quiet {
		displayResult(result)
	}
	return 0
}

// displayResult shows the dump summary.
func displayResult(result *loader.Result) {
	color.Green("✓ Schema dump completed")
	color.Green("  Source: %s %s", result.DatabaseInfo.Type, result.DatabaseInfo.Version)
	color.Green("  Schema class: %s", result.SchemaClass)
	color.Green("  Tables: %d", result.Tables)
	if result.Views > 0 {
		color.Green("  Views: %d", result.Views)
	}
	color.Green("  Output: %s", result.DumpDirectory)
	for _, file := range result.Files {
		color.Cyan("    %s", file)
	}
}
