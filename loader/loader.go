// Package loader implements schema dumping. It introspects a live database
// and renders one Go source file per table under the dump directory, with
// relationships inferred from foreign keys. Custom content below the
// checksum marker of a previously dumped file survives a redump.
package loader

import (
	"fmt"
	"path/filepath"

	schemaloader "github.com/usna78/dbix-class-schema-loader"
)

// DumpOperation is one schema dump workflow.
type DumpOperation struct {
	SchemaClass string
	ConnectInfo schemaloader.ConnectInfo
	RawOptions  map[string]any
}

// Result summarizes a finished dump.
type Result struct {
	SchemaClass   string
	DumpDirectory string
	DatabaseInfo  schemaloader.DatabaseInfo
	Tables        int
	Views         int
	Files         []string
	Options       *schemaloader.Options
}

// Execute runs the dump: decode options, connect, inspect, infer
// relationships, render, write. Option and component problems surface
// before the first connection attempt.
func (op *DumpOperation) Execute() (*Result, error) {
	opts, err := schemaloader.DecodeOptions(op.RawOptions)
	if err != nil {
		return nil, err
	}
	if _, err := ParseSchemaClass(op.SchemaClass); err != nil {
		return nil, err
	}
	if err := op.ConnectInfo.Validate(); err != nil {
		return nil, err
	}

	namer := NewNamer(opts.Naming, opts.MonikerMap)
	generator, err := NewGenerator(opts, namer)
	if err != nil {
		return nil, err
	}

	db, connInfo, err := NewConnector().Connect(op.ConnectInfo)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	inspector, err := NewInspector(connInfo.Type)
	if err != nil {
		return nil, err
	}

	config := InspectConfig{
		Constraint:   opts.Constraint,
		Exclude:      opts.Exclude,
		IncludeViews: opts.IncludeViews,
	}
	for _, name := range opts.DBSchema {
		// db_schema accepts % for every non-system schema.
		if name == "%" {
			config.AllSchemas = true
			continue
		}
		config.Schemas = append(config.Schemas, name)
	}

	schema, err := inspector.Inspect(db, config)
	if err != nil {
		return nil, err
	}
	if len(schema.Tables) == 0 && len(schema.Views) == 0 {
		return nil, fmt.Errorf("%w: nothing matched in %q", ErrNoTablesFound, schema.DatabaseInfo.Name)
	}

	if !opts.SkipRelationships {
		NewRelationshipBuilder(namer).Build(schema)
	}

	files, err := generator.Generate(op.SchemaClass, schema, op.ConnectInfo.QuoteChar(), op.ConnectInfo.NameSep())
	if err != nil {
		return nil, err
	}

	writer := FileWriter{
		OverwriteModifications: opts.OverwriteModifications,
		ReallyEraseMyFiles:     opts.ReallyEraseMyFiles,
	}
	written := make([]string, 0, len(files))
	for _, file := range files {
		target := filepath.Join(opts.DumpDirectory, file.Path)
		if err := writer.WriteFile(target, file.Content); err != nil {
			return nil, err
		}
		written = append(written, target)
	}

	return &Result{
		SchemaClass:   op.SchemaClass,
		DumpDirectory: opts.DumpDirectory,
		DatabaseInfo:  schema.DatabaseInfo,
		Tables:        len(schema.Tables),
		Views:         len(schema.Views),
		Files:         written,
		Options:       opts,
	}, nil
}

// GenerateSchemaAt dumps schemaClass from the database described by
// connectInfo, applying rawOptions. This is the whole programmatic surface
// the command line uses, called once per invocation.
func GenerateSchemaAt(schemaClass string, rawOptions map[string]any, connectInfo schemaloader.ConnectInfo) (*Result, error) {
	op := &DumpOperation{
		SchemaClass: schemaClass,
		ConnectInfo: connectInfo,
		RawOptions:  rawOptions,
	}
	return op.Execute()
}
