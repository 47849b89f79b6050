package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"

	schemaloader "github.com/usna78/dbix-class-schema-loader"
)

// generatedHeader sits above the package clause of every dumped file.
const generatedHeader = "Created by dbicdump. DO NOT MODIFY the part of this file above the checksum line."

// GeneratedFile is one rendered dump file. Content holds the generated
// part only; the writer appends the checksum marker and any preserved
// custom part.
type GeneratedFile struct {
	Path    string // relative to the dump directory
	Content []byte
}

// TableModel is the view of one table handed to template components.
type TableModel struct {
	Package string
	Type    string
	Table   *schemaloader.TableInfo
	Fields  []FieldModel
}

// FieldModel pairs a Go struct field with the column it maps.
type FieldModel struct {
	Name   string
	Column string
	GoType string
}

// Generator renders a schema class package from an introspected schema:
// one schema.go with dump-wide metadata and one file per table and view.
type Generator struct {
	namer      *Namer
	components *componentSet
	resultNS   string
}

// NewGenerator creates a generator for the decoded options. Component
// resolution happens here so a bad components list fails before any
// database work.
func NewGenerator(opts *schemaloader.Options, namer *Namer) (*Generator, error) {
	components, err := resolveComponents(opts.Components)
	if err != nil {
		return nil, err
	}
	return &Generator{
		namer:      namer,
		components: components,
		resultNS:   opts.ResultNamespace,
	}, nil
}

// Generate renders every file for the schema class. Paths are relative to
// the dump directory. Quoting metadata lands in schema.go when the connect
// attributes carried any.
func (g *Generator) Generate(schemaClass string, schema *schemaloader.DatabaseSchema, quoteChar, nameSep string) ([]GeneratedFile, error) {
	classDir, pkg, err := SchemaPackagePath(schemaClass)
	if err != nil {
		return nil, err
	}

	tableDir, tablePkg := classDir, pkg
	if g.resultNS != "" {
		parts, err := ParseSchemaClass(g.resultNS)
		if err != nil {
			return nil, err
		}
		for i, part := range parts {
			parts[i] = strings.ToLower(part)
		}
		tableDir = filepath.Join(classDir, filepath.Join(parts...))
		tablePkg = parts[len(parts)-1]
	}

	var files []GeneratedFile

	content, err := g.renderSchemaFile(pkg, schemaClass, schema, quoteChar, nameSep)
	if err != nil {
		return nil, err
	}
	files = append(files, GeneratedFile{
		Path:    filepath.Join(classDir, "schema.go"),
		Content: content,
	})

	for _, table := range schema.Tables {
		content, err := g.renderTableFile(tablePkg, table)
		if err != nil {
			return nil, err
		}
		files = append(files, GeneratedFile{
			Path:    filepath.Join(tableDir, tableFileName(table.Name)),
			Content: content,
		})
	}

	for _, view := range schema.Views {
		content, err := g.renderViewFile(tablePkg, view)
		if err != nil {
			return nil, err
		}
		files = append(files, GeneratedFile{
			Path:    filepath.Join(tableDir, tableFileName(view.Name)),
			Content: content,
		})
	}

	return files, nil
}

func (g *Generator) renderSchemaFile(pkg, schemaClass string, schema *schemaloader.DatabaseSchema, quoteChar, nameSep string) ([]byte, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment(generatedHeader)

	defs := []jen.Code{
		jen.Id("SchemaClass").Op("=").Lit(schemaClass),
		jen.Id("Driver").Op("=").Lit(schema.DatabaseInfo.Type),
		jen.Id("DatabaseName").Op("=").Lit(schema.DatabaseInfo.Name),
	}
	if quoteChar != "" {
		defs = append(defs, jen.Id("QuoteChar").Op("=").Lit(quoteChar))
	}
	if nameSep != "" {
		defs = append(defs, jen.Id("NameSep").Op("=").Lit(nameSep))
	}
	f.Const().Defs(defs...)

	f.Comment("Tables lists every dumped table in dump order.")
	f.Var().Id("Tables").Op("=").Index().String().Values(nameLiterals(tableNamesOf(schema))...)

	if len(schema.Views) > 0 {
		f.Comment("Views lists every dumped view in dump order.")
		f.Var().Id("Views").Op("=").Index().String().Values(nameLiterals(viewNamesOf(schema))...)
	}

	return renderFile(f)
}

func (g *Generator) renderTableFile(pkg string, table *schemaloader.TableInfo) ([]byte, error) {
	typeName := g.namer.TableMoniker(table.Name)
	f := jen.NewFile(pkg)
	f.HeaderComment(generatedHeader)

	doc := fmt.Sprintf("%s is a row of the %s table.", typeName, table.Name)
	if table.Comment != "" {
		doc += "\n" + table.Comment
	}
	f.Comment(doc)
	f.Type().Id(typeName).Struct(g.structFields(table)...)

	f.Func().Params(jen.Id(typeName)).Id("TableName").Params().String().Block(
		jen.Return(jen.Lit(table.Name)),
	)

	f.Var().Id(typeName + "Columns").Op("=").Index().String().Values(nameLiterals(columnNamesOf(table.Columns))...)

	pk := table.PrimaryKey()
	if len(pk) > 0 {
		f.Var().Id(typeName + "PrimaryKey").Op("=").Index().String().Values(nameLiterals(pk)...)
	}

	uniques := jen.Dict{}
	for _, constraint := range table.Constraints {
		if constraint.Type == schemaloader.ConstraintUnique {
			uniques[jen.Lit(constraint.Name)] = jen.Index().String().Values(nameLiterals(constraint.Columns)...)
		}
	}
	if len(uniques) > 0 {
		f.Var().Id(typeName + "Uniques").Op("=").Map(jen.String()).Index().String().Values(uniques)
	}

	if g.components.stringer && len(pk) > 0 {
		g.stringerMethod(f, typeName, table, pk)
	}

	rendered, err := renderFile(f)
	if err != nil {
		return nil, err
	}
	extra, err := g.components.render(g.tableModel(pkg, typeName, table))
	if err != nil {
		return nil, err
	}
	return append(rendered, extra...), nil
}

func (g *Generator) renderViewFile(pkg string, view *schemaloader.ViewInfo) ([]byte, error) {
	typeName := g.namer.TableMoniker(view.Name)
	f := jen.NewFile(pkg)
	f.HeaderComment(generatedHeader)

	doc := fmt.Sprintf("%s is a read-only row of the %s view.", typeName, view.Name)
	if view.Comment != "" {
		doc += "\n" + view.Comment
	}
	f.Comment(doc)

	var fields []jen.Code
	for _, column := range view.Columns {
		fields = append(fields, g.columnField(column))
	}
	f.Type().Id(typeName).Struct(fields...)

	f.Func().Params(jen.Id(typeName)).Id("ViewName").Params().String().Block(
		jen.Return(jen.Lit(view.Name)),
	)

	f.Var().Id(typeName + "Columns").Op("=").Index().String().Values(nameLiterals(columnNamesOf(view.Columns))...)

	return renderFile(f)
}

func (g *Generator) structFields(table *schemaloader.TableInfo) []jen.Code {
	var fields []jen.Code
	for _, column := range table.Columns {
		fields = append(fields, g.columnField(column))
	}
	for _, rel := range table.Relationships {
		foreign := g.namer.TableMoniker(rel.ForeignTable)
		typ := jen.Op("*").Id(foreign)
		if rel.Kind == schemaloader.RelHasMany {
			typ = jen.Index().Op("*").Id(foreign)
		}
		field := jen.Id(rel.Accessor).Add(typ).Tag(g.fieldTag("-")).
			Comment(fmt.Sprintf("%s via %s", rel.Kind, strings.Join(rel.LocalColumns, ", ")))
		fields = append(fields, field)
	}
	return fields
}

func (g *Generator) columnField(column *schemaloader.ColumnInfo) jen.Code {
	field := jen.Id(g.namer.FieldName(column.Name)).Add(goTypeCode(column.GoType)).Tag(g.fieldTag(column.Name))
	if column.Comment != "" {
		field.Comment(column.Comment)
	}
	return field
}

func (g *Generator) fieldTag(column string) map[string]string {
	tag := map[string]string{"db": column}
	if g.components.json {
		tag["json"] = column
	}
	return tag
}

// stringerMethod emits a String method describing a row by its primary key.
func (g *Generator) stringerMethod(f *jen.File, typeName string, table *schemaloader.TableInfo, pk []string) {
	parts := make([]string, len(pk))
	for i, name := range pk {
		parts[i] = name + "=%v"
	}
	format := fmt.Sprintf("%s(%s)", typeName, strings.Join(parts, ", "))
	args := make([]jen.Code, 0, len(pk)+1)
	args = append(args, jen.Lit(format))
	for _, name := range pk {
		args = append(args, jen.Id("r").Dot(g.namer.FieldName(name)))
	}
	f.Func().Params(jen.Id("r").Id(typeName)).Id("String").Params().String().Block(
		jen.Return(jen.Qual("fmt", "Sprintf").Call(args...)),
	)
}

func (g *Generator) tableModel(pkg, typeName string, table *schemaloader.TableInfo) *TableModel {
	fields := make([]FieldModel, len(table.Columns))
	for i, column := range table.Columns {
		fields[i] = FieldModel{
			Name:   g.namer.FieldName(column.Name),
			Column: column.Name,
			GoType: column.GoType,
		}
	}
	return &TableModel{
		Package: pkg,
		Type:    typeName,
		Table:   table,
		Fields:  fields,
	}
}

// goTypeCode turns a mapped type string into jennifer code so qualified
// types pick up their imports.
func goTypeCode(goType string) *jen.Statement {
	if rest, ok := strings.CutPrefix(goType, "*"); ok {
		return jen.Op("*").Add(goTypeCode(rest))
	}
	switch goType {
	case GoTime:
		return jen.Qual("time", "Time")
	case GoJSON:
		return jen.Qual("encoding/json", "RawMessage")
	case GoBytes:
		return jen.Index().Byte()
	case "":
		return jen.Id(GoAny)
	default:
		return jen.Id(goType)
	}
}

func renderFile(f *jen.File) ([]byte, error) {
	var sb strings.Builder
	if err := f.Render(&sb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileWriteFailed, err)
	}
	out := sb.String()
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return []byte(out), nil
}

// tableFileName keeps one file per table next to schema.go, so a table
// actually named schema needs a different file name.
func tableFileName(name string) string {
	base := strings.ToLower(name)
	if base == "schema" {
		base = "schema_table"
	}
	return base + ".go"
}

func tableNamesOf(schema *schemaloader.DatabaseSchema) []string {
	names := make([]string, len(schema.Tables))
	for i, table := range schema.Tables {
		names[i] = table.Name
	}
	return names
}

func viewNamesOf(schema *schemaloader.DatabaseSchema) []string {
	names := make([]string, len(schema.Views))
	for i, view := range schema.Views {
		names[i] = view.Name
	}
	return names
}

func columnNamesOf(columns []*schemaloader.ColumnInfo) []string {
	names := make([]string, len(columns))
	for i, column := range columns {
		names[i] = column.Name
	}
	return names
}

func nameLiterals(names []string) []jen.Code {
	lits := make([]jen.Code, len(names))
	for i, name := range names {
		lits[i] = jen.Lit(name)
	}
	return lits
}
