package loader

import (
	"fmt"
	"regexp"
	"strings"

	pluralize "github.com/gertd/go-pluralize"
)

// Namer converts database identifiers into Go names. The default style
// singularizes the last word of a table moniker so row structs read as one
// record; the preserve style keeps every word as found.
type Namer struct {
	preserve   bool
	monikerMap map[string]string
	plural     *pluralize.Client
}

// NewNamer creates a Namer for the given naming style and moniker overrides.
func NewNamer(naming string, monikerMap map[string]string) *Namer {
	return &Namer{
		preserve:   naming == "preserve",
		monikerMap: monikerMap,
		plural:     pluralize.NewClient(),
	}
}

// TableMoniker returns the Go type name for a table. An entry in the
// moniker map wins over the derived name.
func (n *Namer) TableMoniker(tableName string) string {
	if moniker, ok := n.monikerMap[tableName]; ok {
		return moniker
	}
	words := splitIdentifier(tableName)
	if !n.preserve && len(words) > 0 {
		last := len(words) - 1
		words[last] = n.plural.Singular(words[last])
	}
	return joinExported(words)
}

// FieldName returns the Go struct field name for a column.
func (n *Namer) FieldName(columnName string) string {
	return joinExported(splitIdentifier(columnName))
}

// Pluralize returns the plural form of a moniker, used for collection
// accessors.
func (n *Namer) Pluralize(moniker string) string {
	return n.plural.Plural(moniker)
}

// splitIdentifier breaks a database identifier into words on underscores,
// dashes and spaces.
func splitIdentifier(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
}

func joinExported(words []string) string {
	var sb strings.Builder
	for _, word := range words {
		sb.WriteString(capitalizeWord(word))
	}
	name := sb.String()
	if name == "" {
		return name
	}
	// Go identifiers cannot start with a digit.
	if name[0] >= '0' && name[0] <= '9' {
		name = "X" + name
	}
	return name
}

// capitalizeWord capitalizes a word with special handling for common
// abbreviations.
func capitalizeWord(word string) string {
	switch strings.ToLower(word) {
	case "id":
		return "ID"
	case "uuid":
		return "UUID"
	case "url":
		return "URL"
	case "http":
		return "HTTP"
	case "api":
		return "API"
	case "json":
		return "JSON"
	case "xml":
		return "XML"
	case "sql":
		return "SQL"
	case "db":
		return "DB"
	default:
		if len(word) == 0 {
			return ""
		}
		return strings.ToUpper(string(word[0])) + strings.ToLower(word[1:])
	}
}

var schemaClassPart = regexp.MustCompile(`^[A-Za-z]\w*$`)

// ParseSchemaClass splits a schema class name into its parts. Both
// double-colon and slash separators are accepted, so My::Schema and
// my/schema name the same package layout.
func ParseSchemaClass(schemaClass string) ([]string, error) {
	name := strings.TrimSpace(schemaClass)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidSchemaClass)
	}
	name = strings.ReplaceAll(name, "::", "/")
	parts := strings.Split(name, "/")
	for _, part := range parts {
		if !schemaClassPart.MatchString(part) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSchemaClass, schemaClass)
		}
	}
	return parts, nil
}

// SchemaPackagePath returns the directory path (relative to the dump
// directory) and the package name for a schema class.
func SchemaPackagePath(schemaClass string) (dir string, pkg string, err error) {
	parts, err := ParseSchemaClass(schemaClass)
	if err != nil {
		return "", "", err
	}
	lowered := make([]string, len(parts))
	for i, part := range parts {
		lowered[i] = strings.ToLower(part)
	}
	return strings.Join(lowered, "/"), lowered[len(lowered)-1], nil
}
