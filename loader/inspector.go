package loader

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	schemaloader "github.com/usna78/dbix-class-schema-loader"
)

// Inspector is the database-agnostic introspection interface. Each driver
// reads tables, columns, constraints, indexes and optionally views into the
// shared schema model.
type Inspector interface {
	Inspect(db *sql.DB, config InspectConfig) (*schemaloader.DatabaseSchema, error)
	ListSchemas(db *sql.DB) ([]string, error)
	DatabaseInfo(db *sql.DB) (schemaloader.DatabaseInfo, error)
}

// InspectConfig selects what Inspect reads.
type InspectConfig struct {
	Schemas      []string // schemas to introspect; empty means the driver default
	AllSchemas   bool     // db_schema "%" selects every non-system schema
	Constraint   []*regexp.Regexp
	Exclude      []*regexp.Regexp
	IncludeViews bool
}

// NewInspector creates an inspector for the given database type.
func NewInspector(databaseType string) (Inspector, error) {
	switch strings.ToLower(databaseType) {
	case TypePostgreSQL, "postgres":
		return NewPostgreSQLInspector(), nil
	case TypeMySQL:
		return NewMySQLInspector(), nil
	case TypeSQLite, "sqlite3":
		return NewSQLiteInspector(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDatabase, databaseType)
	}
}

// shouldIncludeTable applies the constraint and exclude pattern filters.
// Constraint patterns narrow the selection, exclusions always win.
func shouldIncludeTable(tableName string, config InspectConfig) bool {
	if len(config.Constraint) > 0 {
		matched := false
		for _, re := range config.Constraint {
			if re.MatchString(tableName) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, re := range config.Exclude {
		if re.MatchString(tableName) {
			return false
		}
	}
	return true
}

// resolveSchemas expands the db_schema selection against the live database:
// the "%" wildcard selects every non-system schema, an empty selection falls
// back to the driver default.
func resolveSchemas(db *sql.DB, inspector Inspector, config InspectConfig, defaults []string) ([]string, error) {
	if config.AllSchemas {
		return inspector.ListSchemas(db)
	}
	if len(config.Schemas) == 0 {
		return defaults, nil
	}
	return config.Schemas, nil
}

// baseInspector carries the shared type mapping used by every driver.
type baseInspector struct {
	typeMapper *TypeMapper
}

func newBaseInspector(databaseType string) baseInspector {
	return baseInspector{typeMapper: NewTypeMapper(databaseType)}
}

// mapColumn fills the Go-facing fields derived from the raw database type.
func (b baseInspector) mapColumn(col *schemaloader.ColumnInfo) {
	col.GoType = b.typeMapper.MapType(col.DataType, col.Nullable)
}
