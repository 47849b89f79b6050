package loader

import (
	"regexp"
	"strings"
)

// Go types emitted into generated result classes.
const (
	GoString = "string"
	GoInt    = "int64"
	GoUint   = "uint64"
	GoFloat  = "float64"
	GoBool   = "bool"
	GoTime   = "time.Time"
	GoBytes  = "[]byte"
	GoJSON   = "json.RawMessage"
	GoAny    = "any"
)

var mysqlBoolType = regexp.MustCompile(`^tinyint\s*\(\s*1\s*\)`)

// TypeMapper maps database column types to Go field types.
type TypeMapper struct {
	databaseType string
	typeMap      map[string]string
}

// NewTypeMapper creates a type mapper for the given database type.
func NewTypeMapper(databaseType string) *TypeMapper {
	m := &TypeMapper{databaseType: strings.ToLower(databaseType)}
	switch m.databaseType {
	case TypePostgreSQL, "postgres":
		m.typeMap = postgresTypeMap
	case TypeMySQL:
		m.typeMap = mysqlTypeMap
	default:
		m.typeMap = sqliteTypeMap
	}
	return m
}

// MapType maps a raw column type to a Go field type. Nullable columns get
// pointer types, except for types that are already nil-able.
func (m *TypeMapper) MapType(dbType string, nullable bool) string {
	goType := m.baseType(dbType)
	if nullable && goType != GoBytes && goType != GoJSON && goType != GoAny {
		return "*" + goType
	}
	return goType
}

func (m *TypeMapper) baseType(dbType string) string {
	normalized := strings.ToLower(strings.TrimSpace(dbType))
	if normalized == "" {
		// SQLite allows untyped columns
		return GoString
	}

	// PostgreSQL array types scan into generic values
	if strings.HasSuffix(normalized, "[]") {
		return GoAny
	}

	// MySQL convention: tinyint(1) is a boolean
	if m.databaseType == TypeMySQL && mysqlBoolType.MatchString(normalized) {
		return GoBool
	}

	// Unsigned integer columns widen to uint64
	if m.databaseType == TypeMySQL && strings.Contains(normalized, "unsigned") {
		baseType := strings.Fields(normalized)[0]
		baseType = strings.Split(baseType, "(")[0]
		if mapped, exists := m.typeMap[baseType]; exists {
			if mapped == GoInt {
				return GoUint
			}
			return mapped
		}
	}

	// Types with parameters, e.g. varchar(255), numeric(10,2)
	if strings.Contains(normalized, "(") {
		baseType := strings.TrimSpace(strings.Split(normalized, "(")[0])
		if mapped, exists := m.typeMap[baseType]; exists {
			return mapped
		}
	}

	if mapped, exists := m.typeMap[normalized]; exists {
		return mapped
	}

	// Compound type names, e.g. "unsigned big int", "varying character"
	for _, word := range strings.Fields(normalized) {
		if mapped, exists := m.typeMap[word]; exists {
			return mapped
		}
	}

	return GoString
}

var postgresTypeMap = map[string]string{
	// Integer types
	"integer":     GoInt,
	"int":         GoInt,
	"int4":        GoInt,
	"bigint":      GoInt,
	"int8":        GoInt,
	"smallint":    GoInt,
	"int2":        GoInt,
	"serial":      GoInt,
	"bigserial":   GoInt,
	"smallserial": GoInt,

	// String types
	"text":      GoString,
	"varchar":   GoString,
	"character": GoString,
	"char":      GoString,
	"bpchar":    GoString,

	// Float types
	"numeric":          GoFloat,
	"decimal":          GoFloat,
	"real":             GoFloat,
	"float4":           GoFloat,
	"double precision": GoFloat,
	"float8":           GoFloat,
	"float":            GoFloat,

	// Boolean types
	"boolean": GoBool,
	"bool":    GoBool,

	// Date/Time types
	"date":                        GoTime,
	"time":                        GoTime,
	"time with time zone":         GoTime,
	"time without time zone":      GoTime,
	"timetz":                      GoTime,
	"timestamp":                   GoTime,
	"timestamp with time zone":    GoTime,
	"timestamp without time zone": GoTime,
	"timestamptz":                 GoTime,

	// JSON types
	"json":  GoJSON,
	"jsonb": GoJSON,

	// Binary types
	"bytea": GoBytes,

	// Other types that map to string
	"uuid":     GoString,
	"inet":     GoString,
	"cidr":     GoString,
	"macaddr":  GoString,
	"interval": GoString,
	"bit":      GoString,
	"varbit":   GoString,
	"money":    GoString,
	"xml":      GoString,
}

var mysqlTypeMap = map[string]string{
	// Integer types
	"int":       GoInt,
	"integer":   GoInt,
	"bigint":    GoInt,
	"smallint":  GoInt,
	"tinyint":   GoInt,
	"mediumint": GoInt,
	"year":      GoInt,

	// String types
	"varchar":    GoString,
	"char":       GoString,
	"text":       GoString,
	"tinytext":   GoString,
	"mediumtext": GoString,
	"longtext":   GoString,

	// Float types
	"decimal": GoFloat,
	"numeric": GoFloat,
	"float":   GoFloat,
	"double":  GoFloat,
	"real":    GoFloat,

	// Boolean types
	"boolean": GoBool,
	"bool":    GoBool,

	// Date/Time types
	"date":      GoTime,
	"time":      GoTime,
	"datetime":  GoTime,
	"timestamp": GoTime,

	// JSON types
	"json": GoJSON,

	// Binary types
	"blob":       GoBytes,
	"tinyblob":   GoBytes,
	"mediumblob": GoBytes,
	"longblob":   GoBytes,
	"binary":     GoBytes,
	"varbinary":  GoBytes,

	// Other types
	"enum": GoString,
	"set":  GoString,
}

var sqliteTypeMap = map[string]string{
	// Integer types
	"integer":  GoInt,
	"int":      GoInt,
	"bigint":   GoInt,
	"smallint": GoInt,
	"tinyint":  GoInt,

	// String types
	"text":      GoString,
	"varchar":   GoString,
	"char":      GoString,
	"character": GoString,
	"clob":      GoString,
	"nchar":     GoString,
	"nvarchar":  GoString,

	// Float types
	"real":    GoFloat,
	"double":  GoFloat,
	"float":   GoFloat,
	"numeric": GoFloat,
	"decimal": GoFloat,

	// Boolean types
	"boolean": GoBool,
	"bool":    GoBool,

	// Date/Time types
	"date":      GoTime,
	"time":      GoTime,
	"datetime":  GoTime,
	"timestamp": GoTime,

	// Binary types
	"blob": GoBytes,
}
