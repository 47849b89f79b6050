package loader

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestTypeMapperPostgreSQL(t *testing.T) {
	mapper := NewTypeMapper(TypePostgreSQL)

	testCases := []struct {
		dbType   string
		nullable bool
		expected string
	}{
		{"integer", false, "int64"},
		{"integer", true, "*int64"},
		{"bigserial", false, "int64"},
		{"text", false, "string"},
		{"varchar(255)", false, "string"},
		{"character varying", false, "string"},
		{"numeric(10,2)", false, "float64"},
		{"double precision", false, "float64"},
		{"boolean", true, "*bool"},
		{"timestamp with time zone", false, "time.Time"},
		{"timestamptz", true, "*time.Time"},
		{"json", false, "json.RawMessage"},
		{"jsonb", true, "json.RawMessage"},
		{"bytea", true, "[]byte"},
		{"uuid", false, "string"},
		{"integer[]", false, "any"},
		{"text[]", true, "any"},
		{"money", false, "string"},
		{"some_custom_domain", false, "string"},
	}

	for _, tc := range testCases {
		t.Run(tc.dbType, func(t *testing.T) {
			assert.Equal(t, tc.expected, mapper.MapType(tc.dbType, tc.nullable))
		})
	}
}

func TestTypeMapperMySQL(t *testing.T) {
	mapper := NewTypeMapper(TypeMySQL)

	testCases := []struct {
		dbType   string
		nullable bool
		expected string
	}{
		{"int", false, "int64"},
		{"tinyint(1)", false, "bool"},
		{"tinyint(1)", true, "*bool"},
		{"tinyint(4)", false, "int64"},
		{"bigint unsigned", false, "uint64"},
		{"int(10) unsigned", false, "uint64"},
		{"varchar(191)", false, "string"},
		{"enum('a','b')", false, "string"},
		{"datetime", true, "*time.Time"},
		{"year", false, "int64"},
		{"json", false, "json.RawMessage"},
		{"longblob", true, "[]byte"},
		{"decimal(12,4)", false, "float64"},
	}

	for _, tc := range testCases {
		t.Run(tc.dbType, func(t *testing.T) {
			assert.Equal(t, tc.expected, mapper.MapType(tc.dbType, tc.nullable))
		})
	}
}

func TestTypeMapperSQLite(t *testing.T) {
	mapper := NewTypeMapper(TypeSQLite)

	testCases := []struct {
		dbType   string
		nullable bool
		expected string
	}{
		{"INTEGER", false, "int64"},
		{"TEXT", true, "*string"},
		{"REAL", false, "float64"},
		{"BLOB", false, "[]byte"},
		{"BOOLEAN", false, "bool"},
		{"DATETIME", false, "time.Time"},
		{"unsigned big int", false, "int64"},
		{"", false, "string"}, // untyped column
		{"", true, "*string"},
	}

	for _, tc := range testCases {
		name := tc.dbType
		if name == "" {
			name = "untyped"
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, mapper.MapType(tc.dbType, tc.nullable))
		})
	}
}
