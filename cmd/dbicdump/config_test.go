package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, []byte(content), 0o644)
	assert.NoError(t, err)
	return path
}

func TestResolveConfigFileYAML(t *testing.T) {
	path := writeConfigFile(t, "dbicdump.yaml", `
schema_class: My::Schema
lib:
  - ./components
  - ./shared
connect_info:
  dsn: postgres://localhost/app
  user: app
  pass: secret
  options:
    quote_char: '"'
    name_sep: "."
loader_options:
  dump_directory: ./lib
  skip-relationships: true
  components:
    - json
`)

	inv, err := resolve(nil, []string{path})
	assert.NoError(t, err)
	assert.Equal(t, "My::Schema", inv.SchemaClass)
	assert.Equal(t, "postgres://localhost/app", inv.ConnectInfo.DSN)
	assert.Equal(t, "app", inv.ConnectInfo.User)
	assert.Equal(t, "secret", inv.ConnectInfo.Password)
	assert.Equal(t, []string{"./components", "./shared"}, inv.LibDirs)
	assert.Equal(t, `"`, inv.ConnectInfo.QuoteChar())
	assert.Equal(t, ".", inv.ConnectInfo.NameSep())

	assert.Equal(t, "./lib", inv.Options["dump_directory"].(string))
	assert.Equal(t, true, inv.Options["skip_relationships"].(bool))
	assert.Equal(t, []any{"json"}, inv.Options["components"].([]any))
}

func TestResolveConfigFileJSON(t *testing.T) {
	path := writeConfigFile(t, "dbicdump.json", `{
  "schema_class": "My::Schema",
  "lib": "./components",
  "connect_info": {
    "dsn": "mysql://localhost/shop",
    "user": "root",
    "pass": "secret"
  },
  "loader_options": {
    "include_views": true
  }
}`)

	inv, err := resolve(nil, []string{path})
	assert.NoError(t, err)
	assert.Equal(t, "My::Schema", inv.SchemaClass)
	assert.Equal(t, "mysql://localhost/shop", inv.ConnectInfo.DSN)
	assert.Equal(t, []string{"./components"}, inv.LibDirs)
	assert.Equal(t, true, inv.Options["include_views"].(bool))
}

func TestResolveConfigFileHCL(t *testing.T) {
	path := writeConfigFile(t, "dbicdump.hcl", `
schema_class = "My::Schema"
lib          = "./components"

connect_info {
  dsn  = "postgres://localhost/app"
  user = "app"
  pass = "secret"

  options = {
    quote_char = "\""
  }
}

loader_options {
  dump_directory = "./lib"
  include_views  = true
  components     = ["json", "stringer"]
}
`)

	inv, err := resolve(nil, []string{path})
	assert.NoError(t, err)
	assert.Equal(t, "My::Schema", inv.SchemaClass)
	assert.Equal(t, "postgres://localhost/app", inv.ConnectInfo.DSN)
	assert.Equal(t, "app", inv.ConnectInfo.User)
	assert.Equal(t, "secret", inv.ConnectInfo.Password)
	assert.Equal(t, []string{"./components"}, inv.LibDirs)
	assert.Equal(t, `"`, inv.ConnectInfo.QuoteChar())

	assert.Equal(t, "./lib", inv.Options["dump_directory"].(string))
	assert.Equal(t, true, inv.Options["include_views"].(bool))
	assert.Equal(t, []any{"json", "stringer"}, inv.Options["components"].([]any))
}

func TestConfigFlagPrecedence(t *testing.T) {
	path := writeConfigFile(t, "dbicdump.yaml", `
schema_class: My::Schema
connect_info:
  dsn: postgres://localhost/app
loader_options:
  dump_directory: ./from_config
  naming: preserve
`)

	inv, err := resolve([]string{"dump_directory=./from_flag"}, []string{path})
	assert.NoError(t, err)
	assert.Equal(t, "./from_flag", inv.Options["dump_directory"].(string))
	assert.Equal(t, "preserve", inv.Options["naming"].(string))
}

func TestConfigDumpDirectoryDefault(t *testing.T) {
	path := writeConfigFile(t, "dbicdump.yaml", `
schema_class: My::Schema
connect_info:
  dsn: postgres://localhost/app
`)

	inv, err := resolve(nil, []string{path})
	assert.NoError(t, err)
	assert.Equal(t, ".", inv.Options["dump_directory"].(string))
}

func TestConfigEnvExpansion(t *testing.T) {
	t.Setenv("DBICDUMP_TEST_HOST", "db.example.com")
	t.Setenv("DBICDUMP_TEST_PASS", "hunter2")

	path := writeConfigFile(t, "dbicdump.yaml", `
schema_class: My::Schema
connect_info:
  dsn: postgres://${DBICDUMP_TEST_HOST}/app
  user: app
  pass: $DBICDUMP_TEST_PASS
`)

	inv, err := resolve(nil, []string{path})
	assert.NoError(t, err)
	assert.Equal(t, "postgres://db.example.com/app", inv.ConnectInfo.DSN)
	assert.Equal(t, "hunter2", inv.ConnectInfo.Password)
}

func TestConfigUsageErrors(t *testing.T) {
	t.Run("MissingSchemaClass", func(t *testing.T) {
		path := writeConfigFile(t, "dbicdump.yaml", `
connect_info:
  dsn: postgres://localhost/app
`)
		_, err := resolve(nil, []string{path})
		assert.IsError(t, err, ErrConfigIncomplete)
		assert.True(t, isUsageError(err))
	})

	t.Run("EmptyConnectInfo", func(t *testing.T) {
		path := writeConfigFile(t, "dbicdump.yaml", `
schema_class: My::Schema
connect_info: {}
`)
		_, err := resolve(nil, []string{path})
		assert.IsError(t, err, ErrConfigIncomplete)
		assert.True(t, isUsageError(err))
	})
}

func TestConfigFatalErrors(t *testing.T) {
	t.Run("UnsupportedExtension", func(t *testing.T) {
		path := writeConfigFile(t, "dbicdump.toml", `schema_class = "My::Schema"`)
		_, err := resolve(nil, []string{path})
		assert.IsError(t, err, ErrUnsupportedConfigFormat)
		assert.False(t, isUsageError(err))
		assert.Contains(t, err.Error(), ".yaml")
		assert.Contains(t, err.Error(), ".hcl")
	})

	t.Run("UnknownTopLevelKey", func(t *testing.T) {
		path := writeConfigFile(t, "dbicdump.yaml", `
schema_class: My::Schema
dump_directory: ./lib
connect_info:
  dsn: postgres://localhost/app
`)
		_, err := resolve(nil, []string{path})
		assert.Error(t, err)
		assert.False(t, isUsageError(err))
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := resolve(nil, []string{filepath.Join(t.TempDir(), "nope.yaml")})
		assert.Error(t, err)
	})

	t.Run("BadLibShape", func(t *testing.T) {
		path := writeConfigFile(t, "dbicdump.yaml", `
schema_class: My::Schema
lib: 42
connect_info:
  dsn: postgres://localhost/app
`)
		_, err := resolve(nil, []string{path})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "lib")
	})
}
