package main

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestParseLoaderOptions(t *testing.T) {
	t.Run("StringAndListValues", func(t *testing.T) {
		options, err := parseLoaderOptions([]string{
			"dump_directory=./lib",
			`components=["json"]`,
		})
		assert.NoError(t, err)
		assert.Equal(t, "./lib", options["dump_directory"].(string))

		components, ok := options["components"].([]any)
		assert.True(t, ok)
		assert.Equal(t, []any{"json"}, components)
	})

	t.Run("LastValueWins", func(t *testing.T) {
		options, err := parseLoaderOptions([]string{
			"dump_directory=./first",
			"dump_directory=./second",
		})
		assert.NoError(t, err)
		assert.Equal(t, "./second", options["dump_directory"].(string))
	})

	t.Run("DashedKeysNormalize", func(t *testing.T) {
		options, err := parseLoaderOptions([]string{"dump-directory=./lib"})
		assert.NoError(t, err)
		assert.Equal(t, "./lib", options["dump_directory"].(string))
	})

	t.Run("MappingValue", func(t *testing.T) {
		options, err := parseLoaderOptions([]string{
			`moniker_map={ cds => "CompactDisc" }`,
		})
		assert.NoError(t, err)

		m, ok := options["moniker_map"].(map[string]any)
		assert.True(t, ok)
		assert.Equal(t, "CompactDisc", m["cds"].(string))
	})

	t.Run("WordListValue", func(t *testing.T) {
		options, err := parseLoaderOptions([]string{"db_schema=qw(app audit)"})
		assert.NoError(t, err)
		assert.Equal(t, []any{"app", "audit"}, options["db_schema"].([]any))
	})

	t.Run("UnknownKeyRejected", func(t *testing.T) {
		_, err := parseLoaderOptions([]string{"not_an_option=1"})
		assert.IsError(t, err, ErrUnknownLoaderOption)
		assert.Contains(t, err.Error(), "Unknown option: not_an_option")
		assert.False(t, isUsageError(err))
	})

	t.Run("MissingEqualsRejected", func(t *testing.T) {
		_, err := parseLoaderOptions([]string{"dump_directory"})
		assert.IsError(t, err, ErrBadLoaderOption)
		assert.True(t, isUsageError(err))
	})

	t.Run("BadExpressionRejected", func(t *testing.T) {
		_, err := parseLoaderOptions([]string{`components=["json"`})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "components")
	})
}

func TestResolvePositional(t *testing.T) {
	t.Run("UserAndPassConsumed", func(t *testing.T) {
		inv, err := resolve(nil, []string{
			"My::Schema", "dbi:Pg:dbname=app", "app_user", "secret",
		})
		assert.NoError(t, err)
		assert.Equal(t, "My::Schema", inv.SchemaClass)
		assert.Equal(t, "dbi:Pg:dbname=app", inv.ConnectInfo.DSN)
		assert.Equal(t, "app_user", inv.ConnectInfo.User)
		assert.Equal(t, "secret", inv.ConnectInfo.Password)
		assert.Equal(t, 0, len(inv.ConnectInfo.Extra))
	})

	t.Run("UserWithoutPass", func(t *testing.T) {
		inv, err := resolve(nil, []string{"My::Schema", "dbi:Pg:dbname=app", "app_user"})
		assert.NoError(t, err)
		assert.Equal(t, "app_user", inv.ConnectInfo.User)
		assert.Equal(t, "", inv.ConnectInfo.Password)
	})

	t.Run("SQLiteSkipsCredentials", func(t *testing.T) {
		inv, err := resolve(nil, []string{
			"My::Schema", "dbi:SQLite:app.db",
			`{ on_connect_do => "PRAGMA foreign_keys = ON" }`,
		})
		assert.NoError(t, err)
		assert.Equal(t, "", inv.ConnectInfo.User)
		assert.Equal(t, "", inv.ConnectInfo.Password)
		assert.Equal(t, 1, len(inv.ConnectInfo.Extra))

		stmts, err := inv.ConnectInfo.OnConnectDo()
		assert.NoError(t, err)
		assert.Equal(t, []string{"PRAGMA foreign_keys = ON"}, stmts)
	})

	t.Run("QuoteCharMappingExtra", func(t *testing.T) {
		inv, err := resolve(nil, []string{
			"My::Schema", "dbi:Pg:dbname=app", "app_user", "secret",
			`{ quote_char => "\"" }`,
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, len(inv.ConnectInfo.Extra))

		m, ok := inv.ConnectInfo.Extra[0].(map[string]any)
		assert.True(t, ok)
		assert.Equal(t, `"`, m["quote_char"].(string))
		assert.Equal(t, `"`, inv.ConnectInfo.QuoteChar())
	})

	t.Run("PlainStringExtrasPassThrough", func(t *testing.T) {
		inv, err := resolve(nil, []string{
			"My::Schema", "dbi:Pg:dbname=app", "app_user", "secret", "sslmode=require",
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, len(inv.ConnectInfo.Extra))
		assert.Equal(t, "sslmode=require", inv.ConnectInfo.Extra[0].(string))
	})

	t.Run("DumpDirectoryDefaults", func(t *testing.T) {
		inv, err := resolve(nil, []string{"My::Schema", "dbi:Pg:dbname=app"})
		assert.NoError(t, err)
		assert.Equal(t, ".", inv.Options["dump_directory"].(string))
	})

	t.Run("DumpDirectoryFlagKept", func(t *testing.T) {
		inv, err := resolve(
			[]string{"dump_directory=./lib"},
			[]string{"My::Schema", "dbi:Pg:dbname=app"},
		)
		assert.NoError(t, err)
		assert.Equal(t, "./lib", inv.Options["dump_directory"].(string))
	})

	t.Run("BadExtraExpressionRejected", func(t *testing.T) {
		_, err := resolve(nil, []string{
			"My::Schema", "dbi:Pg:dbname=app", "app_user", "secret", "{ unclosed =>",
		})
		assert.Error(t, err)
		assert.False(t, isUsageError(err))
	})
}

func TestResolveNoArguments(t *testing.T) {
	_, err := resolve(nil, nil)
	assert.IsError(t, err, ErrMissingArguments)
	assert.True(t, isUsageError(err))
}
