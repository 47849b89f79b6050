package schemaloader

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestSupportsOption(t *testing.T) {
	tests := []struct {
		name     string
		option   string
		expected bool
	}{
		{"dump_directory", "dump_directory", true},
		{"debug", "debug", true},
		{"components", "components", true},
		{"moniker_map", "moniker_map", true},
		{"really_erase_my_files", "really_erase_my_files", true},
		{"unknown option", "bogus_setting", false},
		{"dashed spelling is not normalized here", "dump-directory", false},
		{"empty name", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SupportsOption(tt.option))
		})
	}
}

func TestNormalizeOptionName(t *testing.T) {
	assert.Equal(t, "dump_directory", NormalizeOptionName("dump-directory"))
	assert.Equal(t, "skip_relationships", NormalizeOptionName("skip-relationships"))
	assert.Equal(t, "naming", NormalizeOptionName("naming"))
}

func TestDecodeOptions_Defaults(t *testing.T) {
	opts, err := DecodeOptions(map[string]any{})
	assert.NoError(t, err)
	assert.Equal(t, ".", opts.DumpDirectory)
	assert.Equal(t, "default", opts.Naming)
	assert.False(t, opts.Debug)
	assert.False(t, opts.SkipRelationships)
}

func TestDecodeOptions_Values(t *testing.T) {
	opts, err := DecodeOptions(map[string]any{
		"dump_directory":     "./lib",
		"debug":              "1",
		"quiet":              true,
		"db_schema":          []any{"public", "audit"},
		"components":         "json",
		"constraint":         "^user",
		"exclude":            []any{"_log$", "^tmp_"},
		"moniker_map":        map[string]any{"people": "Person"},
		"skip_relationships": int64(1),
		"naming":             "preserve",
	})
	assert.NoError(t, err)
	assert.Equal(t, "./lib", opts.DumpDirectory)
	assert.True(t, opts.Debug)
	assert.True(t, opts.Quiet)
	assert.Equal(t, []string{"public", "audit"}, opts.DBSchema)
	assert.Equal(t, []string{"json"}, opts.Components)
	assert.Equal(t, 1, len(opts.Constraint))
	assert.True(t, opts.Constraint[0].MatchString("users"))
	assert.Equal(t, 2, len(opts.Exclude))
	assert.True(t, opts.Exclude[0].MatchString("audit_log"))
	assert.Equal(t, map[string]string{"people": "Person"}, opts.MonikerMap)
	assert.True(t, opts.SkipRelationships)
	assert.Equal(t, "preserve", opts.Naming)
}

func TestDecodeOptions_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want error
	}{
		{"unknown option", map[string]any{"bogus_setting": "x"}, ErrUnknownOption},
		{"wrong shape for string", map[string]any{"dump_directory": []any{"a"}}, ErrInvalidOptionType},
		{"wrong shape for bool", map[string]any{"debug": []any{1}}, ErrInvalidOptionType},
		{"wrong shape for map", map[string]any{"moniker_map": "people=Person"}, ErrInvalidOptionType},
		{"bad pattern", map[string]any{"constraint": "("}, ErrInvalidOptionType},
		{"bad naming", map[string]any{"naming": "camel"}, ErrInvalidNaming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeOptions(tt.raw)
			assert.Error(t, err)
			assert.IsError(t, err, tt.want)
		})
	}
}

func TestDecodeOptions_UnknownNameInError(t *testing.T) {
	_, err := DecodeOptions(map[string]any{"use_moose": int64(1)})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "use_moose")
}
