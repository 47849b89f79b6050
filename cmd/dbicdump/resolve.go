package main

import (
	"errors"
	"fmt"
	"strings"

	schemaloader "github.com/usna78/dbix-class-schema-loader"
	"github.com/usna78/dbix-class-schema-loader/literal"
)

// Usage errors print the synopsis and exit 1. Everything else is fatal.
var (
	ErrMissingArguments = errors.New("a config file or a schema class and DSN are required")
	ErrConfigIncomplete = errors.New("config file must provide schema_class and a non-empty connect_info section")
	ErrBadLoaderOption  = errors.New("loader options take the form KEY=VALUE")
)

// ErrUnknownLoaderOption prints verbatim when a -o key fails the
// capability check.
var ErrUnknownLoaderOption = errors.New("Unknown option")

// invocation is everything resolve extracts from the command line: the
// arguments for the one GenerateSchemaAt call plus any config-file lib
// directories still to be added to the component search path.
type invocation struct {
	SchemaClass string
	Options     map[string]any
	ConnectInfo schemaloader.ConnectInfo
	LibDirs     []string
}

// isUsageError reports whether err should print the synopsis instead of a
// plain fatal message.
func isUsageError(err error) bool {
	return errors.Is(err, ErrMissingArguments) ||
		errors.Is(err, ErrConfigIncomplete) ||
		errors.Is(err, ErrBadLoaderOption)
}

// resolve turns -o flags and positional arguments into an invocation.
// Exactly one positional means config-file mode; two or more mean
// schema_class dsn [user pass] [extra...]; zero is a usage error.
func resolve(loaderOptions []string, args []string) (*invocation, error) {
	flagOptions, err := parseLoaderOptions(loaderOptions)
	if err != nil {
		return nil, err
	}

	switch len(args) {
	case 0:
		return nil, ErrMissingArguments
	case 1:
		return resolveConfigFile(args[0], flagOptions)
	default:
		return resolvePositional(args, flagOptions)
	}
}

// parseLoaderOptions folds repeated -o KEY=VALUE flags into one mapping.
// Keys are normalized (dashes to underscores) and checked against the
// option registry before the value is parsed; the last value per key wins.
func parseLoaderOptions(pairs []string) (map[string]any, error) {
	options := map[string]any{}
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("%w: got %q", ErrBadLoaderOption, pair)
		}
		key = schemaloader.NormalizeOptionName(key)
		if !schemaloader.SupportsOption(key) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownLoaderOption, key)
		}
		parsed, err := literal.MaybeParse(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for option %s: %w", key, err)
		}
		options[key] = parsed
	}
	return options, nil
}

// resolvePositional handles the schema_class dsn [user pass] [extra...]
// form. SQLite DSNs take no credentials, so user and password stay empty
// and no positional is consumed for them.
func resolvePositional(args []string, options map[string]any) (*invocation, error) {
	connectInfo := schemaloader.ConnectInfo{DSN: args[1]}
	rest := args[2:]

	if !connectInfo.IsSQLite() {
		if len(rest) > 0 {
			connectInfo.User = rest[0]
			rest = rest[1:]
		}
		if len(rest) > 0 {
			connectInfo.Password = rest[0]
			rest = rest[1:]
		}
	}

	for _, arg := range rest {
		parsed, err := literal.MaybeParse(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid connect info argument %q: %w", arg, err)
		}
		connectInfo.Extra = append(connectInfo.Extra, parsed)
	}

	applyDumpDirectoryDefault(options)

	return &invocation{
		SchemaClass: args[0],
		Options:     options,
		ConnectInfo: connectInfo,
	}, nil
}

// resolveConfigFile handles the single-positional form. Loader options from
// the file merge under the -o flags, key by key.
func resolveConfigFile(path string, flagOptions map[string]any) (*invocation, error) {
	doc, err := loadConfigDocument(path)
	if err != nil {
		return nil, err
	}
	if doc.SchemaClass == "" || doc.ConnectInfo.isEmpty() {
		return nil, fmt.Errorf("%w: %s", ErrConfigIncomplete, path)
	}

	libDirs, err := libPaths(doc.Lib)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	options := map[string]any{}
	for key, value := range doc.LoaderOptions {
		options[schemaloader.NormalizeOptionName(key)] = value
	}
	for key, value := range flagOptions {
		options[key] = value
	}
	applyDumpDirectoryDefault(options)

	connectInfo := schemaloader.ConnectInfo{
		DSN:      expandEnvVars(doc.ConnectInfo.DSN),
		User:     expandEnvVars(doc.ConnectInfo.User),
		Password: expandEnvVars(doc.ConnectInfo.Pass),
	}
	if len(doc.ConnectInfo.Options) > 0 {
		connectInfo.Extra = append(connectInfo.Extra, doc.ConnectInfo.Options)
	}

	return &invocation{
		SchemaClass: doc.SchemaClass,
		Options:     options,
		ConnectInfo: connectInfo,
		LibDirs:     libDirs,
	}, nil
}

func applyDumpDirectoryDefault(options map[string]any) {
	if _, ok := options["dump_directory"]; !ok {
		options["dump_directory"] = "."
	}
}

// libPaths normalizes the config lib key, which accepts a single path or a
// list of paths, to a list in declaration order.
func libPaths(lib any) ([]string, error) {
	switch v := lib.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		paths := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("lib entries must be strings, got %T", item)
			}
			paths = append(paths, s)
		}
		return paths, nil
	}
	return nil, fmt.Errorf("lib must be a string or a list of strings, got %T", lib)
}
