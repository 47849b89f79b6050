package schemaloader

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// OptionKind describes the value shape an option accepts.
type OptionKind int

const (
	KindBool OptionKind = iota
	KindString
	KindStringList // single string or list of strings
	KindPatternList
	KindStringMap
)

// optionRegistry enumerates every loader option this library recognizes.
// The CLI consults it through SupportsOption before accepting -o flags.
var optionRegistry = map[string]OptionKind{
	"debug":                   KindBool,
	"quiet":                   KindBool,
	"dump_directory":          KindString,
	"db_schema":               KindStringList,
	"constraint":              KindPatternList,
	"exclude":                 KindPatternList,
	"components":              KindStringList,
	"skip_relationships":      KindBool,
	"include_views":           KindBool,
	"naming":                  KindString,
	"moniker_map":             KindStringMap,
	"result_namespace":        KindString,
	"overwrite_modifications": KindBool,
	"really_erase_my_files":   KindBool,
}

// SupportsOption reports whether name is a recognized loader option.
// Names are expected in normalized (underscore) form.
func SupportsOption(name string) bool {
	_, ok := optionRegistry[name]
	return ok
}

// OptionNames returns every recognized option name, sorted.
func OptionNames() []string {
	names := make([]string, 0, len(optionRegistry))
	for name := range optionRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NormalizeOptionName maps command-line spellings to option names by
// replacing dashes with underscores.
func NormalizeOptionName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// Naming styles accepted by the naming option.
const (
	NamingDefault  = "default"
	NamingPreserve = "preserve"
)

// Options is the decoded, typed form of a raw loader-options mapping.
type Options struct {
	Debug                  bool
	Quiet                  bool
	DumpDirectory          string
	DBSchema               []string
	Constraint             []*regexp.Regexp
	Exclude                []*regexp.Regexp
	Components             []string
	SkipRelationships      bool
	IncludeViews           bool
	Naming                 string
	MonikerMap             map[string]string
	ResultNamespace        string
	OverwriteModifications bool
	ReallyEraseMyFiles     bool
}

// DecodeOptions validates a raw loader-options mapping against the registry
// and produces the typed form. It never touches the filesystem. Unknown
// names and wrong value shapes are reported with the offending option name.
func DecodeOptions(raw map[string]any) (*Options, error) {
	opts := &Options{
		DumpDirectory: ".",
		Naming:        NamingDefault,
	}
	for name, value := range raw {
		kind, ok := optionRegistry[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownOption, name)
		}
		var err error
		switch kind {
		case KindBool:
			var b bool
			if b, err = asBool(value); err == nil {
				switch name {
				case "debug":
					opts.Debug = b
				case "quiet":
					opts.Quiet = b
				case "skip_relationships":
					opts.SkipRelationships = b
				case "include_views":
					opts.IncludeViews = b
				case "overwrite_modifications":
					opts.OverwriteModifications = b
				case "really_erase_my_files":
					opts.ReallyEraseMyFiles = b
				}
			}
		case KindString:
			var s string
			if s, err = asString(value); err == nil {
				switch name {
				case "dump_directory":
					opts.DumpDirectory = s
				case "naming":
					opts.Naming = s
				case "result_namespace":
					opts.ResultNamespace = s
				}
			}
		case KindStringList:
			var list []string
			if list, err = asStringList(value); err == nil {
				switch name {
				case "db_schema":
					opts.DBSchema = list
				case "components":
					opts.Components = list
				}
			}
		case KindPatternList:
			var patterns []*regexp.Regexp
			if patterns, err = asPatternList(value); err == nil {
				switch name {
				case "constraint":
					opts.Constraint = patterns
				case "exclude":
					opts.Exclude = patterns
				}
			}
		case KindStringMap:
			var m map[string]string
			if m, err = asStringMap(value); err == nil {
				opts.MonikerMap = m
			}
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidOptionType, name, err)
		}
	}
	if opts.DumpDirectory == "" {
		opts.DumpDirectory = "."
	}
	if opts.Naming != NamingDefault && opts.Naming != NamingPreserve {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidNaming, opts.Naming)
	}
	return opts, nil
}

// asBool accepts Go bools, numbers, and the string spellings that arrive
// from -o flags (the flag value "1" stays a string through value parsing).
func asBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case int:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case uint64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true, nil
		case "0", "false", "no", "off", "":
			return false, nil
		}
		return false, fmt.Errorf("cannot interpret %q as bool", v)
	}
	return false, fmt.Errorf("cannot interpret %T as bool", value)
}

func asString(value any) (string, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("expected string, got %T", value)
}

func asStringList(value any) ([]string, error) {
	switch v := value.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		list := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string element, got %T", item)
			}
			list = append(list, s)
		}
		return list, nil
	}
	return nil, fmt.Errorf("expected string or list of strings, got %T", value)
}

func asPatternList(value any) ([]*regexp.Regexp, error) {
	list, err := asStringList(value)
	if err != nil {
		return nil, err
	}
	patterns := make([]*regexp.Regexp, 0, len(list))
	for _, expr := range list {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, expr, err)
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}

func asStringMap(value any) (map[string]string, error) {
	raw, ok := value.(map[string]any)
	if !ok {
		if m, ok := value.(map[string]string); ok {
			return m, nil
		}
		return nil, fmt.Errorf("expected mapping, got %T", value)
	}
	m := make(map[string]string, len(raw))
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string value for key %q, got %T", k, v)
		}
		m[k] = s
	}
	return m, nil
}
