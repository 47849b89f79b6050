package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

var ErrUnsupportedConfigFormat = errors.New("unsupported config file format")

// configDocument is the config-file form of an invocation. One document
// per file; the same shape is accepted in YAML, JSON and HCL.
type configDocument struct {
	SchemaClass   string         `yaml:"schema_class" json:"schema_class" jsonschema:"required,description=Schema class to generate (My::Schema or my/schema)"`
	ConnectInfo   connectSection `yaml:"connect_info" json:"connect_info" jsonschema:"required"`
	LoaderOptions map[string]any `yaml:"loader_options" json:"loader_options,omitempty" jsonschema:"description=Loader options; same keys as the -o flag"`
	Lib           any            `yaml:"lib" json:"lib,omitempty" jsonschema:"description=Directory or list of directories added to the component search path"`
}

// connectSection mirrors the ordered connect-info tuple.
type connectSection struct {
	DSN     string         `yaml:"dsn" json:"dsn" jsonschema:"required"`
	User    string         `yaml:"user" json:"user,omitempty"`
	Pass    string         `yaml:"pass" json:"pass,omitempty"`
	Options map[string]any `yaml:"options" json:"options,omitempty" jsonschema:"description=Connection attributes such as quote_char and on_connect_do"`
}

func (c connectSection) isEmpty() bool {
	return c.DSN == "" && c.User == "" && c.Pass == "" && len(c.Options) == 0
}

// loadConfigDocument loads the file named by path, inferring the format
// from its extension.
func loadConfigDocument(path string) (*configDocument, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return loadYAMLConfig(path)
	case ".hcl":
		return loadHCLConfig(path)
	}
	return nil, fmt.Errorf("%w %q: supported formats are .yaml, .yml, .json and .hcl",
		ErrUnsupportedConfigFormat, filepath.Ext(path))
}

// loadYAMLConfig parses YAML and JSON documents. Unknown top-level keys are
// rejected; the document shape is closed.
func loadYAMLConfig(path string) (*configDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var doc configDocument
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &doc, nil
}

// loadEnvFiles loads a .env file from the current directory if one exists.
func loadEnvFiles() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}
	return nil
}

var (
	bracedVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareVarPattern   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the ${VAR} and $VAR forms.
func expandEnvVars(s string) string {
	s = bracedVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
	s = bareVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
	return s
}
