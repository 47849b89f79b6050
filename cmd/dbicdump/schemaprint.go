package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/invopop/jsonschema"
)

// printConfigSchema writes the JSON Schema describing the config document
// format, for editor completion and config validation tooling.
func printConfigSchema(w io.Writer) error {
	schema := jsonschema.Reflect(&configDocument{})
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
