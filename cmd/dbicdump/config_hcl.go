package main

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// hclDocument decodes the top-level schema. The two block bodies stay raw:
// loader_options is an open attribute set, and connect_info is validated
// by hand so a missing block becomes a usage error, not a decode error.
type hclDocument struct {
	SchemaClass   string        `hcl:"schema_class,optional"`
	Lib           *cty.Value    `hcl:"lib,optional"`
	ConnectInfo   *hclAttrBlock `hcl:"connect_info,block"`
	LoaderOptions *hclAttrBlock `hcl:"loader_options,block"`
}

type hclAttrBlock struct {
	Body hcl.Body `hcl:",remain"`
}

func loadHCLConfig(path string) (*configDocument, error) {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}

	var raw hclDocument
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}

	doc := &configDocument{SchemaClass: raw.SchemaClass}

	if raw.Lib != nil {
		lib, err := ctyToGo(*raw.Lib)
		if err != nil {
			return nil, fmt.Errorf("%s: lib: %w", path, err)
		}
		doc.Lib = lib
	}

	if raw.ConnectInfo != nil {
		attrs, err := blockAttributes(raw.ConnectInfo.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: connect_info: %w", path, err)
		}
		for name, value := range attrs {
			switch name {
			case "dsn":
				doc.ConnectInfo.DSN, _ = value.(string)
			case "user":
				doc.ConnectInfo.User, _ = value.(string)
			case "pass":
				doc.ConnectInfo.Pass, _ = value.(string)
			case "options":
				options, ok := value.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("%s: connect_info: options must be a mapping, got %T", path, value)
				}
				doc.ConnectInfo.Options = options
			default:
				return nil, fmt.Errorf("%s: connect_info: unknown attribute %q", path, name)
			}
		}
	}

	if raw.LoaderOptions != nil {
		attrs, err := blockAttributes(raw.LoaderOptions.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: loader_options: %w", path, err)
		}
		doc.LoaderOptions = attrs
	}

	return doc, nil
}

// blockAttributes evaluates every attribute of a block into plain Go data.
func blockAttributes(body hcl.Body) (map[string]any, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w", diags)
	}
	out := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		value, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("%s: %w", name, diags)
		}
		converted, err := ctyToGo(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = converted
	}
	return out, nil
}

// ctyToGo converts an evaluated HCL value to the plain Go shapes the option
// decoder accepts. Numbers come back as float64.
func ctyToGo(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	if val.Type().IsPrimitiveType() {
		switch val.Type() {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			f, _ := val.AsBigFloat().Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported value type %s", val.Type().FriendlyName())
		}
	}
	if val.Type().IsObjectType() || val.Type().IsMapType() {
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			converted, err := ctyToGo(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = converted
		}
		return out, nil
	}
	if val.Type().IsTupleType() || val.Type().IsListType() {
		var out []any
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			converted, err := ctyToGo(v)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value type %s", val.Type().FriendlyName())
}
