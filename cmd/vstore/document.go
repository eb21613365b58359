package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vstore/internal/errors"
)

// Output formats accepted by --output.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// readDocument loads the document a store is created over.
func readDocument(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("X001").WithDetail("Cannot read document " + path).Wrap(err)
	}
	return parseDocument(path, data)
}

// parseDocument decodes YAML by extension and JSON, comments allowed,
// otherwise. Integral JSON numbers become int as they do in YAML. The top
// level must be an object or an array.
func parseDocument(path string, data []byte) (any, error) {
	var (
		doc any
		err error
	)
	if isYAML(path) {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = decodeNumbers(jsonc.ToJSON(data), &doc)
	}
	if err != nil {
		ce := errors.New("X002").Wrap(err)
		var syntax *json.SyntaxError
		if stderrors.As(err, &syntax) {
			ce.WithOffset(path, data, syntax.Offset)
		}
		return nil, ce
	}

	doc = normalize(doc)
	switch doc.(type) {
	case map[string]any, []any:
		return doc, nil
	}
	return nil, errors.New("X002").
		WithDetail(fmt.Sprintf("The top level of %s is %s, not an object or an array", path, describe(doc)))
}

// normalize converts YAML mappings with non-string keys into string-keyed
// objects.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	}
	return v
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("a %T", v)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// writeValue prints v in the requested output format.
func writeValue(w io.Writer, v any, format string) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case formatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return errors.Newf(errors.CategoryCLI, "unknown output format %q", format).
		WithSuggestion("Use --output json or --output yaml")
}
