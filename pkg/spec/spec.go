package spec

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/metricflow/pkg/canvas"
	"github.com/matzehuels/metricflow/pkg/errors"
)

// Format is a spec file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// DetectFormat picks a format from a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported spec file %q (want .yaml, .yml, .json or .toml)", path)
}

// Document is a parsed spec file.
type Document struct {
	// Options holds canvas option overrides in their loose form; decode them
	// with canvas.DecodeOptions after merging with other sources.
	Options map[string]any
	Nodes   []canvas.NodeSpec
}

// LoadFile reads and parses a spec file.
func LoadFile(path string) (Document, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "spec file %s", path)
		}
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return Document{}, errors.Wrap(errors.GetCode(err), err, "%s", path)
	}
	return doc, nil
}

// Parse decodes spec file contents.
func Parse(data []byte, format Format) (Document, error) {
	raw, err := unmarshal(data, format)
	if err != nil {
		return Document{}, err
	}
	return Decode(raw)
}

func unmarshal(data []byte, format Format) (any, error) {
	var raw any
	switch format {
	case FormatYAML, FormatJSON:
		// JSON is decoded by the YAML parser so both accept the same shapes.
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", format)
		}
	case FormatTOML:
		var m map[string]any
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse toml")
		}
		raw = m
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
	}
	return raw, nil
}

// Decode builds a Document from already parsed data: a node map, a list of
// node maps, or a map with "options" and "nodes".
func Decode(raw any) (Document, error) {
	var doc Document
	switch v := raw.(type) {
	case nil:
		return doc, nil
	case []any:
		nodes, err := DecodeNodes(v)
		if err != nil {
			return Document{}, err
		}
		doc.Nodes = nodes
	case map[string]any:
		_, hasNodes := v["nodes"]
		_, hasOpts := v["options"]
		if !hasNodes && !hasOpts {
			n, err := DecodeNode(v)
			if err != nil {
				return Document{}, err
			}
			doc.Nodes = []canvas.NodeSpec{n}
			return doc, nil
		}
		if opts, ok := v["options"].(map[string]any); ok {
			doc.Options = opts
		} else if hasOpts {
			return Document{}, errors.New(errors.ErrCodeInvalidFormat, "options must be a table")
		}
		if hasNodes {
			nodes, err := DecodeNodes(v["nodes"])
			if err != nil {
				return Document{}, err
			}
			doc.Nodes = nodes
		}
	default:
		return Document{}, errors.New(errors.ErrCodeInvalidFormat, "spec must be a node, a list of nodes or a document, got %T", raw)
	}
	return doc, nil
}

// DecodeNodes decodes a list of node maps.
func DecodeNodes(raw any) ([]canvas.NodeSpec, error) {
	var out []canvas.NodeSpec
	if err := canvas.Decode(raw, &out, NodeHook()); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode nodes")
	}
	return out, nil
}

// DecodeNode decodes one node map, including its children.
func DecodeNode(raw map[string]any) (canvas.NodeSpec, error) {
	var out canvas.NodeSpec
	if err := canvas.Decode(raw, &out, NodeHook()); err != nil {
		return canvas.NodeSpec{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode node")
	}
	return out, nil
}

var nodeSpecType = reflect.TypeOf(canvas.NodeSpec{})

// NodeHook normalizes loose node maps before they are decoded into a
// canvas.NodeSpec.
func NodeHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if to != nodeSpecType {
			return data, nil
		}
		m, ok := data.(map[string]any)
		if !ok {
			return data, nil
		}
		return normalize(m), nil
	}
}

func normalize(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	events := map[string]any{}
	if ev, ok := m["events"].(map[string]any); ok {
		for k, v := range ev {
			events[k] = v
		}
	}
	for k, v := range m {
		switch {
		case k == "events":
		case k == "title":
			out[k] = titleName(v)
		case k == "data":
			out[k] = dataRows(v)
		case k == "node-type":
			if _, ok := m["kind"]; !ok {
				out["kind"] = v
			}
		case canvas.Gesture(k).Valid():
			events[k] = v
		default:
			out[k] = v
		}
	}
	if len(events) > 0 {
		out["events"] = events
	}
	return out
}

// titleName accepts "api" and {name: "api"}.
func titleName(v any) any {
	if t, ok := v.(map[string]any); ok {
		return t["name"]
	}
	return v
}

// dataRows accepts [{name: "a"}] and ["a"].
func dataRows(v any) any {
	rows, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]any, len(rows))
	for i, r := range rows {
		if s, ok := r.(string); ok {
			out[i] = map[string]any{"name": s}
		} else {
			out[i] = r
		}
	}
	return out
}
