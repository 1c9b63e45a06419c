package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/launchpad/core"
)

// Format names a definition document encoding.
type Format int

const (
	FormatAuto Format = iota
	FormatJSON
	FormatYAML
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "auto"
	}
}

// ParseFormat maps a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return FormatAuto, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// collectionKeys are the top-level keys that may hold the item sequence.
var collectionKeys = []string{"entries", "launchers"}

// rawItem is one undecoded item and where it sat in the document. When err is set
// the item could not be decoded; id and field are filled when they were recoverable.
type rawItem struct {
	value any
	line  int
	err   error
	id    string
	field string
}

// Parse decodes a definition document into entries. Items that fail validation are
// dropped and returned as diagnostics. The error is non-nil only when the document
// cannot be parsed at the top level, and then it wraps ErrSourceUnreadable.
// An empty YAML or TOML document holds no entries; an empty JSON document is unreadable.
func Parse(raw []byte, format Format) ([]core.Entry, []core.Diagnostic, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		if format == FormatJSON {
			return nil, nil, fmt.Errorf("%w: json: empty document", ErrSourceUnreadable)
		}
		return nil, nil, nil
	}

	items, err := decodeItems(raw, format)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]core.Entry, 0, len(items))
	var diags []core.Diagnostic
	seen := make(map[string]int, len(items))
	for i, item := range items {
		if item.err != nil {
			diags = append(diags, core.Diagnostic{
				Index: i,
				Line:  item.line,
				ID:    item.id,
				Field: item.field,
				Err:   fmt.Errorf("%w: %w: %w", core.ErrInvalidEntry, core.ErrWrongType, item.err),
			})
			continue
		}
		entry, diag := decodeEntry(item.value)
		if diag != nil {
			diag.Index = i
			diag.Line = item.line
			diags = append(diags, *diag)
			continue
		}
		if first, dup := seen[entry.ID]; dup {
			diags = append(diags, core.Diagnostic{
				Index: i,
				Line:  item.line,
				ID:    entry.ID,
				Field: "id",
				Err:   fmt.Errorf("%w: %w: first defined by item %d", core.ErrInvalidEntry, core.ErrDuplicateID, first),
			})
			continue
		}
		seen[entry.ID] = i
		entries = append(entries, entry)
	}
	return entries, diags, nil
}

func decodeItems(raw []byte, format Format) ([]rawItem, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(raw)
	case FormatYAML:
		return decodeYAML(raw)
	case FormatTOML:
		return decodeTOML(raw)
	}

	// sniff: JSON documents open with a bracket, TOML tables with "[["
	trimmed := bytes.TrimSpace(raw)
	switch {
	case bytes.HasPrefix(trimmed, []byte("[[")):
		return decodeTOML(raw)
	case trimmed[0] == '[' || trimmed[0] == '{':
		return decodeJSON(raw)
	}
	items, err := decodeYAML(raw)
	if err == nil {
		return items, nil
	}
	if tomlItems, tomlErr := decodeTOML(raw); tomlErr == nil {
		return tomlItems, nil
	}
	return nil, err
}

func decodeJSON(raw []byte) ([]rawItem, error) {
	seq, err := jsonSequence(raw)
	if err != nil {
		return nil, err
	}
	items := make([]rawItem, len(seq))
	for i, msg := range seq {
		items[i] = decodeJSONItem(msg)
	}
	return items, nil
}

// jsonSequence splits the document into undecoded items, so a bad value inside one
// item cannot fail the others.
func jsonSequence(raw []byte) ([]json.RawMessage, error) {
	var seq []json.RawMessage
	err := json.Unmarshal(raw, &seq)
	if err == nil && seq != nil {
		return seq, nil
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return nil, fmt.Errorf("%w: json: %w", ErrSourceUnreadable, err)
	}
	var doc map[string]json.RawMessage
	if json.Unmarshal(raw, &doc) == nil {
		for _, key := range collectionKeys {
			seq = nil
			if msg, ok := doc[key]; ok && json.Unmarshal(msg, &seq) == nil && seq != nil {
				return seq, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: json: top level must be a list of items or hold an entries list", ErrSourceUnreadable)
}

func decodeJSONItem(msg json.RawMessage) rawItem {
	var v any
	err := json.Unmarshal(msg, &v)
	if err == nil {
		return rawItem{value: v}
	}
	item := rawItem{err: err}
	var fields map[string]json.RawMessage
	if json.Unmarshal(msg, &fields) != nil {
		return item
	}
	if id, ok := fields["id"]; ok {
		_ = json.Unmarshal(id, &item.id)
	}
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		var fv any
		if json.Unmarshal(fields[key], &fv) != nil {
			item.field = key
			break
		}
	}
	return item
}

func decodeYAML(raw []byte) ([]rawItem, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	var seq *yaml.Node
	switch root.Kind {
	case yaml.SequenceNode:
		seq = root
	case yaml.MappingNode:
		for i := 0; i+1 < len(root.Content); i += 2 {
			key, val := root.Content[i], root.Content[i+1]
			if isCollectionKey(key.Value) && val.Kind == yaml.SequenceNode {
				seq = val
				break
			}
		}
	}
	if seq == nil {
		return nil, fmt.Errorf("%w: yaml: top level must be a list of items or hold an entries list", ErrSourceUnreadable)
	}

	items := make([]rawItem, len(seq.Content))
	for i, node := range seq.Content {
		items[i] = rawItem{line: node.Line}
		if node.Kind != yaml.MappingNode {
			items[i].value = node.Value
			continue
		}
		var m map[string]any
		if err := node.Decode(&m); err != nil {
			items[i].err = err
			continue
		}
		items[i].value = m
	}
	return items, nil
}

func decodeTOML(raw []byte) ([]rawItem, error) {
	var doc map[string]any
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	for _, key := range collectionKeys {
		switch v := doc[key].(type) {
		case []map[string]any:
			items := make([]rawItem, len(v))
			for i, m := range v {
				items[i] = rawItem{value: m}
			}
			return items, nil
		case []any:
			items := make([]rawItem, len(v))
			for i, m := range v {
				items[i] = rawItem{value: m}
			}
			return items, nil
		}
	}
	return nil, fmt.Errorf("%w: toml: document must hold an [[entries]] array", ErrSourceUnreadable)
}

func isCollectionKey(key string) bool {
	for _, k := range collectionKeys {
		if k == key {
			return true
		}
	}
	return false
}
