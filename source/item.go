package source

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/poiesic/launchpad/core"
)

// decodeEntry converts one decoded item into an Entry. A non-nil diagnostic means
// the item is dropped; its Index and Line are filled by the caller.
func decodeEntry(value any) (core.Entry, *core.Diagnostic) {
	m, ok := value.(map[string]any)
	if !ok {
		return core.Entry{}, &core.Diagnostic{
			Err: fmt.Errorf("%w: %w: got %s", core.ErrInvalidEntry, core.ErrNotAnObject, typeName(value)),
		}
	}

	r := fieldReader{m: m}
	entry := core.Entry{Enabled: true}
	entry.ID = r.str("id")
	entry.Title = r.str("title", "name")
	entry.Subtitle = r.str("subtitle", "description")
	entry.Keywords = r.words("keywords")
	entry.Category = r.str("category")
	entry.Tags = r.list("tags")
	entry.Alias = r.str("alias")
	entry.Icon = r.str("icon")
	entry.Action = r.action("action")
	if p, ok := r.number("priority"); ok {
		entry.Priority = p
	}
	if e, ok := r.boolean("enabled"); ok {
		entry.Enabled = e
	}

	if r.err != nil {
		return core.Entry{}, &core.Diagnostic{ID: entry.ID, Field: r.field, Err: r.err}
	}
	if err := core.ValidateEntry(&entry); err != nil {
		field := "title"
		if entry.ID == "" {
			field = "id"
		}
		return core.Entry{}, &core.Diagnostic{ID: entry.ID, Field: field, Err: err}
	}
	core.ApplyDefaults(&entry)
	return entry, nil
}

// fieldReader reads typed optional fields and keeps the first type error.
type fieldReader struct {
	m     map[string]any
	err   error
	field string
}

func (r *fieldReader) fail(key string, want string, got any) {
	if r.err != nil {
		return
	}
	r.field = key
	r.err = fmt.Errorf("%w: %w: %s must be %s, got %s", core.ErrInvalidEntry, core.ErrWrongType, key, want, typeName(got))
}

// lookup returns the first present key among names.
func (r *fieldReader) lookup(names ...string) (string, any, bool) {
	for _, name := range names {
		if v, ok := r.m[name]; ok && v != nil {
			return name, v, true
		}
	}
	return "", nil, false
}

func (r *fieldReader) str(names ...string) string {
	key, v, ok := r.lookup(names...)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(key, "a string", v)
		return ""
	}
	return strings.TrimSpace(s)
}

func (r *fieldReader) list(name string) []string {
	_, v, ok := r.lookup(name)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, el := range t {
			s, ok := el.(string)
			if !ok {
				r.fail(name, "a list of strings", el)
				return nil
			}
			out = append(out, s)
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []string:
		return t
	default:
		r.fail(name, "a list of strings", v)
		return nil
	}
}

// words accepts a string or a list and returns the words joined by spaces.
func (r *fieldReader) words(name string) string {
	return strings.Join(r.list(name), " ")
}

func (r *fieldReader) number(name string) (float64, bool) {
	_, v, ok := r.lookup(name)
	if !ok {
		return 0, false
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint64:
		f = float64(t)
	default:
		r.fail(name, "a number", v)
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		r.fail(name, "a finite number", v)
		return 0, false
	}
	return f, true
}

func (r *fieldReader) boolean(name string) (bool, bool) {
	_, v, ok := r.lookup(name)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	if !ok {
		r.fail(name, "a bool", v)
		return false, false
	}
	return b, true
}

// action keeps the declared action as canonical JSON. A plain string is a command line.
func (r *fieldReader) action(name string) core.Action {
	_, v, ok := r.lookup(name)
	if !ok {
		return core.Action{}
	}
	switch t := v.(type) {
	case string:
		return core.Action{Kind: "exec", Payload: canonicalJSON(t)}
	case map[string]any:
		kind, _ := t["type"].(string)
		if kind == "" {
			kind = "object"
		}
		payload := canonicalJSON(t)
		if payload == "" {
			r.fail(name, "a JSON compatible object", v)
			return core.Action{}
		}
		return core.Action{Kind: kind, Payload: payload}
	default:
		r.fail(name, "a string or object", v)
		return core.Action{}
	}
}

// canonicalJSON encodes v with sorted map keys. Returns "" when v cannot be encoded.
func canonicalJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case float64, float32, int, int64, uint64:
		return "number"
	case []any, []string, []map[string]any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
