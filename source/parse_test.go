package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/launchpad/core"
)

func TestParse_Formats(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		doc    string
	}{
		{
			name:   "json array",
			format: FormatJSON,
			doc:    `[{"id":"calc","title":"Calculator"},{"id":"cal2","title":"Calendar"}]`,
		},
		{
			name:   "json entries object",
			format: FormatJSON,
			doc:    `{"entries":[{"id":"calc","title":"Calculator"},{"id":"cal2","title":"Calendar"}]}`,
		},
		{
			name:   "yaml list",
			format: FormatYAML,
			doc:    "- id: calc\n  title: Calculator\n- id: cal2\n  title: Calendar\n",
		},
		{
			name:   "yaml launchers key",
			format: FormatYAML,
			doc:    "launchers:\n  - id: calc\n    title: Calculator\n  - id: cal2\n    title: Calendar\n",
		},
		{
			name:   "toml tables",
			format: FormatTOML,
			doc:    "[[entries]]\nid = \"calc\"\ntitle = \"Calculator\"\n\n[[entries]]\nid = \"cal2\"\ntitle = \"Calendar\"\n",
		},
		{
			name:   "sniffed json",
			format: FormatAuto,
			doc:    `[{"id":"calc","title":"Calculator"},{"id":"cal2","title":"Calendar"}]`,
		},
		{
			name:   "sniffed yaml",
			format: FormatAuto,
			doc:    "entries:\n  - id: calc\n    title: Calculator\n  - id: cal2\n    title: Calendar\n",
		},
		{
			name:   "sniffed toml",
			format: FormatAuto,
			doc:    "[[entries]]\nid = \"calc\"\ntitle = \"Calculator\"\n[[entries]]\nid = \"cal2\"\ntitle = \"Calendar\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, diags, err := Parse([]byte(tt.doc), tt.format)
			require.NoError(t, err)
			assert.Empty(t, diags)
			require.Len(t, entries, 2)
			assert.Equal(t, "calc", entries[0].ID)
			assert.Equal(t, "Calculator", entries[0].Title)
			assert.Equal(t, "cal2", entries[1].ID)
			assert.Equal(t, "Calendar", entries[1].Title)
		})
	}
}

func TestParse_Defaults(t *testing.T) {
	entries, diags, err := Parse([]byte(`[{"id":"calc","title":"Calculator","unknown":{"x":1}}]`), FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, core.DefaultCategory, e.Category)
	assert.True(t, e.Enabled)
	assert.Equal(t, float64(core.DefaultPriority), e.Priority)
	assert.True(t, e.Action.IsZero())
	assert.Empty(t, e.Tags)
}

func TestParse_AllFields(t *testing.T) {
	doc := `
- id: term
  title: Terminal
  description: Run commands
  keywords: [shell, console]
  category: system
  tags: [dev, cli]
  alias: apps
  icon: utilities-terminal
  priority: 3
  enabled: false
  action:
    type: exec
    cmd: foot
`
	entries, diags, err := Parse([]byte(doc), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "Run commands", e.Subtitle)
	assert.Equal(t, "shell console", e.Keywords)
	assert.Equal(t, "system", e.Category)
	assert.Equal(t, []string{"dev", "cli"}, e.Tags)
	assert.Equal(t, "apps", e.Alias)
	assert.Equal(t, "utilities-terminal", e.Icon)
	assert.Equal(t, 3.0, e.Priority)
	assert.False(t, e.Enabled)
	assert.Equal(t, "exec", e.Action.Kind)
	assert.JSONEq(t, `{"type":"exec","cmd":"foot"}`, e.Action.Payload)
}

func TestParse_StringAction(t *testing.T) {
	entries, _, err := Parse([]byte(`[{"id":"calc","title":"Calculator","action":"gnome-calculator"}]`), FormatJSON)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, core.Action{Kind: "exec", Payload: `"gnome-calculator"`}, entries[0].Action)
}

func TestParse_MissingTitle(t *testing.T) {
	doc := `[
		{"id":"calc","title":"Calculator"},
		{"id":"broken"},
		{"id":"cal2","title":"Calendar"}
	]`
	entries, diags, err := Parse([]byte(doc), FormatJSON)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "calc", entries[0].ID)
	assert.Equal(t, "cal2", entries[1].ID)

	require.Len(t, diags, 1)
	assert.Equal(t, 1, diags[0].Index)
	assert.Equal(t, "broken", diags[0].ID)
	assert.Equal(t, "title", diags[0].Field)
	assert.ErrorIs(t, diags[0], core.ErrMissingField)
	assert.ErrorIs(t, diags[0], core.ErrInvalidEntry)
}

func TestParse_ItemErrors(t *testing.T) {
	tests := []struct {
		name    string
		item    string
		field   string
		wantErr error
	}{
		{"missing id", `{"title":"No id"}`, "id", core.ErrMissingField},
		{"title wrong type", `{"id":"x","title":5}`, "title", core.ErrWrongType},
		{"priority wrong type", `{"id":"x","title":"X","priority":"high"}`, "priority", core.ErrWrongType},
		{"enabled wrong type", `{"id":"x","title":"X","enabled":"yes"}`, "enabled", core.ErrWrongType},
		{"tags wrong type", `{"id":"x","title":"X","tags":[1,2]}`, "tags", core.ErrWrongType},
		{"action wrong type", `{"id":"x","title":"X","action":42}`, "action", core.ErrWrongType},
		{"not an object", `"just a string"`, "", core.ErrNotAnObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `[{"id":"ok","title":"Fine"},` + tt.item + `]`
			entries, diags, err := Parse([]byte(doc), FormatJSON)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "ok", entries[0].ID)

			require.Len(t, diags, 1)
			assert.Equal(t, 1, diags[0].Index)
			assert.Equal(t, tt.field, diags[0].Field)
			assert.ErrorIs(t, diags[0], tt.wantErr)
		})
	}
}

func TestParse_DuplicateID(t *testing.T) {
	doc := `[{"id":"calc","title":"Calculator"},{"id":"calc","title":"Other Calculator"}]`
	entries, diags, err := Parse([]byte(doc), FormatJSON)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Calculator", entries[0].Title)

	require.Len(t, diags, 1)
	assert.Equal(t, "calc", diags[0].ID)
	assert.ErrorIs(t, diags[0], core.ErrDuplicateID)
}

func TestParse_YAMLLines(t *testing.T) {
	doc := "- id: calc\n  title: Calculator\n- id: nope\n"
	_, diags, err := Parse([]byte(doc), FormatYAML)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, 3, diags[0].Line)
}

func TestParse_Unreadable(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		doc    string
	}{
		{"broken json", FormatJSON, `[{"id":"calc",`},
		{"json scalar", FormatJSON, `42`},
		{"json object without entries", FormatJSON, `{"apps":[]}`},
		{"broken yaml", FormatYAML, "- id: [unclosed\n"},
		{"yaml scalar", FormatYAML, "hello"},
		{"broken toml", FormatTOML, "[[entries]\nid = "},
		{"toml without entries", FormatTOML, "title = \"x\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse([]byte(tt.doc), tt.format)
			assert.ErrorIs(t, err, ErrSourceUnreadable)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	for _, format := range []Format{FormatYAML, FormatTOML, FormatAuto} {
		entries, diags, err := Parse([]byte("  \n"), format)
		require.NoError(t, err, format)
		assert.Empty(t, entries)
		assert.Empty(t, diags)
	}

	_, _, err := Parse([]byte("  \n"), FormatJSON)
	assert.ErrorIs(t, err, ErrSourceUnreadable)
}

func TestParse_JSONOverflowDropsOneItem(t *testing.T) {
	doc := `[{"id":"a","title":"Alpha"},{"id":"b","title":"Beta","priority":1e400}]`
	entries, diags, err := Parse([]byte(doc), FormatJSON)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].ID)
	require.Len(t, diags, 1)
	assert.Equal(t, 1, diags[0].Index)
	assert.Equal(t, "b", diags[0].ID)
	assert.Equal(t, "priority", diags[0].Field)
	assert.ErrorIs(t, diags[0].Err, core.ErrInvalidEntry)
	assert.ErrorIs(t, diags[0].Err, core.ErrWrongType)
}

func TestParse_UnreadableErrorPrefix(t *testing.T) {
	tests := []struct {
		format Format
		doc    string
		prefix string
	}{
		{FormatJSON, `[{"id":`, "json: json:"},
		{FormatYAML, "entries: [", "yaml: yaml:"},
		{FormatTOML, "[[entries]\nid = ", "toml: toml:"},
	}
	for _, tt := range tests {
		_, _, err := Parse([]byte(tt.doc), tt.format)
		require.ErrorIs(t, err, ErrSourceUnreadable)
		assert.NotContains(t, err.Error(), tt.prefix)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromPath("/etc/launchers.JSON"))
	assert.Equal(t, FormatYAML, FormatFromPath("entries.yml"))
	assert.Equal(t, FormatTOML, FormatFromPath("entries.toml"))
	assert.Equal(t, FormatAuto, FormatFromPath("entries"))
}

func TestLoad_FileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"calc","title":"Calculator"}]`), 0o644))

	res, err := Load(context.Background(), NewFileSource(path), nil)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, core.Fingerprint(res.Raw), res.Fingerprint)
}

func TestLoad_MissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing.json"))
	_, err := Load(context.Background(), src, nil)
	assert.ErrorIs(t, err, ErrSourceUnreadable)
}
