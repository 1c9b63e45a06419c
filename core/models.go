package core

//go:generate go run ../cmd/musgen

import (
	"cmp"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// SchemaVersion tags both the fingerprint and the cache snapshot layout.
// Bump it whenever Entry or the snapshot encoding changes shape.
const SchemaVersion = 2

// DefaultCategory is assigned to entries that do not name a category.
const DefaultCategory = "uncategorized"

// DefaultPriority is used when an entry carries no priority.
const DefaultPriority = 0

// Fingerprint returns a BLAKE2b-256 digest over the schema version tag and the raw
// source bytes, hex encoded. Any byte-level change to the source yields a new value.
func Fingerprint(raw []byte) string {
	h, _ := blake2b.New(32, nil)
	h.Write([]byte{'l', 'p', 'a', 'd', byte(SchemaVersion >> 8), byte(SchemaVersion)})
	h.Write(raw)
	return hex.EncodeToString(h.Sum(nil))
}

// Action describes what happens when an entry is launched.
// The payload is opaque to this module and handed to an external executor.
type Action struct {
	Kind    string // e.g. "exec", "url", or whatever the source declared
	Payload string // canonical JSON of the declared action value
}

// IsZero reports whether no action was declared.
func (a Action) IsZero() bool {
	return a.Kind == "" && a.Payload == ""
}

// Entry is one launchable item.
type Entry struct {
	ID       string
	Title    string
	Subtitle string
	Keywords string
	Category string
	Tags     []string
	Alias    string // mode the entry belongs to, empty for the default mode
	Icon     string
	Action   Action
	Priority float64
	Enabled  bool
}

// Equal reports whether two entries denote the same item.
func (e *Entry) Equal(other *Entry) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.ID == other.ID
}

// HasTag reports whether the entry carries the given tag (case-insensitive).
func (e *Entry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// CompareOrder is the deterministic ordering key used as a tie-break when match
// scores are equal: priority descending, then title ascending.
func CompareOrder(a, b *Entry) int {
	return CompareOrderKey(a.Priority, a.Title, b.Priority, b.Title)
}

// CompareOrderKey compares raw ordering keys. Titles compare case-insensitively
// first, then bytewise.
func CompareOrderKey(aPriority float64, aTitle string, bPriority float64, bTitle string) int {
	if c := cmp.Compare(bPriority, aPriority); c != 0 {
		return c
	}
	if c := strings.Compare(strings.ToLower(aTitle), strings.ToLower(bTitle)); c != 0 {
		return c
	}
	return strings.Compare(aTitle, bTitle)
}

// Diagnostic records one source item that was dropped during a load.
type Diagnostic struct {
	Index int    // zero-based position of the item in the source sequence
	Line  int    // source line when the format exposes it, 0 otherwise
	ID    string // identifier of the item, if it had a readable one
	Field string // offending field, if any
	Err   error
}

func (d Diagnostic) Error() string {
	var b strings.Builder
	b.WriteString("item ")
	b.WriteString(strconv.Itoa(d.Index))
	if d.Line > 0 {
		b.WriteString(" (line ")
		b.WriteString(strconv.Itoa(d.Line))
		b.WriteString(")")
	}
	if d.ID != "" {
		b.WriteString(" id=")
		b.WriteString(d.ID)
	}
	if d.Field != "" {
		b.WriteString(" field=")
		b.WriteString(d.Field)
	}
	if d.Err != nil {
		b.WriteString(": ")
		b.WriteString(d.Err.Error())
	}
	return b.String()
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}

// EntrySet is an immutable, versioned snapshot of entries.
// It is shared read-only between sessions and replaced, never edited, on reload.
type EntrySet struct {
	Version     uint64
	Fingerprint string
	LoadedAt    time.Time
	FromCache   bool

	entries     []Entry
	diagnostics []Diagnostic
	index       map[string]int
}

// NewEntrySet builds a snapshot. The entries slice is copied so later changes by the
// caller cannot leak into published sets. Empty tag lists are stored as nil.
func NewEntrySet(version uint64, fingerprint string, entries []Entry, diagnostics []Diagnostic) *EntrySet {
	owned := make([]Entry, len(entries))
	copy(owned, entries)
	index := make(map[string]int, len(owned))
	for i := range owned {
		if len(owned[i].Tags) == 0 {
			owned[i].Tags = nil
		}
		index[owned[i].ID] = i
	}
	return &EntrySet{
		Version:     version,
		Fingerprint: fingerprint,
		LoadedAt:    time.Now().UTC(),
		entries:     owned,
		diagnostics: diagnostics,
		index:       index,
	}
}

// WithVersion returns a shallow copy carrying a different version.
func (s *EntrySet) WithVersion(version uint64) *EntrySet {
	cp := *s
	cp.Version = version
	return &cp
}

// Len returns the number of entries.
func (s *EntrySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// At returns the entry at position i. The pointer must not be used to mutate the entry.
func (s *EntrySet) At(i int) *Entry {
	return &s.entries[i]
}

// Entries returns a copy of the entries in set order.
func (s *EntrySet) Entries() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Diagnostics returns the item diagnostics recorded by the load that produced the set.
func (s *EntrySet) Diagnostics() []Diagnostic {
	if s == nil {
		return nil
	}
	return s.diagnostics
}

// Lookup finds an entry by identifier.
func (s *EntrySet) Lookup(id string) (*Entry, bool) {
	i, ok := s.Index(id)
	if !ok {
		return nil, false
	}
	return &s.entries[i], true
}

// Index returns the set position of the identifier.
func (s *EntrySet) Index(id string) (int, bool) {
	if s == nil {
		return 0, false
	}
	i, ok := s.index[id]
	return i, ok
}
