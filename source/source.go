package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/launchpad/core"
)

// Source provides the raw bytes of a definition document.
type Source interface {
	// Name identifies the source in logs.
	Name() string
	// Format returns the document format, or FormatAuto to sniff.
	Format() Format
	// Read returns the current raw content.
	Read(ctx context.Context) ([]byte, error)
}

// FileSource reads definitions from a file on disk.
type FileSource struct {
	Path string
	Kind Format // FormatAuto picks by extension
}

var _ Source = (*FileSource)(nil)

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Name() string {
	return s.Path
}

func (s *FileSource) Format() Format {
	if s.Kind != FormatAuto {
		return s.Kind
	}
	return FormatFromPath(s.Path)
}

func (s *FileSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	return data, nil
}

// BytesSource serves an in-memory document. Mostly useful for tests and embedding.
type BytesSource struct {
	Label string
	Kind  Format
	Data  []byte
}

var _ Source = (*BytesSource)(nil)

func (s *BytesSource) Name() string {
	if s.Label == "" {
		return "<memory>"
	}
	return s.Label
}

func (s *BytesSource) Format() Format {
	return s.Kind
}

func (s *BytesSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Data, nil
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatAuto
	}
}

// Result is the outcome of reading and parsing a source once.
type Result struct {
	Raw         []byte
	Fingerprint string
	Entries     []core.Entry
	Diagnostics []core.Diagnostic
}

// Read fetches the raw bytes of src and computes their fingerprint without parsing.
// Read errors are reported as ErrSourceUnreadable.
func Read(ctx context.Context, src Source) ([]byte, string, error) {
	raw, err := src.Read(ctx)
	if err != nil {
		if !errors.Is(err, ErrSourceUnreadable) {
			err = fmt.Errorf("%w: %s: %w", ErrSourceUnreadable, src.Name(), err)
		}
		return nil, "", err
	}
	return raw, core.Fingerprint(raw), nil
}

// Load reads src and parses it. Diagnostics are logged at warn level and returned;
// the only error is an unreadable source.
func Load(ctx context.Context, src Source, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	raw, fp, err := Read(ctx, src)
	if err != nil {
		return nil, err
	}
	return parseRaw(src, raw, fp, logger)
}

// LoadRaw parses bytes already read from src.
func LoadRaw(src Source, raw []byte, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return parseRaw(src, raw, core.Fingerprint(raw), logger)
}

func parseRaw(src Source, raw []byte, fp string, logger *slog.Logger) (*Result, error) {
	start := time.Now()
	entries, diags, err := Parse(raw, src.Format())
	if err != nil {
		logger.Error("error parsing source", "source", src.Name(), "err", err)
		return nil, err
	}
	for _, d := range diags {
		logger.Warn("dropped source item", "source", src.Name(), "index", d.Index, "line", d.Line, "id", d.ID, "err", d.Err)
	}
	logger.Debug("parsed source", "source", src.Name(), "entries", len(entries),
		"dropped", len(diags), "elapsed", time.Since(start))
	return &Result{
		Raw:         raw,
		Fingerprint: fp,
		Entries:     entries,
		Diagnostics: diags,
	}, nil
}
