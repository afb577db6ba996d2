package log

import (
	"cmp"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
)

// PathHandler wraps an slog.Handler and rewrites string attribute values
// that are paths under one of its roots.
type PathHandler struct {
	// handler is the underlying slog handler that receives rewritten records.
	handler slog.Handler

	// roots are clean absolute directories, longest first.
	roots []string
}

// NewPathHandler creates a PathHandler wrapping the given handler.
// Empty or relative roots are ignored. If handler is nil,
// slog.Default().Handler() is used.
func NewPathHandler(handler slog.Handler, roots ...string) *PathHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}

	clean := make([]string, 0, len(roots))
	for _, r := range roots {
		if r == "" || !filepath.IsAbs(r) {
			continue
		}
		clean = append(clean, filepath.Clean(r))
	}
	// Nested roots must match the most specific one.
	slices.SortStableFunc(clean, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})

	return &PathHandler{handler: handler, roots: clean}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PathHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's attributes and passes it on.
func (h *PathHandler) Handle(ctx context.Context, r slog.Record) error {
	if len(h.roots) == 0 {
		return h.handler.Handle(ctx, r)
	}

	rewritten := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		rewritten.AddAttrs(h.rewriteAttr(a))
		return true
	})

	return h.handler.Handle(ctx, rewritten)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *PathHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	rewritten := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		rewritten[i] = h.rewriteAttr(a)
	}
	return &PathHandler{handler: h.handler.WithAttrs(rewritten), roots: h.roots}
}

// WithGroup returns a new handler with the given group name.
func (h *PathHandler) WithGroup(name string) slog.Handler {
	return &PathHandler{handler: h.handler.WithGroup(name), roots: h.roots}
}

// rewriteAttr rewrites a single attribute, recursively handling groups.
func (h *PathHandler) rewriteAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		rewritten := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			rewritten[i] = h.rewriteAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(rewritten...)}
	case slog.KindString:
		return slog.String(a.Key, h.Shorten(a.Value.String()))
	default:
		return a
	}
}

// Shorten returns p as "<root name>/<relative path>" when p lies under
// one of the roots, and p unchanged otherwise.
func (h *PathHandler) Shorten(p string) string {
	if !filepath.IsAbs(p) {
		return p
	}
	for _, root := range h.roots {
		if p != root && !strings.HasPrefix(p, root+string(filepath.Separator)) {
			continue
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return p
		}
		return filepath.ToSlash(filepath.Join(filepath.Base(root), rel))
	}
	return p
}

// NewLogger creates a text logger that shortens paths under roots.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//   - roots: Directories whose paths are shortened
func NewLogger(w io.Writer, verbose bool, roots ...string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level(verbose),
	}

	return slog.New(NewPathHandler(slog.NewTextHandler(w, opts), roots...))
}

// NewJSONLogger creates a JSON logger that shortens paths under roots.
func NewJSONLogger(w io.Writer, verbose bool, roots ...string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level(verbose),
	}

	return slog.New(NewPathHandler(slog.NewJSONHandler(w, opts), roots...))
}

func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
