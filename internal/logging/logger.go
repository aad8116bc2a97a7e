// Package logging provides structured logging for sorbet-lsp.
//
// It layers multi-destination output on top of log/slog: stderr by default,
// following Unix convention for a process an editor spawns and pipes, plus
// an optional simultaneous file sink under a configured directory. Level is
// kept independent of slog.Level so call sites never need to import
// log/slog themselves.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Level is this package's own severity enum, decoupled from slog.Level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures a Logger. The zero value logs Debug+ to stderr, encoded
// as described under JSON.
type Config struct {
	// Level sets the minimum level; messages below it are discarded.
	Level Level

	// LogDir enables a second, JSON-formatted sink under this directory,
	// named "{Service}_{YYYY-MM-DD}.log". Supports a leading "~" for the
	// user's home directory. Empty disables file logging.
	LogDir string

	// Service is attached to every record as the "service" attribute.
	Service string

	// JSON forces the stderr sink to JSON. Left false, New still emits JSON
	// on stderr when stderr isn't an interactive terminal (editors spawn
	// this process with stderr piped to their own log, so text formatting
	// meant for a human reading a shell is wasted there); text is kept only
	// when a developer runs sorbet-lsp directly in a terminal. File sinks
	// are always JSON regardless of this field.
	JSON bool

	// Quiet disables the stderr sink (e.g. for a daemon with no monitored
	// stderr); the file sink, if configured, still runs.
	Quiet bool
}

// Logger wraps slog.Logger with the multi-destination setup Config
// describes, plus a Level-typed API so call sites stay off log/slog.
type Logger struct {
	slog *slog.Logger
	file *os.File
	mu   sync.Mutex
}

// New builds a Logger per config. The returned Logger should be Close'd to
// flush and release its file handle, if any.
func New(config Config) *Logger {
	opts := &slog.HandlerOptions{Level: config.Level.toSlogLevel()}

	var stderrHandler slog.Handler
	if !config.Quiet {
		if stderrWantsJSON(config) {
			stderrHandler = slog.NewJSONHandler(os.Stderr, opts)
		} else {
			stderrHandler = slog.NewTextHandler(os.Stderr, opts)
		}
	}

	logger := &Logger{}

	var fileHandler slog.Handler
	if config.LogDir != "" {
		dir := expandPath(config.LogDir)
		if err := os.MkdirAll(dir, 0o750); err == nil {
			service := config.Service
			if service == "" {
				service = "sorbet-lsp"
			}
			name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
			if f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640); err == nil {
				logger.file = f
				fileHandler = slog.NewJSONHandler(f, opts)
			}
		}
	}

	handler := combineHandlers(stderrHandler, fileHandler, opts)
	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", config.Service)})
	}

	logger.slog = slog.New(handler)
	return logger
}

// stderrWantsJSON decides the stderr sink's encoding. sorbet-lsp is almost
// always spawned by an editor with stderr piped to its own output panel, so
// JSON is the right default there; a developer running it directly in a
// terminal gets the friendlier text encoding instead, unless Config.JSON
// forces it.
func stderrWantsJSON(config Config) bool {
	return config.JSON || !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd())
}

// Default returns an Info-level, stderr-only Logger.
func Default() *Logger {
	return New(Config{Level: LevelInfo, Service: "sorbet-lsp"})
}

// Infof, Warnf, Errorf, and Debugf satisfy lsp.Logger with printf-style
// call sites rather than slog's key-value style.
func (l *Logger) Infof(format string, args ...any)  { l.slog.Info(fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)  { l.slog.Warn(fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any) { l.slog.Error(fmt.Sprintf(format, args...)) }
func (l *Logger) Debugf(format string, args ...any) { l.slog.Debug(fmt.Sprintf(format, args...)) }

// With returns a child Logger carrying additional structured attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...), file: l.file}
}

// Slog exposes the underlying slog.Logger for callers that need it
// directly (e.g. to pass into a library that accepts one).
func (l *Logger) Slog() *slog.Logger { return l.slog }

// Close syncs and closes the file sink, if one is open.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	_ = l.file.Sync()
	return l.file.Close()
}

// combineHandlers folds the stderr and file handlers sorbet-lsp ever has
// (either can be nil) into a single slog.Handler, skipping dualHandler
// entirely when there's at most one real sink. With neither sink, records
// are discarded.
func combineHandlers(stderr, file slog.Handler, opts *slog.HandlerOptions) slog.Handler {
	switch {
	case stderr == nil && file == nil:
		return slog.NewTextHandler(io.Discard, opts)
	case stderr == nil:
		return file
	case file == nil:
		return stderr
	default:
		return &dualHandler{stderr: stderr, file: file}
	}
}

// dualHandler fans a record out to sorbet-lsp's two possible sinks: the
// stderr console handler and the on-disk file handler. There are never
// more than two, so this stays a fixed pair rather than a slice.
type dualHandler struct {
	stderr slog.Handler
	file   slog.Handler
}

func (h *dualHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.stderr.Enabled(ctx, level) || h.file.Enabled(ctx, level)
}

func (h *dualHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.stderr.Enabled(ctx, r.Level) {
		if err := h.stderr.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	if h.file.Enabled(ctx, r.Level) {
		return h.file.Handle(ctx, r.Clone())
	}
	return nil
}

func (h *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &dualHandler{stderr: h.stderr.WithAttrs(attrs), file: h.file.WithAttrs(attrs)}
}

func (h *dualHandler) WithGroup(name string) slog.Handler {
	return &dualHandler{stderr: h.stderr.WithGroup(name), file: h.file.WithGroup(name)}
}

// expandPath resolves LogDir to an absolute directory. A leading "~"
// expands against the user's home directory. A relative path is resolved
// against the user's cache directory rather than the process's working
// directory: an editor launches sorbet-lsp with whatever cwd the open
// project happens to have, so "logs" as a LogDir should mean one stable
// place, not a different directory per workspace.
func expandPath(path string) string {
	switch {
	case path == "":
		return path
	case path[0] == '~':
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
		return path
	case filepath.IsAbs(path):
		return path
	default:
		if cacheDir, err := os.UserCacheDir(); err == nil {
			return filepath.Join(cacheDir, path)
		}
		return path
	}
}
