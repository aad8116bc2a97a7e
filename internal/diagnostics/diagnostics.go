// Package diagnostics implements the drain -> silence -> accumulate ->
// publish pipeline that turns raw typechecker errors into
// textDocument/publishDiagnostics notifications.
package diagnostics

import (
	"fmt"
	"sync"

	"github.com/alloy/sorbet/internal/ast"
)

// ErrorClass names a specific diagnostic producer+kind pair, e.g. the
// namer's "redefinition of method" check. Code is the stable numeric
// identifier surfaced to the client as Diagnostic.code.
type ErrorClass struct {
	Pass string
	Name string
	Code int
}

// Well-known error classes. RedefinitionOfMethod, DuplicateVariableDeclaration,
// and RedefinitionOfParents are silenced unconditionally at drain time (see
// Silenced) because they fire too eagerly ahead of a full resolve pass to be
// worth surfacing to an editor.
var (
	RedefinitionOfMethod        = ErrorClass{Pass: "namer", Name: "RedefinitionOfMethod", Code: 4010}
	DuplicateVariableDeclaration = ErrorClass{Pass: "resolver", Name: "DuplicateVariableDeclaration", Code: 5010}
	RedefinitionOfParents        = ErrorClass{Pass: "resolver", Name: "RedefinitionOfParents", Code: 5011}
)

// Silenced reports whether diagnostics of class c should never reach the
// client.
func Silenced(c ErrorClass) bool {
	switch c {
	case RedefinitionOfMethod, DuplicateVariableDeclaration, RedefinitionOfParents:
		return true
	default:
		return false
	}
}

// MessageLine is one line of a multi-section diagnostic's related
// information: a location plus the text to show for it.
type MessageLine struct {
	Loc              ast.Loc
	FormattedMessage string
}

// Section is one labeled group of related message lines within a complex
// diagnostic.
type Section struct {
	Header   string
	Messages []MessageLine
}

// Diagnostic is a single typecheck error or warning.
type Diagnostic struct {
	Loc       ast.Loc
	Class     ErrorClass
	Formatted string
	// Sections is non-empty only for "complex" diagnostics that carry
	// structured relatedInformation (see Publish).
	Sections []Section
}

// Queue is an error sink typecheck passes push into and the accumulator
// drains from. It is safe for concurrent use so a worker-pooled
// typechecker can push from multiple goroutines.
type Queue struct {
	mu      sync.Mutex
	pending []Diagnostic
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue { return &Queue{} }

// Push enqueues d.
func (q *Queue) Push(d Diagnostic) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, d)
}

// Drain removes and returns every currently enqueued diagnostic, in the
// order they were pushed.
func (q *Queue) Drain() []Diagnostic {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

// FileTombstoned reports whether ref's backing file has been tombstoned.
// The accumulator uses this to drop stale entries for deleted files.
type FileTombstoned func(ref ast.FileRef) bool

// Accumulator holds diagnostics grouped by file between publish cycles,
// mirroring LSPLoop's errorsAccumulated/updatedErrors bookkeeping: new
// diagnostics land in accumulated, and updated tracks, in arrival order
// with consecutive duplicates collapsed, which files need a fresh publish.
type Accumulator struct {
	mu          sync.Mutex
	accumulated map[ast.FileRef][]Diagnostic
	updated     []ast.FileRef
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{accumulated: make(map[ast.FileRef][]Diagnostic)}
}

// Invalidate discards all accumulated diagnostics and pending updates,
// as the slow path does before re-running the full pipeline.
func (a *Accumulator) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accumulated = make(map[ast.FileRef][]Diagnostic)
	a.updated = nil
}

// Drain pulls every diagnostic currently enqueued in q, filters out
// Silenced classes, and groups survivors by file. isTombstoned is consulted
// to drop accumulator entries for files that no longer exist.
func (a *Accumulator) Drain(q *Queue, isTombstoned FileTombstoned) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, d := range q.Drain() {
		if Silenced(d.Class) {
			continue
		}
		file := d.Loc.File
		a.accumulated[file] = append(a.accumulated[file], d)

		if n := len(a.updated); n == 0 || a.updated[n-1] != file {
			a.updated = append(a.updated, file)
		}
	}

	for file := range a.accumulated {
		if isTombstoned(file) {
			delete(a.accumulated, file)
		}
	}
}

// TakeUpdated returns the files with fresh diagnostics since the last call
// and clears the pending set, mirroring pushErrors' end-of-cycle reset.
func (a *Accumulator) TakeUpdated() []ast.FileRef {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.updated
	a.updated = nil
	return out
}

// ForFile returns the currently accumulated diagnostics for file, in
// arrival order.
func (a *Accumulator) ForFile(file ast.FileRef) []Diagnostic {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Diagnostic(nil), a.accumulated[file]...)
}

// Range is an LSP range: 0-based line/column pairs derived from this
// design's 1-based internal positions.
type Range struct {
	StartLine, StartCol int
	EndLine, EndCol     int
}

// Position1Based is a 1-based line/column pair, as stored on ast.Loc's
// backing file content.
type Position1Based struct {
	Line, Column int
}

// ToRange converts a pair of 1-based start/end positions to a 0-based LSP
// Range. This is the only place the 1-based-to-0-based conversion happens;
// every diagnostic and symbol location route through it.
func ToRange(start, end Position1Based) Range {
	return Range{
		StartLine: start.Line - 1,
		StartCol:  start.Column - 1,
		EndLine:   end.Line - 1,
		EndCol:    end.Column - 1,
	}
}

// PositionResolver maps a Loc's byte offsets to 1-based line/column pairs.
// It is implemented by whatever owns file contents (the gs package, via an
// adapter) so this package stays free of a dependency on source text
// indexing.
type PositionResolver interface {
	Position(loc ast.Loc) (start, end Position1Based)
}

// PayloadURI formats the decorated URI used for a Payload file's related
// information: a bare path with a "#L<line>" anchor so the link resolves
// sensibly both in an editor and when rendered by a plain code host.
func PayloadURI(path string, line int) string {
	return fmt.Sprintf("%s#L%d", path, line)
}

// WorkspaceURI formats the URI used for a Normal file: rootUri + "/" + path.
func WorkspaceURI(rootURI, path string) string {
	return rootURI + "/" + path
}
