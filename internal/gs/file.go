// Package gs implements the incremental global state threaded through
// indexing, resolution, and typechecking: an append-only file table and
// symbol table, plus the sparse cache of per-file indexed trees.
package gs

import "github.com/alloy/sorbet/internal/ast"

// SourceType classifies a file table entry.
type SourceType int

const (
	// Normal is ordinary user source code.
	Normal SourceType = iota
	// Payload is a language-core stub bundled with the server, not user
	// code; its diagnostics are rendered with a bare path plus "#L<line>"
	// decoration instead of a workspace-relative URI (see
	// internal/diagnostics).
	Payload
	// TombStone marks a file slot whose content has been logically removed.
	// The slot's FileRef remains valid so existing references to it do not
	// dangle, but it is skipped by lookups and its accumulated diagnostics
	// are discarded.
	TombStone
)

// File is one file table entry.
type File struct {
	Path    string
	Content string
	Type    SourceType
}

// fileTable is an append-only, 1-indexed vector of File entries. Index 0 is
// reserved as the invalid/unset FileRef sentinel.
type fileTable struct {
	entries []*File
}

func newFileTable() *fileTable {
	return &fileTable{entries: make([]*File, 1)}
}

// enter appends f and returns its freshly assigned FileRef.
func (t *fileTable) enter(f *File) ast.FileRef {
	t.entries = append(t.entries, f)
	return ast.FileRef(len(t.entries) - 1)
}

// get returns the File for ref, or nil if ref is out of range.
func (t *fileTable) get(ref ast.FileRef) *File {
	if int(ref) <= 0 || int(ref) >= len(t.entries) {
		return nil
	}
	return t.entries[ref]
}

// used returns the number of occupied slots, including slot 0.
func (t *fileTable) used() int {
	return len(t.entries)
}

// clone returns a deep copy of the table; File values are copied so
// mutating the clone's entries never affects the original.
func (t *fileTable) clone() *fileTable {
	out := &fileTable{entries: make([]*File, len(t.entries))}
	for i, f := range t.entries {
		if f == nil {
			continue
		}
		cp := *f
		out.entries[i] = &cp
	}
	return out
}
