package diagnostics

import (
	"testing"

	"github.com/alloy/sorbet/internal/ast"
)

func TestSilencedClasses(t *testing.T) {
	for _, c := range []ErrorClass{RedefinitionOfMethod, DuplicateVariableDeclaration, RedefinitionOfParents} {
		if !Silenced(c) {
			t.Fatalf("expected %v to be silenced", c)
		}
	}
	other := ErrorClass{Pass: "typer", Name: "MethodMissing", Code: 7001}
	if Silenced(other) {
		t.Fatal("expected unrelated class to not be silenced")
	}
}

func TestAccumulatorDrainFiltersAndDedupsUpdated(t *testing.T) {
	q := NewQueue()
	q.Push(Diagnostic{Loc: ast.Loc{File: 1}, Class: RedefinitionOfMethod, Formatted: "silenced"})
	q.Push(Diagnostic{Loc: ast.Loc{File: 1}, Class: ErrorClass{Name: "Real"}, Formatted: "first"})
	q.Push(Diagnostic{Loc: ast.Loc{File: 1}, Class: ErrorClass{Name: "Real"}, Formatted: "second"})
	q.Push(Diagnostic{Loc: ast.Loc{File: 2}, Class: ErrorClass{Name: "Real"}, Formatted: "third"})

	acc := NewAccumulator()
	acc.Drain(q, func(ast.FileRef) bool { return false })

	got := acc.ForFile(1)
	if len(got) != 2 {
		t.Fatalf("expected 2 survivors for file 1, got %d", len(got))
	}
	updated := acc.TakeUpdated()
	if len(updated) != 2 || updated[0] != 1 || updated[1] != 2 {
		t.Fatalf("expected updated order [1 2], got %v", updated)
	}
}

func TestAccumulatorDropsTombstonedFiles(t *testing.T) {
	q := NewQueue()
	q.Push(Diagnostic{Loc: ast.Loc{File: 1}, Class: ErrorClass{Name: "Real"}, Formatted: "x"})

	acc := NewAccumulator()
	acc.Drain(q, func(ref ast.FileRef) bool { return ref == 1 })

	if got := acc.ForFile(1); len(got) != 0 {
		t.Fatalf("expected tombstoned file's diagnostics dropped, got %d", len(got))
	}
}

func TestToRangeConvertsOneBasedToZeroBased(t *testing.T) {
	r := ToRange(Position1Based{Line: 6, Column: 24}, Position1Based{Line: 7, Column: 1})
	if r.StartLine != 5 || r.StartCol != 23 || r.EndLine != 6 || r.EndCol != 0 {
		t.Fatalf("unexpected conversion: %+v", r)
	}
}

type fakeFiles struct {
	paths   map[ast.FileRef]string
	payload map[ast.FileRef]bool
	exists  map[ast.FileRef]bool
}

func (f *fakeFiles) Exists(ref ast.FileRef) bool   { return f.exists[ref] }
func (f *fakeFiles) Path(ref ast.FileRef) string   { return f.paths[ref] }
func (f *fakeFiles) IsPayload(ref ast.FileRef) bool { return f.payload[ref] }

type fakePositions struct{}

func (fakePositions) Position(loc ast.Loc) (Position1Based, Position1Based) {
	return Position1Based{Line: 1, Column: 1}, Position1Based{Line: 1, Column: 5}
}

func TestPublishUsesPayloadAnchorForPayloadFiles(t *testing.T) {
	q := NewQueue()
	q.Push(Diagnostic{Loc: ast.Loc{File: 1}, Class: ErrorClass{Name: "Real", Code: 9}, Formatted: "oops"})
	acc := NewAccumulator()
	acc.Drain(q, func(ast.FileRef) bool { return false })

	pub := &Publisher{
		RootURI: "file:///w",
		Files: &fakeFiles{
			paths:   map[ast.FileRef]string{1: "rbi/core/string.rbi"},
			payload: map[ast.FileRef]bool{1: true},
			exists:  map[ast.FileRef]bool{1: true},
		},
		Positions: fakePositions{},
	}
	params := pub.Publish(acc)
	if len(params) != 1 {
		t.Fatalf("expected 1 publish params, got %d", len(params))
	}
	if params[0].URI != "rbi/core/string.rbi" {
		t.Fatalf("expected bare payload path, got %q", params[0].URI)
	}
}

func TestPublishUsesWorkspaceURIForNormalFiles(t *testing.T) {
	q := NewQueue()
	q.Push(Diagnostic{Loc: ast.Loc{File: 2}, Class: ErrorClass{Name: "Real", Code: 9}, Formatted: "oops"})
	acc := NewAccumulator()
	acc.Drain(q, func(ast.FileRef) bool { return false })

	pub := &Publisher{
		RootURI: "file:///w",
		Files: &fakeFiles{
			paths:  map[ast.FileRef]string{2: "a/b.rb"},
			exists: map[ast.FileRef]bool{2: true},
		},
		Positions: fakePositions{},
	}
	params := pub.Publish(acc)
	if len(params) != 1 || params[0].URI != "file:///w/a/b.rb" {
		t.Fatalf("unexpected publish params: %+v", params)
	}
}
