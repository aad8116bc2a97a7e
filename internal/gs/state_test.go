package gs

import (
	"testing"

	"github.com/alloy/sorbet/internal/ast"
)

func TestEnterFileAssignsIncreasingRefs(t *testing.T) {
	g := NewGlobalState()
	a, err := g.EnterFile(&File{Path: "a.rb"})
	if err != nil {
		t.Fatalf("EnterFile: %v", err)
	}
	b, err := g.EnterFile(&File{Path: "b.rb"})
	if err != nil {
		t.Fatalf("EnterFile: %v", err)
	}
	if a == 0 || b != a+1 {
		t.Fatalf("expected sequential FileRefs, got %d then %d", a, b)
	}
	if g.FilesUsed() != 3 {
		t.Fatalf("expected 3 used slots (including sentinel), got %d", g.FilesUsed())
	}
}

func TestMaxFilesEnforced(t *testing.T) {
	g := NewGlobalState(WithMaxFiles(1))
	if _, err := g.EnterFile(&File{Path: "a.rb"}); err != nil {
		t.Fatalf("first EnterFile should succeed: %v", err)
	}
	if _, err := g.EnterFile(&File{Path: "b.rb"}); err != ErrTooManyFiles {
		t.Fatalf("expected ErrTooManyFiles, got %v", err)
	}
}

func TestRootSymbolPreseeded(t *testing.T) {
	g := NewGlobalState()
	sym := g.Symbol(RootSymbol)
	if sym == nil {
		t.Fatal("expected root symbol to be preseeded")
	}
}

func TestDeepCopyIsolatesTables(t *testing.T) {
	g := NewGlobalState()
	ref, _ := g.EnterFile(&File{Path: "a.rb", Content: "x"})
	g.SetIndexed(ref, &ast.EmptyTree{})

	cp, err := g.DeepCopy()
	if err != nil {
		t.Fatalf("DeepCopy: %v", err)
	}

	cp.Tombstone(ref)
	if g.File(ref).Type == TombStone {
		t.Fatal("mutating the copy's file table affected the original")
	}

	if cp.Indexed(ref) == g.Indexed(ref) {
		t.Fatal("copy shares indexed tree identity with original")
	}
}

func TestNormalFilesExcludesPayloadAndTombstone(t *testing.T) {
	g := NewGlobalState()
	normal, _ := g.EnterFile(&File{Path: "a.rb", Type: Normal})
	_, _ = g.EnterFile(&File{Path: "core.rbi", Type: Payload})
	tomb, _ := g.EnterFile(&File{Path: "b.rb", Type: Normal})
	g.Tombstone(tomb)

	got := g.NormalFiles()
	if len(got) != 1 || got[0] != normal {
		t.Fatalf("expected only %d, got %v", normal, got)
	}
}
