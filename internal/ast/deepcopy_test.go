package ast

import "testing"

func loc(n int) Loc { return Loc{File: 1, Begin: n, End: n + 1} }

func TestDeepCopyStructuralEquality(t *testing.T) {
	tree := &If{
		base:  base{Loc: loc(0)},
		Cond:  &Ident{base: base{Loc: loc(1)}, Symbol: 7},
		Thenp: &Literal{base: base{Loc: loc(2)}, Value: int64(1)},
		Elsep: &EmptyTree{base: base{Loc: loc(3)}},
	}

	got, err := DeepCopy(tree, nil)
	if err != nil {
		t.Fatalf("DeepCopy returned error: %v", err)
	}

	cp, ok := got.(*If)
	if !ok {
		t.Fatalf("expected *If, got %T", got)
	}
	if cp == tree {
		t.Fatal("copy shares identity with original")
	}
	if cp.Cond.(*Ident) == tree.Cond.(*Ident) {
		t.Fatal("copy shares child identity with original")
	}
	if cp.Cond.(*Ident).Symbol != 7 {
		t.Fatalf("symbol not preserved: got %v", cp.Cond.(*Ident).Symbol)
	}
	if cp.Thenp.(*Literal).Value != int64(1) {
		t.Fatalf("literal value not preserved: got %v", cp.Thenp.(*Literal).Value)
	}
}

func TestDeepCopyRoundTripIsStable(t *testing.T) {
	tree := &Send{
		base: base{Loc: loc(0)},
		Recv: &Self{base: base{Loc: loc(1)}, Claz: 3},
		Fun:  "foo",
		Args: []Node{&Literal{base: base{Loc: loc(2)}, Value: "x"}},
	}

	first, err := DeepCopy(tree, nil)
	if err != nil {
		t.Fatalf("first DeepCopy failed: %v", err)
	}
	second, err := DeepCopy(first, nil)
	if err != nil {
		t.Fatalf("second DeepCopy failed: %v", err)
	}

	s1 := first.(*Send)
	s2 := second.(*Send)
	if s1.Fun != s2.Fun {
		t.Fatalf("Fun diverged across round trip: %q vs %q", s1.Fun, s2.Fun)
	}
	if s1.Args[0].(*Literal).Value != s2.Args[0].(*Literal).Value {
		t.Fatal("arg value diverged across round trip")
	}
}

func TestDeepCopyRootExemptFromAvoidOnFirstVisit(t *testing.T) {
	tree := &EmptyTree{base: base{Loc: loc(0)}}
	if _, err := DeepCopy(tree, tree); err != nil {
		t.Fatalf("root should be exempt from its own avoid check, got: %v", err)
	}
}

func TestDeepCopyFailsWhenAvoidReachedBelowRoot(t *testing.T) {
	avoided := &EmptyTree{base: base{Loc: loc(1)}}
	tree := &Break{base: base{Loc: loc(0)}, Expr: avoided}

	_, err := DeepCopy(tree, avoided)
	if err != ErrNotCopyable {
		t.Fatalf("expected ErrNotCopyable, got %v", err)
	}
}

func TestDeepCopyTreeRefFailsOnNilTarget(t *testing.T) {
	ref := &TreeRef{base: base{Loc: loc(0)}, Tree: nil}
	if _, err := DeepCopy(ref, nil); err != ErrNotCopyable {
		t.Fatalf("expected ErrNotCopyable for nil TreeRef target, got %v", err)
	}
}

func TestDeepCopyTreeRefDoesNotReExemptInnerRoot(t *testing.T) {
	// A TreeRef whose target is the avoid node itself must fail even though
	// the outer DeepCopy call's root is not avoid.
	inner := &EmptyTree{base: base{Loc: loc(5)}}
	ref := &TreeRef{base: base{Loc: loc(0)}, Tree: inner}

	_, err := DeepCopy(ref, inner)
	if err != ErrNotCopyable {
		t.Fatalf("expected ErrNotCopyable when TreeRef target equals avoid, got %v", err)
	}
}

func TestDeepCopyHashPreservesParallelSlices(t *testing.T) {
	tree := &Hash{
		base:   base{Loc: loc(0)},
		Keys:   []Node{&Literal{base: base{Loc: loc(1)}, Value: "a"}},
		Values: []Node{&Literal{base: base{Loc: loc(2)}, Value: int64(1)}},
	}
	got, err := DeepCopy(tree, nil)
	if err != nil {
		t.Fatalf("DeepCopy returned error: %v", err)
	}
	cp := got.(*Hash)
	if len(cp.Keys) != len(cp.Values) {
		t.Fatalf("Hash invariant violated after copy: %d keys, %d values", len(cp.Keys), len(cp.Values))
	}
}
