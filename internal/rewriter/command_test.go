package rewriter

import (
	"testing"

	"github.com/alloy/sorbet/internal/ast"
)

func commandAncestor() ast.Node {
	return &ast.ConstantLit{
		Scope: &ast.ConstantLit{Scope: &ast.EmptyTree{}, Cnst: "Opus"},
		Cnst:  "Command",
	}
}

func sigSend() *ast.Send {
	return &ast.Send{Recv: &ast.Send{Fun: "params"}, Fun: "returns"}
}

func sampleClass() *ast.ClassDef {
	return &ast.ClassDef{
		Kind:      ast.Class,
		Ancestors: []ast.Node{commandAncestor()},
		Body: []ast.Node{
			sigSend(),
			&ast.MethodDef{Name: "call", Args: []ast.Node{&ast.Local{LocalVariable: "x"}}},
		},
	}
}

func TestRewriteInsertsMirrorMethod(t *testing.T) {
	klass := sampleClass()
	r := NewCommandRewriter()

	if ok := r.Rewrite(klass); !ok {
		t.Fatal("expected Rewrite to report a change")
	}
	if len(klass.Body) != 4 {
		t.Fatalf("expected 4 body statements after rewrite, got %d", len(klass.Body))
	}
	if _, ok := klass.Body[2].(*ast.Send); !ok {
		t.Fatalf("expected duplicated sig Send at index 2, got %T", klass.Body[2])
	}
	mirror, ok := klass.Body[3].(*ast.MethodDef)
	if !ok {
		t.Fatalf("expected mirror MethodDef at index 3, got %T", klass.Body[3])
	}
	if !mirror.IsSelf {
		t.Fatal("mirror method should be self-targeted")
	}
	if mirror.Name != "call" {
		t.Fatalf("mirror method name mismatch: %q", mirror.Name)
	}
	if len(mirror.Args) != 1 {
		t.Fatalf("expected mirror to carry a copy of call's args, got %d", len(mirror.Args))
	}
}

func TestRewriteIsIdempotent(t *testing.T) {
	klass := sampleClass()
	r := NewCommandRewriter()

	r.Rewrite(klass)
	first := len(klass.Body)

	if ok := r.Rewrite(klass); ok {
		t.Fatal("second Rewrite should report no change")
	}
	if len(klass.Body) != first {
		t.Fatalf("body length changed on second rewrite: %d -> %d", first, len(klass.Body))
	}
}

func TestRewriteNoOpWhenNotCommandShape(t *testing.T) {
	klass := &ast.ClassDef{
		Kind:      ast.Class,
		Ancestors: []ast.Node{&ast.ConstantLit{Scope: &ast.EmptyTree{}, Cnst: "Object"}},
		Body: []ast.Node{
			sigSend(),
			&ast.MethodDef{Name: "call"},
		},
	}
	r := NewCommandRewriter()
	if ok := r.Rewrite(klass); ok {
		t.Fatal("expected no rewrite for a non-Command class")
	}
}

func TestRewriteNoOpWhenCallIsFirstStatement(t *testing.T) {
	klass := &ast.ClassDef{
		Kind:      ast.Class,
		Ancestors: []ast.Node{commandAncestor()},
		Body:      []ast.Node{&ast.MethodDef{Name: "call"}},
	}
	r := NewCommandRewriter()
	if ok := r.Rewrite(klass); ok {
		t.Fatal("expected no rewrite when call has no preceding statement")
	}
}

func TestRewriteNoOpWhenPrecedingStatementIsNotSigShaped(t *testing.T) {
	klass := &ast.ClassDef{
		Kind:      ast.Class,
		Ancestors: []ast.Node{commandAncestor()},
		Body: []ast.Node{
			&ast.Literal{Value: "not a sig"},
			&ast.MethodDef{Name: "call"},
		},
	}
	r := NewCommandRewriter()
	if ok := r.Rewrite(klass); ok {
		t.Fatal("expected no rewrite when the preceding statement isn't a chained Send")
	}
}
