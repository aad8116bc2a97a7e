// Package rewriter implements syntactic, pre-resolver AST rewrites that
// recognize framework-specific class shapes and synthesize additional
// nodes before the namer/resolver/typechecker passes run.
package rewriter

import "github.com/alloy/sorbet/internal/ast"

// CommandRewriter recognizes classes shaped like a `Opus::Command` subclass
// and, for each one that declares a `call` instance method preceded by what
// looks like a signature declaration, synthesizes a self-targeted mirror of
// that method plus a duplicated signature. The class, outer-module, and
// method names are configurable so the same mechanism can be pointed at a
// differently named sibling DSL.
type CommandRewriter struct {
	// ClassName is the ancestor constant a class must extend, e.g. "Command".
	ClassName string
	// ModuleName is the scope that ancestor constant must resolve through,
	// e.g. "Opus".
	ModuleName string
	// MethodName is the instance method whose presence triggers the
	// rewrite, e.g. "call".
	MethodName string
}

// NewCommandRewriter returns a CommandRewriter configured for the framework
// names used throughout this design: `Opus::Command` classes with a `call`
// method.
func NewCommandRewriter() *CommandRewriter {
	return &CommandRewriter{ClassName: "Command", ModuleName: "Opus", MethodName: "call"}
}

// Rewrite applies the Command pattern to klass in place and reports whether
// it made any change. It is a no-op, returning ok=false, unless:
//
//   - klass is a Class (not a Module) with at least one ancestor;
//   - its first ancestor is a ConstantLit r.ClassName scoped by a ConstantLit
//     r.ModuleName, itself scoped by either EmptyTree or an Ident resolving
//     to the root symbol;
//   - the body contains a MethodDef named r.MethodName at an index i > 0;
//   - the statement at i-1 is a Send whose receiver is also a Send (the
//     syntactic signature-declaration heuristic, kept intentionally loose
//     rather than tightened to a specific signature-DSL shape).
//
// Applying Rewrite to an already-rewritten class is a no-op: the inserted
// signature copy and mirror method sit immediately after the original call
// method, so alreadyRewritten recognizes that shape and declines to insert a
// second copy.
func (r *CommandRewriter) Rewrite(klass *ast.ClassDef) bool {
	if !r.isCommand(klass) {
		return false
	}

	i, call := r.findCall(klass)
	if call == nil || i == 0 {
		return false
	}

	sig, ok := klass.Body[i-1].(*ast.Send)
	if !ok {
		return false
	}
	if _, ok := sig.Recv.(*ast.Send); !ok {
		return false
	}

	if r.alreadyRewritten(klass, i) {
		return false
	}

	newArgs := make([]ast.Node, 0, len(call.Args))
	for _, arg := range call.Args {
		copied, err := ast.DeepCopy(arg, nil)
		if err != nil {
			return false
		}
		newArgs = append(newArgs, copied)
	}

	selfCall := &ast.MethodDef{
		Symbol: call.Symbol,
		Name:   call.Name,
		Args:   newArgs,
		Rhs:    ast.Untyped(call.Location()),
		IsSelf: true,
	}
	selfCall.Loc = call.Location()

	sigCopy, err := ast.DeepCopy(sig, nil)
	if err != nil {
		return false
	}

	body := make([]ast.Node, 0, len(klass.Body)+2)
	body = append(body, klass.Body[:i+1]...)
	body = append(body, sigCopy, selfCall)
	body = append(body, klass.Body[i+1:]...)
	klass.Body = body

	return true
}

// isCommand is the shape-match predicate described in Rewrite's doc comment.
func (r *CommandRewriter) isCommand(klass *ast.ClassDef) bool {
	if klass.Kind != ast.Class || len(klass.Ancestors) == 0 {
		return false
	}
	cnst, ok := klass.Ancestors[0].(*ast.ConstantLit)
	if !ok || cnst.Cnst != r.ClassName {
		return false
	}
	scope, ok := cnst.Scope.(*ast.ConstantLit)
	if !ok || scope.Cnst != r.ModuleName {
		return false
	}
	if _, ok := scope.Scope.(*ast.EmptyTree); ok {
		return true
	}
	id, ok := scope.Scope.(*ast.Ident)
	if !ok {
		return false
	}
	return id.Symbol == rootSymbol
}

// rootSymbol is the well-known SymbolRef of the top-level root namespace, as
// produced by the namer for unqualified top-level constant references.
const rootSymbol ast.SymbolRef = 1

// findCall returns the index and node of the first MethodDef named
// r.MethodName in klass's body, or (0, nil) if none is present.
func (r *CommandRewriter) findCall(klass *ast.ClassDef) (int, *ast.MethodDef) {
	for i, stat := range klass.Body {
		mdef, ok := stat.(*ast.MethodDef)
		if !ok {
			continue
		}
		if !methodNamed(mdef, r.MethodName) {
			continue
		}
		return i, mdef
	}
	return 0, nil
}

// methodNamed reports whether mdef is named methodName.
func methodNamed(mdef *ast.MethodDef, methodName string) bool {
	return mdef.Name == methodName
}

// alreadyRewritten reports whether the two statements immediately following
// the matched call (at klass.Body[i]) already look like a previously
// synthesized [sig-copy, self-call] pair, making this application a no-op.
func (r *CommandRewriter) alreadyRewritten(klass *ast.ClassDef, i int) bool {
	if i+2 >= len(klass.Body) {
		return false
	}
	if _, ok := klass.Body[i+1].(*ast.Send); !ok {
		return false
	}
	next, ok := klass.Body[i+2].(*ast.MethodDef)
	if !ok || !next.IsSelf {
		return false
	}
	return methodNamed(next, r.MethodName)
}
