// Package ast defines the tagged-variant abstract syntax tree shared by the
// DSL rewriter and the incremental reanalysis pipeline.
//
// The tree is a closed family: every node variant is a distinct Go struct
// implementing Node, switched over exhaustively by traversals (DeepCopy,
// the rewriter, the symbol walker) rather than dispatched virtually. This
// mirrors how the source language's own compiler represents its AST as a
// sealed set of expression kinds.
package ast

// FileRef is a 1-based handle into a file table owned by the global state.
// Zero is the invalid/unset FileRef.
type FileRef int

// Valid reports whether f refers to an actual file table slot.
func (f FileRef) Valid() bool { return f > 0 }

// SymbolRef is a handle into a symbol table owned by the global state.
// Zero is the invalid/unset SymbolRef.
type SymbolRef int

// Valid reports whether s refers to an actual symbol table slot.
func (s SymbolRef) Valid() bool { return s > 0 }

// Loc identifies a byte range within a single file.
type Loc struct {
	File  FileRef
	Begin int
	End   int
}

// Node is implemented by every AST variant. node is unexported so the set of
// implementors is closed to this package.
type Node interface {
	node()
	Location() Loc
}

// ClassKind distinguishes a ClassDef declaring a class from one declaring a
// module.
type ClassKind int

const (
	Class ClassKind = iota
	Module
)

// CastKind distinguishes the different runtime-checked casts the language
// surfaces (type assertion, unchecked cast, and so on). The exact set is a
// property of the semantic passes this package does not implement; it is
// carried here opaquely so Cast nodes round-trip through DeepCopy and the
// rewriter untouched.
type CastKind int

// UnresolvedIdentKind distinguishes the different unresolved-name shapes the
// parser can produce before the namer/resolver passes run.
type UnresolvedIdentKind int

const (
	UnresolvedLocal UnresolvedIdentKind = iota
	UnresolvedInstance
	UnresolvedClass
	UnresolvedGlobal
)

// base is embedded by every node to provide Location() without repeating the
// field and method on each variant.
type base struct {
	Loc Loc
}

func (b base) Location() Loc { return b.Loc }

// ClassDef declares a class or module: `class Name < Ancestor ... end`.
type ClassDef struct {
	base
	Symbol    SymbolRef
	Name      Node // Ident, ConstantLit, or UnresolvedIdent
	Ancestors []Node
	Body      []Node
	Kind      ClassKind
}

func (*ClassDef) node() {}

// MethodDef declares a method: `def name(args) ... end`. Name is the bare
// method name as written in source; unlike ClassDef.Name (which may be a
// scoped constant expression), a method name is never itself a tree.
type MethodDef struct {
	base
	Symbol SymbolRef
	Name   string
	Args   []Node
	Rhs    Node
	IsSelf bool
}

func (*MethodDef) node() {}

// ConstDef declares a constant assignment at class/module scope.
type ConstDef struct {
	base
	Symbol SymbolRef
	Rhs    Node
}

func (*ConstDef) node() {}

// If is a conditional: `if cond then thenp else elsep end`.
type If struct {
	base
	Cond  Node
	Thenp Node
	Elsep Node
}

func (*If) node() {}

// While is a loop: `while cond do body end`.
type While struct {
	base
	Cond Node
	Body Node
}

func (*While) node() {}

// Break is a `break` statement, optionally carrying a value.
type Break struct {
	base
	Expr Node
}

func (*Break) node() {}

// Retry is a `retry` statement.
type Retry struct {
	base
}

func (*Retry) node() {}

// Next is a `next` statement, optionally carrying a value.
type Next struct {
	base
	Expr Node
}

func (*Next) node() {}

// Return is a `return` statement, optionally carrying a value.
type Return struct {
	base
	Expr Node
}

func (*Return) node() {}

// Yield is a `yield` expression, optionally carrying arguments.
type Yield struct {
	base
	Expr Node
}

func (*Yield) node() {}

// RescueCase is a single `rescue ExcA, ExcB => var` clause.
type RescueCase struct {
	base
	Exceptions []Node
	Var        Node
	Body       Node
}

func (*RescueCase) node() {}

// Rescue is a `begin ... rescue ... else ... ensure ... end` block.
type Rescue struct {
	base
	Body        Node
	RescueCases []Node
	Else        Node
	Ensure      Node
}

func (*Rescue) node() {}

// Ident is a reference to an already-resolved symbol.
type Ident struct {
	base
	Symbol SymbolRef
}

func (*Ident) node() {}

// Local is a reference to a method-local variable handle.
type Local struct {
	base
	LocalVariable string
}

func (*Local) node() {}

// UnresolvedIdent is a name the namer/resolver has not yet bound to a symbol.
type UnresolvedIdent struct {
	base
	Kind UnresolvedIdentKind
	Name string
}

func (*UnresolvedIdent) node() {}

// Self is a reference to the receiver's own class handle.
type Self struct {
	base
	Claz SymbolRef
}

func (*Self) node() {}

// RestArg wraps a reference to mark it as a splat argument (`*args`).
type RestArg struct {
	base
	Expr Node
}

func (*RestArg) node() {}

// KeywordArg wraps a reference to mark it as a keyword argument (`name:`).
type KeywordArg struct {
	base
	Expr Node
}

func (*KeywordArg) node() {}

// OptionalArg wraps a reference with a default-value expression.
type OptionalArg struct {
	base
	Expr    Node
	Default Node
}

func (*OptionalArg) node() {}

// BlockArg wraps a reference to mark it as a block parameter (`&blk`).
type BlockArg struct {
	base
	Expr Node
}

func (*BlockArg) node() {}

// ShadowArg wraps a reference to mark it as a block-local shadow parameter.
type ShadowArg struct {
	base
	Expr Node
}

func (*ShadowArg) node() {}

// Assign is `lhs = rhs`.
type Assign struct {
	base
	Lhs Node
	Rhs Node
}

func (*Assign) node() {}

// Send is a method call `recv.fun(args, &block)`.
type Send struct {
	base
	Recv  Node
	Fun   string
	Args  []Node
	Block *Block
}

func (*Send) node() {}

// Cast is a runtime-checked type cast.
type Cast struct {
	base
	Type string
	Arg  Node
	Kind CastKind
}

func (*Cast) node() {}

// Hash is a hash literal; Keys and Values have equal length and are
// positionally paired.
type Hash struct {
	base
	Keys   []Node
	Values []Node
}

func (*Hash) node() {}

// Array is an array literal.
type Array struct {
	base
	Elems []Node
}

func (*Array) node() {}

// Literal is a scalar literal (string, symbol, number, boolean, nil).
type Literal struct {
	base
	Value any
}

func (*Literal) node() {}

// ConstantLit is a reference to a constant by name within an explicit scope.
type ConstantLit struct {
	base
	Scope Node
	Cnst  string
}

func (*ConstantLit) node() {}

// ArraySplat is `*arg` used in an array-literal or call-argument position.
type ArraySplat struct {
	base
	Arg Node
}

func (*ArraySplat) node() {}

// HashSplat is `**arg` used in a hash-literal or call-argument position.
type HashSplat struct {
	base
	Arg Node
}

func (*HashSplat) node() {}

// ZSuperArgs stands in for the implicit argument list of a bare `super` call.
type ZSuperArgs struct {
	base
}

func (*ZSuperArgs) node() {}

// Block is the `{ |args| body }` or `do |args| body end` attached to a Send.
type Block struct {
	base
	Args   []Node
	Body   Node
	Symbol SymbolRef
}

func (*Block) node() {}

// InsSeq is a sequence of statements followed by a final expression value.
type InsSeq struct {
	base
	Stats []Node
	Expr  Node
}

func (*InsSeq) node() {}

// EmptyTree is the canonical "nothing here" node, used for absent optional
// children (an absent else-branch, an absent block, and so on).
type EmptyTree struct {
	base
}

func (*EmptyTree) node() {}

// TreeRef is a non-owning, shared reference to a tree stored elsewhere. It
// exists so the rewriter and other passes can duplicate a subtree's
// structure without duplicating the subtree's identity, and it is the only
// node kind DeepCopy can fail to traverse (see deepcopy.go).
type TreeRef struct {
	base
	Tree Node
}

func (*TreeRef) node() {}

// Untyped constructs a placeholder expression used where a node's value does
// not matter except as a hole later passes will not need to type further.
// Used by the rewriter when synthesizing mirror methods (see
// internal/rewriter) in place of bringing in the whole method body.
func Untyped(loc Loc) Node {
	return &Literal{base: base{Loc: loc}, Value: nil}
}
