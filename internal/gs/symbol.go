package gs

import "github.com/alloy/sorbet/internal/ast"

// Classification is the narrow set of symbol shapes the LSP layer needs to
// distinguish in order to map a symbol to an LSP SymbolKind (see
// internal/lsp's symbol-kind table).
type Classification int

const (
	ClassOrModule Classification = iota
	Method
	Field
	StaticField
	MethodArgument
	TypeMember
	TypeArgument
	Other
)

// RootSymbol is the well-known SymbolRef of the top-level root namespace,
// entered as symbol table slot 1 by NewGlobalState.
const RootSymbol ast.SymbolRef = 1

// Symbol is one symbol table entry.
type Symbol struct {
	Name           string
	DefinitionLoc  ast.Loc
	Owner          ast.SymbolRef
	Classification Classification
	// IsModule distinguishes a module from a class when Classification is
	// ClassOrModule.
	IsModule bool
}

// symbolTable is an append-only, 1-indexed vector of Symbol entries. Index 0
// is reserved as the invalid/unset SymbolRef sentinel; index 1 is always
// the root namespace.
type symbolTable struct {
	entries []*Symbol
}

func newSymbolTable() *symbolTable {
	t := &symbolTable{entries: make([]*Symbol, 1)}
	t.entries = append(t.entries, &Symbol{Name: "<root>", Classification: ClassOrModule})
	return t
}

func (t *symbolTable) enter(s *Symbol) ast.SymbolRef {
	t.entries = append(t.entries, s)
	return ast.SymbolRef(len(t.entries) - 1)
}

func (t *symbolTable) get(ref ast.SymbolRef) *Symbol {
	if int(ref) <= 0 || int(ref) >= len(t.entries) {
		return nil
	}
	return t.entries[ref]
}

func (t *symbolTable) used() int {
	return len(t.entries)
}

func (t *symbolTable) clone() *symbolTable {
	out := &symbolTable{entries: make([]*Symbol, len(t.entries))}
	for i, s := range t.entries {
		if s == nil {
			continue
		}
		cp := *s
		out.entries[i] = &cp
	}
	return out
}
