package gs

import (
	"fmt"
	"sync"

	"github.com/alloy/sorbet/internal/ast"
)

// Options configures a GlobalState. See WithMaxFiles.
type Options struct {
	// MaxFiles bounds the number of files that may be entered before
	// EnterFile starts returning an error. Zero means unbounded.
	MaxFiles int
}

// DefaultOptions returns the zero-value, unbounded Options.
func DefaultOptions() Options {
	return Options{}
}

// Option mutates an Options value; see WithMaxFiles.
type Option func(*Options)

// WithMaxFiles bounds the number of files a GlobalState will accept.
func WithMaxFiles(n int) Option {
	return func(o *Options) { o.MaxFiles = n }
}

// GlobalState ("GS") is the mutable table pair threaded through indexing,
// resolution, and typechecking. It is safe for concurrent use: readers and
// writers serialize through mu, mirroring the RWMutex-guarded index
// structures this design's indexing layer is grounded on.
type GlobalState struct {
	mu      sync.RWMutex
	opts    Options
	files   *fileTable
	symbols *symbolTable
	// indexed is a sparse vector keyed by FileRef, holding the most
	// recently computed indexed AST for that file.
	indexed []ast.Node
}

// NewGlobalState returns a GlobalState with an empty file table and a
// symbol table pre-seeded with the root namespace at RootSymbol.
func NewGlobalState(opts ...Option) *GlobalState {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &GlobalState{
		opts:    o,
		files:   newFileTable(),
		symbols: newSymbolTable(),
		indexed: make([]ast.Node, 1),
	}
}

// ErrTooManyFiles is returned by EnterFile once Options.MaxFiles is reached.
var ErrTooManyFiles = fmt.Errorf("gs: file table is at capacity")

// EnterFile appends f to the file table and returns its FileRef.
func (g *GlobalState) EnterFile(f *File) (ast.FileRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.opts.MaxFiles > 0 && g.files.used()-1 >= g.opts.MaxFiles {
		return 0, ErrTooManyFiles
	}
	return g.files.enter(f), nil
}

// File returns the file table entry for ref, or nil if ref is invalid.
func (g *GlobalState) File(ref ast.FileRef) *File {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.files.get(ref)
}

// FilesUsed returns the number of occupied file table slots, including the
// reserved slot 0.
func (g *GlobalState) FilesUsed() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.files.used()
}

// Tombstone marks ref's file as removed without invalidating the handle.
func (g *GlobalState) Tombstone(ref ast.FileRef) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if f := g.files.get(ref); f != nil {
		f.Type = TombStone
	}
}

// EnterSymbol appends s to the symbol table and returns its SymbolRef.
func (g *GlobalState) EnterSymbol(s *Symbol) ast.SymbolRef {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.symbols.enter(s)
}

// Symbol returns the symbol table entry for ref, or nil if ref is invalid.
func (g *GlobalState) Symbol(ref ast.SymbolRef) *Symbol {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.symbols.get(ref)
}

// SymbolsUsed returns the number of occupied symbol table slots, including
// the root namespace at slot 1.
func (g *GlobalState) SymbolsUsed() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.symbols.used()
}

// SetIndexed records tree as the current indexed AST for ref, growing the
// sparse cache as needed.
func (g *GlobalState) SetIndexed(ref ast.FileRef, tree ast.Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if int(ref) >= len(g.indexed) {
		grown := make([]ast.Node, int(ref)+1)
		copy(grown, g.indexed)
		g.indexed = grown
	}
	g.indexed[ref] = tree
}

// Indexed returns the cached indexed AST for ref, or nil if none is cached.
func (g *GlobalState) Indexed(ref ast.FileRef) ast.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if int(ref) >= len(g.indexed) {
		return nil
	}
	return g.indexed[ref]
}

// IndexedTrees returns every non-nil cached indexed tree, in FileRef order.
func (g *GlobalState) IndexedTrees() []ast.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]ast.Node, 0, len(g.indexed))
	for _, t := range g.indexed {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// ResetIndexed discards the entire indexed-tree cache, as reIndex does
// before repopulating it from scratch.
func (g *GlobalState) ResetIndexed() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.indexed = make([]ast.Node, 1)
}

// NormalFiles returns the FileRef of every Normal (non-Payload,
// non-TombStone) file currently in the table, in ascending order.
func (g *GlobalState) NormalFiles() []ast.FileRef {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []ast.FileRef
	for i := 1; i < len(g.files.entries); i++ {
		if f := g.files.entries[i]; f != nil && f.Type == Normal {
			out = append(out, ast.FileRef(i))
		}
	}
	return out
}

// DeepCopy returns an independent GlobalState with cloned file and symbol
// tables and a deep-copied indexed-tree cache. It is the coarsest isolation
// unit the incremental driver uses to produce finalGs from initialGS: value
// semantics on the table slices give the required independence without
// needing copy-on-write sharing.
func (g *GlobalState) DeepCopy() (*GlobalState, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	cp := &GlobalState{
		opts:    g.opts,
		files:   g.files.clone(),
		symbols: g.symbols.clone(),
		indexed: make([]ast.Node, len(g.indexed)),
	}
	for i, tree := range g.indexed {
		if tree == nil {
			continue
		}
		copied, err := ast.DeepCopy(tree, nil)
		if err != nil {
			return nil, fmt.Errorf("gs: deep copy of indexed tree %d: %w", i, err)
		}
		cp.indexed[i] = copied
	}
	return cp, nil
}
