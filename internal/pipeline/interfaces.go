// Package pipeline drives incremental reanalysis: it owns the slow-path
// (and, today, slow-path-delegating fast-path) reindex/resolve/typecheck
// sequence and the narrow collaborator interfaces the namer/resolver/
// typechecker passes are injected through.
//
// Those passes themselves — building a real symbol table from source, type
// inference, and so on — are out of scope here; what lives in this package
// is the incremental control flow around them plus minimal reference
// implementations sufficient to exercise it.
package pipeline

import (
	"context"

	"github.com/alloy/sorbet/internal/ast"
	"github.com/alloy/sorbet/internal/gs"
)

// Options configures a single index/resolve/typecheck run.
type Options struct {
	// InputFileNames lists source paths to index on a cold start, before
	// any FileRef has been assigned.
	InputFileNames []string
}

// Indexer turns either named, not-yet-entered source files or already
// entered FileRefs into indexed ASTs, consulting kv for memoized results
// and fanning work out across workers goroutines.
type Indexer interface {
	Index(ctx context.Context, g *gs.GlobalState, names []string, refs []ast.FileRef, opts Options, workers int, kv KVStore) ([]ast.Node, error)
}

// Resolver binds unresolved names in trees against g's symbol table and
// returns the resolved trees.
type Resolver interface {
	Resolve(ctx context.Context, g *gs.GlobalState, trees []ast.Node, opts Options) ([]ast.Node, error)
}

// Typechecker runs type inference/checking over trees, recording
// diagnostics as a side effect into a diagnostics queue the implementation
// holds (see DefaultTypechecker.Queue).
type Typechecker interface {
	Typecheck(ctx context.Context, g *gs.GlobalState, trees []ast.Node, opts Options, workers int) error
}

// KVStore is the narrow persistence collaborator the Indexer consults as a
// memoization cache of previously indexed trees. Implementations must treat
// misses and errors identically to "not cached" — the caller never depends
// on the store for correctness, only for speed.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
