package pipeline

import (
	"context"
	"fmt"
	"hash/fnv"

	"golang.org/x/sync/errgroup"

	"github.com/alloy/sorbet/internal/ast"
	"github.com/alloy/sorbet/internal/diagnostics"
	"github.com/alloy/sorbet/internal/gs"
	"github.com/alloy/sorbet/internal/rewriter"
)

// DefaultIndexer is a minimal reference Indexer. It does not lex or parse
// source text; it wraps each file's content into a trivial InsSeq node
// tagged with that file's FileRef so the rest of the pipeline has
// something real to deep-copy, rewrite, and publish diagnostics against,
// and fans the per-file work out across a bounded worker pool the way a
// real lexer/parser/indexer would.
//
// If a caller supplies a pre-built tree for a name via the Parsed field (for
// tests that want to exercise a specific class shape), that tree is used
// instead of the trivial placeholder, and DSL rewriting still runs over any
// top-level ClassDef it finds.
type DefaultIndexer struct {
	Rewriter *rewriter.CommandRewriter
	// Parsed optionally supplies a pre-built tree for a given input name,
	// bypassing the trivial placeholder. Tests populate this to exercise
	// the rewriter and deep-copy plumbing against realistic shapes.
	Parsed map[string]ast.Node
}

// NewDefaultIndexer returns a DefaultIndexer configured with the standard
// Opus::Command rewriter.
func NewDefaultIndexer() *DefaultIndexer {
	return &DefaultIndexer{Rewriter: rewriter.NewCommandRewriter()}
}

func (idx *DefaultIndexer) Index(ctx context.Context, g *gs.GlobalState, names []string, refs []ast.FileRef, opts Options, workers int, kv KVStore) ([]ast.Node, error) {
	type job struct {
		ref  ast.FileRef
		name string
	}
	var jobs []job

	for _, name := range names {
		ref, err := g.EnterFile(&gs.File{Path: name, Type: gs.Normal})
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job{ref: ref, name: name})
	}
	for _, ref := range refs {
		f := g.File(ref)
		if f == nil {
			continue
		}
		jobs = append(jobs, job{ref: ref, name: f.Path})
	}

	results := make([]ast.Node, len(jobs))
	group, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		group.SetLimit(workers)
	}

	for i, j := range jobs {
		i, j := i, j
		group.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			tree, err := idx.indexOne(gctx, g, j.ref, j.name, kv)
			if err != nil {
				return err
			}
			results[i] = tree
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (idx *DefaultIndexer) indexOne(ctx context.Context, g *gs.GlobalState, ref ast.FileRef, name string, kv KVStore) (ast.Node, error) {
	if pre, ok := idx.Parsed[name]; ok {
		tree, err := ast.DeepCopy(pre, nil)
		if err != nil {
			return nil, fmt.Errorf("pipeline: index %s: %w", name, err)
		}
		idx.rewriteClasses(tree)
		return tree, nil
	}

	f := g.File(ref)
	var content string
	if f != nil {
		content = f.Content
	}
	key := cacheKey(name, content)
	if kv != nil {
		if cached, ok, err := kv.Get(ctx, key); err == nil && ok {
			_ = cached // the reference indexer's trivial tree carries no
			// payload worth decoding; a real indexer would gob-decode the
			// cached AST here instead of recomputing it.
		}
	}

	loc := ast.Loc{File: ref, Begin: 0, End: len(content)}
	tree := &ast.InsSeq{Stats: nil, Expr: &ast.EmptyTree{}}
	tree.Loc = loc

	if kv != nil {
		_ = kv.Set(ctx, key, []byte(content))
	}
	return tree, nil
}

// rewriteClasses applies idx.Rewriter to every top-level ClassDef
// immediately reachable from tree's statement list.
func (idx *DefaultIndexer) rewriteClasses(tree ast.Node) {
	seq, ok := tree.(*ast.InsSeq)
	if !ok {
		return
	}
	for _, stat := range seq.Stats {
		if klass, ok := stat.(*ast.ClassDef); ok {
			idx.Rewriter.Rewrite(klass)
		}
	}
}

func cacheKey(name, content string) string {
	h := fnv.New64a()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return fmt.Sprintf("%x", h.Sum64())
}

// DefaultResolver is a minimal reference Resolver: it returns trees
// unchanged. Binding UnresolvedIdent nodes against a real symbol table is
// out of scope here; this stub exists so the Driver's resolve/typecheck
// sequence is exercisable end to end.
type DefaultResolver struct{}

func (DefaultResolver) Resolve(ctx context.Context, g *gs.GlobalState, trees []ast.Node, opts Options) ([]ast.Node, error) {
	return trees, nil
}

// DefaultTypechecker is a minimal reference Typechecker. It performs no
// actual type inference; it fans out across workers the same way a real
// typechecker would and pushes nothing into the queue unless a tree is
// malformed in a way this reference implementation can actually detect (a
// nil Expr on an InsSeq).
type DefaultTypechecker struct {
	Queue *diagnostics.Queue
}

func (t DefaultTypechecker) Typecheck(ctx context.Context, g *gs.GlobalState, trees []ast.Node, opts Options, workers int) error {
	group, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		group.SetLimit(workers)
	}
	for _, tree := range trees {
		tree := tree
		group.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			t.checkOne(tree)
			return nil
		})
	}
	return group.Wait()
}

func (t DefaultTypechecker) checkOne(tree ast.Node) {
	seq, ok := tree.(*ast.InsSeq)
	if !ok || t.Queue == nil {
		return
	}
	if seq.Expr == nil {
		t.Queue.Push(diagnostics.Diagnostic{
			Loc:       seq.Location(),
			Class:     diagnostics.ErrorClass{Pass: "typer", Name: "MalformedTree", Code: 7000},
			Formatted: "malformed indexed tree: missing trailing expression",
		})
	}
}
