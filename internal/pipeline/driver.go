package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/alloy/sorbet/internal/ast"
	"github.com/alloy/sorbet/internal/diagnostics"
	"github.com/alloy/sorbet/internal/gs"
	"github.com/alloy/sorbet/internal/telemetry"
)

// Driver owns the incremental index/resolve/typecheck sequence: the
// long-lived InitialGS, the most recent FinalGS snapshot produced by a
// completed pass, and the collaborators it fans work out to.
type Driver struct {
	InitialGS *gs.GlobalState
	FinalGS   *gs.GlobalState

	Indexer     Indexer
	Resolver    Resolver
	Typechecker Typechecker
	KV          KVStore
	Queue       *diagnostics.Queue
	Accumulator *diagnostics.Accumulator

	Opts    Options
	Workers int
}

// NewDriver wires a Driver around a fresh InitialGS and the given
// collaborators. Workers defaults to 1 if workers <= 0.
func NewDriver(indexer Indexer, resolver Resolver, typechecker Typechecker, kv KVStore, workers int) *Driver {
	if workers <= 0 {
		workers = 1
	}
	return &Driver{
		InitialGS:   gs.NewGlobalState(),
		Indexer:     indexer,
		Resolver:    resolver,
		Typechecker: typechecker,
		KV:          kv,
		Queue:       diagnostics.NewQueue(),
		Accumulator: diagnostics.NewAccumulator(),
		Workers:     workers,
	}
}

// ReIndex rebuilds the indexed-tree cache from scratch. When initial is
// true, it indexes Opts.InputFileNames (a cold start, before any file has a
// FileRef); otherwise it reindexes every currently Normal file already in
// InitialGS.
func (d *Driver) ReIndex(ctx context.Context, initial bool) error {
	d.InitialGS.ResetIndexed()

	var names []string
	var refs []ast.FileRef
	if initial {
		names = d.Opts.InputFileNames
	} else {
		refs = d.InitialGS.NormalFiles()
	}

	trees, err := d.Indexer.Index(ctx, d.InitialGS, names, refs, d.Opts, d.Workers, d.KV)
	if err != nil {
		return fmt.Errorf("pipeline: reindex: %w", err)
	}
	for _, t := range trees {
		d.InitialGS.SetIndexed(t.Location().File, t)
	}
	return nil
}

// SlowPath performs a full reanalysis: invalidate diagnostics, deep-copy the
// cached indexed trees, enter and index the changed files, snapshot
// InitialGS into a fresh FinalGS, then resolve and typecheck. On success it
// updates d.FinalGS and returns it.
func (d *Driver) SlowPath(ctx context.Context, changedFiles []*gs.File) (result *gs.GlobalState, err error) {
	ctx, span := telemetry.StartSlowPathSpan(ctx, len(changedFiles))
	start := time.Now()
	defer func() {
		telemetry.RecordSlowPath(ctx, time.Since(start), err == nil)
		span.End()
	}()

	d.Accumulator.Invalidate()

	var workingTrees []ast.Node
	for _, t := range d.InitialGS.IndexedTrees() {
		copied, copyErr := ast.DeepCopy(t, nil)
		if copyErr != nil {
			err = fmt.Errorf("pipeline: slow path: deep copy cached tree: %w", copyErr)
			return nil, err
		}
		workingTrees = append(workingTrees, copied)
	}

	changedRefs := make([]ast.FileRef, 0, len(changedFiles))
	for _, f := range changedFiles {
		ref, enterErr := d.InitialGS.EnterFile(f)
		if enterErr != nil {
			err = fmt.Errorf("pipeline: slow path: enter file: %w", enterErr)
			return nil, err
		}
		changedRefs = append(changedRefs, ref)
	}

	freshlyIndexed, indexErr := d.Indexer.Index(ctx, d.InitialGS, nil, changedRefs, d.Opts, d.Workers, d.KV)
	if indexErr != nil {
		err = fmt.Errorf("pipeline: slow path: index changed files: %w", indexErr)
		return nil, err
	}
	workingTrees = append(workingTrees, freshlyIndexed...)

	finalGs, copyErr := d.InitialGS.DeepCopy()
	if copyErr != nil {
		err = fmt.Errorf("pipeline: slow path: snapshot global state: %w", copyErr)
		return nil, err
	}

	resolved, resolveErr := d.Resolver.Resolve(ctx, finalGs, workingTrees, d.Opts)
	if resolveErr != nil {
		err = fmt.Errorf("pipeline: slow path: resolve: %w", resolveErr)
		return nil, err
	}
	if checkErr := d.Typechecker.Typecheck(ctx, finalGs, resolved, d.Opts, d.Workers); checkErr != nil {
		err = fmt.Errorf("pipeline: slow path: typecheck: %w", checkErr)
		return nil, err
	}

	d.FinalGS = finalGs
	return finalGs, nil
}

// FastPath is the entry point didChange/didChangeWatchedFiles call on every
// edit. It currently delegates to SlowPath unconditionally: a true
// incremental fast path requires the resolver to report whether a changed
// file's definitions altered the symbol table shape, which the reference
// Resolver in this package does not attempt to determine.
func (d *Driver) FastPath(ctx context.Context, changedFiles []*gs.File) (*gs.GlobalState, error) {
	return d.SlowPath(ctx, changedFiles)
}
