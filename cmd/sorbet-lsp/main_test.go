package main

import (
	"context"
	"testing"

	"github.com/alloy/sorbet/internal/config"
	"github.com/alloy/sorbet/internal/pipeline"
)

func TestNewDriverWiresConfiguredRewriterName(t *testing.T) {
	orig := cfg
	defer func() { cfg = orig }()

	cfg = config.Default()
	cfg.Rewriter = config.RewriterConfig{ClassName: "Job", ModuleName: "Sidekiq", MethodName: "perform"}

	driver := newDriver()
	indexer, ok := driver.Indexer.(*pipeline.DefaultIndexer)
	if !ok {
		t.Fatalf("newDriver() built an Indexer of type %T, want *pipeline.DefaultIndexer", driver.Indexer)
	}
	if indexer.Rewriter.ClassName != "Job" || indexer.Rewriter.ModuleName != "Sidekiq" || indexer.Rewriter.MethodName != "perform" {
		t.Errorf("Rewriter = %+v, want Job/Sidekiq/perform", indexer.Rewriter)
	}
	if driver.Workers <= 0 {
		t.Fatal("expected NewDriver to carry a positive worker count")
	}
}

func TestRunCheckReportsNoDiagnosticsForWellFormedInput(t *testing.T) {
	orig := cfg
	defer func() { cfg = orig }()
	cfg = config.Default()

	driver := newDriver()
	driver.Opts.InputFileNames = []string{"a.rb"}
	ctx := context.Background()
	if err := driver.ReIndex(ctx, true); err != nil {
		t.Fatalf("ReIndex: %v", err)
	}
	if _, err := driver.SlowPath(ctx, nil); err != nil {
		t.Fatalf("SlowPath: %v", err)
	}
	if len(driver.Accumulator.TakeUpdated()) != 0 {
		t.Fatal("expected no diagnostics for a well-formed trivial file")
	}
}
