// Package config loads sorbet-lsp's on-disk YAML configuration: workspace
// defaults, the DSL rewriter's configurable class/method names, logging and
// telemetry settings, and the KVStore location.
package config

// Config is the top-level on-disk configuration shape.
type Config struct {
	// Workspace is loaded from the YAML file but no command reads it: the
	// server takes its root from the initialize request's rootUri, and the
	// "check" subcommand uses the file paths given on its command line.
	Workspace WorkspaceConfig `yaml:"workspace"`

	Rewriter RewriterConfig `yaml:"rewriter" validate:"required"`
	Logging  LoggingConfig  `yaml:"logging" validate:"required"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Store    StoreConfig    `yaml:"store"`

	// Workers bounds the fan-out width of the indexer and typechecker
	// worker pools. Must be positive; Default() seeds it at 4, so an
	// override YAML only needs to set this if it wants a different count.
	Workers int `yaml:"workers" validate:"gt=0"`
}

// WorkspaceConfig configures the workspace root.
type WorkspaceConfig struct {
	Root string `yaml:"root"`
}

// RewriterConfig makes the Opus::Command DSL shape configurable so a
// workspace using a differently-named command base class or mirror method
// still gets synthesized accessors.
type RewriterConfig struct {
	ClassName  string `yaml:"class_name" validate:"required"`
	ModuleName string `yaml:"module_name" validate:"required"`
	MethodName string `yaml:"method_name" validate:"required"`
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level   string `yaml:"level" validate:"oneof=debug info warn error"`
	Dir     string `yaml:"dir"`
	JSON    bool   `yaml:"json"`
	Quiet   bool   `yaml:"quiet"`
	Service string `yaml:"service" validate:"required"`
}

// MetricsConfig configures internal/telemetry's HTTP surface.
type MetricsConfig struct {
	Addr    string `yaml:"addr"`
	Enabled bool   `yaml:"enabled"`
}

// StoreConfig configures the indexer's KVStore memoization backend.
type StoreConfig struct {
	// Dir is the Badger database directory. Empty selects the in-memory
	// store, useful for the "check" subcommand's one-shot runs.
	Dir string `yaml:"dir"`
}

// Default returns sorbet-lsp's default configuration: no workspace
// override (the LSP initialize request supplies rootUri), the standard
// Opus::Command shape, Info-level logging to stderr only, metrics on
// :9090, and an in-memory KVStore.
func Default() Config {
	return Config{
		Rewriter: RewriterConfig{ClassName: "Command", ModuleName: "Opus", MethodName: "call"},
		Logging:  LoggingConfig{Level: "info", Service: "sorbet-lsp"},
		Metrics:  MetricsConfig{Addr: ":9090", Enabled: true},
		Workers:  4,
	}
}
