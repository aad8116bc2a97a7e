package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/alloy/sorbet/internal/ast"
	"github.com/alloy/sorbet/internal/diagnostics"
	"github.com/alloy/sorbet/internal/gs"
	"github.com/alloy/sorbet/internal/pipeline"
	"github.com/alloy/sorbet/internal/telemetry"
)

// MethodKind distinguishes which side of the connection may originate a
// given method.
type MethodKind int

const (
	ClientInitiated MethodKind = iota
	ServerInitiated
	Both
)

// MethodSpec describes one entry of the dispatcher's static method
// registry.
type MethodSpec struct {
	Name           string
	IsNotification bool
	Kind           MethodKind
	IsSupported    bool
}

// methods is the static table of methods this server recognizes. An
// inbound method name absent from this table is synthesized on the fly as
// an unsupported ClientInitiated notification (see lookupMethod).
var methods = map[string]MethodSpec{
	"initialize":                          {Name: "initialize", IsNotification: false, Kind: ClientInitiated, IsSupported: true},
	"initialized":                         {Name: "initialized", IsNotification: true, Kind: ClientInitiated, IsSupported: true},
	"shutdown":                            {Name: "shutdown", IsNotification: false, Kind: ClientInitiated, IsSupported: true},
	"exit":                                {Name: "exit", IsNotification: true, Kind: ClientInitiated, IsSupported: true},
	"textDocument/didChange":              {Name: "textDocument/didChange", IsNotification: true, Kind: ClientInitiated, IsSupported: true},
	"workspace/didChangeWatchedFiles":     {Name: "workspace/didChangeWatchedFiles", IsNotification: true, Kind: ClientInitiated, IsSupported: true},
	"textDocument/documentSymbol":         {Name: "textDocument/documentSymbol", IsNotification: false, Kind: ClientInitiated, IsSupported: true},
	"readFile":                            {Name: "readFile", IsNotification: false, Kind: ServerInitiated, IsSupported: true},
	"textDocument/publishDiagnostics":     {Name: "textDocument/publishDiagnostics", IsNotification: true, Kind: ServerInitiated, IsSupported: true},
}

func lookupMethod(name string) MethodSpec {
	if m, ok := methods[name]; ok {
		return m
	}
	return MethodSpec{Name: name, IsNotification: true, Kind: ClientInitiated, IsSupported: false}
}

// Logger is the narrow logging surface the dispatcher uses, satisfied by
// internal/logging.Logger.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}
func (noopLogger) Debugf(string, ...any) {}

// Dispatcher is the single-threaded LSP event loop: it reads one framed
// message at a time from Transport, routes it through the method table,
// and drives Driver's incremental reanalysis plus diagnostic publication.
type Dispatcher struct {
	Transport *Transport
	Driver    *pipeline.Driver
	Logger    Logger

	uriMapper URIMapper
	exit      bool
}

// NewDispatcher wires a Dispatcher around t and driver.
func NewDispatcher(t *Transport, driver *pipeline.Driver, logger Logger) *Dispatcher {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Dispatcher{Transport: t, Driver: driver, Logger: logger}
}

// Run processes inbound messages until exit is received or the transport
// reaches EOF; both end the loop with a nil error.
func (d *Dispatcher) Run(ctx context.Context) error {
	for !d.exit {
		env, err := d.Transport.ReadMessage()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if d.Transport.HandleReply(env) {
			continue
		}
		d.dispatch(ctx, env)
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, env *Envelope) {
	spec := lookupMethod(env.Method)

	if spec.IsNotification {
		d.Logger.Infof("processing notification %s", spec.Name)
		d.handleNotification(ctx, spec, env)
		return
	}

	d.Logger.Infof("processing request %s", spec.Name)
	result, errCode, errMsg := d.handleRequest(ctx, spec, env)
	if errCode != 0 {
		if err := d.Transport.SendError(env.ID, errCode, errMsg); err != nil {
			d.Logger.Errorf("writing error response: %v", err)
		}
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		d.Logger.Errorf("marshaling result for %s: %v", spec.Name, err)
		return
	}
	if err := d.Transport.SendResult(env.ID, raw); err != nil {
		d.Logger.Errorf("writing result response: %v", err)
	}
}

func (d *Dispatcher) handleNotification(ctx context.Context, spec MethodSpec, env *Envelope) {
	switch spec.Name {
	case "initialized":
		if err := d.Driver.ReIndex(ctx, true); err != nil {
			d.Logger.Errorf("initial index: %v", err)
			return
		}
		if _, err := d.Driver.SlowPath(ctx, nil); err != nil {
			d.Logger.Errorf("initial slow path: %v", err)
			return
		}
		d.publish()

	case "textDocument/didChange":
		var params DidChangeTextDocumentParams
		if err := json.Unmarshal(env.Params, &params); err != nil {
			d.Logger.Warnf("malformed didChange params: %v", err)
			return
		}
		if len(params.ContentChanges) == 0 {
			return
		}
		local, ok := d.uriMapper.RemoteToLocal(params.TextDocument.URI)
		if !ok {
			return
		}
		file := &gs.File{Path: local, Content: params.ContentChanges[0].Text, Type: gs.Normal}
		if _, err := d.Driver.FastPath(ctx, []*gs.File{file}); err != nil {
			d.Logger.Errorf("fast path for %s: %v", local, err)
			return
		}
		d.publish()

	case "workspace/didChangeWatchedFiles":
		var raw struct {
			Changes []TextDocumentIdentifier `json:"changes"`
		}
		if err := json.Unmarshal(env.Params, &raw); err != nil {
			d.Logger.Warnf("malformed didChangeWatchedFiles params: %v", err)
			return
		}
		err := d.Transport.SendRequest("readFile", ReadFileParams{Changes: raw.Changes},
			func(result json.RawMessage) {
				var edits []FileEdit
				if err := json.Unmarshal(result, &edits); err != nil {
					d.Logger.Warnf("malformed readFile reply: %v", err)
					return
				}
				var files []*gs.File
				for _, e := range edits {
					local, ok := d.uriMapper.RemoteToLocal(e.URI)
					if !ok {
						continue
					}
					files = append(files, &gs.File{Path: local, Content: e.Content, Type: gs.Normal})
				}
				if _, err := d.Driver.FastPath(ctx, files); err != nil {
					d.Logger.Errorf("fast path for watched files: %v", err)
					return
				}
				d.publish()
			},
			func(*ResponseError) {},
		)
		if err != nil {
			d.Logger.Errorf("sending readFile request: %v", err)
		}

	case "exit":
		d.exit = true
	}
}

func (d *Dispatcher) handleRequest(ctx context.Context, spec MethodSpec, env *Envelope) (result any, errCode int, errMsg string) {
	switch spec.Name {
	case "initialize":
		var params InitializeParams
		if err := json.Unmarshal(env.Params, &params); err != nil {
			return nil, ParseError, err.Error()
		}
		d.uriMapper = URIMapper{RootURI: params.RootURI}
		return InitializeResult{Capabilities: ServerCapabilities{TextDocumentSync: 1, DocumentSymbolProvider: true}}, 0, ""

	case "shutdown":
		return nil, 0, ""

	case "textDocument/documentSymbol":
		var params DocumentSymbolParams
		if err := json.Unmarshal(env.Params, &params); err != nil {
			return nil, ParseError, err.Error()
		}
		return d.documentSymbols(params.TextDocument.URI), 0, ""

	default:
		return nil, MethodNotFound, fmt.Sprintf("unknown method: %s", spec.Name)
	}
}

// documentSymbols walks FinalGS's symbol table for every symbol defined in
// the file named by uri, converting each to a SymbolInformation.
func (d *Dispatcher) documentSymbols(uri string) []SymbolInformation {
	finalGs := d.Driver.FinalGS
	if finalGs == nil {
		return nil
	}
	fref := d.uriMapper.ResolveFileRef(finalGs, uri)

	var out []SymbolInformation
	for i := 1; i < finalGs.SymbolsUsed(); i++ {
		ref := ast.SymbolRef(i)
		sym := finalGs.Symbol(ref)
		if sym == nil || sym.DefinitionLoc.File != fref {
			continue
		}
		if info, ok := d.symbolInformation(finalGs, sym); ok {
			out = append(out, info)
		}
	}
	return out
}

// symbolInformation converts sym to its SymbolInformation, following the
// same classification-to-SymbolKind table as the reference implementation;
// the second return value is false for symbols that have no LSP
// representation (and so should be omitted from the results).
func (d *Dispatcher) symbolInformation(g *gs.GlobalState, sym *gs.Symbol) (SymbolInformation, bool) {
	kind, ok := symbolKind(sym)
	if !ok {
		return SymbolInformation{}, false
	}
	owner := g.Symbol(sym.Owner)
	container := ""
	if owner != nil {
		container = owner.Name
	}
	start, end := (gsPositions{g: g}).Position(sym.DefinitionLoc)
	r := diagnostics.ToRange(start, end)
	return SymbolInformation{
		Name: sym.Name,
		Kind: kind,
		Location: Location{
			URI:   d.locationURI(g, sym.DefinitionLoc.File),
			Range: Range{Start: Position{Line: r.StartLine, Character: r.StartCol}, End: Position{Line: r.EndLine, Character: r.EndCol}},
		},
		ContainerName: container,
	}, true
}

func symbolKind(sym *gs.Symbol) (SymbolKind, bool) {
	switch sym.Classification {
	case gs.ClassOrModule:
		if sym.IsModule {
			return SymbolKindModule, true
		}
		return SymbolKindClass, true
	case gs.Method:
		if sym.Name == "initialize" {
			return SymbolKindConstructor, true
		}
		return SymbolKindMethod, true
	case gs.Field:
		return SymbolKindField, true
	case gs.StaticField:
		return SymbolKindConstant, true
	case gs.MethodArgument:
		return SymbolKindVariable, true
	case gs.TypeMember, gs.TypeArgument:
		return SymbolKindTypeParameter, true
	default:
		return 0, false
	}
}

func (d *Dispatcher) locationURI(g *gs.GlobalState, ref ast.FileRef) string {
	f := g.File(ref)
	if f == nil {
		return ""
	}
	if f.Type == gs.Payload {
		return f.Path
	}
	return d.uriMapper.LocalToRemote(f.Path)
}


func offsetToPosition(content string, offset int) diagnostics.Position1Based {
	if offset > len(content) {
		offset = len(content)
	}
	line := 1
	col := 1
	for i := 0; i < offset; i++ {
		if content[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return diagnostics.Position1Based{Line: line, Column: col}
}

// publish drains the driver's diagnostic queue/accumulator and sends one
// textDocument/publishDiagnostics notification per updated file.
func (d *Dispatcher) publish() {
	finalGs := d.Driver.FinalGS
	if finalGs == nil {
		return
	}

	batchID := diagnostics.NewBatchID()
	_, span := telemetry.StartPublishSpan(context.Background(), batchID, finalGs.FilesUsed())
	defer span.End()

	d.Driver.Accumulator.Drain(d.Driver.Queue, func(ref ast.FileRef) bool {
		f := finalGs.File(ref)
		return f == nil || f.Type == gs.TombStone
	})

	publisher := &diagnostics.Publisher{
		RootURI:   d.uriMapper.RootURI,
		Files:     gsFileLookup{g: finalGs},
		Positions: gsPositions{g: finalGs},
	}
	params := publisher.Publish(d.Driver.Accumulator)
	d.Logger.Infof("diagnostics batch %s: publishing %d file(s)", batchID, len(params))
	for _, p := range params {
		if err := d.Transport.SendNotification("textDocument/publishDiagnostics", p); err != nil {
			d.Logger.Errorf("publishing diagnostics: %v", err)
		}
	}
}

type gsFileLookup struct {
	g *gs.GlobalState
}

func (l gsFileLookup) Exists(ref ast.FileRef) bool {
	return ref.Valid() && l.g.File(ref) != nil
}

func (l gsFileLookup) Path(ref ast.FileRef) string {
	if f := l.g.File(ref); f != nil {
		return f.Path
	}
	return ""
}

func (l gsFileLookup) IsPayload(ref ast.FileRef) bool {
	f := l.g.File(ref)
	return f != nil && f.Type == gs.Payload
}

type gsPositions struct {
	g *gs.GlobalState
}

func (p gsPositions) Position(loc ast.Loc) (diagnostics.Position1Based, diagnostics.Position1Based) {
	f := p.g.File(loc.File)
	if f == nil {
		return diagnostics.Position1Based{Line: 1, Column: 1}, diagnostics.Position1Based{Line: 1, Column: 1}
	}
	return offsetToPosition(f.Content, loc.Begin), offsetToPosition(f.Content, loc.End)
}
