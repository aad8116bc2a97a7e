package diagnostics

import "github.com/alloy/sorbet/internal/ast"

// FileLookup is the narrow view of the file table Publish needs: whether a
// ref still exists, its path, and whether it is a Payload file (which gets
// the "#L<line>" anchor treatment instead of a workspace URI).
type FileLookup interface {
	Exists(ref ast.FileRef) bool
	Path(ref ast.FileRef) string
	IsPayload(ref ast.FileRef) bool
}

// RangeWire is the JSON shape of an LSP Range.
type RangeWire struct {
	Start PositionWire `json:"start"`
	End   PositionWire `json:"end"`
}

// PositionWire is the JSON shape of an LSP Position.
type PositionWire struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

func rangeWire(r Range) RangeWire {
	return RangeWire{
		Start: PositionWire{Line: r.StartLine, Character: r.StartCol},
		End:   PositionWire{Line: r.EndLine, Character: r.EndCol},
	}
}

// LocationWire is the JSON shape of an LSP Location.
type LocationWire struct {
	URI   string    `json:"uri"`
	Range RangeWire `json:"range"`
}

// RelatedInformationWire is one entry of Diagnostic.relatedInformation.
type RelatedInformationWire struct {
	Location LocationWire `json:"location"`
	Message  string       `json:"message"`
}

// DiagnosticWire is the JSON shape of an LSP Diagnostic.
type DiagnosticWire struct {
	Range             RangeWire                `json:"range"`
	Code              int                      `json:"code"`
	Message           string                   `json:"message"`
	RelatedInformation []RelatedInformationWire `json:"relatedInformation,omitempty"`
}

// PublishDiagnosticsParams is the JSON shape of
// textDocument/publishDiagnostics's params.
type PublishDiagnosticsParams struct {
	URI         string           `json:"uri"`
	Diagnostics []DiagnosticWire `json:"diagnostics"`
}

// Publisher converts accumulated diagnostics into publishDiagnostics
// notification params, resolving byte-offset Locs to line/column ranges via
// positions and file identity via files.
type Publisher struct {
	RootURI   string
	Files     FileLookup
	Positions PositionResolver
}

// Publish drains acc's pending-update set and returns one
// PublishDiagnosticsParams per entry in it whose file still exists, in
// arrival order. The set collapses only consecutive duplicates, so a file
// touched again after another file appears (and is published) twice.
func (p *Publisher) Publish(acc *Accumulator) []PublishDiagnosticsParams {
	var out []PublishDiagnosticsParams
	for _, file := range acc.TakeUpdated() {
		if !p.Files.Exists(file) {
			continue
		}
		out = append(out, PublishDiagnosticsParams{
			URI:         p.fileURI(file),
			Diagnostics: p.diagnosticsWire(acc.ForFile(file)),
		})
	}
	return out
}

func (p *Publisher) fileURI(file ast.FileRef) string {
	path := p.Files.Path(file)
	if p.Files.IsPayload(file) {
		return path
	}
	return WorkspaceURI(p.RootURI, path)
}

func (p *Publisher) diagnosticsWire(ds []Diagnostic) []DiagnosticWire {
	out := make([]DiagnosticWire, 0, len(ds))
	for _, d := range ds {
		start, end := p.Positions.Position(d.Loc)
		wire := DiagnosticWire{
			Range:   rangeWire(ToRange(start, end)),
			Code:    d.Class.Code,
			Message: d.Formatted,
		}
		if len(d.Sections) > 0 {
			wire.RelatedInformation = p.relatedInformation(d.Sections)
		}
		out = append(out, wire)
	}
	return out
}

func (p *Publisher) relatedInformation(sections []Section) []RelatedInformationWire {
	var out []RelatedInformationWire
	for _, section := range sections {
		for _, line := range section.Messages {
			start, end := p.Positions.Position(line.Loc)
			uri := p.messageURI(line.Loc.File, start.Line)
			message := line.FormattedMessage
			if message == "" {
				message = section.Header
			}
			out = append(out, RelatedInformationWire{
				Location: LocationWire{URI: uri, Range: rangeWire(ToRange(start, end))},
				Message:  message,
			})
		}
	}
	return out
}

// messageURI formats the URI for a relatedInformation line's own location.
// Payload files get the "#L<line>" anchor (line is already 1-based, as the
// anchor targets a human-facing source view rather than an LSP position);
// Normal files get the usual workspace URI.
func (p *Publisher) messageURI(file ast.FileRef, line1Based int) string {
	path := p.Files.Path(file)
	if p.Files.IsPayload(file) {
		return PayloadURI(path, line1Based)
	}
	return WorkspaceURI(p.RootURI, path)
}
