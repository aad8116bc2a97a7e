package lsp

// SymbolKind mirrors the LSP SymbolKind namespace. Every value is named so
// the numeric table is complete, although this server's documentSymbol
// mapping (symbolKind in dispatcher.go) produces only some of them.
type SymbolKind int

const (
	SymbolKindFile          SymbolKind = 1
	SymbolKindModule        SymbolKind = 2
	SymbolKindNamespace     SymbolKind = 3
	SymbolKindPackage       SymbolKind = 4
	SymbolKindClass         SymbolKind = 5
	SymbolKindMethod        SymbolKind = 6
	SymbolKindProperty      SymbolKind = 7
	SymbolKindField         SymbolKind = 8
	SymbolKindConstructor   SymbolKind = 9
	SymbolKindEnum          SymbolKind = 10
	SymbolKindInterface     SymbolKind = 11
	SymbolKindFunction      SymbolKind = 12
	SymbolKindVariable      SymbolKind = 13
	SymbolKindConstant      SymbolKind = 14
	SymbolKindString        SymbolKind = 15
	SymbolKindNumber        SymbolKind = 16
	SymbolKindBoolean       SymbolKind = 17
	SymbolKindArray         SymbolKind = 18
	SymbolKindObject        SymbolKind = 19
	SymbolKindKey           SymbolKind = 20
	SymbolKindNull          SymbolKind = 21
	SymbolKindEnumMember    SymbolKind = 22
	SymbolKindStruct        SymbolKind = 23
	SymbolKindEvent         SymbolKind = 24
	SymbolKindOperator      SymbolKind = 25
	SymbolKindTypeParameter SymbolKind = 26
)

// TextDocumentIdentifier identifies a document by URI.
type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

// InitializeParams is the params object of the initialize request. Only
// rootUri is consumed; the rest of the real LSP InitializeParams shape
// (capabilities, workspaceFolders, ...) is intentionally not modeled since
// nothing in this server reads it.
type InitializeParams struct {
	RootURI string `json:"rootUri"`
}

// ServerCapabilities is the capabilities object this server advertises.
type ServerCapabilities struct {
	TextDocumentSync       int  `json:"textDocumentSync"`
	DocumentSymbolProvider bool `json:"documentSymbolProvider"`
}

// InitializeResult is the result of the initialize request.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
}

// TextDocumentContentChangeEvent is one entry of didChange's
// contentChanges array. Only whole-document sync (a single entry whose
// Text is the entire new content) is supported, matching
// ServerCapabilities.TextDocumentSync == 1.
type TextDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

// DidChangeTextDocumentParams is textDocument/didChange's params.
type DidChangeTextDocumentParams struct {
	TextDocument   TextDocumentIdentifier            `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

// DocumentSymbolParams is textDocument/documentSymbol's params.
type DocumentSymbolParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// Location is a URI plus range.
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// Range is a 0-based start/end position pair.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Position is a 0-based line/character pair.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// SymbolInformation is one entry of a textDocument/documentSymbol response.
type SymbolInformation struct {
	Name          string     `json:"name"`
	Kind          SymbolKind `json:"kind"`
	Location      Location   `json:"location"`
	ContainerName string     `json:"containerName,omitempty"`
}

// FileEdit is one entry of the array of edits a readFile server-initiated
// request's reply carries (see workspace/didChangeWatchedFiles handling).
type FileEdit struct {
	URI     string `json:"uri"`
	Content string `json:"content"`
}

// ReadFileParams is the params this server sends with its server-initiated
// "readFile" request.
type ReadFileParams struct {
	Changes []TextDocumentIdentifier `json:"changes"`
}
