package lsp

import "errors"

// JSON-RPC / LSP error codes this server can return.
const (
	ParseError     = -32700
	MethodNotFound = -32601
)

// ErrUnsupportedURI names the case of an inbound document URI that does not
// fall under the workspace's rootUri. Nothing in this package returns it:
// URIMapper.RemoteToLocal reports that case with a false result, and the
// dispatcher silently ignores such messages.
var ErrUnsupportedURI = errors.New("lsp: uri is not under the workspace root")
