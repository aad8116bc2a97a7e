package lsp

import (
	"strings"

	"github.com/alloy/sorbet/internal/ast"
	"github.com/alloy/sorbet/internal/gs"
)

// URIMapper converts between workspace-relative local paths and the URIs an
// editor sends/expects, and resolves URIs to FileRefs against a
// GlobalState's file table. All mapping is relative to a single captured
// rootUri: one workspace per server process, no multi-root support.
type URIMapper struct {
	RootURI string
}

// RemoteToLocal strips RootURI + "/" from uri, returning the workspace
// relative path and true, or ("", false) if uri is not under RootURI.
func (m URIMapper) RemoteToLocal(uri string) (string, bool) {
	prefix := m.RootURI + "/"
	if !strings.HasPrefix(uri, prefix) {
		return "", false
	}
	return uri[len(prefix):], true
}

// LocalToRemote formats a workspace-relative path as a full URI.
func (m URIMapper) LocalToRemote(path string) string {
	return m.RootURI + "/" + path
}

// ResolveFileRef scans g's file table for the first non-tombstoned file
// whose path matches uri's local path, returning 0 (invalid) if uri is not
// under RootURI or no matching file exists.
func (m URIMapper) ResolveFileRef(g *gs.GlobalState, uri string) ast.FileRef {
	local, ok := m.RemoteToLocal(uri)
	if !ok {
		return 0
	}
	for i := 1; i < g.FilesUsed(); i++ {
		ref := ast.FileRef(i)
		f := g.File(ref)
		if f == nil || f.Type == gs.TombStone {
			continue
		}
		if f.Path == local {
			return ref
		}
	}
	return 0
}
