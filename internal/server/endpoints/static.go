package endpoints

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/jackzampolin/pafill/internal/api"
	"github.com/jackzampolin/pafill/web"
)

// StaticEndpoint serves the embedded upload UI.
// Unknown paths fall back to index.html.
type StaticEndpoint struct{}

var _ api.Endpoint = (*StaticEndpoint)(nil)

func (e *StaticEndpoint) Route() (string, string, http.HandlerFunc) {
	// Wildcard pattern catches all unmatched GET requests
	return "GET", "/{path...}", e.handler
}

func (e *StaticEndpoint) RequiresInit() bool { return false }

func (e *StaticEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	staticFS, err := web.StaticFS()
	if err != nil {
		http.Error(w, "Frontend not available", http.StatusInternalServerError)
		return
	}

	filePath := strings.TrimPrefix(r.URL.Path, "/")
	if filePath == "" {
		filePath = "index.html"
	}

	if file, err := staticFS.Open(filePath); err == nil {
		file.Close()
		http.FileServer(http.FS(staticFS)).ServeHTTP(w, r)
		return
	}

	indexFile, err := fs.ReadFile(staticFS, "index.html")
	if err != nil {
		http.Error(w, "Frontend not available", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexFile)
}
