package relay

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// The dashboard bundle is embedded at compile time so the relay ships as a
// single binary.
//
//go:embed web
var webFS embed.FS

// StaticHandler serves the embedded dashboard bundle. Any path that does
// not match a bundled file falls back to index.html, mirroring a catch-all
// route in front of a single-page client.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		// embed contents are fixed at build time; this cannot happen on a
		// well-formed build.
		panic(err)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" {
			name = "index.html"
		}

		if _, err := fs.Stat(sub, name); err != nil {
			name = "index.html"
		}

		http.ServeFileFS(w, r, sub, name)
	})
}
