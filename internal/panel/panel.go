package panel

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
)

//go:embed web/*
var content embed.FS

// Handler returns an http.Handler that serves the operator console.
//
// When dir names an existing directory, assets are served from it so the
// console can be edited without rebuilding. Otherwise the embedded copy
// is used. Panics if the embedded assets are missing (build error).
func Handler(dir string) http.Handler {
	files := assets(dir)
	fileServer := http.FileServer(files)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The console is tiny and unversioned; always revalidate.
		w.Header().Set("Cache-Control", "no-cache, must-revalidate")

		upath := path.Clean("/" + r.URL.Path)
		if upath != "/" && !exists(files, upath[1:]) {
			// Fallback: unknown paths get index.html with 200.
			r.URL.Path = "/"
		}
		fileServer.ServeHTTP(w, r)
	})
}

// assets picks the on-disk directory when usable, else the embedded copy.
func assets(dir string) http.FileSystem {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return http.Dir(dir)
		}
	}

	webFS, err := fs.Sub(content, "web")
	if err != nil {
		panic(fmt.Sprintf("panel: failed to load embedded web assets: %v", err))
	}
	return http.FS(webFS)
}

func exists(files http.FileSystem, name string) bool {
	f, err := files.Open(name)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
