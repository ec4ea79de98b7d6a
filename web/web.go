// Package web serves a built single-page application bundle. Paths which
// name no file of the bundle are served its index.html, so that client-side
// routes may be deep-linked.
package web

import (
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// IndexFile is served for paths which don't name a file of the bundle.
const IndexFile = "index.html"

// Handler serves files of a bundle directory.
type Handler struct {
	fs      afero.Fs
	httpFs  *afero.HttpFs
	handler http.Handler
}

// NewHandler returns a Handler of files under |dir| of |fs|.
func NewHandler(fs afero.Fs, dir string) *Handler {
	var base = afero.NewReadOnlyFs(afero.NewBasePathFs(fs, dir))
	var httpFs = afero.NewHttpFs(base)

	return &Handler{
		fs:      base,
		httpFs:  httpFs,
		handler: http.FileServer(httpFs.Dir("/")),
	}
}

// NewOsHandler returns a Handler of |dir| on the local filesystem.
func NewOsHandler(dir string) (*Handler, error) {
	if fi, err := os.Stat(dir); err != nil {
		return nil, err
	} else if !fi.IsDir() {
		return nil, errors.Errorf("web directory %s is not a directory", dir)
	}
	return NewHandler(afero.NewOsFs(), dir), nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var name = path.Clean("/" + r.URL.Path)

	if fi, err := h.fs.Stat(name); err == nil && !fi.IsDir() {
		h.handler.ServeHTTP(w, r)
		return
	} else if err == nil && fi.IsDir() {
		if _, err = h.fs.Stat(path.Join(name, IndexFile)); err == nil {
			h.handler.ServeHTTP(w, r)
			return
		}
	}

	// Missing assets are a real 404, rather than a copy of index.html.
	if path.Ext(name) != "" && !strings.HasSuffix(name, ".html") {
		http.NotFound(w, r)
		return
	}
	h.serveIndex(w, r)
}

func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	var f, err = h.httpFs.Open("/" + IndexFile)
	if err != nil {
		log.WithField("err", err).Warn("web: bundle has no index.html")
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, IndexFile, fi.ModTime(), f)
}
