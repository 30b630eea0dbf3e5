package server

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"
)

//go:embed static/*
var staticFiles embed.FS

func StaticFilesFS() fs.FS {
	subFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("Failed to create sub filesystem: " + err.Error())
	}

	return subFS
}

// asset is one embedded file with the headers it is served with.
type asset struct {
	data        []byte
	contentType string
	etag        string
}

var (
	assetsOnce sync.Once
	assets     map[string]asset
)

// loadAssets reads every embedded file once. The embed is immutable so the table never changes.
func loadAssets() map[string]asset {
	assetsOnce.Do(func() {
		assets = map[string]asset{}
		fsys := StaticFilesFS()
		err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			data, err := fs.ReadFile(fsys, name)
			if err != nil {
				return err
			}
			sum := sha256.Sum256(data)
			assets[name] = asset{
				data:        data,
				contentType: contentTypeFor(name, data),
				etag:        `"` + hex.EncodeToString(sum[:8]) + `"`,
			}
			return nil
		})
		if err != nil {
			panic("Failed to load static assets: " + err.Error())
		}
	})
	return assets
}

func contentTypeFor(name string, data []byte) string {
	ctype := mime.TypeByExtension(strings.ToLower(path.Ext(name)))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	if strings.HasPrefix(ctype, "text/") && !strings.Contains(strings.ToLower(ctype), "charset=") {
		ctype += "; charset=utf-8"
	}
	return ctype
}

// StreamFile writes the embedded asset fileName, or only a 304 when the client already holds
// the same version.
func StreamFile(w http.ResponseWriter, r *http.Request, fileName string) error {
	a, ok := loadAssets()[fileName]
	if !ok {
		return fmt.Errorf("[StreamFile] %s: %w", fileName, fs.ErrNotExist)
	}

	w.Header().Set("ETag", a.etag)
	if r.Header.Get("If-None-Match") == a.etag {
		w.WriteHeader(http.StatusNotModified)
		return nil
	}
	w.Header().Set("Content-Type", a.contentType)
	if _, err := w.Write(a.data); err != nil {
		return fmt.Errorf("[StreamFile] write %s: %w", fileName, err)
	}
	return nil
}

// serveFileHandler streams the embedded asset named by the request path.
func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		if err := StreamFile(w, r, filePath); err != nil {
			logError(r.Method, filePath, err)
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
		}
	}
}
