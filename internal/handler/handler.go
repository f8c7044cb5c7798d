package handler

import (
	"crypto/md5"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"sort"

	"tramboard/internal/directory"
	"tramboard/internal/messages"
	"tramboard/internal/notify"
	"tramboard/internal/query"
	"tramboard/internal/templates"
)

// Handler holds shared dependencies for all HTTP handlers.
type Handler struct {
	orch    *query.Orchestrator
	dir     *directory.Directory
	broker  *notify.Broker
	msgs    *messages.Printer
	logger  *slog.Logger
	version string // content hash of static assets, for cache busting
}

// New creates a Handler. static is the static asset tree, used only to
// compute the asset version.
func New(orch *query.Orchestrator, dir *directory.Directory, broker *notify.Broker, msgs *messages.Printer, static fs.FS, logger *slog.Logger) *Handler {
	v := computeAssetVersion(static)
	logger.Info("asset version computed", "version", v)

	return &Handler{orch: orch, dir: dir, broker: broker, msgs: msgs, logger: logger, version: v}
}

// computeAssetVersion hashes all CSS and JS files in fsys to produce a short
// version string. Changes to any file produce a new version.
func computeAssetVersion(fsys fs.FS) string {
	h := md5.New()
	var paths []string
	fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if ext := path.Ext(p); ext == ".css" || ext == ".js" {
			paths = append(paths, p)
		}
		return nil
	})
	sort.Strings(paths) // deterministic order
	for _, p := range paths {
		f, err := fsys.Open(p)
		if err != nil {
			continue
		}
		io.Copy(h, f)
		f.Close()
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:8]
}

// page creates a templates.Page with the asset version pre-filled.
func (h *Handler) page(title string) templates.Page {
	return templates.Page{
		Title:        title,
		Lang:         h.msgs.Language().String(),
		AssetVersion: h.version,
	}
}
