package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/arturkryukov/fotolenta/internal/domain/model"
	"github.com/arturkryukov/fotolenta/internal/store"
)

// ServeUpload обрабатывает GET /uploads/{name} — отдачу локальных файлов.
// Для облачного бэкенда маршрут отвечает 404: изображения отдаёт CDN
// медиа-сервиса, локальных файлов у процесса нет.
func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	if h.store.Source() != model.SourceLocal {
		http.NotFound(w, r)
		return
	}

	name := chi.URLParam(r, "name")
	// Локатор — всегда простое имя файла, без разделителей пути
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, "/\\") {
		http.NotFound(w, r)
		return
	}

	fullPath := filepath.Join(store.UploadsPath(h.cfg.DataDir), name)
	if _, err := os.Stat(fullPath); err != nil {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, fullPath)
}
