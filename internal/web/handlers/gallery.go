package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/arturkryukov/fotolenta/internal/domain/model"
	"github.com/arturkryukov/fotolenta/internal/web/i18n"
)

// galleryView — данные шаблона главной страницы.
type galleryView struct {
	Lang          string
	TokenRequired bool
	Flash         *flashView
	Records       []recordView
}

// flashView — одноразовое сообщение над галереей.
type flashView struct {
	Message string
	Level   string
}

// recordView — запись галереи в представлении шаблона.
type recordView struct {
	ID         string
	Source     string
	Locator    string
	DisplayURL string
	Caption    string
	CreatedAt  string
}

// Gallery обрабатывает GET / — список записей newest-first.
func (h *Handler) Gallery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view := galleryView{
		Lang:          i18n.LangFromContext(ctx),
		TokenRequired: h.cfg.UploadToken != "",
		Records:       toRecordViews(h.store.List(ctx)),
	}

	if msg := r.URL.Query().Get("msg"); msg != "" {
		level := r.URL.Query().Get("level")
		if level != "ok" {
			level = "error"
		}
		view.Flash = &flashView{
			Message: i18n.T(ctx, msg),
			Level:   level,
		}
	}

	// Рендерим в буфер: ошибка шаблона не должна отдать полстраницы
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, "index.html", view); err != nil {
		h.logger.Error("Ошибка рендеринга галереи", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// toRecordViews преобразует записи хранилища в представление шаблона.
func toRecordViews(records []model.Record) []recordView {
	views := make([]recordView, 0, len(records))
	for _, rec := range records {
		views = append(views, recordView{
			ID:         rec.ID,
			Source:     string(rec.Source),
			Locator:    rec.Image,
			DisplayURL: rec.DisplayURL,
			Caption:    rec.Caption,
			CreatedAt:  rec.CreatedAt,
		})
	}
	return views
}
