package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/arturkryukov/fotolenta/internal/domain/model"
	"github.com/arturkryukov/fotolenta/internal/store"
)

// Delete обрабатывает POST /delete — удаление записи.
// Форма передаёт source и локатор, отрендеренные в листинге;
// маршрутизацию по source выполняет фасад хранилища.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		h.redirectFlash(w, r, "error.bad_request", "error")
		return
	}

	if !h.tokenValid(r) {
		h.redirectFlash(w, r, "error.token", "error")
		return
	}

	source := model.Source(r.FormValue("source"))
	locator := r.FormValue("image")
	if locator == "" {
		h.redirectFlash(w, r, "error.bad_request", "error")
		return
	}

	if err := h.store.Delete(ctx, source, locator); err != nil {
		h.logger.Error("Ошибка удаления записи",
			slog.String("source", string(source)),
			slog.String("locator", locator),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, store.ErrValidation) {
			h.redirectFlash(w, r, "error.bad_request", "error")
			return
		}
		h.redirectFlash(w, r, "error.store", "error")
		return
	}

	h.redirectFlash(w, r, "flash.delete_success", "ok")
}
