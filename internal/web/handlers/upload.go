package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/arturkryukov/fotolenta/internal/store"
)

// Upload обрабатывает POST /upload — загрузку нового изображения.
//
// Порядок проверок: лимит размера тела → токен → наличие файла →
// расширение. Токен проверяется до обращения к хранилищу: запрос
// с неверным токеном не должен вызывать побочных эффектов.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			// Превышение лимита — отдельное сообщение, не общая ошибка
			h.redirectFlash(w, r, "error.too_large", "error")
			return
		}
		h.logger.Warn("Ошибка разбора multipart-формы", slog.String("error", err.Error()))
		h.redirectFlash(w, r, "error.bad_request", "error")
		return
	}

	if !h.tokenValid(r) {
		h.redirectFlash(w, r, "error.token", "error")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.redirectFlash(w, r, "error.no_file", "error")
		return
	}
	defer file.Close()

	if header.Filename == "" || !store.ExtensionAllowed(header.Filename) {
		h.redirectFlash(w, r, "error.bad_extension", "error")
		return
	}

	caption := strings.TrimSpace(r.FormValue("caption"))

	record, err := h.store.Create(ctx, store.CreateInput{
		Reader:   file,
		Filename: header.Filename,
		Caption:  caption,
	})
	if err != nil {
		h.logger.Error("Ошибка создания записи", slog.String("error", err.Error()))
		if errors.Is(err, store.ErrValidation) {
			h.redirectFlash(w, r, "error.bad_extension", "error")
			return
		}
		h.redirectFlash(w, r, "error.store", "error")
		return
	}

	h.logger.Info("Изображение загружено",
		slog.String("id", record.ID),
		slog.String("locator", record.Image),
	)
	h.redirectFlash(w, r, "flash.upload_success", "ok")
}
