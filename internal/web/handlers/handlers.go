// Пакет handlers — HTTP-обработчики веб-интерфейса галереи:
// листинг, загрузка, удаление, отдача локальных файлов, health-пробы.
package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/arturkryukov/fotolenta/internal/config"
	"github.com/arturkryukov/fotolenta/internal/store"
	"github.com/arturkryukov/fotolenta/internal/web/i18n"
	"github.com/arturkryukov/fotolenta/internal/web/ui"
)

// Handler — контейнер зависимостей HTTP-обработчиков.
type Handler struct {
	store    *store.Facade
	cfg      *config.Config
	renderer *ui.Renderer
	logger   *slog.Logger
}

// New создаёт Handler со всеми зависимостями.
func New(st *store.Facade, cfg *config.Config, renderer *ui.Renderer, logger *slog.Logger) *Handler {
	return &Handler{
		store:    st,
		cfg:      cfg,
		renderer: renderer,
		logger:   logger.With(slog.String("component", "handlers")),
	}
}

// tokenValid проверяет токен из формы. Пустой настроенный токен —
// открытый доступ; иначе требуется точное совпадение строк.
// Сравнение выполняется за постоянное время.
func (h *Handler) tokenValid(r *http.Request) bool {
	required := h.cfg.UploadToken
	if required == "" {
		return true
	}
	provided := r.FormValue("token")
	return subtle.ConstantTimeCompare([]byte(provided), []byte(required)) == 1
}

// redirectFlash выполняет redirect на галерею с flash-сообщением
// в query-параметрах (msg — ключ перевода, level — ok или error).
func (h *Handler) redirectFlash(w http.ResponseWriter, r *http.Request, msgKey, level string) {
	q := url.Values{}
	q.Set("msg", msgKey)
	q.Set("level", level)
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
}

// SetLang устанавливает cookie выбора языка и возвращает на галерею.
func (h *Handler) SetLang(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code != "en" && code != "ru" && code != "zh" {
		code = "en"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     i18n.LangCookieName,
		Value:    code,
		Path:     "/",
		MaxAge:   365 * 24 * 3600,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
