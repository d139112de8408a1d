// Пакет ui — рендеринг HTML-шаблонов веб-интерфейса галереи.
// Шаблоны встроены в бинарник через go:embed и парсятся один раз
// при старте приложения.
package ui

import (
	"fmt"
	"html/template"
	"io"

	"github.com/arturkryukov/fotolenta/internal/web/i18n"
)

// Renderer — потокобезопасный рендерер шаблонов.
type Renderer struct {
	templates *template.Template
}

// NewRenderer парсит встроенные шаблоны и возвращает Renderer.
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"t": i18n.TLang,
	}

	tmpl, err := template.New("").Funcs(funcs).ParseFS(TemplateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("парсинг шаблонов: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Render выполняет шаблон name с данными data.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("рендеринг шаблона %s: %w", name, err)
	}
	return nil
}
