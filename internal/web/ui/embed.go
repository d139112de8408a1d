package ui

import "embed"

// TemplateFS — встроенные HTML-шаблоны веб-интерфейса.
//
//go:embed templates/*.html
var TemplateFS embed.FS
