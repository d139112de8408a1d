package i18n

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBundleTranslate(t *testing.T) {
	b := NewBundle(discardLogger())
	if err := b.LoadMessages("en", []byte(`{"greeting": "Hello"}`)); err != nil {
		t.Fatalf("ошибка загрузки каталога: %v", err)
	}
	if err := b.LoadMessages("ru", []byte(`{"greeting": "Привет"}`)); err != nil {
		t.Fatalf("ошибка загрузки каталога: %v", err)
	}

	if got := b.Translate("ru", "greeting"); got != "Привет" {
		t.Errorf("ожидался перевод Привет, получено %q", got)
	}
	// Отсутствующий в ru ключ падает на английский
	if err := b.LoadMessages("en", []byte(`{"greeting": "Hello", "only_en": "English only"}`)); err != nil {
		t.Fatalf("ошибка загрузки каталога: %v", err)
	}
	if got := b.Translate("ru", "only_en"); got != "English only" {
		t.Errorf("ожидался fallback на английский, получено %q", got)
	}
	// Неизвестный ключ возвращается как есть
	if got := b.Translate("en", "missing.key"); got != "missing.key" {
		t.Errorf("неизвестный ключ должен возвращаться как есть, получено %q", got)
	}
}

func TestBundleLoadEmbeddedCatalogs(t *testing.T) {
	b := NewBundle(discardLogger())
	if err := b.LoadDir(LocaleFS, "locales"); err != nil {
		t.Fatalf("ошибка загрузки встроенных каталогов: %v", err)
	}

	// Сообщение о превышении размера присутствует во всех языках
	for _, lang := range []string{"en", "ru", "zh"} {
		msg := b.Translate(lang, "error.too_large")
		if msg == "error.too_large" {
			t.Errorf("каталог %s не содержит error.too_large", lang)
		}
	}
	if got := b.Translate("zh", "error.too_large"); got != "文件过大，最大 10MB" {
		t.Errorf("неверное китайское сообщение о размере: %q", got)
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		accept string
		want   string
	}{
		{"cookie имеет приоритет", "ru", "en-US", "ru"},
		{"cookie zh", "zh", "", "zh"},
		{"недопустимый cookie игнорируется", "de", "ru-RU,ru;q=0.9", "ru"},
		{"accept-language zh", "", "zh-CN,zh;q=0.9", "zh"},
		{"default en", "", "", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: LangCookieName, Value: tt.cookie})
			}
			if tt.accept != "" {
				r.Header.Set("Accept-Language", tt.accept)
			}
			if got := detectLanguage(r); got != tt.want {
				t.Errorf("ожидался язык %s, получен %s", tt.want, got)
			}
		})
	}
}
