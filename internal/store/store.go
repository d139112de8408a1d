// Пакет store — хранилище записей галереи с двумя взаимозаменяемыми
// бэкендами: локальная файловая система + JSON-индекс (LocalStore)
// и удалённый медиа-сервис (CloudStore). Бэкенд выбирается один раз
// при старте процесса; обработчики работают только с фасадом
// и никогда не ветвятся по типу бэкенда.
package store

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arturkryukov/fotolenta/internal/domain/model"
)

// Ошибки хранилища.
var (
	// ErrValidation — некорректные входные данные (недопустимое
	// расширение, пустой файл, несовпадающий source). Мутация
	// хранилища не происходит.
	ErrValidation = errors.New("некорректные входные данные")

	// ErrRemote — транспортная или API-ошибка медиа-сервиса при
	// create/delete. Конкретная причина логируется, пользователю
	// показывается общее сообщение.
	ErrRemote = errors.New("ошибка медиа-сервиса")
)

// Метрики операций хранилища.
var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fl_operations_total",
			Help: "Общее количество операций хранилища",
		},
		[]string{"operation", "result"},
	)

	itemsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fl_items_total",
			Help: "Количество записей в последнем листинге",
		},
	)
)

// allowedExtensions — допустимые расширения загружаемых изображений.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Ext возвращает нормализованное расширение имени файла (в нижнем регистре).
func Ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// ExtensionAllowed проверяет расширение имени файла по allow-list.
func ExtensionAllowed(filename string) bool {
	return allowedExtensions[Ext(filename)]
}

// CreateInput — параметры создания записи.
type CreateInput struct {
	// Reader — поток данных изображения
	Reader io.Reader
	// Filename — исходное имя файла (используется только для расширения)
	Filename string
	// Caption — подпись (уже обрезанная веб-слоем, может быть пустой)
	Caption string
}

// ItemStore — единый контракт бэкенда хранилища.
// Веб-слой получает реализацию через Facade и не знает, какой
// бэкенд активен.
type ItemStore interface {
	// List возвращает записи бэкенда. Никогда не возвращает ошибку:
	// сбой чтения деградирует до пустого списка (ошибка логируется).
	// Порядок — специфичный для бэкенда; newest-first гарантирует Facade.
	List(ctx context.Context) []model.Record

	// Create сохраняет изображение с подписью и возвращает новую запись.
	Create(ctx context.Context, in CreateInput) (*model.Record, error)

	// Delete удаляет запись по локатору.
	Delete(ctx context.Context, locator string) error

	// DisplayURL вычисляет URL отображения из локатора.
	DisplayURL(locator string) string

	// Source возвращает идентификатор бэкенда.
	Source() model.Source
}
