// facade.go — фасад хранилища: выбирает ровно один бэкенд при старте
// процесса и предоставляет веб-слою единый контракт list/create/delete.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arturkryukov/fotolenta/internal/config"
	"github.com/arturkryukov/fotolenta/internal/domain/model"
	"github.com/arturkryukov/fotolenta/internal/mediaclient"
)

// Facade — единая точка доступа веб-слоя к хранилищу.
// Гарантирует порядок newest-first и лимит листинга, маршрутизирует
// delete по source записи, ведёт метрики операций. Выбор бэкенда —
// одноразовое решение при старте, не пер-запросное.
type Facade struct {
	backend ItemStore
	limit   int
	logger  *slog.Logger
}

// New выбирает бэкенд по конфигурации и возвращает фасад.
// Непустой FL_MEDIA_URL выбирает облачный бэкенд, иначе — локальный.
// Оба бэкенда никогда не активны одновременно.
func New(cfg *config.Config, logger *slog.Logger) (*Facade, error) {
	var backend ItemStore

	if cfg.CloudEnabled() {
		client, err := mediaclient.New(cfg.MediaURL, cfg.MediaTimeout, logger)
		if err != nil {
			return nil, fmt.Errorf("инициализация клиента медиа-сервиса: %w", err)
		}
		backend = NewCloud(client, cfg.MediaFolder, cfg.MediaTag, cfg.ListLimit, cfg.CacheTTL, logger)
		logger.Info("Выбран облачный бэкенд хранилища",
			slog.String("folder", cfg.MediaFolder),
			slog.String("tag", cfg.MediaTag),
		)
	} else {
		local, err := NewLocal(cfg.DataDir, logger)
		if err != nil {
			return nil, fmt.Errorf("инициализация локального бэкенда: %w", err)
		}
		backend = local
		logger.Info("Выбран локальный бэкенд хранилища",
			slog.String("data_dir", cfg.DataDir),
		)
	}

	return NewFacade(backend, cfg.ListLimit, logger), nil
}

// NewFacade оборачивает готовый бэкенд (используется в тестах).
func NewFacade(backend ItemStore, limit int, logger *slog.Logger) *Facade {
	return &Facade{
		backend: backend,
		limit:   limit,
		logger:  logger.With(slog.String("component", "store_facade")),
	}
}

// List возвращает записи newest-first, не больше лимита.
// Локальный бэкенд отдаёт порядок вставки и сам не сортирует по метке
// времени — разворот до newest-first выполняется здесь; облачный
// бэкенд возвращает уже отсортированный список.
func (f *Facade) List(ctx context.Context) []model.Record {
	records := f.backend.List(ctx)
	if f.backend.Source() == model.SourceLocal {
		reverse(records)
	}
	if len(records) > f.limit {
		records = records[:f.limit]
	}
	itemsTotal.Set(float64(len(records)))
	return records
}

// Create создаёт запись в активном бэкенде.
func (f *Facade) Create(ctx context.Context, in CreateInput) (*model.Record, error) {
	record, err := f.backend.Create(ctx, in)
	if err != nil {
		operationsTotal.WithLabelValues("create", "error").Inc()
		return nil, err
	}
	operationsTotal.WithLabelValues("create", "success").Inc()
	return record, nil
}

// Delete удаляет запись, маршрутизируя по source из формы.
// Веб-слой возвращает source, отрендеренный в листинге; несовпадение
// с активным бэкендом — ошибка валидации, а не тихий no-op.
func (f *Facade) Delete(ctx context.Context, source model.Source, locator string) error {
	if !source.Valid() {
		operationsTotal.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("%w: неизвестный source %q", ErrValidation, source)
	}
	if source != f.backend.Source() {
		operationsTotal.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("%w: source %q не соответствует активному бэкенду %q",
			ErrValidation, source, f.backend.Source())
	}

	if err := f.backend.Delete(ctx, locator); err != nil {
		operationsTotal.WithLabelValues("delete", "error").Inc()
		return err
	}
	operationsTotal.WithLabelValues("delete", "success").Inc()
	return nil
}

// DisplayURL делегирует вычисление URL активному бэкенду.
func (f *Facade) DisplayURL(locator string) string {
	return f.backend.DisplayURL(locator)
}

// Source возвращает идентификатор активного бэкенда.
func (f *Facade) Source() model.Source {
	return f.backend.Source()
}

// reverse разворачивает срез записей на месте.
func reverse(records []model.Record) {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
}
