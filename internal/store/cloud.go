// cloud.go — облачный бэкенд поверх удалённого медиа-сервиса.
// Границы коллекции — тег + папка-префикс в общем аккаунте.
// Листинг — упорядоченная цепочка стратегий: поиск по тегу, затем
// листинг по префиксу с клиентской фильтрацией по тегу.
package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arturkryukov/fotolenta/internal/domain/model"
	"github.com/arturkryukov/fotolenta/internal/mediaclient"
)

// Метрики облачного бэкенда.
var (
	cloudListStrategyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fl_cloud_list_strategy_total",
			Help: "Количество листингов, удовлетворённых каждой стратегией",
		},
		[]string{"strategy"},
	)

	cloudListFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fl_cloud_list_failures_total",
			Help: "Количество листингов, деградировавших до пустого результата",
		},
	)

	cloudCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fl_cloud_cache_hits_total",
			Help: "Попадания в кэш листинга облачного бэкенда",
		},
	)

	cloudCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fl_cloud_cache_misses_total",
			Help: "Промахи кэша листинга облачного бэкенда",
		},
	)
)

// listCacheKey — единственный ключ кэша листинга.
const listCacheKey = "list"

// mediaAPI — операции медиа-сервиса, используемые бэкендом.
// Реализуется mediaclient.Client; в тестах подменяется фейком.
type mediaAPI interface {
	Search(ctx context.Context, tag string, maxResults int) ([]mediaclient.Asset, error)
	ListByPrefix(ctx context.Context, prefix string, maxResults int) ([]mediaclient.Asset, error)
	Upload(ctx context.Context, r io.Reader, folder, tag, caption string) (*mediaclient.Asset, error)
	Destroy(ctx context.Context, publicID string) error
	DeliveryURL(publicID string) string
}

// listStrategy — один способ получить листинг у медиа-сервиса.
type listStrategy struct {
	name string
	run  func(ctx context.Context) ([]model.Record, error)
}

// CloudStore — бэкенд поверх удалённого медиа-сервиса.
type CloudStore struct {
	api    mediaAPI
	folder string
	tag    string
	limit  int
	logger *slog.Logger

	// cache — TTL-кэш последнего листинга (nil, если кэш выключен).
	// Сбрасывается при каждом успешном create/delete, чтобы листинг
	// после мутации в этом же процессе был свежим.
	cache *expirable.LRU[string, []model.Record]

	// mu защищает lastStrategy
	mu sync.Mutex
	// lastStrategy — имя стратегии, удовлетворившей последний листинг
	lastStrategy string
}

// NewCloud создаёт облачный бэкенд.
// cacheTTL <= 0 отключает кэш листинга.
func NewCloud(api mediaAPI, folder, tag string, limit int, cacheTTL time.Duration, logger *slog.Logger) *CloudStore {
	s := &CloudStore{
		api:    api,
		folder: folder,
		tag:    tag,
		limit:  limit,
		logger: logger.With(slog.String("component", "cloud_store")),
	}
	if cacheTTL > 0 {
		s.cache = expirable.NewLRU[string, []model.Record](1, nil, cacheTTL)
	}
	return s
}

// List возвращает записи коллекции, перебирая стратегии по порядку:
//
//  1. tag_search — поиск по тегу с серверной сортировкой;
//  2. prefix_list — листинг папки с клиентской фильтрацией по тегу.
//
// Следующая стратегия пробуется, если предыдущая вернула ноль
// результатов или ошибку. Результат всегда пересортировывается
// клиентски по created_at по убыванию — инвариант порядка не зависит
// от того, какая стратегия сработала. Отказ всех стратегий деградирует
// до пустого списка: сбой чтения логируется, но никогда не доходит
// до посетителя галереи.
func (s *CloudStore) List(ctx context.Context) []model.Record {
	if s.cache != nil {
		if cached, ok := s.cache.Get(listCacheKey); ok {
			cloudCacheHitsTotal.Inc()
			return cached
		}
		cloudCacheMissesTotal.Inc()
	}

	strategies := []listStrategy{
		{name: "tag_search", run: s.listByTagSearch},
		{name: "prefix_list", run: s.listByPrefix},
	}

	var records []model.Record
	chosen := ""
	failures := 0
	for _, strategy := range strategies {
		result, err := strategy.run(ctx)
		if err != nil {
			failures++
			s.logger.Warn("Стратегия листинга не сработала",
				slog.String("strategy", strategy.name),
				slog.String("error", err.Error()),
			)
			continue
		}
		chosen = strategy.name
		if len(result) == 0 {
			continue
		}
		records = result
		break
	}

	s.mu.Lock()
	s.lastStrategy = chosen
	s.mu.Unlock()

	if chosen == "" {
		// Все стратегии отказали — пустая галерея вместо ошибки
		cloudListFailuresTotal.Inc()
		s.logger.Error("Листинг медиа-сервиса недоступен, возвращается пустой список",
			slog.Int("failed_strategies", failures),
		)
		return nil
	}
	cloudListStrategyTotal.WithLabelValues(chosen).Inc()

	model.SortNewestFirst(records)
	if len(records) > s.limit {
		records = records[:s.limit]
	}
	for i := range records {
		records[i].DisplayURL = s.api.DeliveryURL(records[i].Image)
	}

	if s.cache != nil {
		s.cache.Add(listCacheKey, records)
	}
	return records
}

// LastListStrategy возвращает имя стратегии, удовлетворившей последний
// вызов List (пустая строка — все стратегии отказали или List не вызывался).
func (s *CloudStore) LastListStrategy() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastStrategy
}

// listByTagSearch — основной путь: поисковый индекс по тегу-коллекции.
func (s *CloudStore) listByTagSearch(ctx context.Context) ([]model.Record, error) {
	assets, err := s.api.Search(ctx, s.tag, s.limit)
	if err != nil {
		return nil, fmt.Errorf("поиск по тегу %s: %w", s.tag, err)
	}
	return s.mapAssets(assets), nil
}

// listByPrefix — резервный путь: листинг папки-префикса с клиентской
// фильтрацией по тегу-коллекции (листинг возвращает все ассеты папки,
// включая чужие).
func (s *CloudStore) listByPrefix(ctx context.Context) ([]model.Record, error) {
	assets, err := s.api.ListByPrefix(ctx, s.folder, s.limit)
	if err != nil {
		return nil, fmt.Errorf("листинг папки %s: %w", s.folder, err)
	}

	tagged := assets[:0]
	for _, a := range assets {
		if a.HasTag(s.tag) {
			tagged = append(tagged, a)
		}
	}
	return s.mapAssets(tagged), nil
}

// mapAssets преобразует ассеты медиа-сервиса в записи галереи.
func (s *CloudStore) mapAssets(assets []mediaclient.Asset) []model.Record {
	records := make([]model.Record, 0, len(assets))
	for _, a := range assets {
		id := a.AssetID
		if id == "" {
			id = a.PublicID
		}
		records = append(records, model.Record{
			ID:        id,
			Source:    model.SourceCloud,
			Image:     a.PublicID,
			Caption:   a.Caption(),
			CreatedAt: a.CreatedAt,
		})
	}
	return records
}

// Create загружает изображение в медиа-сервис с тегом-коллекцией
// и подписью в контексте. Без повторов: ошибку обрабатывает вызывающий.
func (s *CloudStore) Create(ctx context.Context, in CreateInput) (*model.Record, error) {
	if !ExtensionAllowed(in.Filename) {
		return nil, fmt.Errorf("%w: недопустимое расширение %q", ErrValidation, Ext(in.Filename))
	}

	asset, err := s.api.Upload(ctx, in.Reader, s.folder, s.tag, in.Caption)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemote, err)
	}
	s.purgeCache()

	s.logger.Info("Запись создана в медиа-сервисе",
		slog.String("public_id", asset.PublicID),
	)

	id := asset.AssetID
	if id == "" {
		id = asset.PublicID
	}
	return &model.Record{
		ID:         id,
		Source:     model.SourceCloud,
		Image:      asset.PublicID,
		Caption:    in.Caption,
		CreatedAt:  asset.CreatedAt,
		DisplayURL: s.api.DeliveryURL(asset.PublicID),
	}, nil
}

// Delete удаляет ассет по public id. В отличие от локального бэкенда
// удаление не идемпотентно: «not found» от медиа-сервиса — ошибка.
func (s *CloudStore) Delete(ctx context.Context, locator string) error {
	if err := s.api.Destroy(ctx, locator); err != nil {
		return fmt.Errorf("%w: %w", ErrRemote, err)
	}
	s.purgeCache()

	s.logger.Info("Запись удалена из медиа-сервиса", slog.String("public_id", locator))
	return nil
}

// DisplayURL пересчитывает URL доставки из локатора на момент чтения.
func (s *CloudStore) DisplayURL(locator string) string {
	return s.api.DeliveryURL(locator)
}

// Source возвращает model.SourceCloud.
func (s *CloudStore) Source() model.Source {
	return model.SourceCloud
}

// purgeCache сбрасывает кэш листинга после мутации.
func (s *CloudStore) purgeCache() {
	if s.cache != nil {
		s.cache.Remove(listCacheKey)
	}
}
