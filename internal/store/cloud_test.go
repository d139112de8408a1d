package store

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/arturkryukov/fotolenta/internal/domain/model"
	"github.com/arturkryukov/fotolenta/internal/mediaclient"
)

// fakeMediaAPI — фейк медиа-сервиса для тестов облачного бэкенда.
type fakeMediaAPI struct {
	searchAssets []mediaclient.Asset
	searchErr    error
	searchCalls  int

	listAssets []mediaclient.Asset
	listErr    error
	listCalls  int

	uploadAsset *mediaclient.Asset
	uploadErr   error

	destroyErr error
}

func (f *fakeMediaAPI) Search(_ context.Context, _ string, _ int) ([]mediaclient.Asset, error) {
	f.searchCalls++
	return f.searchAssets, f.searchErr
}

func (f *fakeMediaAPI) ListByPrefix(_ context.Context, _ string, _ int) ([]mediaclient.Asset, error) {
	f.listCalls++
	return f.listAssets, f.listErr
}

func (f *fakeMediaAPI) Upload(_ context.Context, _ io.Reader, _, _, _ string) (*mediaclient.Asset, error) {
	return f.uploadAsset, f.uploadErr
}

func (f *fakeMediaAPI) Destroy(_ context.Context, _ string) error {
	return f.destroyErr
}

func (f *fakeMediaAPI) DeliveryURL(publicID string) string {
	return "https://cdn.example.com/" + publicID
}

func newTestCloud(api mediaAPI, cacheTTL time.Duration) *CloudStore {
	return NewCloud(api, "fotolenta", "fotolenta", 100, cacheTTL, discardLogger())
}

func TestCloudListTagSearch(t *testing.T) {
	api := &fakeMediaAPI{
		searchAssets: []mediaclient.Asset{
			{PublicID: "fotolenta/a", CreatedAt: "2026-01-02T00:00:00Z", Tags: []string{"fotolenta"}},
			{PublicID: "fotolenta/b", CreatedAt: "2026-01-01T00:00:00Z", Tags: []string{"fotolenta"}},
		},
	}
	s := newTestCloud(api, 0)

	records := s.List(context.Background())
	if len(records) != 2 {
		t.Fatalf("ожидалось 2 записи, получено %d", len(records))
	}
	if s.LastListStrategy() != "tag_search" {
		t.Errorf("ожидалась стратегия tag_search, получена %s", s.LastListStrategy())
	}
	if api.listCalls != 0 {
		t.Error("резервная стратегия не должна вызываться при успехе основной")
	}
	if records[0].DisplayURL != "https://cdn.example.com/fotolenta/a" {
		t.Errorf("неверный DisplayURL: %s", records[0].DisplayURL)
	}
}

func TestCloudListFallbackOnEmpty(t *testing.T) {
	// Поиск по тегу вернул ноль результатов — пробуем листинг по префиксу
	api := &fakeMediaAPI{
		listAssets: []mediaclient.Asset{
			{PublicID: "fotolenta/x", CreatedAt: "2026-01-01T00:00:00Z", Tags: []string{"fotolenta"}},
			{PublicID: "fotolenta/alien", CreatedAt: "2026-01-01T00:00:00Z", Tags: []string{"other-app"}},
		},
	}
	s := newTestCloud(api, 0)

	records := s.List(context.Background())
	if s.LastListStrategy() != "prefix_list" {
		t.Errorf("ожидалась стратегия prefix_list, получена %s", s.LastListStrategy())
	}
	if api.searchCalls != 1 {
		t.Errorf("основная стратегия должна быть вызвана один раз, вызвана %d", api.searchCalls)
	}
	// Чужие ассеты папки отфильтрованы по тегу-коллекции
	if len(records) != 1 || records[0].Image != "fotolenta/x" {
		t.Errorf("ожидалась одна запись fotolenta/x, получено %+v", records)
	}
}

func TestCloudListFallbackOnError(t *testing.T) {
	api := &fakeMediaAPI{
		searchErr: errors.New("search API недоступен"),
		listAssets: []mediaclient.Asset{
			{PublicID: "fotolenta/y", CreatedAt: "2026-01-01T00:00:00Z", Tags: []string{"fotolenta"}},
		},
	}
	s := newTestCloud(api, 0)

	records := s.List(context.Background())
	if len(records) != 1 {
		t.Fatalf("ожидалась 1 запись, получено %d", len(records))
	}
	if s.LastListStrategy() != "prefix_list" {
		t.Errorf("ожидалась стратегия prefix_list, получена %s", s.LastListStrategy())
	}
}

func TestCloudListAllStrategiesFail(t *testing.T) {
	api := &fakeMediaAPI{
		searchErr: errors.New("search недоступен"),
		listErr:   errors.New("листинг недоступен"),
	}
	s := newTestCloud(api, 0)

	// Отказ всех стратегий — пустой список, не паника и не ошибка
	records := s.List(context.Background())
	if len(records) != 0 {
		t.Errorf("ожидался пустой список, получено %d записей", len(records))
	}
	if s.LastListStrategy() != "" {
		t.Errorf("стратегия не должна быть выбрана, получена %s", s.LastListStrategy())
	}
}

func TestCloudListResort(t *testing.T) {
	// Порядок ответа сервиса не гарантирован — клиентская пересортировка
	// по created_at по убыванию выполняется всегда
	api := &fakeMediaAPI{
		searchAssets: []mediaclient.Asset{
			{PublicID: "old", CreatedAt: "2025-01-01T00:00:00Z", Tags: []string{"fotolenta"}},
			{PublicID: "newest", CreatedAt: "2026-06-01T00:00:00Z", Tags: []string{"fotolenta"}},
			{PublicID: "middle", CreatedAt: "2026-01-01T00:00:00Z", Tags: []string{"fotolenta"}},
		},
	}
	s := newTestCloud(api, 0)

	records := s.List(context.Background())
	want := []string{"newest", "middle", "old"}
	for i, id := range want {
		if records[i].Image != id {
			t.Errorf("позиция %d: ожидался %s, получен %s", i, id, records[i].Image)
		}
	}
}

func TestCloudListCache(t *testing.T) {
	api := &fakeMediaAPI{
		searchAssets: []mediaclient.Asset{
			{PublicID: "a", CreatedAt: "2026-01-01T00:00:00Z", Tags: []string{"fotolenta"}},
		},
	}
	s := newTestCloud(api, time.Minute)
	ctx := context.Background()

	s.List(ctx)
	s.List(ctx)
	if api.searchCalls != 1 {
		t.Errorf("повторный листинг должен обслуживаться из кэша, вызовов API: %d", api.searchCalls)
	}

	// Мутация сбрасывает кэш: следующий листинг идёт в API
	api.uploadAsset = &mediaclient.Asset{PublicID: "b", CreatedAt: "2026-02-01T00:00:00Z"}
	if _, err := s.Create(ctx, CreateInput{Reader: strings.NewReader("x"), Filename: "p.jpg"}); err != nil {
		t.Fatalf("ошибка создания записи: %v", err)
	}
	s.List(ctx)
	if api.searchCalls != 2 {
		t.Errorf("после создания кэш должен быть сброшен, вызовов API: %d", api.searchCalls)
	}
}

func TestCloudCreate(t *testing.T) {
	api := &fakeMediaAPI{
		uploadAsset: &mediaclient.Asset{
			AssetID:   "asset-1",
			PublicID:  "fotolenta/new",
			CreatedAt: "2026-03-01T00:00:00Z",
		},
	}
	s := newTestCloud(api, 0)

	record, err := s.Create(context.Background(), CreateInput{
		Reader:   strings.NewReader("x"),
		Filename: "photo.png",
		Caption:  "облачная запись",
	})
	if err != nil {
		t.Fatalf("ошибка создания записи: %v", err)
	}
	if record.Source != model.SourceCloud {
		t.Errorf("ожидался source cloud, получен %s", record.Source)
	}
	if record.ID != "asset-1" {
		t.Errorf("ожидался id asset-1, получен %s", record.ID)
	}
	if record.Image != "fotolenta/new" {
		t.Errorf("ожидался локатор fotolenta/new, получен %s", record.Image)
	}
}

func TestCloudCreateRemoteError(t *testing.T) {
	api := &fakeMediaAPI{uploadErr: errors.New("сервис вернул 500")}
	s := newTestCloud(api, 0)

	_, err := s.Create(context.Background(), CreateInput{
		Reader:   strings.NewReader("x"),
		Filename: "photo.png",
	})
	if !errors.Is(err, ErrRemote) {
		t.Errorf("ожидалась ошибка медиа-сервиса, получено %v", err)
	}
}

func TestCloudCreateBadExtension(t *testing.T) {
	s := newTestCloud(&fakeMediaAPI{}, 0)

	_, err := s.Create(context.Background(), CreateInput{
		Reader:   strings.NewReader("x"),
		Filename: "doc.pdf",
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("ожидалась ошибка валидации, получено %v", err)
	}
}

func TestCloudDeleteNotFound(t *testing.T) {
	// В отличие от локального бэкенда удаление не идемпотентно:
	// «not found» от медиа-сервиса — ошибка
	api := &fakeMediaAPI{destroyErr: errors.New("медиа-сервис отклонил удаление: not found")}
	s := newTestCloud(api, 0)

	err := s.Delete(context.Background(), "missing")
	if !errors.Is(err, ErrRemote) {
		t.Errorf("ожидалась ошибка медиа-сервиса, получено %v", err)
	}
}
