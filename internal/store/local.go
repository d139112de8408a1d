// local.go — локальный бэкенд: бинарные файлы на диске + единый
// JSON-массив data.json как авторитетный индекс записей.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arturkryukov/fotolenta/internal/domain/model"
)

const (
	// indexFileName — имя файла-индекса в корне данных
	indexFileName = "data.json"
	// uploadsDirName — имя директории бинарных файлов
	uploadsDirName = "uploads"
	// localCreatedAtLayout — формат created_at локальных записей
	// (ISO-8601 с точностью до секунды, как в исходном data.json)
	localCreatedAtLayout = "2006-01-02T15:04:05"
)

// LocalStore — бэкенд на локальной файловой системе.
//
// Индекс переписывается целиком: чтение массива, мутация в памяти,
// сериализация обратно. Последовательность read-modify-write
// сериализована мьютексом: без него два конкурентных create/delete
// теряли бы обновления друг друга (классическая гонка на общем файле).
type LocalStore struct {
	// mu сериализует все обращения к индексу (единственный писатель)
	mu         sync.Mutex
	dataDir    string
	uploadsDir string
	indexPath  string
	logger     *slog.Logger
}

// UploadsPath возвращает директорию бинарных файлов внутри корня данных.
// Используется веб-слоем для отдачи статики без обращения к бэкенду.
func UploadsPath(dataDir string) string {
	return filepath.Join(dataDir, uploadsDirName)
}

// NewLocal создаёт локальный бэкенд. Создаёт директорию uploads,
// если она не существует.
func NewLocal(dataDir string, logger *slog.Logger) (*LocalStore, error) {
	uploadsDir := filepath.Join(dataDir, uploadsDirName)
	if err := os.MkdirAll(uploadsDir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию загрузок %s: %w", uploadsDir, err)
	}

	return &LocalStore{
		dataDir:    dataDir,
		uploadsDir: uploadsDir,
		indexPath:  filepath.Join(dataDir, indexFileName),
		logger:     logger.With(slog.String("component", "local_store")),
	}, nil
}

// List возвращает записи в порядке вставки (как в индексе).
// Разворот до newest-first выполняет Facade.
// Отсутствующий или повреждённый индекс — пустой список, не ошибка:
// доступность галереи важнее полноты (сбой логируется).
func (s *LocalStore) List(_ context.Context) []model.Record {
	s.mu.Lock()
	records := s.loadIndex()
	s.mu.Unlock()

	for i := range records {
		// Индексы старого формата не содержат поле source
		if records[i].Source == "" {
			records[i].Source = model.SourceLocal
		}
		records[i].DisplayURL = s.DisplayURL(records[i].Image)
	}
	return records
}

// Create сохраняет изображение на диск и дописывает запись в индекс.
// Локатор — <uuid-hex>.<ext>. Расширение перепроверяется по allow-list:
// валидацию выполняет веб-слой, но store на это не полагается.
func (s *LocalStore) Create(_ context.Context, in CreateInput) (*model.Record, error) {
	if !ExtensionAllowed(in.Filename) {
		return nil, fmt.Errorf("%w: недопустимое расширение %q", ErrValidation, Ext(in.Filename))
	}

	locator := randomHex() + Ext(in.Filename)
	if err := s.writeBlob(locator, in.Reader); err != nil {
		return nil, fmt.Errorf("сохранение файла %s: %w", locator, err)
	}

	record := model.Record{
		ID:        randomHex(),
		Source:    model.SourceLocal,
		Image:     locator,
		Caption:   in.Caption,
		CreatedAt: time.Now().Format(localCreatedAtLayout),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.loadIndex()
	records = append(records, record)
	if err := s.saveIndex(records); err != nil {
		// Запись не попала в индекс — убираем осиротевший файл
		_ = os.Remove(filepath.Join(s.uploadsDir, locator))
		return nil, fmt.Errorf("запись индекса: %w", err)
	}

	s.logger.Info("Запись создана",
		slog.String("id", record.ID),
		slog.String("locator", locator),
	)

	record.DisplayURL = s.DisplayURL(locator)
	return &record, nil
}

// Delete удаляет файл и все записи индекса с этим локатором.
// Удаление идемпотентно: отсутствующий файл и отсутствующая запись
// в индексе не являются ошибкой. Ошибка возвращается только при
// неожиданном сбое файловой системы.
func (s *LocalStore) Delete(_ context.Context, locator string) error {
	name, err := safeLocator(locator)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.uploadsDir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("удаление файла %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.loadIndex()
	kept := records[:0]
	for _, r := range records {
		if r.Image != name {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		// Индекс не менялся — перезапись не нужна
		return nil
	}
	if err := s.saveIndex(kept); err != nil {
		return fmt.Errorf("перезапись индекса: %w", err)
	}

	s.logger.Info("Запись удалена", slog.String("locator", name))
	return nil
}

// DisplayURL возвращает путь отображения под публичным префиксом /uploads/.
// Для локальных записей URL совпадает с сохранённым относительным путём.
func (s *LocalStore) DisplayURL(locator string) string {
	return "/uploads/" + locator
}

// Source возвращает model.SourceLocal.
func (s *LocalStore) Source() model.Source {
	return model.SourceLocal
}

// UploadsDir возвращает директорию бинарных файлов (для отдачи статики).
func (s *LocalStore) UploadsDir() string {
	return s.uploadsDir
}

// loadIndex читает индекс целиком. Вызывается под s.mu.
// Отсутствие файла — пустой список; ошибка парсинга — пустой список
// с WARN-логом (намеренная политика «доступно, но с потерями»).
func (s *LocalStore) loadIndex() []model.Record {
	data, err := os.ReadFile(s.indexPath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Индекс недоступен для чтения",
				slog.String("path", s.indexPath),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}

	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("Индекс повреждён, возвращается пустой список",
			slog.String("path", s.indexPath),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return records
}

// saveIndex переписывает индекс целиком. Вызывается под s.mu.
// Паттерн: temp файл → запись → fsync → atomic rename.
func (s *LocalStore) saveIndex(records []model.Record) error {
	if records == nil {
		records = []model.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("сериализация индекса: %w", err)
	}

	tmpPath := s.indexPath + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("создание временного индекса: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("запись временного индекса: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("fsync индекса: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("закрытие временного индекса: %w", err)
	}
	if err := os.Rename(tmpPath, s.indexPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("атомарное переименование индекса: %w", err)
	}
	return nil
}

// writeBlob сохраняет бинарные данные в uploads/<locator>.
// Паттерн: temp файл → запись → fsync → atomic rename.
func (s *LocalStore) writeBlob(locator string, r io.Reader) error {
	fullPath := filepath.Join(s.uploadsDir, locator)
	tmpPath := fullPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("создание временного файла: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("запись данных: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("fsync: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("закрытие файла: %w", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("атомарное переименование: %w", err)
	}
	return nil
}

// safeLocator отклоняет локаторы с разделителями пути:
// локатор локальной записи — всегда простое имя файла.
func safeLocator(locator string) (string, error) {
	if locator == "" || locator != filepath.Base(locator) || strings.ContainsAny(locator, "/\\") {
		return "", fmt.Errorf("%w: некорректный локатор %q", ErrValidation, locator)
	}
	return locator, nil
}

// randomHex генерирует случайный hex-идентификатор (uuid без дефисов).
func randomHex() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
