// Пакет model — доменные модели фотоленты.
// Record — единая структура записи галереи, используется как in-memory
// представление и как формат элемента массива data.json (локальный бэкенд).
package model

import "sort"

// Source — бэкенд-владелец записи.
type Source string

const (
	// SourceLocal — запись хранится на локальном диске + в data.json
	SourceLocal Source = "local"
	// SourceCloud — запись хранится в удалённом медиа-сервисе
	SourceCloud Source = "cloud"
)

// Valid проверяет, что значение source является допустимым.
func (s Source) Valid() bool {
	return s == SourceLocal || s == SourceCloud
}

// Record — одна запись галереи. Соответствует элементу массива data.json.
// Поле DisplayURL вычисляется бэкендом при чтении и не сохраняется:
// для local это путь под /uploads/, для cloud — delivery-URL,
// пересчитываемый из локатора (чтобы смена CDN-политики не требовала
// перезаписи данных).
type Record struct {
	// ID — стабильный уникальный идентификатор записи.
	// Для local — сгенерированный uuid-hex, для cloud — asset id
	// удалённого сервиса (или public id, если asset id отсутствует).
	ID string `json:"id"`

	// Source — бэкенд-владелец. Обязателен для корректной маршрутизации
	// удаления: веб-слой возвращает это значение обратно в delete-форме.
	Source Source `json:"source"`

	// Image — локатор бинарных данных: имя файла (local)
	// или public id (cloud).
	Image string `json:"image"`

	// Caption — подпись, может быть пустой, никогда не null.
	Caption string `json:"caption"`

	// CreatedAt — метка времени в ISO-8601-подобном формате.
	// Хранится строкой и используется только для сортировки;
	// store не парсит её в time.Time (удалённый бэкенд не гарантирует
	// нормализацию таймзоны).
	CreatedAt string `json:"created_at"`

	// DisplayURL — URL для отображения в галерее. Производное поле,
	// заполняется при чтении, не сериализуется.
	DisplayURL string `json:"-"`
}

// SortNewestFirst сортирует записи по created_at по убыванию.
// Сравнение строковое (ISO-8601 сортируется лексикографически),
// сортировка стабильная: порядок записей с одинаковой меткой
// сохраняется в пределах одного вызова.
func SortNewestFirst(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt > records[j].CreatedAt
	})
}
