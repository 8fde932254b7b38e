package store

import (
	"github.com/kirsrus/labsite/model"
)

// CatalogStore источник изображений галереи
//go:generate mockery --dir . --name CatalogStore --output ./mocks
type CatalogStore interface {
	// Список изображений галереи
	Images() ([]model.ImageItem, error)
	// Содержимое локального изображения по имени файла. Для каталога без
	// локальных файлов возвращается ошибка, проверяемая через IsNotFound
	Image(name string) ([]byte, error)
	// Проверяет, что ошибка err обозначает отсутствие изображения
	IsNotFound(err error) bool
}

// JournalStore журнал принятых замеров температуры
//go:generate mockery --dir . --name JournalStore --output ./mocks
type JournalStore interface {
	// Сохраняет принятый замер
	Save(model.TemperatureReport) (*model.JournalEntry, error)
	// Последние limit замеров, новые первыми
	Last(limit int) ([]model.JournalEntry, error)
	// Очищает записи старше days дней
	Clean(days int) error
}
