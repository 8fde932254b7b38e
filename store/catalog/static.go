package catalog

import (
	"fmt"

	"github.com/kirsrus/labsite/model"
	"github.com/kirsrus/labsite/pkg/messages"

	"github.com/juju/errors"
)

const (
	// Колличество изображений статического каталога
	staticCount = 8
	// Шаблон адреса изображения статического каталога
	staticURLTemplate = "https://picsum.photos/800/600?random=%d"
)

// Static каталог с неизменным набором изображений. Инициализируется через NewStatic
type Static struct {
	items []model.ImageItem
}

// ConfigStatic конфигурация Static
type ConfigStatic struct {
	// Изображения каталога. Если пусто - набор по умолчанию
	Items    []model.ImageItem
	Messages *messages.Table
}

// NewStatic конструктор Static
func NewStatic(config *ConfigStatic) *Static {
	if config == nil {
		config = &ConfigStatic{}
	}
	if config.Messages == nil {
		config.Messages = messages.Get(messages.LocaleRu)
	}
	items := config.Items
	if len(items) == 0 {
		items = make([]model.ImageItem, 0, staticCount)
		for i := 1; i <= staticCount; i++ {
			items = append(items, model.ImageItem{
				URL:   fmt.Sprintf(staticURLTemplate, i),
				Title: fmt.Sprintf(config.Messages.ImageFallback, i),
			})
		}
	}
	return &Static{items: items}
}

// Images список изображений галереи
func (m Static) Images() ([]model.ImageItem, error) {
	res := make([]model.ImageItem, len(m.items))
	copy(res, m.items)
	return res, nil
}

// Image у статического каталога локальных файлов нет
func (m Static) Image(name string) ([]byte, error) {
	return nil, errors.NotFoundf("изображение %q", name)
}

// IsNotFound проверяет, что ошибка err обозначает отсутствие изображения
func (m Static) IsNotFound(err error) bool {
	return errors.IsNotFound(err)
}
