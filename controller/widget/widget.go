// Package widget виджеты страницы: меню, выпадающий список, аккордеон, карусель
// отзывов, показ пароля и демонстрационная форма. Состояние каждого виджета -
// конечный автомат, не зависящий от DOM, плюс шаг apply, переносящий его в атрибуты.
package widget

import (
	"io/ioutil"

	"github.com/kirsrus/labsite/pkg/messages"
	"github.com/kirsrus/labsite/pkg/page"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

// State состояние открываемого виджета
type State int

const (
	Closed State = iota
	Open
)

// Toggle переход в противоположное состояние
func (s State) Toggle() State {
	if s == Open {
		return Closed
	}
	return Open
}

// String имя состояния для логов
func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// ConfigWidget общая конфигурация виджетов
type ConfigWidget struct {
	Log      *logrus.Logger
	Messages *messages.Table
	// Ширина окна в пикселях при загрузке страницы
	Width int
}

// Общая часть конструкторов виджетов
func prepare(p *page.Page, config *ConfigWidget, module string) (*logrus.Entry, error) {
	if config == nil {
		return nil, errors.New("не задана конфигурация config")
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}
	if p == nil {
		return nil, errors.New("не передана страница")
	}
	if config.Messages == nil {
		config.Messages = messages.Get(messages.LocaleRu)
	}
	return config.Log.WithFields(map[string]interface{}{
		"module": module,
		"scope":  "controller",
	}), nil
}
