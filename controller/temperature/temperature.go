package temperature

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"strings"

	"github.com/kirsrus/labsite/controller"
	"github.com/kirsrus/labsite/model"
	"github.com/kirsrus/labsite/pkg/messages"
	"github.com/kirsrus/labsite/pkg/page"
	"github.com/kirsrus/labsite/pkg/tool"
	"github.com/kirsrus/labsite/service"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

const (
	formSelector        = "[data-temp-form]"
	roomSelector        = "#room"
	temperatureSelector = "#temperature"
	controlsSelector    = "input, button"
)

// Temperature форма отправки замера температуры. Инициализируется через NewTemperature
type Temperature struct {
	log      *logrus.Entry
	page     *page.Page
	api      service.ApiSvc
	notifier controller.NotifierCtl
	messages *messages.Table
}

// ConfigTemperature конфигурация Temperature
type ConfigTemperature struct {
	Log      *logrus.Logger
	Messages *messages.Table
}

// NewTemperature конструктор Temperature
func NewTemperature(p *page.Page, api service.ApiSvc, notifier controller.NotifierCtl, config *ConfigTemperature) (*Temperature, error) {
	if config == nil {
		return nil, errors.New("не задана конфигурация config")
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}
	if p == nil || api == nil || notifier == nil {
		return nil, errors.New("не переданы страница, клиент API или контроллер уведомлений")
	}

	res := Temperature{
		log: config.Log.WithFields(map[string]interface{}{
			"module": "temperature",
			"scope":  "controller",
		}),
		page:     p,
		api:      api,
		notifier: notifier,
		messages: config.Messages,
	}
	if res.messages == nil {
		res.messages = messages.Get(messages.LocaleRu)
	}
	return &res, nil
}

// Submit проверка и отправка формы. Ошибка проверки полей возвращается как
// errors.NotValid, запрос при этом не выполняется
func (m *Temperature) Submit(ctx context.Context) error {
	var (
		found  bool
		report model.TemperatureReport
		reason string
	)
	m.page.Do(func(tx *page.Tx) {
		form := tx.Find(formSelector).First()
		if form.Length() == 0 {
			return
		}
		found = true

		room := tx.Find(roomSelector)
		report.Room = strings.TrimSpace(tx.Value(room))
		if report.Room == "" {
			reason = m.messages.EnterRoom
			tx.Focus(room)
			return
		}
		temperature := tx.Find(temperatureSelector)
		value, err := tool.ParseNumber(tx.Value(temperature))
		if err != nil {
			reason = m.messages.EnterTemperature
			tx.Focus(temperature)
			return
		}
		report.Temperature = value

		page.SetDisabled(form.Find(controlsSelector), true)
	})
	if !found {
		return nil
	}
	if reason != "" {
		m.notifier.Show(model.Toast{Kind: model.ToastError, Title: m.messages.CheckForm, Message: reason})
		return errors.NewNotValid(nil, reason)
	}
	defer m.page.Do(func(tx *page.Tx) {
		page.SetDisabled(tx.Find(formSelector).First().Find(controlsSelector), false)
	})

	m.log.Debugf("отправка замера: аудитория %s, температура %s", report.Room, report.TemperatureText())
	res, err := m.api.SendTemperature(ctx, report)
	if err != nil {
		message := err.Error()
		if message == "" {
			message = m.messages.UnknownError
		}
		m.log.Warnf("замер не отправлен: %s", message)
		m.notifier.Show(model.Toast{Kind: model.ToastError, Title: m.messages.SendFailed, Message: message})
		return errors.Trace(err)
	}

	m.notifier.Show(model.Toast{Kind: model.ToastSuccess, Title: m.messages.Done, Message: m.successText(res)})
	m.page.Do(func(tx *page.Tx) {
		tx.Reset(tx.Find(formSelector).First())
	})
	return nil
}

// Текст ответа сервера или стандартный текст об успехе
func (m *Temperature) successText(res *model.Response) string {
	if res != nil && res.IsJSON() {
		var msg model.Message
		if err := json.Unmarshal(res.JSON, &msg); err == nil && msg.Text() != "" {
			return msg.Text()
		}
	}
	return m.messages.SentOK
}
