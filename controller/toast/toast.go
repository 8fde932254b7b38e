package toast

import (
	"context"
	"fmt"
	"html"
	"io/ioutil"
	"time"

	"github.com/kirsrus/labsite/model"
	"github.com/kirsrus/labsite/pkg/clock"
	"github.com/kirsrus/labsite/pkg/messages"
	"github.com/kirsrus/labsite/pkg/page"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	htmlNode "golang.org/x/net/html"
)

const (
	// Сколько уведомление висит на экране
	displayTimeout = 6000 * time.Millisecond
	// Длительность анимации скрытия перед удалением узла
	removeTimeout = 220 * time.Millisecond

	rootSelector  = "[data-toasts]"
	closeSelector = ".toast__close"
	visibleClass  = "is-visible"
)

// Toast уведомления страницы в контейнере [data-toasts]. Инициализируется через NewToast
type Toast struct {
	log       *logrus.Entry
	page      *page.Page
	scheduler clock.Scheduler
	messages  *messages.Table

	displayTimeout time.Duration
	removeTimeout  time.Duration
}

// ConfigToast конфигурация Toast
type ConfigToast struct {
	Log       *logrus.Logger
	Messages  *messages.Table
	Scheduler clock.Scheduler

	DisplayTimeout time.Duration
	RemoveTimeout  time.Duration
}

// NewToast конструктор Toast
func NewToast(p *page.Page, config *ConfigToast) (*Toast, error) {
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

	res := Toast{
		log: config.Log.WithFields(map[string]interface{}{
			"module": "toast",
			"scope":  "controller",
		}),
		page:           p,
		scheduler:      config.Scheduler,
		messages:       config.Messages,
		displayTimeout: displayTimeout,
		removeTimeout:  removeTimeout,
	}
	if res.scheduler == nil {
		res.scheduler = clock.Real{}
	}
	if res.messages == nil {
		res.messages = messages.Get(messages.LocaleRu)
	}
	if config.DisplayTimeout != 0 {
		res.displayTimeout = config.DisplayTimeout
	}
	if config.RemoveTimeout != 0 {
		res.removeTimeout = config.RemoveTimeout
	}

	return &res, nil
}

// Show добавляет уведомление в конец списка. Появление - на следующем кадре,
// скрытие - через displayTimeout
func (m *Toast) Show(toast model.Toast) string {
	if toast.Kind == "" {
		toast.Kind = model.ToastSuccess
	}
	if toast.Title == "" {
		toast.Title = m.messages.ToastMessage
		if toast.Kind == model.ToastError {
			toast.Title = m.messages.ToastError
		}
	}
	toast.ID = uuid.New().String()

	shown := false
	m.page.Do(func(tx *page.Tx) {
		root := tx.Find(rootSelector).First()
		if root.Length() == 0 {
			return
		}
		root.AppendHtml(m.render(toast))
		shown = true
	})
	if !shown {
		m.log.Debugf("нет контейнера %s, уведомление не показано: %s", rootSelector, toast.Title)
		return ""
	}
	m.log.Debugf("уведомление %s (%s): %s", toast.ID, toast.Kind, toast.Message)

	m.scheduler.NextFrame(func() {
		m.page.Do(func(tx *page.Tx) {
			m.find(tx, toast.ID).AddClass(visibleClass)
		})
	})
	m.scheduler.AfterFunc(m.displayTimeout, func() {
		m.Dismiss(toast.ID)
	})

	return toast.ID
}

// Dismiss скрывает уведомление и удаляет его через removeTimeout
func (m *Toast) Dismiss(id string) {
	m.page.Do(func(tx *page.Tx) {
		m.find(tx, id).RemoveClass(visibleClass)
	})
	m.scheduler.AfterFunc(m.removeTimeout, func() {
		m.page.Do(func(tx *page.Tx) {
			m.find(tx, id).Remove()
		})
	})
}

// Click кнопка закрытия уведомления
func (m *Toast) Click(_ context.Context, target *htmlNode.Node) {
	id := ""
	m.page.Do(func(tx *page.Tx) {
		btn := tx.Doc.FindNodes(target).Closest(closeSelector)
		if btn.Length() == 0 {
			return
		}
		id, _ = btn.Closest("[data-toast-id]").Attr("data-toast-id")
	})
	if id != "" {
		m.Dismiss(id)
	}
}

func (m *Toast) find(tx *page.Tx, id string) *goquery.Selection {
	return tx.Find(fmt.Sprintf(`%s [data-toast-id="%s"]`, rootSelector, id))
}

func (m *Toast) render(toast model.Toast) string {
	return fmt.Sprintf(`<div class="toast toast--%s" role="status" data-toast-id="%s">`+
		`<div class="toast__top"><div>`+
		`<p class="toast__title">%s</p><p class="toast__msg">%s</p>`+
		`</div><button type="button" class="toast__close" aria-label="%s">×</button>`+
		`</div></div>`,
		html.EscapeString(string(toast.Kind)), toast.ID,
		html.EscapeString(toast.Title), html.EscapeString(toast.Message),
		html.EscapeString(m.messages.Close))
}
