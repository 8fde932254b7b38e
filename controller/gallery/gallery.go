package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io/ioutil"
	"strings"

	"github.com/kirsrus/labsite/controller"
	"github.com/kirsrus/labsite/model"
	"github.com/kirsrus/labsite/pkg/messages"
	"github.com/kirsrus/labsite/pkg/page"
	"github.com/kirsrus/labsite/service"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	htmlNode "golang.org/x/net/html"
)

const (
	gridSelector    = "[data-gallery-grid]"
	loaderSelector  = "[data-gallery-loader]"
	emptySelector   = "[data-gallery-empty]"
	refreshSelector = "[data-refresh-images]"
)

// Gallery загрузка и вывод галереи изображений. Инициализируется через NewGallery
type Gallery struct {
	log      *logrus.Entry
	page     *page.Page
	api      service.ApiSvc
	notifier controller.NotifierCtl
	messages *messages.Table
}

// ConfigGallery конфигурация Gallery
type ConfigGallery struct {
	Log      *logrus.Logger
	Messages *messages.Table
}

// NewGallery конструктор Gallery
func NewGallery(p *page.Page, api service.ApiSvc, notifier controller.NotifierCtl, config *ConfigGallery) (*Gallery, error) {
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
	if api == nil {
		return nil, errors.New("не передан клиент API")
	}
	if notifier == nil {
		return nil, errors.New("не передан контроллер уведомлений")
	}

	res := Gallery{
		log: config.Log.WithFields(map[string]interface{}{
			"module": "gallery",
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

// Load загружает список изображений и выводит карточки. Ошибка загрузки
// показывается уведомлением и возвращается вызывающему. Индикатор загрузки
// снимается на любом пути выхода
func (m *Gallery) Load(ctx context.Context) (err error) {
	hasGrid := false
	m.page.Do(func(tx *page.Tx) {
		if !tx.Exists(gridSelector) {
			return
		}
		hasGrid = true
		setLoading(tx, true)
		page.SetHidden(tx.Find(emptySelector), true)
		tx.Find(gridSelector).Empty()
	})
	if !hasGrid {
		return nil
	}
	defer m.page.Do(func(tx *page.Tx) {
		setLoading(tx, false)
	})

	items, err := m.fetch(ctx)
	if err != nil {
		message := err.Error()
		if message == "" {
			message = m.messages.UnknownError
		}
		m.log.Warnf("галерея не загружена: %s", message)
		m.notifier.Show(model.Toast{Kind: model.ToastError, Title: m.messages.GalleryFailed, Message: message})
		m.page.Do(func(tx *page.Tx) {
			page.SetHidden(tx.Find(emptySelector), false)
		})
		return errors.Trace(err)
	}

	m.page.Do(func(tx *page.Tx) {
		if len(items) == 0 {
			page.SetHidden(tx.Find(emptySelector), false)
			return
		}
		cards := make([]string, 0, len(items))
		for i, item := range items {
			cards = append(cards, m.card(model.ParseGalleryItem(item), i))
		}
		tx.Find(gridSelector).First().AppendHtml(strings.Join(cards, ""))
	})
	m.log.Debugf("в галерее %d изображений", len(items))
	return nil
}

// Click кнопка обновления галереи
func (m *Gallery) Click(ctx context.Context, target *htmlNode.Node) {
	refresh := false
	m.page.Do(func(tx *page.Tx) {
		btn := tx.Doc.FindNodes(target).Closest(refreshSelector)
		refresh = btn.Length() != 0 && !page.IsDisabled(btn)
	})
	if refresh {
		_ = m.Load(ctx)
	}
}

// Запрос списка изображений. Ответ обязан быть массивом JSON
func (m *Gallery) fetch(ctx context.Context) ([]json.RawMessage, error) {
	res, err := m.api.Images(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]json.RawMessage, 0)
	if !res.IsJSON() || json.Unmarshal(res.JSON, &items) != nil || items == nil {
		return nil, errors.New(m.messages.NotArray)
	}
	return items, nil
}

func (m *Gallery) card(item model.GalleryItem, index int) string {
	title := html.EscapeString(item.Label(index, m.messages.ImageFallback))
	meta := ""
	if item.HasID {
		meta = html.EscapeString(fmt.Sprintf(m.messages.ImageID, item.ID))
	}
	return fmt.Sprintf(`<article class="gallery-card">`+
		`<div class="gallery-card__media"><img src="%s" alt="%s" loading="lazy"/></div>`+
		`<div class="gallery-card__body"><p class="gallery-card__title">%s</p><p class="gallery-card__meta">%s</p></div>`+
		`</article>`,
		html.EscapeString(item.Source), title, title, meta)
}

func setLoading(tx *page.Tx, loading bool) {
	page.SetHidden(tx.Find(loaderSelector), !loading)
	page.SetDisabled(tx.Find(refreshSelector), loading)
}
