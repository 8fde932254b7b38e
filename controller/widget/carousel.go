package widget

import (
	"context"

	"github.com/kirsrus/labsite/pkg/page"

	"github.com/PuerkitoBio/goquery"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

const (
	reviewSelector = "[data-review]"
	prevSelector   = "[data-prev]"
	nextSelector   = "[data-next]"

	// 48rem: с этой ширины окна видны все отзывы
	desktopWidth = 768
	// Ширина окна, если она не задана
	defaultWidth = 1280
)

// Step индекс после сдвига idx на dir по кругу из count элементов
func Step(idx, dir, count int) int {
	if count <= 0 {
		return 0
	}
	return ((idx+dir)%count + count) % count
}

// Carousel карусель отзывов. Инициализируется через NewCarousel
type Carousel struct {
	log   *logrus.Entry
	page  *page.Page
	index int
	count int
	width int
}

// NewCarousel конструктор Carousel. Видимость отзывов сразу приводится к ширине окна
func NewCarousel(p *page.Page, config *ConfigWidget) (*Carousel, error) {
	log, err := prepare(p, config, "carousel")
	if err != nil {
		return nil, errors.Trace(err)
	}
	res := Carousel{log: log, page: p, width: defaultWidth}
	if config.Width > 0 {
		res.width = config.Width
	}
	p.Do(func(tx *page.Tx) {
		res.count = tx.Find(reviewSelector).Length()
		res.apply(tx)
	})
	return &res, nil
}

// Index текущий отзыв
func (m *Carousel) Index() int {
	return m.index
}

// Step сдвиг на dir отзывов по кругу
func (m *Carousel) Step(dir int) {
	m.page.Do(func(tx *page.Tx) {
		m.index = Step(m.index, dir, m.count)
		m.apply(tx)
	})
	m.log.Debugf("карусель: отзыв %d из %d", m.index+1, m.count)
}

// Resize новая ширина окна
func (m *Carousel) Resize(width int) {
	m.page.Do(func(tx *page.Tx) {
		m.width = width
		m.apply(tx)
	})
}

// Click кнопки назад и вперёд
func (m *Carousel) Click(_ context.Context, target *html.Node) {
	dir := 0
	m.page.Do(func(tx *page.Tx) {
		sel := tx.Doc.FindNodes(target)
		switch {
		case sel.Closest(prevSelector).Length() != 0:
			dir = -1
		case sel.Closest(nextSelector).Length() != 0:
			dir = 1
		}
	})
	if dir != 0 {
		m.Step(dir)
	}
}

func (m *Carousel) apply(tx *page.Tx) {
	desktop := m.width >= desktopWidth
	tx.Find(reviewSelector).Each(func(i int, s *goquery.Selection) {
		if desktop || i == m.index {
			page.SetStyle(s, "display", "")
		} else {
			page.SetStyle(s, "display", "none")
		}
	})
}
