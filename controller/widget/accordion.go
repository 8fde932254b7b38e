package widget

import (
	"context"

	"github.com/kirsrus/labsite/pkg/page"

	"github.com/PuerkitoBio/goquery"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

const accordionSelector = "[data-accordion]"

// AccordionState открытые панели аккордеона по порядку
type AccordionState []bool

// Toggle переключение панели i. Открытие панели закрывает остальные,
// закрытие другие панели не трогает
func (s AccordionState) Toggle(i int) AccordionState {
	if i < 0 || i >= len(s) {
		return s
	}
	next := make(AccordionState, len(s))
	copy(next, s)
	if next[i] {
		next[i] = false
		return next
	}
	for j := range next {
		next[j] = j == i
	}
	return next
}

// Opened индексы открытых панелей
func (s AccordionState) Opened() []int {
	res := make([]int, 0, 1)
	for i, open := range s {
		if open {
			res = append(res, i)
		}
	}
	return res
}

// Accordion аккордеон, где открыта не больше чем одна панель. Инициализируется через NewAccordion
type Accordion struct {
	log   *logrus.Entry
	page  *page.Page
	state AccordionState
}

// NewAccordion конструктор Accordion
func NewAccordion(p *page.Page, config *ConfigWidget) (*Accordion, error) {
	log, err := prepare(p, config, "accordion")
	if err != nil {
		return nil, errors.Trace(err)
	}
	res := Accordion{log: log, page: p}
	p.Do(func(tx *page.Tx) {
		panels(tx).Each(func(_ int, s *goquery.Selection) {
			res.state = append(res.state, page.IsOpen(s))
		})
	})
	return &res, nil
}

// State текущее состояние
func (m *Accordion) State() AccordionState {
	res := make(AccordionState, len(m.state))
	copy(res, m.state)
	return res
}

// Toggle переключение панели i
func (m *Accordion) Toggle(i int) {
	m.page.Do(func(tx *page.Tx) {
		m.state = m.state.Toggle(i)
		m.apply(tx)
	})
	m.log.Debugf("аккордеон: открыты %v", m.state.Opened())
}

// Click щелчок по summary переключает его панель
func (m *Accordion) Click(_ context.Context, target *html.Node) {
	index := -1
	m.page.Do(func(tx *page.Tx) {
		summary := tx.Doc.FindNodes(target).Closest("summary")
		if summary.Length() == 0 {
			return
		}
		details := summary.Parent()
		panels(tx).EachWithBreak(func(i int, s *goquery.Selection) bool {
			if details.Length() != 0 && s.Get(0) == details.Get(0) {
				index = i
				return false
			}
			return true
		})
	})
	if index >= 0 {
		m.Toggle(index)
	}
}

func (m *Accordion) apply(tx *page.Tx) {
	panels(tx).Each(func(i int, s *goquery.Selection) {
		if i < len(m.state) {
			page.SetOpen(s, m.state[i])
		}
	})
}

func panels(tx *page.Tx) *goquery.Selection {
	return tx.Find(accordionSelector).First().Find("details")
}
