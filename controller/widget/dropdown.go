package widget

import (
	"context"

	"github.com/kirsrus/labsite/pkg/page"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

const (
	dropdownItemSelector = ".nav-item--dropdown"
	dropdownBtnSelector  = ".nav-link--btn"
	dropdownLinkSelector = ".dropdown a"
)

// Dropdown выпадающее меню навигации. Инициализируется через NewDropdown
type Dropdown struct {
	log         *logrus.Entry
	page        *page.Page
	state       State
	lastFocused *html.Node
}

// NewDropdown конструктор Dropdown
func NewDropdown(p *page.Page, config *ConfigWidget) (*Dropdown, error) {
	log, err := prepare(p, config, "dropdown")
	if err != nil {
		return nil, errors.Trace(err)
	}
	res := Dropdown{log: log, page: p, state: Closed}
	p.Do(func(tx *page.Tx) {
		if open, _ := tx.Find(dropdownItemSelector).Attr("data-open"); open == "true" {
			res.state = Open
		}
	})
	return &res, nil
}

// State текущее состояние
func (m *Dropdown) State() State {
	return m.state
}

// Toggle открыть или закрыть
func (m *Dropdown) Toggle() {
	m.set(m.state.Toggle())
}

// Close закрыть
func (m *Dropdown) Close() {
	m.set(Closed)
}

// Click кнопка переключает меню, щелчок вне меню закрывает его
func (m *Dropdown) Click(_ context.Context, target *html.Node) {
	toggle, outside := false, false
	m.page.Do(func(tx *page.Tx) {
		item := tx.Find(dropdownItemSelector).First()
		if item.Length() == 0 {
			return
		}
		if tx.Doc.FindNodes(target).Closest(dropdownBtnSelector).Length() != 0 && page.Contains(item, target) {
			toggle = true
			return
		}
		outside = !page.Contains(item, target)
	})
	switch {
	case toggle:
		m.Toggle()
	case outside && m.state == Open:
		m.Close()
	}
}

// Key Escape закрывает меню
func (m *Dropdown) Key(key string, _ *html.Node) {
	if key == "Escape" && m.state == Open {
		m.Close()
	}
}

func (m *Dropdown) set(state State) {
	m.page.Do(func(tx *page.Tx) {
		item := tx.Find(dropdownItemSelector).First()
		if item.Length() == 0 {
			return
		}
		btn := item.Find(dropdownBtnSelector)
		if state == Open {
			if m.state != Open {
				m.lastFocused = tx.ActiveNode()
			}
			item.SetAttr("data-open", "true")
			btn.SetAttr("aria-expanded", "true")
			tx.Focus(item.Find(dropdownLinkSelector).First())
		} else {
			item.RemoveAttr("data-open")
			btn.SetAttr("aria-expanded", "false")
			if m.state == Open {
				tx.FocusNode(m.lastFocused)
				m.lastFocused = nil
			}
		}
		m.state = state
	})
	m.log.Debugf("выпадающее меню: %s", state)
}
