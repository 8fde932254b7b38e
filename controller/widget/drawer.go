package widget

import (
	"context"

	"github.com/kirsrus/labsite/pkg/page"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

const (
	drawerSelector         = ".mobile-drawer"
	drawerMenuBtnSelector  = ".header__menuBtn"
	drawerCloseSelector    = ".mobile-drawer__close"
	drawerBackdropSelector = ".mobile-drawer__backdrop"
	drawerLinkSelector     = ".mobile-nav a"
)

// Drawer мобильное меню. Инициализируется через NewDrawer
type Drawer struct {
	log   *logrus.Entry
	page  *page.Page
	state State
	// Элемент в фокусе до открытия
	lastFocused *html.Node
}

// NewDrawer конструктор Drawer. Начальное состояние берётся со страницы
func NewDrawer(p *page.Page, config *ConfigWidget) (*Drawer, error) {
	log, err := prepare(p, config, "drawer")
	if err != nil {
		return nil, errors.Trace(err)
	}
	res := Drawer{log: log, page: p, state: Closed}
	p.Do(func(tx *page.Tx) {
		drawer := tx.Find(drawerSelector)
		if drawer.Length() != 0 && !page.IsHidden(drawer) {
			res.state = Open
		}
	})
	return &res, nil
}

// State текущее состояние
func (m *Drawer) State() State {
	return m.state
}

// Toggle открыть или закрыть
func (m *Drawer) Toggle() {
	m.set(m.state.Toggle())
}

// Close закрыть
func (m *Drawer) Close() {
	m.set(Closed)
}

// Click кнопка меню переключает, кнопка закрытия, подложка и ссылки закрывают
func (m *Drawer) Click(_ context.Context, target *html.Node) {
	var next *State
	m.page.Do(func(tx *page.Tx) {
		sel := tx.Doc.FindNodes(target)
		switch {
		case sel.Closest(drawerMenuBtnSelector).Length() != 0:
			state := m.state.Toggle()
			next = &state
		case sel.Closest(drawerCloseSelector).Length() != 0,
			sel.Closest(drawerBackdropSelector).Length() != 0,
			sel.Closest(drawerLinkSelector).Length() != 0:
			state := Closed
			next = &state
		}
	})
	if next != nil {
		m.set(*next)
	}
}

// Key Escape внутри меню закрывает его
func (m *Drawer) Key(key string, target *html.Node) {
	if key != "Escape" || m.state != Open {
		return
	}
	inside := target == nil
	if !inside {
		m.page.Do(func(tx *page.Tx) {
			inside = page.Contains(tx.Find(drawerSelector), target)
		})
	}
	if inside {
		m.Close()
	}
}

func (m *Drawer) set(state State) {
	m.page.Do(func(tx *page.Tx) {
		drawer := tx.Find(drawerSelector)
		if drawer.Length() == 0 {
			return
		}
		if state == Open && m.state != Open {
			m.lastFocused = tx.ActiveNode()
		}
		m.apply(tx, state)
		if state == Closed && m.state == Open {
			tx.FocusNode(m.lastFocused)
			m.lastFocused = nil
		}
		m.state = state
	})
	m.log.Debugf("меню: %s", state)
}

func (m *Drawer) apply(tx *page.Tx, state State) {
	open := state == Open
	page.SetHidden(tx.Find(drawerSelector), !open)
	tx.Find(drawerMenuBtnSelector).SetAttr("aria-expanded", boolText(open))
	if open {
		page.SetStyle(tx.Find("body"), "overflow", "hidden")
		tx.Focus(tx.Find(drawerSelector).Find(drawerLinkSelector).First())
	} else {
		page.SetStyle(tx.Find("body"), "overflow", "")
	}
}

func boolText(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
