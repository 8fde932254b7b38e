package widget

import (
	"context"
	"strings"

	"github.com/kirsrus/labsite/pkg/page"

	"github.com/PuerkitoBio/goquery"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

const passwordToggleSelector = "[data-password-toggle]"

// PasswordToggle кнопки показа пароля. Инициализируется через NewPasswordToggle
type PasswordToggle struct {
	log  *logrus.Entry
	page *page.Page
}

// NewPasswordToggle конструктор PasswordToggle
func NewPasswordToggle(p *page.Page, config *ConfigWidget) (*PasswordToggle, error) {
	log, err := prepare(p, config, "password")
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &PasswordToggle{log: log, page: p}, nil
}

// Click переключение типа поля между password и text
func (m *PasswordToggle) Click(_ context.Context, target *html.Node) {
	m.page.Do(func(tx *page.Tx) {
		btn := tx.Doc.FindNodes(target).Closest(passwordToggleSelector)
		if btn.Length() == 0 {
			return
		}
		input := toggleTarget(tx, btn)
		if input.Length() == 0 {
			m.log.Warn("не найдено поле для кнопки показа пароля")
			return
		}
		typ, _ := input.Attr("type")
		if strings.EqualFold(typ, "password") {
			input.SetAttr("type", "text")
			btn.SetAttr("aria-pressed", "true")
		} else {
			input.SetAttr("type", "password")
			btn.SetAttr("aria-pressed", "false")
		}
	})
}

// Поле кнопки: по aria-controls, по значению data-password-toggle или первое поле рядом с кнопкой
func toggleTarget(tx *page.Tx, btn *goquery.Selection) *goquery.Selection {
	for _, attr := range []string{"aria-controls", "data-password-toggle"} {
		if id, _ := btn.Attr(attr); strings.TrimSpace(id) != "" {
			if input := tx.Find("#" + strings.TrimSpace(id)); input.Length() != 0 {
				return input.First()
			}
		}
	}
	return btn.Parent().Find("input").First()
}
