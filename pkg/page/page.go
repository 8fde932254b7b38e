// Package page документ страницы сайта: DOM (goquery), активный элемент и
// значения полей ввода. Все обращения к документу идут через Do, который
// выполняет их по одному, как событийный цикл браузера.
package page

import (
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/juju/errors"
	"golang.org/x/net/html"
)

// Page документ страницы. Инициализируется через Parse
type Page struct {
	mu  sync.Mutex
	doc *goquery.Document
	// Элемент в фокусе
	active *html.Node
	// Исходные значения полей, изменённых через SetValue (для сброса формы)
	defaults map[*html.Node]*string
}

// Parse разбирает HTML страницы
func Parse(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Annotate(err, "ошибка разбора HTML страницы")
	}
	return &Page{
		doc:      doc,
		defaults: make(map[*html.Node]*string),
	}, nil
}

// ParseString разбирает HTML страницы из строки
func ParseString(content string) (*Page, error) {
	return Parse(strings.NewReader(content))
}

// Do выполняет fn с исключительным доступом к документу. Вложенный вызов Do
// из fn приведёт к блокировке
func (p *Page) Do(fn func(tx *Tx)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&Tx{page: p, Doc: p.doc})
}

// HTML текущая разметка страницы
func (p *Page) HTML() (string, error) {
	var (
		content string
		err     error
	)
	p.Do(func(tx *Tx) {
		content, err = goquery.OuterHtml(tx.Doc.Selection)
	})
	return content, errors.Trace(err)
}

// Tx доступ к документу внутри Do
type Tx struct {
	page *Page
	Doc  *goquery.Document
}

// Find поиск элементов по CSS селектору
func (t *Tx) Find(selector string) *goquery.Selection {
	return t.Doc.Find(selector)
}

// Exists есть ли на странице элемент по селектору
func (t *Tx) Exists(selector string) bool {
	return t.Doc.Find(selector).Length() != 0
}

// Focus переводит фокус на первый элемент выборки. Пустая выборка фокус не меняет
func (t *Tx) Focus(sel *goquery.Selection) {
	if sel == nil || sel.Length() == 0 {
		return
	}
	t.page.active = sel.Get(0)
}

// Active элемент в фокусе. Если фокуса нет - пустая выборка
func (t *Tx) Active() *goquery.Selection {
	if t.page.active == nil {
		return t.Doc.FindNodes()
	}
	return t.Doc.FindNodes(t.page.active)
}

// ActiveNode узел в фокусе или nil
func (t *Tx) ActiveNode() *html.Node {
	return t.page.active
}

// FocusNode возвращает фокус сохранённому узлу. Узел, удалённый из документа, фокус не получает
func (t *Tx) FocusNode(node *html.Node) {
	if node == nil || !Attached(t.Doc, node) {
		return
	}
	t.page.active = node
}

// Blur снимает фокус
func (t *Tx) Blur() {
	t.page.active = nil
}

// IsActive находится ли первый элемент выборки в фокусе
func (t *Tx) IsActive(sel *goquery.Selection) bool {
	return sel != nil && sel.Length() != 0 && sel.Get(0) == t.page.active
}

// Value текущее значение поля ввода
func (t *Tx) Value(sel *goquery.Selection) string {
	value, _ := sel.Attr("value")
	return value
}

// SetValue задаёт значение поля ввода, запоминая исходное для Reset
func (t *Tx) SetValue(sel *goquery.Selection, value string) {
	sel.Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		if _, ok := t.page.defaults[node]; !ok {
			if original, exists := s.Attr("value"); exists {
				t.page.defaults[node] = &original
			} else {
				t.page.defaults[node] = nil
			}
		}
		s.SetAttr("value", value)
	})
}

// Reset возвращает полям формы исходные значения
func (t *Tx) Reset(form *goquery.Selection) {
	form.Find("input, textarea, select").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		original, ok := t.page.defaults[node]
		if !ok {
			return
		}
		if original == nil {
			s.RemoveAttr("value")
		} else {
			s.SetAttr("value", *original)
		}
		delete(t.page.defaults, node)
	})
}
