package page

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// SetHidden ставит или снимает атрибут hidden
func SetHidden(sel *goquery.Selection, hidden bool) {
	setFlag(sel, "hidden", hidden)
}

// IsHidden есть ли у первого элемента атрибут hidden
func IsHidden(sel *goquery.Selection) bool {
	_, ok := sel.Attr("hidden")
	return ok
}

// SetDisabled ставит или снимает атрибут disabled
func SetDisabled(sel *goquery.Selection, disabled bool) {
	setFlag(sel, "disabled", disabled)
}

// IsDisabled есть ли у первого элемента атрибут disabled
func IsDisabled(sel *goquery.Selection) bool {
	_, ok := sel.Attr("disabled")
	return ok
}

// SetOpen ставит или снимает атрибут open (details, dialog)
func SetOpen(sel *goquery.Selection, open bool) {
	setFlag(sel, "open", open)
}

// IsOpen есть ли у первого элемента атрибут open
func IsOpen(sel *goquery.Selection) bool {
	_, ok := sel.Attr("open")
	return ok
}

// IsChecked отмечен ли переключатель
func IsChecked(sel *goquery.Selection) bool {
	_, ok := sel.Attr("checked")
	return ok
}

// Check отмечает переключатель. Для radio снимает отметку с остальных в группе формы
func Check(sel *goquery.Selection) {
	if sel.Length() == 0 {
		return
	}
	if typ, _ := sel.Attr("type"); strings.EqualFold(typ, "radio") {
		if name, ok := sel.Attr("name"); ok {
			sel.Closest("form").Find(`input[type="radio"]`).Each(func(_ int, s *goquery.Selection) {
				if other, _ := s.Attr("name"); other == name {
					s.RemoveAttr("checked")
				}
			})
		}
	}
	sel.SetAttr("checked", "")
}

// SetStyle задаёт одно inline-свойство стиля. Пустое значение удаляет свойство
func SetStyle(sel *goquery.Selection, property, value string) {
	sel.Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		rules := make([]string, 0)
		for _, rule := range strings.Split(style, ";") {
			rule = strings.TrimSpace(rule)
			if rule == "" {
				continue
			}
			if name := strings.TrimSpace(strings.SplitN(rule, ":", 2)[0]); strings.EqualFold(name, property) {
				continue
			}
			rules = append(rules, rule)
		}
		if value != "" {
			rules = append(rules, property+": "+value)
		}
		if len(rules) == 0 {
			s.RemoveAttr("style")
			return
		}
		s.SetAttr("style", strings.Join(rules, "; "))
	})
}

// Style значение inline-свойства стиля первого элемента
func Style(sel *goquery.Selection, property string) string {
	style, _ := sel.Attr("style")
	for _, rule := range strings.Split(style, ";") {
		parts := strings.SplitN(rule, ":", 2)
		if len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[0]), property) {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}

// Contains содержит ли container узел node (сам container тоже считается)
func Contains(container *goquery.Selection, node *html.Node) bool {
	for _, root := range container.Nodes {
		for n := node; n != nil; n = n.Parent {
			if n == root {
				return true
			}
		}
	}
	return false
}

// Attached находится ли узел в документе
func Attached(doc *goquery.Document, node *html.Node) bool {
	return Contains(doc.Selection, node)
}

func setFlag(sel *goquery.Selection, name string, on bool) {
	if on {
		sel.SetAttr(name, "")
	} else {
		sel.RemoveAttr(name)
	}
}
