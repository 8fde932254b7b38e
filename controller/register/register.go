package register

import (
	"context"
	"fmt"
	"io/ioutil"
	"strconv"
	"strings"

	"github.com/kirsrus/labsite/model"
	"github.com/kirsrus/labsite/pkg/messages"
	"github.com/kirsrus/labsite/pkg/page"
	"github.com/kirsrus/labsite/pkg/validator"

	"github.com/PuerkitoBio/goquery"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

const (
	dialogSelector = "#register-dialog"
	openSelector   = "[data-register-open]"
	closeSelector  = "[data-register-close]"
	// Проверяемые поля формы
	fieldsSelector = `input[name]:not([type="hidden"]):not([type="submit"]):not([type="button"]):not([type="radio"]):not([type="checkbox"])`
)

// Register диалог регистрации с проверкой полей формы. Инициализируется через NewRegister
type Register struct {
	log       *logrus.Entry
	page      *page.Page
	validator *validator.Validator
	messages  *messages.Table

	// Элемент, открывший диалог. Получает фокус при закрытии
	opener *html.Node
}

// ConfigRegister конфигурация Register
type ConfigRegister struct {
	Log      *logrus.Logger
	Messages *messages.Table
}

// NewRegister конструктор Register
func NewRegister(p *page.Page, config *ConfigRegister) (*Register, error) {
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

	res := Register{
		log: config.Log.WithFields(map[string]interface{}{
			"module": "register",
			"scope":  "controller",
		}),
		page:      p,
		validator: validator.Get(),
		messages:  config.Messages,
	}
	if res.messages == nil {
		res.messages = messages.Get(messages.LocaleRu)
	}
	return &res, nil
}

// IsOpen открыт ли диалог
func (m *Register) IsOpen() bool {
	open := false
	m.page.Do(func(tx *page.Tx) {
		open = page.IsOpen(tx.Find(dialogSelector))
	})
	return open
}

// Open открывает диалог и переводит фокус на первое поле
func (m *Register) Open() {
	m.page.Do(func(tx *page.Tx) {
		m.open(tx, tx.ActiveNode())
	})
}

func (m *Register) open(tx *page.Tx, opener *html.Node) {
	dialog := tx.Find(dialogSelector).First()
	if dialog.Length() == 0 || page.IsOpen(dialog) {
		return
	}
	m.opener = opener
	page.SetOpen(dialog, true)
	tx.Focus(dialog.Find(fieldsSelector).First())
}

// Close закрывает диалог и возвращает фокус открывшему его элементу
func (m *Register) Close() {
	m.page.Do(func(tx *page.Tx) {
		m.close(tx)
	})
}

func (m *Register) close(tx *page.Tx) {
	dialog := tx.Find(dialogSelector).First()
	if !page.IsOpen(dialog) {
		return
	}
	page.SetOpen(dialog, false)
	tx.FocusNode(m.opener)
	m.opener = nil
}

// Blur проверка поля name при потере фокуса. Поле помечается как невалидное или валидное
func (m *Register) Blur(name string) (model.FieldState, error) {
	var (
		state model.FieldState
		found bool
	)
	m.page.Do(func(tx *page.Tx) {
		form := tx.Find(dialogSelector).First().Find("form").First()
		form.Find(fieldsSelector).EachWithBreak(func(_ int, field *goquery.Selection) bool {
			if fieldName, _ := field.Attr("name"); fieldName != name {
				return true
			}
			found = true
			state = m.check(tx, field)
			m.mark(form, field, state)
			return false
		})
	})
	if !found {
		return state, errors.NotFoundf("поле %s", name)
	}
	return state, nil
}

// Submit проверка всех полей формы. При ошибке фокус переходит на первое
// невалидное поле и возвращается errors.NotValid. Если всё верно - диалог
// закрывается, форма сбрасывается
func (m *Register) Submit() ([]model.FieldState, error) {
	var (
		states  []model.FieldState
		invalid []string
		found   bool
	)
	m.page.Do(func(tx *page.Tx) {
		form := tx.Find(dialogSelector).First().Find("form").First()
		if form.Length() == 0 {
			return
		}
		found = true

		var first *goquery.Selection
		form.Find(fieldsSelector).Each(func(_ int, field *goquery.Selection) {
			state := m.check(tx, field)
			m.mark(form, field, state)
			states = append(states, state)
			if state.Validity != model.Valid {
				invalid = append(invalid, state.Name)
				if first == nil {
					first = field
				}
			}
		})
		if first != nil {
			tx.Focus(first)
			return
		}

		tx.Reset(form)
		form.Find("[data-error-for]").SetText("")
		m.close(tx)
	})
	if !found {
		return nil, errors.NotFoundf("форма %s", dialogSelector)
	}
	if len(invalid) != 0 {
		m.log.Debugf("форма регистрации не прошла проверку: %s", strings.Join(invalid, ", "))
		return states, errors.NewNotValid(nil, fmt.Sprintf("невалидные поля: %s", strings.Join(invalid, ", ")))
	}
	m.log.Debug("форма регистрации заполнена верно")
	return states, nil
}

// Click открытие и закрытие диалога
func (m *Register) Click(_ context.Context, target *html.Node) {
	m.page.Do(func(tx *page.Tx) {
		sel := tx.Doc.FindNodes(target)
		switch {
		case sel.Closest(openSelector).Length() != 0:
			// Кнопка получает фокус при щелчке
			tx.FocusNode(target)
			m.open(tx, target)
		case sel.Closest(closeSelector).Length() != 0:
			m.close(tx)
		}
	})
}

// Key Escape закрывает диалог
func (m *Register) Key(key string, _ *html.Node) {
	if key == "Escape" {
		m.Close()
	}
}

// Проверка значения поля по ограничениям из его атрибутов
func (m *Register) check(tx *page.Tx, field *goquery.Selection) model.FieldState {
	name, _ := field.Attr("name")
	value := tx.Value(field)
	validity := m.validator.Field(value, constraints(field))
	return model.FieldState{
		Name:     name,
		Value:    value,
		Validity: validity,
		Message:  m.message(validity),
	}
}

// Пометка поля и вывод текста ошибки в [data-error-for]
func (m *Register) mark(form, field *goquery.Selection, state model.FieldState) {
	errorNode := form.Find(fmt.Sprintf(`[data-error-for="%s"]`, state.Name))
	if state.Validity == model.Valid {
		field.RemoveAttr("aria-invalid")
		errorNode.SetText("")
		return
	}
	field.SetAttr("aria-invalid", "true")
	errorNode.SetText(state.Message)
}

func (m *Register) message(validity model.Validity) string {
	switch validity {
	case model.Valid:
		return ""
	case model.ValueMissing:
		return m.messages.ValueMissing
	case model.TooShort:
		return m.messages.TooShort
	case model.TooLong:
		return m.messages.TooLong
	case model.TypeMismatch:
		return m.messages.TypeMismatch
	case model.PatternMismatch:
		return m.messages.PatternMismatch
	default:
		return m.messages.InvalidField
	}
}

// Ограничения поля из HTML атрибутов
func constraints(field *goquery.Selection) model.FieldConstraints {
	_, required := field.Attr("required")
	typ, _ := field.Attr("type")
	pattern, _ := field.Attr("pattern")
	return model.FieldConstraints{
		Required:  required,
		MinLength: intAttr(field, "minlength"),
		MaxLength: intAttr(field, "maxlength"),
		Type:      strings.ToLower(typ),
		Pattern:   pattern,
	}
}

func intAttr(sel *goquery.Selection, name string) int {
	value, ok := sel.Attr(name)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
