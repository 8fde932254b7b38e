package manager

import (
	"context"
	"io/ioutil"
	"strings"
	"time"

	"github.com/kirsrus/labsite/controller"
	"github.com/kirsrus/labsite/controller/gallery"
	"github.com/kirsrus/labsite/controller/register"
	"github.com/kirsrus/labsite/controller/temperature"
	"github.com/kirsrus/labsite/controller/toast"
	"github.com/kirsrus/labsite/controller/widget"
	"github.com/kirsrus/labsite/model"
	"github.com/kirsrus/labsite/pkg/clock"
	"github.com/kirsrus/labsite/pkg/messages"
	"github.com/kirsrus/labsite/pkg/page"
	"github.com/kirsrus/labsite/service"

	"github.com/PuerkitoBio/goquery"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

const (
	toastDisplayTimeout = 6000 * time.Millisecond
	toastRemoveTimeout  = 220 * time.Millisecond
)

// ConfigManager конфигурация Manager
type ConfigManager struct {
	Log       *logrus.Logger
	Messages  *messages.Table
	Scheduler clock.Scheduler

	ToastDisplayTimeout time.Duration
	ToastRemoveTimeout  time.Duration
	// Ширина окна в пикселях
	Width int
}

// Manager контроллеры одной страницы и раздача им событий. Инициируется через NewManager
type Manager struct {
	log  *logrus.Entry
	page *page.Page
	api  service.ApiSvc

	toastDisplayTimeout time.Duration
	toastRemoveTimeout  time.Duration

	toast       *toast.Toast
	gallery     *gallery.Gallery
	temperature *temperature.Temperature
	register    *register.Register
	drawer      *widget.Drawer
	dropdown    *widget.Dropdown
	accordion   *widget.Accordion
	carousel    *widget.Carousel
	password    *widget.PasswordToggle
	wallet      *widget.Wallet

	clickHandlers []controller.ClickHandler
	keyHandlers   []controller.KeyHandler
}

// NewManager конструктор Manager. Создаёт контроллеры для тех виджетов, что есть на странице
func NewManager(p *page.Page, api service.ApiSvc, config *ConfigManager) (*Manager, error) {
	if config == nil {
		return nil, errors.New("не передана конфигурация")
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
	if config.Messages == nil {
		config.Messages = messages.Get(messages.LocaleRu)
	}
	if config.Scheduler == nil {
		config.Scheduler = clock.Real{}
	}

	manager := Manager{
		log: config.Log.WithFields(map[string]interface{}{
			"module": "manager",
			"scope":  "controller",
		}),
		page: p,
		api:  api,

		toastDisplayTimeout: toastDisplayTimeout,
		toastRemoveTimeout:  toastRemoveTimeout,
	}
	if config.ToastDisplayTimeout != 0 {
		manager.toastDisplayTimeout = config.ToastDisplayTimeout
	}
	if config.ToastRemoveTimeout != 0 {
		manager.toastRemoveTimeout = config.ToastRemoveTimeout
	}

	if err := manager.build(config); err != nil {
		return nil, errors.Trace(err)
	}
	manager.configToLog()

	return &manager, nil
}

// Создание контроллеров виджетов, которые есть на странице
func (m *Manager) build(config *ConfigManager) error {
	var err error
	exists := make(map[string]bool)
	m.page.Do(func(tx *page.Tx) {
		for _, selector := range []string{
			"[data-gallery-grid]", "[data-temp-form]", "#register-dialog", ".mobile-drawer",
			".nav-item--dropdown", "[data-accordion]", "[data-review]", "[data-password-toggle]", ".wallet-form",
		} {
			exists[selector] = tx.Exists(selector)
		}
	})

	// Уведомления нужны всем, без контейнера они просто не показываются
	m.toast, err = toast.NewToast(m.page, &toast.ConfigToast{
		Log:            config.Log,
		Messages:       config.Messages,
		Scheduler:      config.Scheduler,
		DisplayTimeout: m.toastDisplayTimeout,
		RemoveTimeout:  m.toastRemoveTimeout,
	})
	if err != nil {
		return errors.Trace(err)
	}
	m.clickHandlers = append(m.clickHandlers, m.toast)

	if exists["[data-gallery-grid]"] {
		if m.gallery, err = gallery.NewGallery(m.page, m.api, m.toast, &gallery.ConfigGallery{
			Log:      config.Log,
			Messages: config.Messages,
		}); err != nil {
			return errors.Trace(err)
		}
		m.clickHandlers = append(m.clickHandlers, m.gallery)
	}
	if exists["[data-temp-form]"] {
		if m.temperature, err = temperature.NewTemperature(m.page, m.api, m.toast, &temperature.ConfigTemperature{
			Log:      config.Log,
			Messages: config.Messages,
		}); err != nil {
			return errors.Trace(err)
		}
	}
	if exists["#register-dialog"] {
		if m.register, err = register.NewRegister(m.page, &register.ConfigRegister{
			Log:      config.Log,
			Messages: config.Messages,
		}); err != nil {
			return errors.Trace(err)
		}
		m.clickHandlers = append(m.clickHandlers, m.register)
		m.keyHandlers = append(m.keyHandlers, m.register)
	}

	widgetConfig := &widget.ConfigWidget{Log: config.Log, Messages: config.Messages, Width: config.Width}
	if exists[".mobile-drawer"] {
		if m.drawer, err = widget.NewDrawer(m.page, widgetConfig); err != nil {
			return errors.Trace(err)
		}
		m.clickHandlers = append(m.clickHandlers, m.drawer)
		m.keyHandlers = append(m.keyHandlers, m.drawer)
	}
	if exists[".nav-item--dropdown"] {
		if m.dropdown, err = widget.NewDropdown(m.page, widgetConfig); err != nil {
			return errors.Trace(err)
		}
		m.clickHandlers = append(m.clickHandlers, m.dropdown)
		m.keyHandlers = append(m.keyHandlers, m.dropdown)
	}
	if exists["[data-accordion]"] {
		if m.accordion, err = widget.NewAccordion(m.page, widgetConfig); err != nil {
			return errors.Trace(err)
		}
		m.clickHandlers = append(m.clickHandlers, m.accordion)
	}
	if exists["[data-review]"] {
		if m.carousel, err = widget.NewCarousel(m.page, widgetConfig); err != nil {
			return errors.Trace(err)
		}
		m.clickHandlers = append(m.clickHandlers, m.carousel)
	}
	if exists["[data-password-toggle]"] {
		if m.password, err = widget.NewPasswordToggle(m.page, widgetConfig); err != nil {
			return errors.Trace(err)
		}
		m.clickHandlers = append(m.clickHandlers, m.password)
	}
	if exists[".wallet-form"] {
		if m.wallet, err = widget.NewWallet(m.page, widgetConfig); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// Вывести значения конфигурациии в лог
func (m Manager) configToLog() {
	m.log.Debugf("toastDisplayTimeout: %s", m.toastDisplayTimeout)
	m.log.Debugf("toastRemoveTimeout: %s", m.toastRemoveTimeout)
	m.log.Debugf("controllers: click=%d key=%d", len(m.clickHandlers), len(m.keyHandlers))
}

// Start первичная загрузка галереи. Ошибка загрузки уже показана
// уведомлением и возвращается для сведения
func (m *Manager) Start(ctx context.Context) error {
	if m.gallery == nil {
		return nil
	}
	return errors.Trace(m.gallery.Load(ctx))
}

// Page страница менеджера
func (m *Manager) Page() *page.Page {
	return m.page
}

// Notifier контроллер уведомлений
func (m *Manager) Notifier() controller.NotifierCtl {
	return m.toast
}

// Gallery контроллер галереи или nil
func (m *Manager) Gallery() *gallery.Gallery {
	return m.gallery
}

// Register контроллер диалога регистрации или nil
func (m *Manager) Register() *register.Register {
	return m.register
}

// Wallet контроллер формы выбора кошелька или nil
func (m *Manager) Wallet() *widget.Wallet {
	return m.wallet
}

// Click щелчок по первому элементу selector. Событие получают все контроллеры
func (m *Manager) Click(ctx context.Context, selector string) error {
	target, err := m.node(selector)
	if err != nil {
		return errors.Trace(err)
	}
	m.log.Debugf("щелчок: %s", selector)
	for _, handler := range m.clickHandlers {
		handler.Click(ctx, target)
	}
	return nil
}

// Key нажатие клавиши на элементе в фокусе
func (m *Manager) Key(key string) {
	var target *html.Node
	m.page.Do(func(tx *page.Tx) {
		target = tx.ActiveNode()
	})
	for _, handler := range m.keyHandlers {
		handler.Key(key, target)
	}
}

// Focus перевод фокуса на первый элемент selector
func (m *Manager) Focus(selector string) error {
	target, err := m.node(selector)
	if err != nil {
		return errors.Trace(err)
	}
	m.page.Do(func(tx *page.Tx) {
		tx.FocusNode(target)
	})
	return nil
}

// Input ввод значения в поле selector
func (m *Manager) Input(selector, value string) error {
	found := false
	m.page.Do(func(tx *page.Tx) {
		field := tx.Find(selector).First()
		if field.Length() == 0 {
			return
		}
		found = true
		tx.Focus(field)
		tx.SetValue(field, value)
	})
	if !found {
		return errors.NotFoundf("поле %s", selector)
	}
	return nil
}

// Blur потеря фокуса полем selector. Поля формы регистрации при этом проверяются
func (m *Manager) Blur(selector string) error {
	var (
		name       string
		inRegister bool
	)
	target, err := m.node(selector)
	if err != nil {
		return errors.Trace(err)
	}
	m.page.Do(func(tx *page.Tx) {
		field := tx.Doc.FindNodes(target)
		name, _ = field.Attr("name")
		inRegister = field.Closest("#register-dialog").Length() != 0
		if tx.ActiveNode() == target {
			tx.Blur()
		}
	})
	if inRegister && name != "" && m.register != nil {
		_, err := m.register.Blur(name)
		return errors.Trace(err)
	}
	return nil
}

// Submit отправка формы selector. Форма определяет контроллер
func (m *Manager) Submit(ctx context.Context, selector string) error {
	var form *goquery.Selection
	target, err := m.node(selector)
	if err != nil {
		return errors.Trace(err)
	}
	kind := ""
	m.page.Do(func(tx *page.Tx) {
		form = tx.Doc.FindNodes(target).Closest("form")
		switch {
		case form.Is("[data-temp-form]"):
			kind = "temperature"
		case form.Closest("#register-dialog").Length() != 0:
			kind = "register"
		case form.Is(".wallet-form"):
			kind = "wallet"
		}
	})

	switch {
	case kind == "temperature" && m.temperature != nil:
		return errors.Trace(m.temperature.Submit(ctx))
	case kind == "register" && m.register != nil:
		_, err := m.register.Submit()
		return errors.Trace(err)
	case kind == "wallet" && m.wallet != nil:
		m.wallet.Submit()
		return nil
	}
	return errors.NotSupportedf("отправка формы %s", selector)
}

// Resize изменение ширины окна
func (m *Manager) Resize(width int) {
	if m.carousel != nil {
		m.carousel.Resize(width)
	}
}

// Toasts уведомления, которые сейчас есть на странице
func (m *Manager) Toasts() []model.Toast {
	res := make([]model.Toast, 0)
	m.page.Do(func(tx *page.Tx) {
		tx.Find("[data-toasts] [data-toast-id]").Each(func(_ int, s *goquery.Selection) {
			id, _ := s.Attr("data-toast-id")
			kind := model.ToastSuccess
			if s.HasClass("toast--error") {
				kind = model.ToastError
			}
			res = append(res, model.Toast{
				ID:      id,
				Kind:    kind,
				Title:   strings.TrimSpace(s.Find(".toast__title").Text()),
				Message: strings.TrimSpace(s.Find(".toast__msg").Text()),
			})
		})
	})
	return res
}

// ApiBase адрес API из body[data-api-base]
func ApiBase(p *page.Page) string {
	base := ""
	p.Do(func(tx *page.Tx) {
		base, _ = tx.Find("body").Attr("data-api-base")
	})
	return strings.TrimSuffix(strings.TrimSpace(base), "/")
}

func (m *Manager) node(selector string) (*html.Node, error) {
	var target *html.Node
	m.page.Do(func(tx *page.Tx) {
		if sel := tx.Find(selector); sel.Length() != 0 {
			target = sel.Get(0)
		}
	})
	if target == nil {
		return nil, errors.NotFoundf("элемент %s", selector)
	}
	return target, nil
}
