package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kirsrus/labsite/model"
	"github.com/kirsrus/labsite/pkg/messages"
	"github.com/kirsrus/labsite/pkg/validator"
	"github.com/kirsrus/labsite/service"
	"github.com/kirsrus/labsite/service/web/graph"
	"github.com/kirsrus/labsite/store"

	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/gabriel-vasile/mimetype"
	"github.com/juju/errors"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const (
	waitRestartStartServer = 10 * time.Second
	shutdownTimeout        = 5 * time.Second
	webPort                = 3000
	assetsDir              = "./assets"
	indexFile              = "index.html"
	// Записей журнала в ответе GET /temperature по умолчанию
	journalLimit = 50
)

// ConfigWeb конфигурация структуры Web
type ConfigWeb struct {
	Log      *logrus.Logger
	Messages *messages.Table

	WebPort   uint
	AssetsDir string
	Index     string

	// Необязательные получатели принятых замеров
	Journal   store.JournalStore
	Feed      service.FeedSvc
	Publisher service.PublisherSvc

	Registry *prometheus.Registry
}

// Web служба WEB-сервера сайта и API. Инициализируется через NewWeb
type Web struct {
	log       *logrus.Entry
	validator *validator.Validator
	messages  *messages.Table
	e         *echo.Echo

	catalog   store.CatalogStore
	journal   store.JournalStore
	feed      service.FeedSvc
	publisher service.PublisherSvc

	graphqlHandler *handler.Server

	registry *prometheus.Registry
	requests *prometheus.CounterVec
	reports  *prometheus.CounterVec

	webPort   uint
	assetsDir string
	index     string
}

// NewWeb конструктор структуры Web
func NewWeb(catalog store.CatalogStore, config *ConfigWeb) (*Web, error) {
	if config == nil {
		return nil, errors.New("не установлена конфигурация")
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}
	if catalog == nil {
		return nil, errors.New("не передан каталог изображений")
	}
	web := Web{
		log: config.Log.WithFields(map[string]interface{}{
			"module": "web",
			"scope":  "service",
		}),
		validator: validator.Get(),
		messages:  config.Messages,
		e:         echo.New(),

		catalog:   catalog,
		journal:   config.Journal,
		feed:      config.Feed,
		publisher: config.Publisher,

		registry: config.Registry,

		webPort:   webPort,
		assetsDir: assetsDir,
		index:     indexFile,
	}
	if web.messages == nil {
		web.messages = messages.Get(messages.LocaleRu)
	}
	if web.registry == nil {
		web.registry = prometheus.NewRegistry()
	}
	if config.WebPort != 0 {
		web.webPort = config.WebPort
	}
	if config.AssetsDir != "" {
		web.assetsDir = config.AssetsDir
	}
	if config.Index != "" {
		web.index = config.Index
	}

	web.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "labsite_http_requests_total",
		Help: "HTTP requests by method, route and status code",
	}, []string{"method", "route", "code"})
	web.reports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "labsite_temperature_reports_total",
		Help: "Temperature reports by result",
	}, []string{"result"})
	if err := web.registry.Register(web.requests); err != nil {
		return nil, errors.Annotate(err, "ошибка регистрации метрик")
	}
	if err := web.registry.Register(web.reports); err != nil {
		return nil, errors.Annotate(err, "ошибка регистрации метрик")
	}

	web.e.HideBanner = true
	web.e.HidePort = true
	web.e.Use(middleware.Recover())
	web.e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))
	web.e.Use(web.countRequests)

	// Точка входа в GraphQL
	resolver, err := graph.NewResolver(&graph.ConfigResolver{
		Log:     config.Log,
		Journal: web.journal,
		Feed:    web.feed,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	web.graphqlHandler = graph.NewHandler(resolver)

	return &web, nil
}

// Handler обработчик HTTP со всеми зарегистрированными маршрутами
func (m *Web) Handler() http.Handler {
	return m.e
}

// Serve запуск сервера. При неожиданной остановке сервер перезапускается,
// по завершению ctx останавливается
func (m *Web) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := m.e.Shutdown(shutdownCtx); err != nil {
			m.log.Warnf("ошибка остановки HTTP-сервера: %v", err)
		}
	}()

	for {
		m.log.Infof("старт HTTP-сервера на порту :%d", m.webPort)
		err := m.e.Start(fmt.Sprintf(":%d", m.webPort))
		select {
		case <-ctx.Done():
			m.log.Info("HTTP-сервер остановлен")
			return nil
		default:
		}
		m.log.Errorf("сервер неожиданно завершил работу: %v", err)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(waitRestartStartServer):
		}
	}
}

// Учёт запросов в метриках
func (m *Web) countRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := next(c); err != nil {
			c.Error(err)
		}
		m.requests.WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(c.Response().Status)).Inc()
		return nil
	}
}

// Static статические файлы сайта
func (m *Web) Static(path string) {
	m.e.Static(path, m.assetsDir)
}

// Index корневая страница сайта
func (m *Web) Index(path string) {
	m.e.GET(path, func(c echo.Context) error {
		return c.File(filepath.Join(m.assetsDir, m.index))
	})
}

// Images список изображений галереи
func (m *Web) Images(path string) {
	m.e.GET(path, func(c echo.Context) error {
		items, err := m.catalog.Images()
		if err != nil {
			m.log.Errorf("ошибка получения списка изображений: %v", err)
			return c.JSON(http.StatusInternalServerError, model.Message{Message: err.Error()})
		}
		if items == nil {
			items = make([]model.ImageItem, 0)
		}
		return c.JSON(http.StatusOK, items)
	})
}

// Image локальное изображение галереи. Имя файла в параметре :name
func (m *Web) Image(path string) {
	m.e.GET(path, func(c echo.Context) error {
		name := c.Param("name")
		if name == "" {
			return c.JSON(http.StatusBadRequest, model.Message{Message: "не передано имя файла изображения"})
		}
		content, err := m.catalog.Image(name)
		if err != nil {
			if m.catalog.IsNotFound(err) {
				return c.JSON(http.StatusNotFound, model.Message{Message: err.Error()})
			}
			return c.JSON(http.StatusBadRequest, model.Message{Message: "ошибка: " + err.Error()})
		}
		return c.Blob(http.StatusOK, mimetype.Detect(content).String(), content)
	})
}

// Temperature приём замера (POST) и журнал принятых замеров (GET)
func (m *Web) Temperature(path string) {
	m.e.POST(path, m.acceptTemperature)
	m.e.GET(path, m.journalTemperature)
}

func (m *Web) acceptTemperature(c echo.Context) error {
	body, err := ioutil.ReadAll(c.Request().Body)
	if err != nil {
		return errors.Trace(err)
	}

	req, err := decodeReport(body)
	if err == nil {
		err = m.validator.Validate(&req)
	}
	if err != nil {
		m.log.Debugf("отклонён замер: %v", err)
		m.reports.WithLabelValues("rejected").Inc()
		return c.JSON(http.StatusBadRequest, model.Message{Message: m.messages.InvalidReport})
	}

	report := req.Report()
	message := fmt.Sprintf(m.messages.ReportAccepted, report.Room, report.TemperatureText())
	m.reports.WithLabelValues("accepted").Inc()
	m.log.Infof("принят замер: аудитория %s, температура %s", report.Room, report.TemperatureText())

	m.dispatch(report, message)

	return c.JSON(http.StatusOK, model.Message{Message: message})
}

// Разбор тела замера. Ключи сравниваются точно: {"ROOM": ...} аудитории не содержит.
// Неверные типы полей отсекаются уже здесь
func decodeReport(body []byte) (model.TemperatureRequest, error) {
	var (
		req    model.TemperatureRequest
		fields map[string]json.RawMessage
	)
	if err := json.Unmarshal(body, &fields); err != nil {
		return req, errors.Annotate(err, "тело не JSON объект")
	}
	if raw, ok := fields["room"]; ok {
		if err := json.Unmarshal(raw, &req.Room); err != nil {
			return req, errors.Annotate(err, "room")
		}
	}
	if raw, ok := fields["temperature"]; ok {
		if err := json.Unmarshal(raw, &req.Temperature); err != nil {
			return req, errors.Annotate(err, "temperature")
		}
	}
	return req, nil
}

// Передача принятого замера в журнал, ленту и брокер. Ошибки здесь не
// влияют на ответ клиенту, только в лог
func (m *Web) dispatch(report model.TemperatureReport, message string) {
	event := model.FeedEvent{
		Kind:        model.FeedKindTemperature,
		Room:        report.Room,
		Temperature: report.Temperature,
		Message:     message,
		CreatedAt:   time.Now(),
	}

	if m.journal != nil {
		entry, err := m.journal.Save(report)
		if err != nil {
			m.log.Errorf("ошибка записи в журнал: %v", err)
		} else {
			event.CreatedAt = entry.CreatedAt
		}
	}
	if m.feed != nil {
		m.feed.Broadcast(event)
	}
	if m.publisher != nil {
		go func() {
			if err := m.publisher.Publish(event); err != nil {
				m.log.Warn(err)
			}
		}()
	}
}

func (m *Web) journalTemperature(c echo.Context) error {
	if m.journal == nil {
		return c.JSON(http.StatusOK, make([]model.JournalEntry, 0))
	}
	limit := journalLimit
	if value := c.QueryParam("limit"); value != "" {
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, model.Message{Message: fmt.Sprintf("некорректный limit: %s", value)})
		}
		limit = n
	}
	entries, err := m.journal.Last(limit)
	if err != nil {
		m.log.Error(err)
		return c.JSON(http.StatusInternalServerError, model.Message{Message: err.Error()})
	}
	return c.JSON(http.StatusOK, entries)
}

// Metrics метрики prometheus
func (m *Web) Metrics(path string) {
	m.e.GET(path, echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})))
}

// GraphQL запрос temperatures к журналу и подписка temperatureAccepted
func (m *Web) GraphQL(path string) {
	m.e.GET(path, echo.WrapHandler(m.graphqlHandler))
	m.e.POST(path, echo.WrapHandler(m.graphqlHandler))
}

// Feed WebSocket лента принятых замеров. Без ленты маршрут не регистрируется
func (m *Web) Feed(path string) {
	if m.feed == nil {
		return
	}
	m.e.GET(path, echo.WrapHandler(m.feed))
}
