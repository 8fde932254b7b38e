package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirsrus/labsite/model"
	"github.com/kirsrus/labsite/pkg/messages"
	"github.com/kirsrus/labsite/pkg/tool"

	"github.com/cenkalti/backoff/v4"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

const (
	// Колличество попыток запроса по умолчанию
	Retries = 3
	// Пауза между попытками
	RetryDelay = 550 * time.Millisecond
	// Пауза между попытками загрузки галереи
	GalleryRetryDelay = 650 * time.Millisecond
	// Таймаут одного запроса
	RequestTimeout = 10 * time.Second

	imagesPath      = "/images"
	temperaturePath = "/temperature"
)

// Error неуспешный ответ сервера с текстом для пользователя
type Error struct {
	// Код HTTP ответа. 0 - ответа не было
	Status  int
	Message string
	// Исходная ошибка транспорта, в текст для пользователя не попадает
	Err error
}

// Error текст для пользователя
func (e *Error) Error() string {
	return e.Message
}

// Unwrap исходная ошибка транспорта
func (e *Error) Unwrap() error {
	return e.Err
}

// Request описание запроса
type Request struct {
	Method string
	URL    string
	// Тело запроса в JSON. Если не nil, выставляется Content-Type: application/json
	Body []byte
}

// ConfigApi конфигурация Api
type ConfigApi struct {
	Log *logrus.Logger
	// Адрес API. Пустой - запросы идут на относительные пути
	Base     string
	Client   *http.Client
	Messages *messages.Table

	Retries           int
	RetryDelay        time.Duration
	GalleryRetryDelay time.Duration
	Timeout           time.Duration
}

// Api клиент API страницы. Инициализируется через NewApi
type Api struct {
	log      *logrus.Entry
	base     string
	client   *http.Client
	messages *messages.Table

	retries           int
	retryDelay        time.Duration
	galleryRetryDelay time.Duration
}

// NewApi конструктор Api
func NewApi(config *ConfigApi) (*Api, error) {
	if config == nil {
		return nil, errors.New("не задана конфигурация config")
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}

	res := &Api{
		log: config.Log.WithFields(map[string]interface{}{
			"module": "api",
			"scope":  "service",
			"base":   config.Base,
		}),
		base:              strings.TrimSuffix(strings.TrimSpace(config.Base), "/"),
		client:            config.Client,
		messages:          config.Messages,
		retries:           Retries,
		retryDelay:        RetryDelay,
		galleryRetryDelay: GalleryRetryDelay,
	}
	if res.messages == nil {
		res.messages = messages.Get(messages.LocaleRu)
	}
	if res.client == nil {
		timeout := RequestTimeout
		if config.Timeout != 0 {
			timeout = config.Timeout
		}
		res.client = &http.Client{Timeout: timeout}
	}
	if config.Retries != 0 {
		res.retries = config.Retries
	}
	if config.RetryDelay != 0 {
		res.retryDelay = config.RetryDelay
	}
	if config.GalleryRetryDelay != 0 {
		res.galleryRetryDelay = config.GalleryRetryDelay
	}

	return res, nil
}

// Base адрес API без завершающего слэша
func (m *Api) Base() string {
	return m.base
}

// Images запрашивает список изображений галереи с повторами
func (m *Api) Images(ctx context.Context) (*model.Response, error) {
	return m.FetchWithRetry(ctx, Request{
		Method: http.MethodGet,
		URL:    tool.JoinURL(m.base, imagesPath),
	}, m.retries, m.galleryRetryDelay)
}

// SendTemperature отправляет замер температуры. Повторов нет
func (m *Api) SendTemperature(ctx context.Context, report model.TemperatureReport) (*model.Response, error) {
	body, err := json.Marshal(&report)
	if err != nil {
		return nil, errors.Annotate(err, "ошибка кодирования замера в JSON")
	}
	return m.FetchJSON(ctx, Request{
		Method: http.MethodPost,
		URL:    tool.JoinURL(m.base, temperaturePath),
		Body:   body,
	})
}

// FetchWithRetry выполняет запрос до retries раз с постоянной паузой delay между
// попытками. После последней попытки пауз нет. При исчерпании попыток возвращается
// ошибка последней из них
func (m *Api) FetchWithRetry(ctx context.Context, req Request, retries int, delay time.Duration) (*model.Response, error) {
	if retries < 1 {
		retries = 1
	}

	var (
		result  *model.Response
		attempt int
	)
	operation := func() error {
		attempt++
		m.log.Debugf("попытка %d из %d: %s %s", attempt, retries, req.Method, req.URL)
		res, err := m.FetchJSON(ctx, req)
		if err != nil {
			return err
		}
		result = res
		return nil
	}
	notify := func(err error, wait time.Duration) {
		m.log.Warnf("попытка %d из %d не удалась: %v (повтор через %s)", attempt, retries, err, wait)
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(retries-1))
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		m.log.Warnf("запрос %s %s не выполнен за %d попыток: %v", req.Method, req.URL, attempt, err)
		return nil, err
	}
	return result, nil
}

// FetchJSON выполняет запрос. JSON ответ разбирается, текстовый возвращается как есть.
// Сбой сети, неуспешный код HTTP или нераспознанный JSON превращаются в *Error с текстом из
// поля message или error ответа, либо с текстом по коду HTTP
func (m *Api) FetchJSON(ctx context.Context, req Request) (*model.Response, error) {
	body := bytes.NewReader(req.Body)
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, errors.Annotate(err, "некорректный запрос")
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := m.client.Do(httpReq)
	if err != nil {
		m.log.Debugf("ошибка транспорта %s %s: %v", method, req.URL, err)
		return nil, &Error{Message: m.messages.NetworkError, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	content, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		m.log.Debugf("ошибка чтения ответа %s %s: %v", method, req.URL, err)
		return nil, &Error{Status: resp.StatusCode, Message: m.messages.NetworkError, Err: err}
	}

	var data json.RawMessage
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") && json.Valid(content) {
		data = content
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Status: resp.StatusCode, Message: m.errorMessage(data, resp.StatusCode)}
	}
	if data == nil && strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return nil, &Error{Status: resp.StatusCode, Message: m.messages.InvalidJSON}
	}
	if data != nil {
		return &model.Response{Status: resp.StatusCode, JSON: data}, nil
	}
	return &model.Response{Status: resp.StatusCode, Text: string(content)}, nil
}

// Текст ошибки из тела ответа или по коду HTTP
func (m *Api) errorMessage(data json.RawMessage, status int) string {
	if data != nil {
		var body struct {
			Message interface{} `json:"message"`
			Error   interface{} `json:"error"`
		}
		if err := json.Unmarshal(data, &body); err == nil {
			for _, v := range []interface{}{body.Message, body.Error} {
				if text := truthyText(v); text != "" {
					return text
				}
			}
		}
	}
	return fmt.Sprintf(m.messages.RequestFailed, status)
}

// Текст значения JSON, если оно непустое
func truthyText(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		if value == 0 {
			return ""
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		if value {
			return "true"
		}
	}
	return ""
}
