package feed

import (
	"context"
	"io/ioutil"
	"net/http"
	"sync"
	"time"

	"github.com/kirsrus/labsite/model"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

const (
	// Каждые 10 секунд подавать в канал ping, иначе клиент его закроет
	pingInterval   = 10 * time.Second
	writeTimeout   = 5 * time.Second
	subscriberChan = 16
)

// Feed рассылка принятых замеров подписчикам WebSocket. Инициируется через NewFeed
type Feed struct {
	ctx context.Context
	log *logrus.Entry

	upgrader     websocket.Upgrader
	pingInterval time.Duration
	// id подписчика -> chan model.FeedEvent
	subscribers *sync.Map
}

// ConfigFeed конфигурация Feed
type ConfigFeed struct {
	Log          *logrus.Logger
	PingInterval time.Duration
}

// NewFeed конструктор Feed
func NewFeed(ctx context.Context, config *ConfigFeed) (*Feed, error) {
	if config == nil {
		return nil, errors.New("не задана конфигурация config")
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}

	feed := Feed{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module": "feed",
			"scope":  "service",
		}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		pingInterval: pingInterval,
		subscribers:  new(sync.Map),
	}
	if config.PingInterval != 0 {
		feed.pingInterval = config.PingInterval
	}

	return &feed, nil
}

// Broadcast отправляет событие всем подписчикам. Переполненный канал подписчика пропускается
func (m *Feed) Broadcast(event model.FeedEvent) {
	m.subscribers.Range(func(key, value interface{}) bool {
		ch, ok := value.(chan model.FeedEvent)
		if !ok {
			m.log.Errorf("в пуле подписчиков неожиданный тип данных: %T", value)
			return true
		}
		select {
		case ch <- event:
		default:
			m.log.Warnf("канал подписчика %s переполнен", key)
		}
		return true
	})
}

// Subscribe подписка на события до завершения ctx. Канал не закрывается
func (m *Feed) Subscribe(ctx context.Context) <-chan model.FeedEvent {
	id := uuid.New().String()
	ch := make(chan model.FeedEvent, subscriberChan)
	m.subscribers.Store(id, ch)
	m.log.Debugf("добавлен подписчик %s", id)
	go func() {
		<-ctx.Done()
		m.subscribers.Delete(id)
		m.log.Debugf("удалён подписчик %s", id)
	}()
	return ch
}

// Count колличество подключённых подписчиков
func (m *Feed) Count() int {
	count := 0
	m.subscribers.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}

// ServeHTTP подключение подписчика по WebSocket. Блокируется до отключения клиента
func (m *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Warnf("ошибка перехода на WebSocket: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	id := uuid.New().String()
	ch := make(chan model.FeedEvent, subscriberChan)
	m.subscribers.Store(id, ch)
	defer m.subscribers.Delete(id)

	log := m.log.WithField("subscriber", id)
	log.Debugf("подписчик подключён: %s", r.RemoteAddr)
	defer log.Debug("подписчик отключён")

	// Читаем из канала только для обработки close и pong
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(m.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeTimeout))
			return
		case <-closed:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				log.Debugf("ошибка отправки ping: %v", err)
				return
			}
		case event := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(event); err != nil {
				log.Warnf("ошибка отправки события: %v", err)
				return
			}
		}
	}
}
