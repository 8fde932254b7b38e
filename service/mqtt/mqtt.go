package mqtt

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"time"

	"github.com/kirsrus/labsite/model"
	"github.com/kirsrus/labsite/pkg/validator"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

const (
	publishTimeout = 2 * time.Second
	// Время на отправку неотправленных сообщений при отключении, мс
	disconnectQuiesce = 250
	qosAtMostOnce     = 0
	// Брокер для проверки конфигурации, когда клиент передан готовым
	placeholderBroker = "tcp://localhost:1883"
)

// Client часть клиента paho, которой пользуется Mqtt
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// Mqtt публикация принятых замеров в MQTT брокер. Инициируется через NewMqtt
type Mqtt struct {
	ctx    context.Context
	log    *logrus.Entry
	client Client

	topic          string
	publishTimeout time.Duration
}

// ConfigMqtt конфигурация Mqtt
type ConfigMqtt struct {
	Log *logrus.Logger

	// Адрес брокера: tcp://host:1883
	Broker   string
	Topic    string
	ClientID string

	PublishTimeout time.Duration
	// Готовый клиент. Если не задан, создаётся клиент paho для Broker
	Client Client
}

// Адрес подключения из конфигурации
type target struct {
	Broker   string `conform:"trim" validate:"required,broker"`
	Topic    string `conform:"trim" validate:"required"`
	ClientID string `conform:"trim"`
}

// NewMqtt конструктор Mqtt. Подключение к брокеру идёт в фоне с повторами
func NewMqtt(ctx context.Context, config *ConfigMqtt) (*Mqtt, error) {
	if config == nil {
		return nil, errors.New("не задана конфигурация config")
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}
	addr := target{Broker: config.Broker, Topic: config.Topic, ClientID: config.ClientID}
	if config.Client != nil && addr.Broker == "" {
		addr.Broker = placeholderBroker
	}
	if err := validator.Get().ValidateWithConform(&addr); err != nil {
		return nil, errors.Annotate(err, "некорректная конфигурация MQTT")
	}

	res := Mqtt{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module": "mqtt",
			"scope":  "service",
			"topic":  addr.Topic,
		}),
		client:         config.Client,
		topic:          addr.Topic,
		publishTimeout: publishTimeout,
	}
	if config.PublishTimeout != 0 {
		res.publishTimeout = config.PublishTimeout
	}

	if res.client == nil {
		res.client = res.connect(addr.Broker, addr.ClientID)
	}

	go func() {
		<-ctx.Done()
		res.Close()
	}()

	return &res, nil
}

// Создание клиента paho и фоновое подключение к брокеру
func (m *Mqtt) connect(broker, clientID string) paho.Client {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(paho.Client) {
			m.log.Infof("подключение к брокеру %s установлено", broker)
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			m.log.Warnf("потеряно подключение к брокеру: %v", err)
		})

	client := paho.NewClient(opts)
	token := client.Connect()
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			m.log.Errorf("ошибка подключения к брокеру %s: %v", broker, err)
		}
	}()
	return client
}

// Publish публикует событие в топик в формате JSON
func (m *Mqtt) Publish(event model.FeedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Trace(err)
	}

	token := m.client.Publish(m.topic, qosAtMostOnce, false, payload)
	if !token.WaitTimeout(m.publishTimeout) {
		return errors.Errorf("истекло время публикации в топик %s", m.topic)
	}
	if err := token.Error(); err != nil {
		return errors.Annotatef(err, "ошибка публикации в топик %s", m.topic)
	}
	m.log.Debugf("опубликован замер %s: %s", event.Room, model.FormatTemperature(event.Temperature))
	return nil
}

// Close отключение от брокера
func (m *Mqtt) Close() {
	m.client.Disconnect(disconnectQuiesce)
}
