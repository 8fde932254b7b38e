package graph

import (
	"context"
	"io/ioutil"

	"github.com/kirsrus/labsite/model"
	"github.com/kirsrus/labsite/store"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

const maxLimit = 500

// Subscriber источник принятых замеров
type Subscriber interface {
	Subscribe(ctx context.Context) <-chan model.FeedEvent
}

// Resolver резолвер GraphQL. Инициируется NewResolver
type Resolver struct {
	log *logrus.Entry

	journal store.JournalStore
	feed    Subscriber

	maxLimit int
}

// ConfigResolver конфигурация Resolver
type ConfigResolver struct {
	Log *logrus.Logger

	// Журнал замеров. Без журнала temperatures всегда пустой
	Journal store.JournalStore
	// Лента замеров. Без ленты подписка невозможна
	Feed Subscriber

	// Наибольший limit запроса temperatures
	MaxLimit int
}

// NewResolver конструктор Resolver
func NewResolver(config *ConfigResolver) (*Resolver, error) {
	if config == nil {
		return nil, errors.New("конфигурация не передана")
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}

	resolver := Resolver{
		log: config.Log.WithFields(map[string]interface{}{
			"module": "graphql",
			"scope":  "service",
		}),
		journal:  config.Journal,
		feed:     config.Feed,
		maxLimit: maxLimit,
	}
	if config.MaxLimit != 0 {
		resolver.maxLimit = config.MaxLimit
	}

	return &resolver, nil
}

// Temperatures последние limit замеров журнала. limit больше наибольшего урезается
func (r *Resolver) Temperatures(ctx context.Context, limit int) ([]model.JournalEntry, error) {
	_ = ctx
	if limit <= 0 {
		return nil, errors.NotValidf("limit %d", limit)
	}
	if limit > r.maxLimit {
		limit = r.maxLimit
	}
	if r.journal == nil {
		return make([]model.JournalEntry, 0), nil
	}
	entries, err := r.journal.Last(limit)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return entries, nil
}

// TemperatureAccepted подписка на принятые замеры до завершения ctx
func (r *Resolver) TemperatureAccepted(ctx context.Context) (<-chan model.FeedEvent, error) {
	if r.feed == nil {
		return nil, errors.New("лента замеров не подключена")
	}
	r.log.Debug("новая подписка temperatureAccepted")
	return r.feed.Subscribe(ctx), nil
}
