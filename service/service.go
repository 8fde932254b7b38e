package service

import (
	"context"
	"net/http"

	"github.com/kirsrus/labsite/model"
)

// WebSvc сервис WEB-сервера сайта и API
//go:generate mockery --dir . --name WebSvc --output ./mocks
type WebSvc interface {
	// Статические файлы сайта
	Static(string)
	// Корневая страница сайта
	Index(string)
	// Список изображений галереи
	Images(string)
	// Отдача локального изображения галереи. Имя файла ищется в параметре :name
	Image(string)
	// Приём замера температуры и журнал принятых замеров
	Temperature(string)
	// Метрики prometheus
	Metrics(string)
	// WebSocket лента принятых замеров
	Feed(string)
	// GraphQL журнал и подписка на принятые замеры
	GraphQL(string)
	// Запуск сервера до завершения ctx
	Serve(ctx context.Context) error
}

// ApiSvc клиент API, которым пользуется страница
//go:generate mockery --dir . --name ApiSvc --output ./mocks
type ApiSvc interface {
	// Запрашивает список изображений галереи с повторами
	Images(ctx context.Context) (*model.Response, error)
	// Отправляет замер температуры (одна попытка)
	SendTemperature(ctx context.Context, report model.TemperatureReport) (*model.Response, error)
}

// FeedSvc рассылка событий подписчикам WebSocket
//go:generate mockery --dir . --name FeedSvc --output ./mocks
type FeedSvc interface {
	// Отправляет событие всем подписчикам
	Broadcast(model.FeedEvent)
	// Канал событий до завершения ctx
	Subscribe(ctx context.Context) <-chan model.FeedEvent
	// Подключение подписчика по WebSocket
	http.Handler
}

// PublisherSvc публикация событий во внешнюю шину
//go:generate mockery --dir . --name PublisherSvc --output ./mocks
type PublisherSvc interface {
	// Публикует событие
	Publish(model.FeedEvent) error
	// Закрывает подключение
	Close()
}
