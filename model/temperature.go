package model

import (
	"strconv"
	"strings"
	"time"
)

// TemperatureRequest тело запроса POST /temperature в том виде, как его прислал клиент.
// Указатели позволяют отличить отсутствующее поле от нулевого значения
type TemperatureRequest struct {
	Room        *string  `json:"room" validate:"required,notblank"`
	Temperature *float64 `json:"temperature" validate:"required,finite"`
}

// Report проверенный замер. Вызывать только после валидации
func (m TemperatureRequest) Report() TemperatureReport {
	return TemperatureReport{
		Room:        strings.TrimSpace(*m.Room),
		Temperature: *m.Temperature,
	}
}

// TemperatureReport замер температуры в аудитории
type TemperatureReport struct {
	Room        string  `json:"room"`
	Temperature float64 `json:"temperature"`
}

// TemperatureText температура в том виде, как её печатает страница: 22.5, 20, -3.25
func (m TemperatureReport) TemperatureText() string {
	return FormatTemperature(m.Temperature)
}

// FormatTemperature короткая запись числа без лишних нулей
func FormatTemperature(temperature float64) string {
	return strconv.FormatFloat(temperature, 'f', -1, 64)
}

// Message ответ сервера с текстом для пользователя
type Message struct {
	Message string `json:"message"`
	// Альтернативное поле ответа, которое понимает страница
	Result string `json:"result,omitempty"`
}

// Text текст ответа: message, если пусто - result
func (m Message) Text() string {
	if m.Message != "" {
		return m.Message
	}
	return m.Result
}

// JournalEntry запись журнала принятых замеров
type JournalEntry struct {
	ID          uint      `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Room        string    `json:"room"`
	Temperature float64   `json:"temperature"`
}

// FeedEvent событие о принятом замере для подписчиков WebSocket и MQTT
type FeedEvent struct {
	Kind        string    `json:"kind"`
	Room        string    `json:"room"`
	Temperature float64   `json:"temperature"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

// FeedKindTemperature тип события о замере температуры
const FeedKindTemperature = "temperature"
