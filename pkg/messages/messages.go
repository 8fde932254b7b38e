// Package messages таблицы текстов интерфейса. Язык выбирается конфигурацией,
// контроллеры берут все строки отсюда.
package messages

import "strings"

const (
	LocaleRu = "ru"
	LocaleEn = "en"
)

// Table тексты интерфейса для одного языка
type Table struct {
	// Заголовки уведомлений по умолчанию
	ToastError   string
	ToastMessage string
	Close        string

	// Клиент API
	RequestFailed string // шаблон с кодом HTTP
	InvalidJSON   string
	NetworkError  string
	UnknownError  string

	// Галерея
	GalleryFailed string
	NotArray      string
	ImageFallback string // шаблон с номером изображения
	ImageID       string // шаблон с идентификатором

	// Форма температуры
	CheckForm        string
	EnterRoom        string
	EnterTemperature string
	Done             string
	SentOK           string
	SendFailed       string

	// Сервер
	InvalidReport  string
	ReportAccepted string // шаблон с аудиторией и температурой

	// Причины невалидности поля формы регистрации
	ValueMissing    string
	TooShort        string
	TooLong         string
	TypeMismatch    string
	PatternMismatch string
	InvalidField    string

	// Демонстрационная форма выбора кошелька
	WalletSelected string // шаблон с кошельком
	WalletMissing  string
}

var ru = Table{
	ToastError:   "Ошибка",
	ToastMessage: "Сообщение",
	Close:        "Закрыть",

	RequestFailed: "Запрос не выполнен (HTTP %d)",
	InvalidJSON:   "Сервер вернул некорректный JSON.",
	NetworkError:  "Сеть недоступна",
	UnknownError:  "Неизвестная ошибка",

	GalleryFailed: "Не удалось загрузить галерею",
	NotArray:      "Сервер вернул данные не в формате массива.",
	ImageFallback: "Изображение %d",
	ImageID:       "ID: %s",

	CheckForm:        "Проверьте форму",
	EnterRoom:        "Введите номер аудитории.",
	EnterTemperature: "Введите температуру числом.",
	Done:             "Готово",
	SentOK:           "Данные успешно отправлены.",
	SendFailed:       "Ошибка отправки",

	InvalidReport:  "Неверные данные. Ожидается JSON: { room: string, temperature: number }",
	ReportAccepted: "Принято: аудитория %s, температура %s",

	ValueMissing:    "Заполните это поле.",
	TooShort:        "Слишком короткое значение.",
	TooLong:         "Слишком длинное значение.",
	TypeMismatch:    "Введите корректный адрес электронной почты.",
	PatternMismatch: "Значение не соответствует формату.",
	InvalidField:    "Проверьте значение поля.",

	WalletSelected: "Выбран кошелёк: %s. (Демо) Отправка формы в этой работе не выполняется.",
	WalletMissing:  "Выберите кошелёк.",
}

var en = Table{
	ToastError:   "Error",
	ToastMessage: "Message",
	Close:        "Close",

	RequestFailed: "Request failed (HTTP %d)",
	InvalidJSON:   "The server returned malformed JSON.",
	NetworkError:  "Network is unavailable",
	UnknownError:  "Unknown error",

	GalleryFailed: "Could not load the gallery",
	NotArray:      "The server did not return an array.",
	ImageFallback: "Image %d",
	ImageID:       "ID: %s",

	CheckForm:        "Check the form",
	EnterRoom:        "Enter the room number.",
	EnterTemperature: "Enter the temperature as a number.",
	Done:             "Done",
	SentOK:           "Data sent successfully.",
	SendFailed:       "Sending failed",

	InvalidReport:  "Invalid data. Expected JSON: { room: string, temperature: number }",
	ReportAccepted: "Accepted: room %s, temperature %s",

	ValueMissing:    "Please fill out this field.",
	TooShort:        "The value is too short.",
	TooLong:         "The value is too long.",
	TypeMismatch:    "Please enter a valid email address.",
	PatternMismatch: "Please match the requested format.",
	InvalidField:    "Please check this field.",

	WalletSelected: "Selected wallet: %s. (Demo) Form submission is not enabled in this lab.",
	WalletMissing:  "Please select a wallet.",
}

// Get возвращает таблицу для locale. Неизвестный язык - русская таблица
func Get(locale string) *Table {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case LocaleEn:
		t := en
		return &t
	default:
		t := ru
		return &t
	}
}
