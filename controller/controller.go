package controller

import (
	"context"

	"github.com/kirsrus/labsite/model"

	"golang.org/x/net/html"
)

// NotifierCtl показ всплывающих уведомлений страницы
//go:generate mockery --dir . --name NotifierCtl --output ./mocks
type NotifierCtl interface {
	// Показывает уведомление и возвращает его идентификатор. Без контейнера уведомлений - пустая строка
	Show(model.Toast) string
	// Скрывает и удаляет уведомление. Повторный вызов ничего не делает
	Dismiss(id string)
}

// ClickHandler контроллер, реагирующий на щелчки по странице
type ClickHandler interface {
	// Обработка щелчка по узлу target. Вызывается для каждого щелчка на странице
	Click(ctx context.Context, target *html.Node)
}

// KeyHandler контроллер, реагирующий на нажатия клавиш
type KeyHandler interface {
	// Обработка нажатия key (имена клавиш как в KeyboardEvent.key) на элементе target
	Key(key string, target *html.Node)
}
