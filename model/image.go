package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ImageItem элемент галереи в ответе GET /images
type ImageItem struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// GalleryItem элемент галереи, как его понимает страница. Сервер может прислать
// адрес и подпись под разными именами, а может не прислать вовсе
type GalleryItem struct {
	Source string
	Title  string
	// Идентификатор, если он был в ответе
	ID    string
	HasID bool
}

var (
	sourceKeys = []string{"url", "src", "imageUrl", "image"}
	titleKeys  = []string{"title", "name", "caption"}
)

// ParseGalleryItem разбирает элемент массива галереи. Не объект - пустой элемент
func ParseGalleryItem(raw json.RawMessage) GalleryItem {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return GalleryItem{}
	}
	item := GalleryItem{
		Source: firstText(fields, sourceKeys),
		Title:  firstText(fields, titleKeys),
	}
	if id, ok := fields["id"]; ok && strings.TrimSpace(string(id)) != "null" {
		item.ID = rawText(id)
		item.HasID = true
	}
	return item
}

// Label подпись элемента или fallback с номером позиции (с единицы)
func (m GalleryItem) Label(index int, fallback string) string {
	if m.Title != "" {
		return m.Title
	}
	return fmt.Sprintf(fallback, index+1)
}

// Первое непустое значение из списка ключей
func firstText(fields map[string]json.RawMessage, keys []string) string {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if text := rawText(raw); text != "" {
			return text
		}
	}
	return ""
}

// Текстовое представление JSON значения: строка без кавычек, остальное как есть
func rawText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return ""
	}
	return trimmed
}
