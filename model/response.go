package model

import "encoding/json"

// Response успешный ответ API
type Response struct {
	Status int
	// Тело ответа, если сервер прислал JSON
	JSON json.RawMessage
	// Тело ответа, если это не JSON
	Text string
}

// IsJSON ответ разобран как JSON
func (m Response) IsJSON() bool {
	return m.JSON != nil
}
