package tool

import "strings"

// JoinURL склеивает адрес API и путь. Завершающий слэш адреса отбрасывается
func JoinURL(base, path string) string {
	base = strings.TrimSuffix(strings.TrimSpace(base), "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
