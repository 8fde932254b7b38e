package validator

import (
	"math"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Число конечно: не NaN и не бесконечность
func validatorFinite(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		value := field.Float()
		return !math.IsNaN(value) && !math.IsInf(value, 0)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// Строка содержит что-то кроме пробелов
func validatorNotBlank(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return strings.TrimSpace(value) != ""
}

// Валидатор корректной ссылки на MQTT брокер
func validatorBroker(fl validator.FieldLevel) bool {
	address, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	addr, err := url.Parse(address)
	if err != nil {
		return false
	}
	switch addr.Scheme {
	case "tcp", "ssl", "ws", "wss", "mqtt", "mqtts":
	default:
		return false
	}
	return addr.Host != ""
}
