package validator

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/kirsrus/labsite/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTemperatureRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "корректный", body: `{"room":"101","temperature":22.5}`, wantErr: false},
		{name: "нулевая температура", body: `{"room":"101","temperature":0}`, wantErr: false},
		{name: "пробелы вместо аудитории", body: `{"room":"  ","temperature":20}`, wantErr: true},
		{name: "нет аудитории", body: `{"temperature":20}`, wantErr: true},
		{name: "нет температуры", body: `{"room":"101"}`, wantErr: true},
		{name: "пустой объект", body: `{}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req model.TemperatureRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			err := Get().Validate(&req)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFinite(t *testing.T) {
	room := "101"
	for _, value := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		v := value
		req := model.TemperatureRequest{Room: &room, Temperature: &v}
		assert.Error(t, Get().Validate(&req), "%v", value)
	}
}

func TestValidateBroker(t *testing.T) {
	type broker struct {
		Address string `validate:"broker"`
	}
	assert.NoError(t, Get().Validate(&broker{Address: "tcp://127.0.0.1:1883"}))
	assert.NoError(t, Get().Validate(&broker{Address: "ssl://mqtt.example.org:8883"}))
	assert.Error(t, Get().Validate(&broker{Address: "http://127.0.0.1:1883"}))
	assert.Error(t, Get().Validate(&broker{Address: "tcp://"}))
}

func TestValidateWithConform(t *testing.T) {
	type topic struct {
		Name string `conform:"trim" validate:"required"`
	}
	value := topic{Name: "  labsite/temperature \t"}
	require.NoError(t, Get().ValidateWithConform(&value))
	assert.Equal(t, "labsite/temperature", value.Name)

	blank := topic{Name: "   "}
	assert.Error(t, Get().ValidateWithConform(&blank))
}

func TestField(t *testing.T) {
	name := model.FieldConstraints{Required: true, MinLength: 2, MaxLength: 10, Type: "text"}
	email := model.FieldConstraints{Required: true, Type: "email", MaxLength: 40}
	password := model.FieldConstraints{Required: true, MinLength: 6, Type: "password", Pattern: `[A-Za-z]*\d[A-Za-z\d]*`}
	code := model.FieldConstraints{Pattern: `[0-9]{4}`}

	tests := []struct {
		name        string
		value       string
		constraints model.FieldConstraints
		want        model.Validity
	}{
		{name: "пустое обязательное", value: "", constraints: name, want: model.ValueMissing},
		{name: "короткое", value: "a", constraints: name, want: model.TooShort},
		{name: "длинное", value: "abcdefghijk", constraints: name, want: model.TooLong},
		{name: "корректное имя", value: "Иван", constraints: name, want: model.Valid},
		{name: "не email", value: "ivan", constraints: email, want: model.TypeMismatch},
		{name: "email", value: "ivan@example.org", constraints: email, want: model.Valid},
		{name: "короткое важнее формата", value: "abc", constraints: password, want: model.TooShort},
		{name: "пароль без цифры", value: "abcdefg", constraints: password, want: model.PatternMismatch},
		{name: "пароль с цифрой", value: "abcdef1", constraints: password, want: model.Valid},
		{name: "необязательное пустое", value: "", constraints: code, want: model.Valid},
		{name: "шаблон целиком", value: "12345", constraints: code, want: model.PatternMismatch},
		{name: "шаблон совпал", value: "1234", constraints: code, want: model.Valid},
		{name: "нераспознанный шаблон игнорируется", value: "abc", constraints: model.FieldConstraints{Pattern: `(?=.*\d).+`}, want: model.Valid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Get().Field(tt.value, tt.constraints))
		})
	}
}
