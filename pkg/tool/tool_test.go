package tool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    float64
		wantErr bool
	}{
		{name: "дробное", value: "22.5", want: 22.5},
		{name: "с пробелами", value: " -3 ", want: -3},
		{name: "экспонента", value: "1e2", want: 100},
		{name: "пусто", value: "", wantErr: true},
		{name: "пробелы", value: "   ", wantErr: true},
		{name: "текст", value: "тепло", wantErr: true},
		{name: "NaN", value: "NaN", wantErr: true},
		{name: "бесконечность", value: "Inf", wantErr: true},
		{name: "переполнение", value: "1e400", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNumber(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseNumber() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "/images", JoinURL("", "/images"))
	assert.Equal(t, "http://api.local/images", JoinURL("http://api.local/", "images"))
	assert.Equal(t, "http://api.local/v1/temperature", JoinURL("http://api.local/v1", "/temperature"))
}

func TestDaysAgo(t *testing.T) {
	now := time.Date(2026, 10, 17, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), DaysAgo(now, 3))
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), DaysAgo(now, 0))
}
