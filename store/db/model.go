package db

import (
	"time"

	"github.com/kirsrus/labsite/model"
)

type (
	// GormModelUnscoped модель эквивалент gorm.Model без сохранения удалений
	GormModelUnscoped struct {
		ID        int `gorm:"primaryKey"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}
)

type (
	// Temperature принятый замер температуры
	Temperature struct {
		GormModelUnscoped
		Room        string `gorm:"index"`
		Temperature float64
	}
)

// TableName имя таблицы
func (Temperature) TableName() string {
	return "temperature_log"
}

// FromReport заполняет текущую структуру из model.TemperatureReport
func (m *Temperature) FromReport(report model.TemperatureReport) {
	*m = Temperature{
		Room:        report.Room,
		Temperature: report.Temperature,
	}
}

// ToEntry маппинг данных в структуру model.JournalEntry
func (m Temperature) ToEntry() model.JournalEntry {
	return model.JournalEntry{
		ID:          uint(m.ID),
		CreatedAt:   m.CreatedAt,
		Room:        m.Room,
		Temperature: m.Temperature,
	}
}
