package config

import (
	"log"
	"os"
	"sync"

	"github.com/jinzhu/configor"
	"github.com/juju/errors"
)

var (
	config Config
	once   sync.Once
)

const FileName = "config.yaml"

// Get единажды читает и возвращает конфигурацию
func Get() *Config {
	return GetWithPath(FileName)
}

// GetWithPath единожды читает и возвращает конфигурацию
func GetWithPath(filepath string) *Config {
	once.Do(func() {
		cfg, err := Load(filepath)
		if err != nil {
			log.Fatalf("ошибка чтения файла конфигурации %s: %s", filepath, err)
		}
		config = *cfg
	})
	return &config
}

// Load читает конфигурацию из filepath. Отсутствующий файл не ошибка: используются
// значения по умолчанию и переменные окружения
func Load(filepath string) (*Config, error) {
	var cfg Config
	files := make([]string, 0, 1)
	if filepath != "" {
		if _, err := os.Stat(filepath); err == nil {
			files = append(files, filepath)
		} else if !os.IsNotExist(err) {
			return nil, errors.Annotate(err, "файл конфигурации недоступен")
		}
	}
	if err := configor.Load(&cfg, files...); err != nil {
		return nil, errors.Trace(err)
	}
	// Корректировки значений
	cfg.ToMilliseconds()
	return &cfg, nil
}
