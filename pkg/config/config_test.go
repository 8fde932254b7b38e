package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("значения по умолчанию без файла", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)

		assert.Equal(t, "ru", cfg.Locale)
		assert.Equal(t, uint(3000), cfg.Http.Port)
		assert.Equal(t, 3, cfg.Api.Retries)
		assert.Equal(t, 550*time.Millisecond, cfg.Api.RetryDelay)
		assert.Equal(t, 650*time.Millisecond, cfg.Api.GalleryRetryDelay)
		assert.Equal(t, 6000*time.Millisecond, cfg.Toast.Display)
		assert.Equal(t, 220*time.Millisecond, cfg.Toast.Remove)
		assert.Empty(t, cfg.Db.Filename)
		assert.Empty(t, cfg.Mqtt.Broker)
	})

	t.Run("порт из окружения", func(t *testing.T) {
		require.NoError(t, os.Setenv("PORT", "8088"))
		defer func() { _ = os.Unsetenv("PORT") }()

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, uint(8088), cfg.Http.Port)
	})

	t.Run("файл конфигурации", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "config.yaml")
		content := "locale: en\nhttp:\n  assetsdir: public\napi:\n  retries: 5\n  retrydelay: 100\n"
		require.NoError(t, ioutil.WriteFile(file, []byte(content), 0o644))

		cfg, err := Load(file)
		require.NoError(t, err)
		assert.Equal(t, "en", cfg.Locale)
		assert.Equal(t, "public", cfg.Http.AssetsDir)
		assert.Equal(t, 5, cfg.Api.Retries)
		assert.Equal(t, 100*time.Millisecond, cfg.Api.RetryDelay)
	})
}
