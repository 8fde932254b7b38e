package main

import (
	"bytes"
	"io/ioutil"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kirsrus/labsite/model"
	"github.com/kirsrus/labsite/service/web"
	"github.com/kirsrus/labsite/store"
	"github.com/kirsrus/labsite/store/catalog"

	"github.com/juju/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Каталог, который всегда отвечает ошибкой
type brokenCatalog struct {
	calls int32
}

func (m *brokenCatalog) Images() ([]model.ImageItem, error) {
	atomic.AddInt32(&m.calls, 1)
	return nil, errors.New("сервер упал")
}

func (m *brokenCatalog) Image(string) ([]byte, error) {
	return nil, errors.NotFoundf("изображение")
}

func (m *brokenCatalog) IsNotFound(err error) bool {
	return errors.IsNotFound(err)
}

// Сайт со страницей из assets
func newTestSite(t *testing.T) string {
	t.Helper()
	return newTestSiteWith(t, catalog.NewStatic(nil))
}

func newTestSiteWith(t *testing.T, images store.CatalogStore) string {
	t.Helper()
	srv, err := web.NewWeb(images, &web.ConfigWeb{AssetsDir: "../../assets"})
	require.NoError(t, err)
	srv.Index("/")
	srv.Images("/images")
	srv.Temperature("/temperature")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLabctl(t *testing.T) {
	base := newTestSite(t)

	tests := []struct {
		name     string
		args     []string
		contains []string
		lines    int
	}{
		{
			name:     "галерея",
			args:     []string{"gallery", "--base", base},
			contains: []string{"https://picsum.photos/800/600?random=1", "Изображение 8"},
			lines:    8,
		},
		{
			name:     "замер принят",
			args:     []string{"temperature", "--base", base, "--room", "101", "--value", "22.5"},
			contains: []string{"[success] Готово: Принято: аудитория 101, температура 22.5"},
			lines:    1,
		},
		{
			name:     "замер без аудитории",
			args:     []string{"temperature", "--base", base, "--value", "22"},
			contains: []string{"[error] Проверьте форму: Введите номер аудитории."},
			lines:    1,
		},
		{
			name:     "регистрация с ошибками",
			args:     []string{"register", "--base", base, "--name", "А", "--email", "anna"},
			contains: []string{"name: Слишком короткое значение.", "password: Заполните это поле."},
			lines:    3,
		},
		{
			name:     "регистрация заполнена",
			args:     []string{"register", "--base", base, "--name", "Анна", "--email", "anna@example.com", "--password", "secret123"},
			contains: []string{"регистрация заполнена"},
			lines:    1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), tt.lines)
		})
	}
}

func TestLabctlPageFile(t *testing.T) {
	base := newTestSite(t)
	out, err := execute(t, "gallery", "--base", base, "--page", "../../assets/index.html", "--html")
	require.NoError(t, err)
	assert.Contains(t, out, `class="gallery-card"`)
}

func TestLabctlNoPage(t *testing.T) {
	base := newTestSite(t)
	_, err := execute(t, "gallery", "--base", base, "--page", "/absent.html")
	assert.Error(t, err)
}

// Файл конфигурации labctl во временной директории
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labctl.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLabctlGalleryFailed(t *testing.T) {
	tests := []struct {
		name   string
		config string
		calls  int32
		locale string
		toast  string
	}{
		{
			name:   "попытки из конфигурации",
			config: `{"Api":{"Retries":2,"RetryDelay":1,"GalleryRetryDelay":1}}`,
			calls:  2,
			toast:  "[error] Не удалось загрузить галерею: сервер упал",
		},
		{
			name:   "одна попытка",
			config: `{"Api":{"Retries":1,"GalleryRetryDelay":1}}`,
			calls:  1,
			toast:  "[error] Не удалось загрузить галерею: сервер упал",
		},
		{
			name:   "язык из конфигурации",
			config: `{"Locale":"en","Api":{"Retries":1,"GalleryRetryDelay":1}}`,
			calls:  1,
			toast:  "[error] Could not load the gallery: сервер упал",
		},
		{
			name:   "язык из флага важнее конфигурации",
			config: `{"Locale":"en","Api":{"Retries":1,"GalleryRetryDelay":1}}`,
			calls:  1,
			locale: "ru",
			toast:  "[error] Не удалось загрузить галерею: сервер упал",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broken := &brokenCatalog{}
			base := newTestSiteWith(t, broken)
			args := []string{"gallery", "--base", base, "--config", writeConfig(t, tt.config)}
			if tt.locale != "" {
				args = append(args, "--locale", tt.locale)
			}

			out, err := execute(t, args...)
			assert.Error(t, err)
			assert.Contains(t, out, tt.toast)
			assert.Equal(t, tt.calls, atomic.LoadInt32(&broken.calls))
		})
	}
}

func TestLabctlApiBaseFromConfig(t *testing.T) {
	site := newTestSite(t)
	broken := &brokenCatalog{}
	api := newTestSiteWith(t, broken)

	// Страница с сайта site, API из конфигурации
	out, err := execute(t, "gallery", "--base", site, "--config",
		writeConfig(t, `{"Api":{"Base":"`+api+`/","Retries":1}}`))
	assert.Error(t, err)
	assert.Contains(t, out, "[error] Не удалось загрузить галерею: сервер упал")
	assert.Equal(t, int32(1), atomic.LoadInt32(&broken.calls))
}
