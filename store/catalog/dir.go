package catalog

import (
	"context"
	"io/ioutil"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kirsrus/labsite/model"

	"github.com/fsnotify/fsnotify"
	"github.com/gabriel-vasile/mimetype"
	"github.com/juju/errors"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const (
	cacheExpiration      = 5 * time.Minute  // Время жизни списка изображений в кэше
	cacheCleanupInterval = 10 * time.Minute // Интервал очистки мёртвых записей
	imagesKey            = "images"
	// Префикс адреса локального изображения на сервере
	URLPrefix = "/image/"
)

// Dir каталог изображений из файлов директории. Список кэшируется и сбрасывается
// при изменениях в директории. Инициализируется через NewDir
type Dir struct {
	ctx     context.Context
	log     *logrus.Entry
	dir     string
	prefix  string
	cache   *cache.Cache
	watcher *fsnotify.Watcher
}

// ConfigDir конфигурация Dir
type ConfigDir struct {
	Log *logrus.Logger
	// Директория с изображениями
	Dir string
	// Префикс адреса изображения, по умолчанию URLPrefix
	URLPrefix       string
	CacheExpiration time.Duration
}

// NewDir конструктор Dir. Наблюдение за директорией прекращается с завершением ctx
func NewDir(ctx context.Context, config *ConfigDir) (*Dir, error) {
	if config == nil {
		return nil, errors.New("не задана конфигурация config")
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}
	info, err := os.Stat(config.Dir)
	if err != nil {
		return nil, errors.Annotatef(err, "директория изображений %s недоступна", config.Dir)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%s не директория", config.Dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Annotate(err, "ошибка создания наблюдателя за директорией")
	}
	if err = watcher.Add(config.Dir); err != nil {
		_ = watcher.Close()
		return nil, errors.Annotatef(err, "ошибка наблюдения за %s", config.Dir)
	}

	expiration := cacheExpiration
	if config.CacheExpiration != 0 {
		expiration = config.CacheExpiration
	}
	res := &Dir{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module": "catalog",
			"scope":  "store",
			"dir":    config.Dir,
		}),
		dir:     config.Dir,
		prefix:  URLPrefix,
		cache:   cache.New(expiration, cacheCleanupInterval),
		watcher: watcher,
	}
	if config.URLPrefix != "" {
		res.prefix = config.URLPrefix
	}

	go res.loop()

	return res, nil
}

// Отслеживание изменений в директории
func (m *Dir) loop() {
	m.log.Info("старт наблюдения за директорией")
	defer func() { _ = m.watcher.Close() }()
	for {
		select {
		case <-m.ctx.Done():
			m.log.Info("завершение наблюдения за директорией")
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			m.log.Debugf("изменение в директории: %s", event)
			m.cache.Delete(imagesKey)
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.log.Warnf("ошибка наблюдения за директорией: %v", err)
		}
	}
}

// Images список изображений директории в порядке имён файлов
func (m *Dir) Images() ([]model.ImageItem, error) {
	if value, found := m.cache.Get(imagesKey); found {
		items := value.([]model.ImageItem)
		res := make([]model.ImageItem, len(items))
		copy(res, items)
		return res, nil
	}

	files, err := ioutil.ReadDir(m.dir)
	if err != nil {
		return nil, errors.Annotatef(err, "ошибка чтения директории %s", m.dir)
	}
	items := make([]model.ImageItem, 0, len(files))
	for _, file := range files {
		if !file.Mode().IsRegular() || strings.HasPrefix(file.Name(), ".") {
			continue
		}
		mime, err := mimetype.DetectFile(filepath.Join(m.dir, file.Name()))
		if err != nil {
			m.log.Warnf("не удалось определить тип файла %s: %v", file.Name(), err)
			continue
		}
		if !strings.HasPrefix(mime.String(), "image/") {
			continue
		}
		items = append(items, model.ImageItem{
			URL:   m.prefix + url.PathEscape(file.Name()),
			Title: strings.TrimSuffix(file.Name(), filepath.Ext(file.Name())),
		})
	}
	m.cache.SetDefault(imagesKey, items)
	m.log.Debugf("в директории найдено %d изображений", len(items))

	res := make([]model.ImageItem, len(items))
	copy(res, items)
	return res, nil
}

// Image содержимое изображения по имени файла
func (m *Dir) Image(name string) ([]byte, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, errors.NotFoundf("изображение %q", name)
	}
	content, err := ioutil.ReadFile(filepath.Join(m.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("изображение %q", name)
		}
		return nil, errors.Annotatef(err, "ошибка чтения %s", name)
	}
	if !strings.HasPrefix(mimetype.Detect(content).String(), "image/") {
		return nil, errors.NotFoundf("изображение %q", name)
	}
	return content, nil
}

// IsNotFound проверяет, что ошибка err обозначает отсутствие изображения
func (m *Dir) IsNotFound(err error) bool {
	return errors.IsNotFound(err)
}
