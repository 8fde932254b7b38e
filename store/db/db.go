package db

import (
	"context"
	"io/ioutil"
	"time"

	"github.com/kirsrus/labsite/model"
	"github.com/kirsrus/labsite/pkg/tool"
	"github.com/kirsrus/labsite/pkg/validator"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const (
	// Максимальное колличество записей в выдаче Last
	maxLast = 1000
)

// Db журнал принятых замеров в SQLite. Инициируется через NewDb
type Db struct {
	ctx       context.Context
	log       *logrus.Entry
	db        *gorm.DB
	validator *validator.Validator
	now       func() time.Time
}

// ConfigDb конфигурацияи класса NewDb
type ConfigDb struct {
	Log    *logrus.Logger
	DbFile string
}

// NewDb конструктор класса Db
func NewDb(ctx context.Context, config *ConfigDb) (*Db, error) {
	if config == nil {
		return nil, errors.New("не указана конфигурация")
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}
	if config.DbFile == "" {
		return nil, errors.New("в конфигурации не указан файл базы данных")
	}

	// Подключаемся к БД и запускаем миграции
	conn, err := gorm.Open(sqlite.Open(config.DbFile), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, errors.Annotate(err, "ошибка подключения к файлу БД")
	}
	if err = conn.AutoMigrate(Temperature{}); err != nil {
		return nil, errors.Annotate(err, "ошибка миграции БД")
	}

	db := Db{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module": "db",
			"scope":  "store",
		}),
		validator: validator.Get(),
		db:        conn,
		now:       time.Now,
	}

	return &db, nil
}

// Save сохраняет принятый замер
func (m Db) Save(report model.TemperatureReport) (*model.JournalEntry, error) {
	if report.Room == "" {
		return nil, errors.New("не указана аудитория")
	}
	if err := m.validator.Var(report.Temperature, "finite"); err != nil {
		return nil, errors.Annotate(err, "некорректная температура")
	}

	var row Temperature
	row.FromReport(report)
	if err := m.db.WithContext(m.ctx).Create(&row).Error; err != nil {
		return nil, errors.Annotate(err, "ошибка добавления в БД")
	}
	m.log.Debugf("в журнал записан замер %s: %s", row.Room, report.TemperatureText())

	entry := row.ToEntry()
	return &entry, nil
}

// Last последние limit замеров, новые первыми
func (m Db) Last(limit int) ([]model.JournalEntry, error) {
	if limit <= 0 || limit > maxLast {
		limit = maxLast
	}
	rows := make([]Temperature, 0)
	if err := m.db.WithContext(m.ctx).Order("id desc").Limit(limit).Find(&rows).Error; err != nil {
		m.log.Error(err)
		return nil, errors.Trace(err)
	}
	res := make([]model.JournalEntry, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.ToEntry())
	}
	return res, nil
}

// Clean очищает записи старше days дней (считая от начала текущего дня)
func (m Db) Clean(days int) error {
	if days < 0 {
		return errors.Errorf("некорректное колличество дней: %d", days)
	}
	limit := tool.DaysAgo(m.now(), days)
	res := m.db.WithContext(m.ctx).Where("created_at < ?", limit).Delete(&Temperature{})
	if res.Error != nil {
		return errors.Annotate(res.Error, "ошибка очистки журнала")
	}
	if res.RowsAffected != 0 {
		m.log.Infof("из журнала удалено %d записей старше %s", res.RowsAffected, limit.Format("2006.01.02"))
	}
	return nil
}

// Close закрывает подключение к БД
func (m Db) Close() error {
	sqlDb, err := m.db.DB()
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(sqlDb.Close())
}
