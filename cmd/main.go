package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/kirsrus/labsite/pkg/config"
	"github.com/kirsrus/labsite/pkg/logger"
	"github.com/kirsrus/labsite/pkg/messages"
	"github.com/kirsrus/labsite/service"
	feedSvcMod "github.com/kirsrus/labsite/service/feed"
	mqttSvcMod "github.com/kirsrus/labsite/service/mqtt"
	webSvcMod "github.com/kirsrus/labsite/service/web"
	"github.com/kirsrus/labsite/store"
	catalogStoreMod "github.com/kirsrus/labsite/store/catalog"
	dbStoreMod "github.com/kirsrus/labsite/store/db"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	cfg *config.Config
	log *logrus.Logger
)

func init() {
	cfg = config.Get()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.WarnLevel
	}
	log = logger.GetWithConfig(logger.Config{
		File:    logger.FilePath(cfg.Log.Path, cfg.Log.Filename),
		Level:   level,
		Console: cfg.Log.Console,
	})
}

func main() {

	err := run()
	if err != nil {
		fmt.Printf("ОШИБКА: в процессе работы произошла ошибка: %v\n", err)
		fmt.Printf("Для подробностей смотри лог: %s\n", logger.FilePath(cfg.Log.Path, cfg.Log.Filename))
		log.Fatal(errors.ErrorStack(err))
	}
}

func run() error {
	// Отлавливаем сигнал завершения работы программы
	chanInterrupt := make(chan os.Signal, 1)
	signal.Notify(chanInterrupt, os.Interrupt)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msg := messages.Get(cfg.Locale)

	// region Каталог изображений

	var catalog store.CatalogStore = catalogStoreMod.NewStatic(&catalogStoreMod.ConfigStatic{Messages: msg})
	if cfg.Http.ImagesDir != "" {
		dir, err := catalogStoreMod.NewDir(ctx, &catalogStoreMod.ConfigDir{
			Log: log,
			Dir: cfg.Http.ImagesDir,
		})
		if err != nil {
			return errors.Trace(err)
		}
		catalog = dir
	}

	// endregion
	// region Журнал замеров

	var (
		journal   store.JournalStore
		dbStore   *dbStoreMod.Db
		publisher service.PublisherSvc
	)
	if cfg.Db.Filename != "" {
		var err error
		dbStore, err = dbStoreMod.NewDb(ctx, &dbStoreMod.ConfigDb{
			Log:    log,
			DbFile: cfg.Db.Filename,
		})
		if err != nil {
			return errors.Trace(err)
		}
		defer func() { _ = dbStore.Close() }()
		journal = dbStore
	}

	// endregion
	// region Лента и MQTT

	feedSvc, err := feedSvcMod.NewFeed(ctx, &feedSvcMod.ConfigFeed{Log: log})
	if err != nil {
		return errors.Trace(err)
	}

	if cfg.Mqtt.Broker != "" {
		mqttSvc, err := mqttSvcMod.NewMqtt(ctx, &mqttSvcMod.ConfigMqtt{
			Log:      log,
			Broker:   cfg.Mqtt.Broker,
			Topic:    cfg.Mqtt.Topic,
			ClientID: cfg.Mqtt.ClientID,
		})
		if err != nil {
			return errors.Trace(err)
		}
		publisher = mqttSvc
	}

	// endregion
	// region Контроллер WEB

	webSvc, err := webSvcMod.NewWeb(catalog, &webSvcMod.ConfigWeb{
		Log:       log,
		Messages:  msg,
		WebPort:   cfg.Http.Port,
		AssetsDir: cfg.Http.AssetsDir,
		Index:     cfg.Http.Index,
		Journal:   journal,
		Feed:      feedSvc,
		Publisher: publisher,
	})
	if err != nil {
		return errors.Trace(err)
	}

	webSvc.Index("/")
	webSvc.Static("/")
	webSvc.Images("/images")
	webSvc.Image("/image/:name")
	webSvc.Temperature("/temperature")
	webSvc.Metrics("/metrics")
	webSvc.Feed("/feed")
	webSvc.GraphQL("/graphql")

	// endregion

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return webSvc.Serve(groupCtx)
	})
	if journal != nil {
		group.Go(func() error {
			return cleanJournal(groupCtx, journal, cfg.Db.ArchiveDays, time.Minute*time.Duration(cfg.Db.CleanInterval))
		})
	}

	// Процесс завершения работы
	go func() {
		select {
		case <-chanInterrupt:
			log.Info("получена по каналу interrupt команда на завершение работы программы")
			cancel()
		case <-groupCtx.Done():
		}
	}()

	return errors.Trace(group.Wait())
}

// Периодическая очистка журнала от записей старше days дней
func cleanJournal(ctx context.Context, journal store.JournalStore, days int, interval time.Duration) error {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := journal.Clean(days); err != nil {
			log.Errorf("ошибка очистки журнала: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
