// labctl открывает страницу сайта без браузера и выполняет на ней действия
// пользователя: загрузку галереи, отправку замера, заполнение регистрации
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/kirsrus/labsite/controller/manager"
	"github.com/kirsrus/labsite/model"
	"github.com/kirsrus/labsite/pkg/config"
	"github.com/kirsrus/labsite/pkg/logger"
	"github.com/kirsrus/labsite/pkg/messages"
	"github.com/kirsrus/labsite/pkg/page"
	"github.com/kirsrus/labsite/pkg/tool"
	"github.com/kirsrus/labsite/service/api"

	"github.com/PuerkitoBio/goquery"
	"github.com/juju/errors"
	"github.com/k0kubun/pp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const pageTimeout = 30 * time.Second

// Общие флаги команд
type options struct {
	config   string
	base     string
	pagePath string
	locale   string
	width    int
	html     bool
	debug    bool
}

func main() {
	if err := rootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ОШИБКА: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "labctl",
		Short:         "Действия пользователя на странице лабораторного сайта",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)

	cmd.PersistentFlags().StringVar(&opts.config, "config", config.FileName, "файл конфигурации")
	cmd.PersistentFlags().StringVar(&opts.base, "base", "http://127.0.0.1:3000", "адрес сайта и API")
	cmd.PersistentFlags().StringVar(&opts.pagePath, "page", "/", "путь страницы на сайте или файл с HTML")
	cmd.PersistentFlags().StringVar(&opts.locale, "locale", "", "язык сообщений (ru, en). Пустой - из конфигурации")
	cmd.PersistentFlags().IntVar(&opts.width, "width", 1280, "ширина окна в пикселях")
	cmd.PersistentFlags().BoolVar(&opts.html, "html", false, "вывести HTML страницы после действий")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "отладочный вывод")

	cmd.AddCommand(galleryCmd(opts), temperatureCmd(opts), registerCmd(opts))
	return cmd
}

func galleryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "gallery",
		Short: "Загрузить галерею изображений",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return session(cmd, opts, func(ctx context.Context, m *manager.Manager) error {
				if err := m.Start(ctx); err != nil {
					return errors.Trace(err)
				}
				m.Page().Do(func(tx *page.Tx) {
					tx.Find("[data-gallery-grid] .gallery-card").Each(func(_ int, s *goquery.Selection) {
						src, _ := s.Find("img").Attr("src")
						fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", strings.TrimSpace(s.Find(".gallery-card__title").Text()), src)
					})
				})
				return nil
			})
		},
	}
}

func temperatureCmd(opts *options) *cobra.Command {
	var room, value string

	cmd := &cobra.Command{
		Use:   "temperature",
		Short: "Отправить замер температуры в аудитории",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return session(cmd, opts, func(ctx context.Context, m *manager.Manager) error {
				if err := m.Input("#room", room); err != nil {
					return errors.Trace(err)
				}
				if err := m.Input("#temperature", value); err != nil {
					return errors.Trace(err)
				}
				err := m.Submit(ctx, "[data-temp-form]")
				if errors.IsNotValid(errors.Cause(err)) {
					return nil
				}
				return errors.Trace(err)
			})
		},
	}
	cmd.Flags().StringVar(&room, "room", "", "номер аудитории")
	cmd.Flags().StringVar(&value, "value", "", "температура")
	return cmd
}

func registerCmd(opts *options) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Заполнить и отправить форму регистрации",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return session(cmd, opts, func(ctx context.Context, m *manager.Manager) error {
				if err := m.Click(ctx, "[data-register-open]"); err != nil {
					return errors.Trace(err)
				}
				for selector, value := range map[string]string{
					"#register-dialog input[name=name]":     name,
					"#register-dialog input[name=email]":    email,
					"#register-dialog input[name=password]": password,
				} {
					if err := m.Input(selector, value); err != nil {
						return errors.Trace(err)
					}
				}
				err := m.Submit(ctx, "#register-dialog form")
				if errors.IsNotValid(errors.Cause(err)) {
					m.Page().Do(func(tx *page.Tx) {
						tx.Find("[data-error-for]").Each(func(_ int, s *goquery.Selection) {
							if text := strings.TrimSpace(s.Text()); text != "" {
								field, _ := s.Attr("data-error-for")
								fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", field, text)
							}
						})
					})
					return nil
				}
				if err != nil {
					return errors.Trace(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "регистрация заполнена")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "имя")
	cmd.Flags().StringVar(&email, "email", "", "почта")
	cmd.Flags().StringVar(&password, "password", "", "пароль")
	return cmd
}

// Открывает страницу, выполняет action и печатает уведомления. Уведомления
// печатаются и при ошибке action
func session(cmd *cobra.Command, opts *options, action func(ctx context.Context, m *manager.Manager) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), pageTimeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	cfg, err := config.Load(opts.config)
	if err != nil {
		return errors.Trace(err)
	}

	level := logrus.WarnLevel
	if opts.debug {
		level = logrus.DebugLevel
	}
	log := logger.New(logger.Config{Level: level, Console: true})
	log.Out = cmd.ErrOrStderr()
	locale := opts.locale
	if locale == "" {
		locale = cfg.Locale
	}
	msg := messages.Get(locale)

	p, err := loadPage(ctx, opts.base, opts.pagePath)
	if err != nil {
		return errors.Trace(err)
	}

	client, err := api.NewApi(&api.ConfigApi{
		Log:               log,
		Base:              apiBase(cfg, p, opts.base),
		Messages:          msg,
		Retries:           cfg.Api.Retries,
		RetryDelay:        cfg.Api.RetryDelay,
		GalleryRetryDelay: cfg.Api.GalleryRetryDelay,
		Timeout:           cfg.Api.Timeout,
	})
	if err != nil {
		return errors.Trace(err)
	}

	m, err := manager.NewManager(p, client, &manager.ConfigManager{
		Log:                 log,
		Messages:            msg,
		Width:               opts.width,
		ToastDisplayTimeout: cfg.Toast.Display,
		ToastRemoveTimeout:  cfg.Toast.Remove,
	})
	if err != nil {
		return errors.Trace(err)
	}

	actionErr := action(ctx, m)

	toasts := m.Toasts()
	printToasts(cmd.OutOrStdout(), toasts)
	if opts.debug {
		_, _ = pp.Fprintln(cmd.ErrOrStderr(), toasts)
	}
	if actionErr != nil {
		return errors.Trace(actionErr)
	}
	if opts.html {
		content, err := p.HTML()
		if err != nil {
			return errors.Trace(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), content)
	}
	return nil
}

// Адрес API: из конфигурации, затем из data-api-base страницы, затем флаг --base
func apiBase(cfg *config.Config, p *page.Page, base string) string {
	if cfg.Api.Base != "" {
		return strings.TrimSuffix(cfg.Api.Base, "/")
	}
	if pageBase := manager.ApiBase(p); pageBase != "" {
		return pageBase
	}
	return base
}

// Страница из файла pagePath или с сайта base
func loadPage(ctx context.Context, base, pagePath string) (*page.Page, error) {
	if info, err := os.Stat(pagePath); err == nil && !info.IsDir() {
		file, err := os.Open(pagePath)
		if err != nil {
			return nil, errors.Trace(err)
		}
		defer func() { _ = file.Close() }()
		return page.Parse(file)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tool.JoinURL(strings.TrimSuffix(base, "/"), pagePath), nil)
	if err != nil {
		return nil, errors.Annotate(err, "некорректный адрес страницы")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.Annotate(err, "страница недоступна")
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("страница %s: код ответа %d", pagePath, resp.StatusCode)
	}
	return page.Parse(resp.Body)
}

func printToasts(out io.Writer, toasts []model.Toast) {
	for _, t := range toasts {
		fmt.Fprintf(out, "[%s] %s: %s\n", t.Kind, t.Title, t.Message)
	}
}
