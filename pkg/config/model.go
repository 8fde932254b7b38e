package config

import "time"

type (

	// Config конфигурация программы
	Config struct {

		// Язык сообщений интерфейса (ru, en)
		Locale string `default:"ru"`

		// Описание логирования
		Log struct {

			// Путь к файлу лога
			Path string

			// Имя файла логирования. Если пустое, лог пишется только на консоль
			Filename string `default:"labsite.log"`

			// Уровень логирования
			Level string `required:"true" default:"info"`

			// Выводить лог только на консоль
			Console bool `default:"false"`
		}

		// Обслуживание WEB-сервера
		Http struct {

			// Порт WEB-сервера
			Port uint `required:"true" default:"3000" env:"PORT"`

			// Корень директории со статическим контентом
			AssetsDir string `default:"assets"`

			// Корневая страница сайта внутри AssetsDir
			Index string `default:"index.html"`

			// Директория с изображениями галереи. Если пустая, галерея отдаёт
			// статический набор изображений
			ImagesDir string
		}

		// Клиент API страницы
		Api struct {

			// Адрес API. Пустой - берётся из data-api-base страницы
			Base string

			// Колличество попыток запроса
			Retries int `default:"3"`

			// Пауза между попытками (в милисекундах)
			RetryDelay time.Duration `default:"550"`

			// Пауза между попытками загрузки галереи (в милисекундах)
			GalleryRetryDelay time.Duration `default:"650"`

			// Таймаут одного запроса (в милисекундах)
			Timeout time.Duration `default:"10000"`
		}

		// Всплывающие уведомления
		Toast struct {

			// Время показа уведомления (в милисекундах)
			Display time.Duration `default:"6000"`

			// Задержка удаления после скрытия (в милисекундах)
			Remove time.Duration `default:"220"`
		}

		// Журнал принятых замеров температуры
		Db struct {

			// Имя файла базы данных. Если пустое, журнал не ведётся
			Filename string

			// Колличество дней хранения записей журнала
			ArchiveDays int `default:"30"`

			// Период очистки журнала в минутах
			CleanInterval int `default:"30"`
		}

		// Публикация принятых замеров в MQTT
		Mqtt struct {

			// Адрес брокера, например tcp://127.0.0.1:1883. Если пустой, публикация отключена
			Broker string

			// Топик публикации
			Topic string `default:"labsite/temperature"`

			// Идентификатор клиента
			ClientID string `default:"labsite"`
		}
	}
)

// ToMilliseconds переводит заданные в милисекундах поля конфигурации в time.Duration
func (m *Config) ToMilliseconds() {
	m.Api.RetryDelay = m.Api.RetryDelay * time.Millisecond
	m.Api.GalleryRetryDelay = m.Api.GalleryRetryDelay * time.Millisecond
	m.Api.Timeout = m.Api.Timeout * time.Millisecond
	m.Toast.Display = m.Toast.Display * time.Millisecond
	m.Toast.Remove = m.Toast.Remove * time.Millisecond
}
