// Точка входа фотоленты — минимального сервиса фото-доски.
// Загружает конфигурацию, выбирает бэкенд хранилища (локальная ФС
// или облачный медиа-сервис), инициализирует i18n и шаблоны,
// запускает мониторинг зависимостей (topologymetrics, только cloud)
// и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/arturkryukov/fotolenta/internal/config"
	"github.com/arturkryukov/fotolenta/internal/mediaclient"
	"github.com/arturkryukov/fotolenta/internal/server"
	"github.com/arturkryukov/fotolenta/internal/service"
	"github.com/arturkryukov/fotolenta/internal/store"
	"github.com/arturkryukov/fotolenta/internal/web/handlers"
	"github.com/arturkryukov/fotolenta/internal/web/i18n"
	"github.com/arturkryukov/fotolenta/internal/web/ui"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Фотолента запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.Bool("cloud_backend", cfg.CloudEnabled()),
	)

	if cfg.UploadToken == "" {
		logger.Warn("FL_UPLOAD_TOKEN не задан, загрузка и удаление открыты для всех")
	}

	// 3. Загрузка каталогов переводов
	bundle := i18n.Init(logger)
	if err := bundle.LoadDir(i18n.LocaleFS, "locales"); err != nil {
		logger.Error("Ошибка загрузки каталогов i18n", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Шаблоны веб-интерфейса
	renderer, err := ui.NewRenderer()
	if err != nil {
		logger.Error("Ошибка инициализации шаблонов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Хранилище: выбор бэкенда — одноразовое решение при старте
	st, err := store.New(cfg, logger)
	if err != nil {
		logger.Error("Ошибка инициализации хранилища", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. topologymetrics — мониторинг медиа-сервиса (только облачный бэкенд)
	ctx := context.Background()
	var dephealthSvc *service.DephealthService
	if cfg.CloudEnabled() {
		mc, mcErr := mediaclient.New(cfg.MediaURL, cfg.MediaTimeout, logger)
		if mcErr != nil {
			logger.Error("Ошибка создания клиента медиа-сервиса", slog.String("error", mcErr.Error()))
			os.Exit(1)
		}

		dephealthSvc, err = service.NewDephealthService(
			cfg.DephealthName,
			cfg.DephealthGroup,
			cfg.DephealthDepName,
			mc.PingURL(),
			cfg.DephealthCheckInterval,
			logger,
		)
		if err != nil {
			logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
				slog.String("error", err.Error()),
			)
			dephealthSvc = nil
		} else {
			if startErr := dephealthSvc.Start(ctx); startErr != nil {
				logger.Warn("Ошибка запуска topologymetrics",
					slog.String("error", startErr.Error()),
				)
				dephealthSvc = nil
			} else {
				logger.Info("topologymetrics запущен",
					slog.String("group", cfg.DephealthGroup),
					slog.String("check_interval", cfg.DephealthCheckInterval.String()),
				)
			}
		}
	}

	// 7. HTTP handlers и сервер
	h := handlers.New(st, cfg, renderer, logger)
	srv := server.New(cfg, logger, h)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 8. Graceful shutdown фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Фотолента остановлена")
}
