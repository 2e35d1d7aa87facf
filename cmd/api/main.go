package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/polizas-reportes/internal/application/reports"
	"github.com/jhoicas/polizas-reportes/internal/application/snapshot"
	"github.com/jhoicas/polizas-reportes/internal/domain/repository"
	"github.com/jhoicas/polizas-reportes/internal/infrastructure/backend"
	"github.com/jhoicas/polizas-reportes/internal/infrastructure/cache"
	"github.com/jhoicas/polizas-reportes/internal/infrastructure/export"
	"github.com/jhoicas/polizas-reportes/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/polizas-reportes/internal/interfaces/http"
	"github.com/jhoicas/polizas-reportes/pkg/config"
	"github.com/jhoicas/polizas-reportes/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("entry_source", cfg.Backend.EntrySource).
		Str("timezone", cfg.Report.Timezone).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Fuente de entradas: backend REST (default) o réplica PostgreSQL.
	var source repository.EntrySource
	switch cfg.Backend.EntrySource {
	case config.EntrySourcePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		source = postgres.NewBusinessEntryRepository(pool)
	default:
		source = backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	}

	// Caché de reportes: Redis si está configurado (compartida entre réplicas), si no en memoria.
	var reportCache repository.ReportCache = cache.NewMemoryReportCache(cfg.Report.CacheTTL, cache.DefaultMaxEntries)
	if cfg.Redis.Address != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible; se usa caché en memoria")
		} else {
			defer rdb.Close()
			reportCache = cache.NewRedisReportCache(rdb, cfg.Report.CacheTTL)
		}
	}

	store := snapshot.NewStore(cfg.Report.SnapshotTTL)
	reportsUC := reports.NewOverviewUseCase(source, store, reportCache,
		reports.Options{
			Location:  cfg.Report.Location(),
			TopN:      cfg.Report.TopN,
			MaxPoints: cfg.Report.MaxPoints,
		},
		export.NewExcelExporter(),
		export.NewPDFExporter(cfg.App.Name),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 60, // exportaciones grandes
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Pólizas Reportes API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Reports:   reportsUC,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	store.Reset()

	log.Info().Msg("aplicación detenida")
}
