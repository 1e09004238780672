package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/sifen-api/internal/application/billing"
	"github.com/jhoicas/sifen-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/sifen-api/internal/infrastructure/pdf"
	"github.com/jhoicas/sifen-api/internal/infrastructure/postgres"
	infra "github.com/jhoicas/sifen-api/internal/infrastructure/sifen"
	httpRouter "github.com/jhoicas/sifen-api/internal/interfaces/http"
	"github.com/jhoicas/sifen-api/pkg/config"
	"github.com/jhoicas/sifen-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("sifen_env", cfg.SIFEN.Environment).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Sin firmante ni cliente SIFEN: los documentos quedan en GENERADO y /send responde 503.
	docs := billing.NewDocumentService(billing.Deps{
		QR: infra.NewQRBuilderService(infra.QRConfig{
			Version: cfg.SIFEN.SchemaVersion,
			CSCID:   cfg.SIFEN.CSCID,
			CSC:     cfg.SIFEN.CSC,
			BaseURL: cfg.SIFEN.QRBaseURL(),
		}),
		Repo:    postgres.NewDocumentRepository(pool),
		Tx:      postgres.NewTxRunner(pool),
		KuDE:    infrapdf.NewKuDEGenerator(),
		Metrics: metrics.New(reg),
		Logger:  log,
		Options: optionsFrom(cfg.SIFEN),
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "SIFEN API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "sifen": cfg.SIFEN.Environment})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Docs:      docs,
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

	log.Info().Msg("aplicación detenida")
}

// optionsFrom traduce la sección SIFEN de la configuración a opciones de generación.
func optionsFrom(c config.SIFENConfig) infra.Options {
	return infra.Options{
		DefaultValues:      c.DefaultValues,
		ErrorSeparator:     c.ErrorSeparator,
		ErrorLimit:         c.ErrorLimit,
		Decimals:           c.Decimals,
		TaxDecimals:        c.TaxDecimals,
		PygDecimals:        c.PygDecimals,
		PartialTaxDecimals: c.PartialTaxDecimals,
		PygTaxDecimals:     c.PygTaxDecimals,
		Test:               c.IsTest(),
	}
}
