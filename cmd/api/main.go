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
	"github.com/jhoicas/tradenest-api/internal/application/catalog"
	"github.com/jhoicas/tradenest-api/internal/application/inventory"
	"github.com/jhoicas/tradenest-api/internal/application/transfer"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
	"github.com/jhoicas/tradenest-api/internal/infrastructure/cache"
	"github.com/jhoicas/tradenest-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/tradenest-api/internal/infrastructure/pdf"
	"github.com/jhoicas/tradenest-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/tradenest-api/internal/interfaces/http"
	"github.com/jhoicas/tradenest-api/pkg/config"
	"github.com/jhoicas/tradenest-api/pkg/logger"
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
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Persistencia: PostgreSQL en producción, memoria para demos y desarrollo local.
	var (
		reads    repository.Repositories
		txRunner inventory.TxRunner
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		reads = store.Repositories()
		txRunner = memory.NewTxRunner(store)
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()

		if cfg.DB.AutoMigrate {
			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
			if len(applied) > 0 {
				log.Info().Strs("files", applied).Msg("migraciones aplicadas")
			}
		}
		reads = postgres.NewRepositories(pool)
		txRunner = postgres.NewTxRunner(pool)
	}

	// Cache de ubicaciones en Redis (opcional)
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no disponible, se sigue sin cache")
		} else {
			defer rdb.Close()
			reads.Locations = cache.NewLocationRepository(reads.Locations, rdb, cfg.Redis.LocationTTL, log.Component("cache"))
		}
	}

	txRunner = inventory.NewRetryingTxRunner(txRunner, cfg.Ledger.ConflictRetries, log)
	ledger := inventory.NewLedger(txRunner, reads, inventory.LedgerConfig{HoldTTL: cfg.Ledger.HoldTTL}, log.Component("ledger"))

	locationUC := catalog.NewLocationUseCase(reads.Locations)
	productUC := catalog.NewProductUseCase(txRunner, reads.Products, reads.Locations, ledger, nil, log)
	lowStockUC := inventory.NewLowStockUseCase(reads.Stock)
	transferUC := transfer.NewUseCase(txRunner, reads.Transfers, reads.Locations, ledger, nil, log)
	waybillUC := transfer.NewWaybillUseCase(reads.Transfers, reads.Locations, infrapdf.NewMarotoWaybillGenerator())

	if cfg.Ledger.HoldTTL > 0 {
		reaper := transfer.NewHoldReaper(reads.Holds, transferUC, ledger, transfer.ReaperConfig{
			Interval: cfg.Ledger.ReaperInterval,
			Batch:    cfg.Ledger.ReaperBatch,
		}, log.Component("reaper"))
		go reaper.Start(ctx)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.Docs.SwaggerPath); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.Docs.SwaggerPath,
			Path:     "docs",
			Title:    "TradeNest API",
		}))
	} else {
		log.Warn().Str("path", cfg.Docs.SwaggerPath).Msg("swagger.json no encontrado, /docs deshabilitado")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		LocationUC: locationUC,
		ProductUC:  productUC,
		Ledger:     ledger,
		LowStockUC: lowStockUC,
		TransferUC: transferUC,
		WaybillUC:  waybillUC,
		JWTSecret:  cfg.JWT.Secret,
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
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
