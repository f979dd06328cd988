package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/jhoicas/Pedidos-sync/internal/application/catalog"
	"github.com/jhoicas/Pedidos-sync/internal/application/stock"
	appsync "github.com/jhoicas/Pedidos-sync/internal/application/sync"
	"github.com/jhoicas/Pedidos-sync/internal/infrastructure/enrichment"
	"github.com/jhoicas/Pedidos-sync/internal/infrastructure/postgres"
	"github.com/jhoicas/Pedidos-sync/internal/infrastructure/woocommerce"
	httpRouter "github.com/jhoicas/Pedidos-sync/internal/interfaces/http"
	"github.com/jhoicas/Pedidos-sync/pkg/config"
	"github.com/jhoicas/Pedidos-sync/pkg/logger"
)

// application agrupa todos los componentes ya cableados, listos para servir o
// para una corrida puntual.
type application struct {
	cfg          *config.Config
	log          *logger.Logger
	pool         *pgxpool.Pool
	pipeline     *appsync.Pipeline
	orchestrator *appsync.Orchestrator
	sweeper      *appsync.Sweeper
	audit        *appsync.Audit
	ledger       *stock.Ledger
	directory    *catalog.Directory
}

func (a *application) close() {
	a.pool.Close()
}

// buildApp carga la configuración, abre el pool y cablea todos los casos de
// uso sobre los repositorios de PostgreSQL.
func buildApp(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}

	productRepo := postgres.NewProductRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	moveRepo := postgres.NewStockMoveRepository(pool)
	syncRepo := postgres.NewSyncLogRepository(pool)
	retryRepo := postgres.NewRetryQueueRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	ledger := stock.NewLedger(txRunner, moveRepo, productRepo, stock.Config{
		AllowOversell: cfg.Sync.AllowOversell,
	})
	directory := catalog.NewDirectory(customerRepo, productRepo, log.Component("catalog"))

	// Enriquecimiento opcional: sin OLLAMA_URL el pipeline ingiere sin
	// puntaje de riesgo.
	var enricher appsync.Enricher
	if cfg.AI.OllamaURL != "" {
		enricher = enrichment.NewOllamaClient(cfg.AI.OllamaURL, cfg.AI.OllamaModel, cfg.AI.Timeout())
	}

	backoff := appsync.Backoff{
		Base: time.Duration(cfg.Sync.RetryBaseSeconds) * time.Second,
		Cap:  time.Duration(cfg.Sync.RetryCapSeconds) * time.Second,
	}
	pipeline := appsync.NewPipeline(
		txRunner, orderRepo, directory, enricher, ledger,
		syncRepo, retryRepo, backoff, log.Component("pipeline"),
	)

	source := woocommerce.NewClient(cfg.WC.URL, cfg.WC.Key, cfg.WC.Secret, cfg.WC.Timeout())
	orchestrator := appsync.NewOrchestrator(source, pipeline, appsync.OrchestratorConfig{
		StatusFilter: cfg.WC.StatusFilter,
		PageSize:     cfg.WC.PageSize,
		Workers:      cfg.Sync.Workers,
		OrderTimeout: cfg.Sync.OrderTimeout(),
	}, log.Component("orchestrator"))

	sweeper := appsync.NewSweeper(retryRepo, syncRepo, pipeline, appsync.SweeperConfig{
		BatchSize:  cfg.Sync.RetryBatchSize,
		MaxRetries: cfg.Sync.RetryMaxAttempts,
		Backoff:    backoff,
	}, log.Component("sweeper"))

	audit := appsync.NewAudit(syncRepo, retryRepo)

	return &application{
		cfg:          cfg,
		log:          log,
		pool:         pool,
		pipeline:     pipeline,
		orchestrator: orchestrator,
		sweeper:      sweeper,
		audit:        audit,
		ledger:       ledger,
		directory:    directory,
	}, nil
}

// newServeCommand arranca el servidor HTTP junto con los ciclos periódicos de
// orquestación y barrido de reintentos.
func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Servidor HTTP + ciclos periódicos de ingesta y reintentos",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			app, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()
			log := app.log

			fiberApp := fiber.New(fiber.Config{
				AppName:      app.cfg.App.Name,
				ReadTimeout:  time.Second * 10,
				WriteTimeout: time.Second * 10,
				IdleTimeout:  time.Second * 60,
			})
			fiberApp.Use(recover.New())

			httpRouter.Router(fiberApp, httpRouter.RouterDeps{
				Pipeline:     app.pipeline,
				Orchestrator: app.orchestrator,
				Sweeper:      app.sweeper,
				Audit:        app.audit,
				Ledger:       app.ledger,
				Directory:    app.directory,
			})

			go func() {
				if err := fiberApp.Listen(app.cfg.HTTP.Addr()); err != nil {
					log.Error().Err(err).Msg("servidor HTTP finalizado")
				}
			}()

			// Ciclo del orquestador: cada corrida trae un lote del canal.
			go func() {
				ticker := time.NewTicker(app.cfg.Sync.Interval())
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						report, err := app.orchestrator.Run(ctx)
						if err != nil {
							log.Error().Err(err).Msg("corrida de sincronización fallida")
							continue
						}
						log.Info().
							Int("fetched", report.Fetched).
							Int("committed", report.Committed).
							Int("duplicates", report.Duplicates).
							Int("failed", report.Failed).
							Msg("corrida de sincronización completada")
					}
				}
			}()

			// Ciclo del barrido de reintentos.
			go func() {
				ticker := time.NewTicker(app.cfg.Sync.SweepInterval())
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						report, err := app.sweeper.Sweep(ctx)
						if err != nil {
							log.Error().Err(err).Msg("barrido de reintentos fallido")
							continue
						}
						if report.Claimed > 0 {
							log.Info().
								Int("claimed", report.Claimed).
								Int("recovered", report.Recovered).
								Int("rescheduled", report.Rescheduled).
								Int("dead_lettered", report.DeadLettered).
								Msg("barrido de reintentos completado")
						}
					}
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			log.Info().Msg("señal de apagado recibida, cerrando servidor...")
			cancel()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("apagado del servidor")
			}

			log.Info().Msg("aplicación detenida")
			return nil
		},
	}
}

// newRunCommand ejecuta una sola corrida de ingesta y termina.
func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Una corrida de ingesta: trae un lote del canal y lo procesa",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			report, err := app.orchestrator.Run(ctx)
			if err != nil {
				return err
			}
			app.log.Info().
				Int("fetched", report.Fetched).
				Int("committed", report.Committed).
				Int("duplicates", report.Duplicates).
				Int("failed", report.Failed).
				Int("skipped", report.Skipped).
				Msg("corrida de sincronización completada")
			return nil
		},
	}
}

// newSweepCommand ejecuta un solo barrido de la cola de reintentos y termina.
func newSweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Un barrido de la cola de reintentos",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			report, err := app.sweeper.Sweep(ctx)
			if err != nil {
				return err
			}
			app.log.Info().
				Int("claimed", report.Claimed).
				Int("recovered", report.Recovered).
				Int("rescheduled", report.Rescheduled).
				Int("dead_lettered", report.DeadLettered).
				Msg("barrido de reintentos completado")
			return nil
		},
	}
}

func main() {
	root := &cobra.Command{
		Use:           "pedidos-sync",
		Short:         "Ingesta idempotente de pedidos del canal de ventas hacia el inventario",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand())
	root.AddCommand(newRunCommand())
	root.AddCommand(newSweepCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
