package cli

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tg383520/geo-quiz/internal/answer"
	"github.com/tg383520/geo-quiz/internal/app"
	"github.com/tg383520/geo-quiz/internal/config"
	"github.com/tg383520/geo-quiz/internal/infra/memory"
	"github.com/tg383520/geo-quiz/internal/infra/postgres"
	redisinfra "github.com/tg383520/geo-quiz/internal/infra/redis"
	"github.com/tg383520/geo-quiz/internal/infra/restcountries"
	"github.com/tg383520/geo-quiz/internal/logging"
	"github.com/tg383520/geo-quiz/internal/metrics"
	transport "github.com/tg383520/geo-quiz/internal/transport/http"
	"github.com/tg383520/geo-quiz/internal/viewport"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if *port != "" {
				cfg.Server.Port = *port
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Encoding)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return runServer(cmd.Context(), cfg, logger)
		},
	}
}

func runServer(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, logger); err != nil {
			return err
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.CatalogLoader = restcountries.NewLoader(newCountriesClient(cfg))
	if pool != nil {
		loader = postgres.NewCatalogStore(pool).WithFallback(loader)
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 24*time.Hour)
	var catalogs app.CatalogRepository
	if redisClient != nil {
		catalogs = redisinfra.NewCatalogRepository(redisClient, loader, catalogTTL)
	} else {
		catalogs = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		host, _ := os.Hostname()
		instance := host + "/" + uuid.NewString()
		store = redisinfra.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute), instance)
	} else {
		store = memory.NewSessionStore()
	}

	m := metrics.New()
	service := app.NewQuizService(store, catalogs, app.MapFile(cfg.Map.Path), serviceOptions(cfg, logger, m))

	initCtx, cancelInit := context.WithCancel(ctx)
	defer cancelInit()
	go func() {
		// failures surface through the status broadcast
		_ = service.Initialize(initCtx)
	}()

	wsHandler := transport.NewWSHandler(service, transport.HandlerOptions{
		Logger:    logger.Named("ws"),
		Counter:   m,
		FrameRate: cfg.Quiz.FrameRate,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           transport.NewRouter(service, wsHandler, m.Handler()),
		ReadHeaderTimeout: 15 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting geo quiz", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case err := <-serveErr:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.TTLDuration(cfg.Server.ShutdownTimeout, 5*time.Second))
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func serviceOptions(cfg config.Config, logger *zap.Logger, recorder app.Recorder) app.Options {
	opts := app.Options{
		Language:      cfg.Catalog.Language,
		QuestionCount: cfg.Quiz.Questions,
		OptionCount:   cfg.Quiz.Options,
		Aliases:       answer.Aliases(cfg.Aliases),
		Map: viewport.ControllerOptions{
			Engine: viewport.Options{
				ZoomFactor:        cfg.Map.ZoomFactor,
				MaxZoom:           cfg.Map.MaxZoom,
				AnimationDuration: config.TTLDuration(cfg.Map.Animation, viewport.DefaultAnimationDuration),
				ClampPan:          *cfg.Map.ClampPan,
			},
			PanThreshold:           cfg.Map.PanThreshold,
			PinchSensitivity:       cfg.Map.PinchSensitivity,
			WheelRequiresSecondary: cfg.Map.WheelRequiresSecondary,
		},
		Logger:   logger.Named("quiz"),
		Recorder: recorder,
	}
	if cfg.Quiz.Seed != nil {
		opts.Rand = rand.New(rand.NewSource(*cfg.Quiz.Seed))
	}
	return opts
}
