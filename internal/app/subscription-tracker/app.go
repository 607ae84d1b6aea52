package subscriptiontracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/subscription-tracker/internal/cache"
	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/events"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/migrations"
	authservice "github.com/magabrotheeeer/subscription-tracker/internal/services/auth"
	schedulerservice "github.com/magabrotheeeer/subscription-tracker/internal/services/scheduler"
	subservice "github.com/magabrotheeeer/subscription-tracker/internal/services/subscription"
	userservice "github.com/magabrotheeeer/subscription-tracker/internal/services/user"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App HTTP сервер со всеми зависимостями.
type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *storage.Storage
	scheduler *schedulerservice.SchedulerService
	closers   []io.Closer
}

type eventPublisher interface {
	authservice.EventPublisher
	schedulerservice.EventPublisher
}

type subscriptionCache interface {
	subservice.Cache
	schedulerservice.Cache
}

// New подключается к базе, применяет миграции, поднимает кеш и публикацию
// событий (если настроены) и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.New"

	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{logger: logger, db: db}

	var subCache subscriptionCache = cache.Nop{}
	if cfg.AddressRedis != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		subCache = redisCache
		app.closers = append(app.closers, redisCache)
	} else {
		logger.Info("redis address is empty, cache disabled")
	}

	var publisher eventPublisher = events.Nop{}
	if cfg.URL != "" {
		conn, err := rabbitmq.Connect(cfg.URL, cfg.Retries, cfg.Delay)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.closers = append(app.closers, conn)
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.Exchange, rabbitmq.EventQueues())
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		publisher = events.NewPublisher(ch, rabbitmq.Exchange)
	} else {
		logger.Info("rabbitmq url is empty, events disabled")
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL.Duration())
	gate := middlewarectx.NewGate(cfg.Gate, logger)
	logger.Info("request gate configured", slog.String("mode", gate.Mode()))

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Auth:          authservice.NewAuthService(db, jwtMaker, publisher, logger),
		Users:         userservice.NewUserService(db),
		Subscriptions: subservice.NewSubscriptionService(db, subCache, logger),
		Tokens:        jwtMaker,
		Guard:         db,
		DB:            db,
		Gate:          gate,
	})

	if cfg.ExpiryInterval > 0 {
		app.scheduler = schedulerservice.NewSchedulerService(db, subCache, publisher, cfg.ExpiryInterval, logger)
	}

	app.server = &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run запускает сервер и планировщик и останавливает их при отмене ctx,
// после чего закрывает соединения с базой, кешем и брокером.
func (a *App) Run(ctx context.Context) error {
	schedCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	var wg sync.WaitGroup
	if a.scheduler != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.scheduler.Run(schedCtx)
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		stopScheduler()
		wg.Wait()
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		stopScheduler()
		wg.Wait()
		a.close()
		return err
	}
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("failed to close resource", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
