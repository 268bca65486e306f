package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baharkarakas/qa-forum/internal/api"
	"github.com/baharkarakas/qa-forum/internal/auth"
	"github.com/baharkarakas/qa-forum/internal/config"
	"github.com/baharkarakas/qa-forum/internal/db"
	"github.com/baharkarakas/qa-forum/internal/logger"
	"github.com/baharkarakas/qa-forum/internal/metrics"
	"github.com/baharkarakas/qa-forum/internal/notify"
	"github.com/baharkarakas/qa-forum/internal/policy"
	"github.com/baharkarakas/qa-forum/internal/ratelimit"
	"github.com/baharkarakas/qa-forum/internal/render"
	"github.com/baharkarakas/qa-forum/internal/repository"
	"github.com/baharkarakas/qa-forum/internal/repository/memory"
	"github.com/baharkarakas/qa-forum/internal/repository/postgres"
	"github.com/baharkarakas/qa-forum/internal/services"
	"github.com/baharkarakas/qa-forum/internal/worker"
)

func main() {
	cfg, err := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)
	if err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	loginLimiter, forgotLimiter, closeRedis := openLimiters(ctx, cfg, log)
	defer closeRedis()

	wp := worker.NewPool(cfg.Workers, 256)
	defer wp.Stop()

	var notifier notify.Notifier = notify.LogNotifier{Logger: log}
	if cfg.SMTPHost != "" {
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host: cfg.SMTPHost, Port: cfg.SMTPPort,
			User: cfg.SMTPUser, Pass: cfg.SMTPPass, From: cfg.SMTPFrom,
		}, log)
	}
	mailer := notify.NewDispatcher(notifier, wp, log)

	rr, err := render.New(cfg.RenderCacheSize)
	if err != nil {
		return err
	}
	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAccessTTL, cfg.JWTResetTTL)
	pol := policy.Policy{Strict: cfg.HideForeignContent}

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Cfg:           cfg,
		Log:           log,
		Store:         store,
		Tokens:        tm,
		Users:         services.NewUserService(store.Users, tm, mailer, cfg.FrontendURL, log),
		Questions:     services.NewQuestionService(store.Questions, pol, rr),
		Answers:       services.NewAnswerService(store.Answers, store.Questions, pol, rr),
		Votes:         services.NewVoteService(store.Votes, store.Questions, store.Answers, log),
		LoginLimiter:  loginLimiter,
		ForgotLimiter: forgotLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			"port", cfg.HTTPPort,
			"env", cfg.Env,
			"store", cfg.StoreDriver,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repository.Store, func(), error) {
	if cfg.StoreDriver == "memory" {
		log.Warn("using in-memory store, data is lost on restart")
		return memory.New().Store(), func() {}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return repository.Store{}, nil, err
	}
	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return repository.Store{}, nil, err
		}
	}
	return postgres.NewStore(pool), pool.Close, nil
}

// openLimiters returns nil limiters, which let every request through, when
// no Redis address is configured.
func openLimiters(ctx context.Context, cfg config.Config, log *slog.Logger) (login, forgot *ratelimit.Limiter, closeFn func()) {
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR not set, login and password reset throttling disabled")
		return nil, nil, func() {}
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable, limiters will fail open until it recovers", "err", err)
	}
	login = ratelimit.New(rdb, "login", 5, 15*time.Minute)
	forgot = ratelimit.New(rdb, "forgot", 3, 15*time.Minute)
	return login, forgot, func() { _ = rdb.Close() }
}
