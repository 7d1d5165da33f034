package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/repo/gormrepo"
	"github.com/Skotchmaster/storefront/internal/repo/mongorepo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	"github.com/Skotchmaster/storefront/pkg/middleware/ratelimit"
	"github.com/Skotchmaster/storefront/pkg/middleware/validate"
)

type eventSink interface {
	service.Publisher
	Close() error
}

type storeHandle struct {
	repo.Store
	ping  pkgdb.PingerFunc
	close func()
}

func openStore(ctx context.Context, cfg config.Config) (*storeHandle, error) {
	if cfg.StoreDriver == "mongo" {
		client, mdb, err := pkgdb.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		r := &mongorepo.MongoRepo{DB: mdb}
		if err := r.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return &storeHandle{
			Store: r,
			ping:  pkgdb.MongoPinger(client),
			close: func() { _ = client.Disconnect(context.Background()) },
		}, nil
	}

	gdb, err := pkgdb.Open(ctx, cfg.StoreDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	r := &gormrepo.GormRepo{DB: gdb}
	if err := r.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &storeHandle{
		Store: r,
		ping:  pkgdb.GormPinger(gdb),
		close: func() {
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	config.MustNonEmptyBytes(cfg.JWTRefreshSecret, "JWT_REFRESH_SECRET")
	cfg.MustStore()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := openStore(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("store open: %v", err)
	}

	runCtx, stopRun := context.WithCancel(context.Background())
	supervisor := pkgdb.NewSupervisor(store.ping, cfg.DBPingInterval, logger)
	go supervisor.Run(runCtx)

	var sink eventSink = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		sink = events.NewProducer(cfg.KafkaBrokers)
	}

	products := &service.ProductService{Repo: store, Events: sink}
	if cfg.ElasticURL != "" {
		esCtx, esCancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := search.NewClient(esCtx, cfg.ElasticURL, cfg.ElasticUser, cfg.ElasticPassword)
		esCancel()
		if err != nil {
			logger.Warn("search_disabled", "error", err)
		} else {
			products.Index = &search.Index{ES: client, Name: cfg.ElasticIndex}
		}
	}

	limiterStore := ratelimit.NewMemoryStore(cfg.RateLimitPerMinute)
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		limiterStore = ratelimit.NewRedisStore(rdb, cfg.RateLimitPerMinute, logger)
	}

	authSvc := &service.AuthService{
		Users:         store,
		Tokens:        store,
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())
	e.Use(ratelimit.Middleware(limiterStore))
	e.Use(csrf.Middleware(cfg.CookieSecure))
	e.Use(echomw.BodyLimit(validate.MaxBodyLimit))
	e.Use(validate.BlankFields)

	httpserver.Register(e, &httpserver.Deps{
		Users:      &httpserver.UserHTTP{Svc: &service.UserService{Repo: store, Tokens: store, Events: sink, AdminEmails: cfg.AdminEmails}},
		Auth:       &httpserver.AuthHTTP{Svc: authSvc},
		Products:   &httpserver.ProductHTTP{Svc: products},
		Carts:      &httpserver.CartHTTP{Svc: &service.CartService{Carts: store, Products: store, Users: store, Events: sink}},
		Orders:     &httpserver.OrderHTTP{Svc: &service.OrderService{Orders: store, Products: store, Users: store, Events: sink}},
		Favourites: &httpserver.FavouriteHTTP{Svc: &service.FavouriteService{Users: store, Products: store, Events: sink}},
		RequireAuth: authmw.RequireAuth(authmw.Config{
			AccessSecret: cfg.JWTAccessSecret,
			Refresh:      authSvc.Refresh,
		}),
		Ready: supervisor.Ready,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	stopRun()
	if err := sink.Close(); err != nil {
		logger.Warn("event_sink_close_error", "error", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	store.close()

	logger.Info("stopped")
}
