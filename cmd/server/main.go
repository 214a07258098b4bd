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

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Skotchmaster/amilimetros/internal/config"
	"github.com/Skotchmaster/amilimetros/internal/db"
	"github.com/Skotchmaster/amilimetros/internal/events"
	"github.com/Skotchmaster/amilimetros/internal/httpserver"
	"github.com/Skotchmaster/amilimetros/internal/logging"
	"github.com/Skotchmaster/amilimetros/internal/metrics"
	"github.com/Skotchmaster/amilimetros/internal/middleware"
	"github.com/Skotchmaster/amilimetros/internal/repo"
	"github.com/Skotchmaster/amilimetros/internal/search"
	"github.com/Skotchmaster/amilimetros/internal/service"
	"github.com/Skotchmaster/amilimetros/internal/session"
	"github.com/Skotchmaster/amilimetros/internal/watch"
)

func main() {
	cfg := config.Load(os.Getenv("ENV_FILE"))
	config.MustComplete(cfg)

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store := db.NewProvider(func(ctx context.Context) (*gorm.DB, error) {
		return db.Bootstrap(ctx, cfg.DatabaseURL, cfg.DatabaseDriver, cfg.Seed, logger)
	})
	gdb, err := store.Get(ctx)
	cancel()
	if err != nil {
		log.Fatalf("store init: %v", err)
	}

	hub := watch.NewHub(cfg.WatchGrace, logger)
	hub.SetObserver(metrics.Subscribers)

	users := repo.NewUserRepo(gdb, hub)
	products := repo.NewProductRepo(gdb, hub)
	animals := repo.NewAnimalRepo(gdb, hub)
	logos := repo.NewLogoRepo(gdb)

	if cfg.LogoPath != "" {
		if err := loadLogo(context.Background(), logos, cfg.LogoPath); err != nil {
			logger.Warn("logo_load_failed", "path", cfg.LogoPath, "error", err)
		}
	}

	sessions, closeSessions := sessionStore(cfg, gdb, logger)
	pub := publisher(cfg, logger)
	engine := searchEngine(cfg, products, logger)

	auth := &middleware.Auth{Secret: cfg.JWTSecret, Sessions: sessions, Admins: users}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(metrics.Middleware())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.CSRF(cfg.CookieSecure))

	httpserver.Register(e, &httpserver.Deps{
		Store: store,
		Auth:  auth,
		AuthHandler: &httpserver.AuthHandler{Auth: &service.AuthService{
			Users: users, Sessions: sessions, Events: pub,
			JWTSecret: cfg.JWTSecret, AccessTTL: cfg.AccessTTL,
		}},
		ProductHandler: &httpserver.ProductHandler{Catalog: &service.CatalogService{
			Products: products, Engine: engine, Events: pub,
		}},
		AnimalHandler: &httpserver.AnimalHandler{Animals: &service.AnimalService{Animals: animals, Events: pub}},
		CartHandler: &httpserver.CartHandler{Cart: &service.CartService{
			Cart: repo.NewCartRepo(gdb, hub), Products: products, Events: pub,
		}},
		AdoptionHandler: &httpserver.AdoptionHandler{Adoptions: &service.AdoptionService{
			Forms: repo.NewAdoptionRepo(gdb, hub), Animals: animals, Users: users, Events: pub,
		}},
		LogoHandler: &httpserver.LogoHandler{Logos: logos},
	})

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:     e,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	go func() {
		logger.Info("http_listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	go func() {
		<-quit
		log.Println("force exit")
		os.Exit(1)
	}()

	logger.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if err := pub.Close(); err != nil {
		logger.Error("events_close_error", "error", err)
	}
	if closeSessions != nil {
		if err := closeSessions(); err != nil {
			logger.Error("session_close_error", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		logger.Error("store_close_error", "error", err)
	}

	logger.Info("shutdown_complete")
}

func loadLogo(ctx context.Context, logos *repo.LogoRepo, path string) error {
	img, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return logos.Put(ctx, repo.LogoName, img)
}

// sessionStore picks the Redis backend when configured and reachable,
// otherwise the table in the main store.
func sessionStore(cfg config.Config, gdb *gorm.DB, l *slog.Logger) (*session.Store, func() error) {
	if cfg.SessionBackend != "redis" {
		return session.NewStore(&session.GormBackend{DB: gdb}), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		l.Warn("redis_unavailable", "addr", cfg.RedisAddr, "error", err, "fallback", "db")
		_ = rdb.Close()
		return session.NewStore(&session.GormBackend{DB: gdb}), nil
	}
	l.Info("session_backend", "backend", "redis", "addr", cfg.RedisAddr)
	return session.NewStore(&session.RedisBackend{Client: rdb, TTL: cfg.AccessTTL}), rdb.Close
}

func publisher(cfg config.Config, l *slog.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		l.Info("events_disabled", "reason", "KAFKA_BROKERS not set")
		return events.Nop{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := events.EnsureTopics(ctx, cfg.KafkaBrokers[0], events.Topics...); err != nil {
		l.Warn("kafka_topics_failed", "error", err)
	}

	p, err := events.NewKafkaPublisher(cfg.KafkaBrokers)
	if err != nil {
		l.Warn("kafka_unavailable", "error", err)
		return events.Nop{}
	}
	return p
}

func searchEngine(cfg config.Config, products *repo.ProductRepo, l *slog.Logger) search.Engine {
	if cfg.ESURL == "" {
		return search.StoreEngine{Products: products}
	}
	client, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword, l)
	if err != nil {
		l.Warn("es_unavailable", "error", err, "fallback", "store")
		return search.StoreEngine{Products: products}
	}
	return &search.ESEngine{ES: client, IndexName: cfg.ESIndex}
}
