package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avkrapivin/top-me-up-sub000/internal/config"
	"github.com/avkrapivin/top-me-up-sub000/internal/contentsearch"
	"github.com/avkrapivin/top-me-up-sub000/internal/db"
	"github.com/avkrapivin/top-me-up-sub000/internal/handlers"
	"github.com/avkrapivin/top-me-up-sub000/internal/logger"
	"github.com/avkrapivin/top-me-up-sub000/internal/router"
	"github.com/avkrapivin/top-me-up-sub000/internal/services"
	"github.com/avkrapivin/top-me-up-sub000/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.Development())
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := db.Open(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}

	userStore := store.NewUserStore(conn)
	listStore := store.NewListStore(conn)
	commentStore := store.NewCommentStore(conn)
	notificationStore := store.NewNotificationStore(conn)

	counters := services.NewCounterService(listStore, cfg.CounterQueueSize, log)
	notifications := services.NewNotificationService(notificationStore, log)
	comments := services.NewCommentService(commentStore, userStore, counters, notifications, log)
	lists := services.NewListService(listStore, userStore)
	users := services.NewUserService(userStore)

	preview, err := services.NewPreviewRenderer()
	if err != nil {
		log.Fatal("Failed to load preview font", zap.Error(err))
	}

	search, err := newSearchService(cfg, log)
	if err != nil {
		log.Fatal("Failed to set up content search", zap.Error(err))
	}

	engine, err := router.New(router.Options{
		SessionSecret: cfg.SessionSecret,
		SecureCookies: !cfg.Development(),
		Users:         userStore,
		Log:           log,
	}, router.Handlers{
		Auth:         handlers.NewAuthHandler(users, notifications, log),
		User:         handlers.NewUserHandler(users, log),
		List:         handlers.NewListHandler(lists, log),
		Comment:      handlers.NewCommentHandler(comments, log),
		Notification: handlers.NewNotificationHandler(notifications, log),
		Search:       handlers.NewSearchHandler(search, log),
		Share:        handlers.NewShareHandler(lists, preview, cfg.SiteURL, log),
		Health:       handlers.NewHealthHandler(conn),
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("TopMeUp server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	counters.Stop()
	notifications.Wait()

	if sqlDB, err := conn.DB(); err == nil {
		sqlDB.Close()
	}
}

func newSearchService(cfg *config.Config, log *zap.Logger) (*contentsearch.Service, error) {
	var cache contentsearch.Cache
	if cfg.RedisAddr != "" {
		client, err := contentsearch.NewRedisClient(context.Background(), cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		log.Info("Search cache backed by Redis", zap.String("addr", cfg.RedisAddr))
		cache = contentsearch.NewRedisCache(client, log)
	} else {
		memory, err := contentsearch.NewMemoryCache(cfg.SearchCacheSize)
		if err != nil {
			return nil, err
		}
		cache = memory
	}

	client := func(name, baseURL, keyParam, key string) *contentsearch.Client {
		return contentsearch.NewClient(contentsearch.ClientConfig{
			Name:        name,
			BaseURL:     baseURL,
			APIKeyParam: keyParam,
			APIKey:      key,
			CacheTTL:    cfg.SearchCacheTTL,
		}, cache, log)
	}

	return contentsearch.NewService(
		contentsearch.NewTMDB(client("tmdb", cfg.TMDBBaseURL, "api_key", cfg.TMDBAPIKey)),
		contentsearch.NewDeezer(client("deezer", cfg.DeezerBaseURL, "", "")),
		contentsearch.NewRAWG(client("rawg", cfg.RAWGBaseURL, "key", cfg.RAWGAPIKey)),
	), nil
}
