package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alxdev/echocheck-backend/api/handlers"
	"github.com/alxdev/echocheck-backend/api/middleware"
	"github.com/alxdev/echocheck-backend/api/routes"
	"github.com/alxdev/echocheck-backend/config"
	"github.com/alxdev/echocheck-backend/internal/auth"
	"github.com/alxdev/echocheck-backend/internal/classifier"
	"github.com/alxdev/echocheck-backend/internal/extract"
	"github.com/alxdev/echocheck-backend/internal/store"
	"github.com/alxdev/echocheck-backend/pkg/logger"
	"github.com/alxdev/echocheck-backend/pkg/metrics"
	"github.com/alxdev/echocheck-backend/pkg/queue"
)

func main() {
	// init logger
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/app.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	serverCfg := config.GetServerConfig()
	gin.SetMode(serverCfg.GinMode)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer bootCancel()

	// mongodb: a bad URI is fatal, an unreachable server is tolerated and
	// reported by /health
	mongoCfg := config.GetMongoConfig()
	mgr, err := store.Connect(bootCtx, store.Config{URI: mongoCfg.URI, Database: mongoCfg.Database}, log)
	if err != nil {
		log.Fatal("Failed to set up mongodb client", logger.Error(err))
	}
	if err := mgr.EnsureIndexes(bootCtx); err != nil {
		log.Warn("Could not ensure mongodb indexes", logger.Error(err))
	}

	authCfg := config.GetAuthConfig()
	tokens := auth.NewTokenManager(authCfg.JWTSecret, authCfg.AccessTokenTTL, authCfg.RefreshTokenTTL)

	redisCfg := config.GetRedisConfig()
	q := queue.New(&queue.Config{RedisAddr: redisCfg.Addr, RedisDB: redisCfg.DB})
	defer q.Close()

	classifierCfg := config.GetClassifierConfig()
	cls := classifier.NewHTTPClient(classifier.Config{
		Endpoint: classifierCfg.Endpoint,
		Model:    classifierCfg.Model,
		Timeout:  classifierCfg.Timeout,
	})
	defer cls.Close()

	extractCfg := config.GetExtractConfig()
	extractor := extract.NewExtractor(extract.Config{
		MaxFileBytes: int64(extractCfg.MaxFileSizeMB) << 20,
	}, log)

	m := metrics.New()

	users := store.NewUsers(mgr.Database())

	h := handlers.NewHandlers(handlers.Deps{
		Extractor:  extractor,
		Classifier: cls,
		Users:      users,
		Codes:      store.NewCodes(mgr.Database(), authCfg.CodeTTL),
		Feedback:   store.NewFeedback(mgr.Database()),
		Tokens:     tokens,
		Queue:      q,
		Database:   mgr,
		Metrics:    m,
		Logger:     log,
		CodeTTL:    authCfg.CodeTTL,
		CodeLength: authCfg.CodeLength,
	})
	authRequired := middleware.AuthRequired(tokens, users, log)

	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h, authRequired, m, log)

	srv := &http.Server{
		Addr:    ":" + serverCfg.Port,
		Handler: r,
	}

	// start server
	go func() {
		log.Info("Server starting", logger.String("port", serverCfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", logger.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", logger.Error(err))
	}
	if err := mgr.Close(shutdownCtx); err != nil {
		log.Error("Failed to close mongodb client", logger.Error(err))
	}
}
