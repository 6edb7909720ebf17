package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alxdev/echocheck-backend/config"
	"github.com/alxdev/echocheck-backend/internal/mailer"
	"github.com/alxdev/echocheck-backend/pkg/logger"
	"github.com/alxdev/echocheck-backend/pkg/queue"
	"github.com/alxdev/echocheck-backend/pkg/worker"
)

func main() {
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/worker.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	emailCfg := config.GetEmailConfig()
	m := mailer.New(mailer.Config{APIKey: emailCfg.ResendAPIKey, From: emailCfg.FromEmail}, log)

	redisCfg := config.GetRedisConfig()
	q := queue.New(&queue.Config{RedisAddr: redisCfg.Addr, RedisDB: redisCfg.DB})
	defer q.Close()

	workerCfg := &worker.Config{
		RedisAddr:   redisCfg.Addr,
		RedisDB:     redisCfg.DB,
		Concurrency: 10,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	}

	mailWorker := worker.NewMailWorker(workerCfg, m, q, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mailWorker.Start(ctx); err != nil {
		log.Error("Failed to start worker", logger.Error(err))
		os.Exit(1)
	}
	log.Info("Mail worker started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down worker...")
	mailWorker.Stop()
	log.Info("Worker stopped")
}
