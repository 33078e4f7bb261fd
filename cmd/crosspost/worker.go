package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/robfig/cron"
	"github.com/spf13/cobra"

	"github.com/crosspost-app/crosspost/internal/jobs"
	"github.com/crosspost-app/crosspost/internal/queue"
	"github.com/crosspost-app/crosspost/internal/tokens"
)

func newWorkerCmd() *cobra.Command {
	var (
		healthAddr  string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the publish queue worker and token refresh cron",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			return runWorker(a, healthAddr, concurrency)
		},
	}
	cmd.Flags().StringVar(&healthAddr, "health-addr", ":3000", "address for the health endpoint")
	cmd.Flags().IntVar(&concurrency, "concurrency", 10, "number of concurrent queue tasks")
	return cmd
}

func runWorker(a *app, healthAddr string, concurrency int) error {
	redisConn := asynq.RedisClientOpt{Addr: a.cfg.RedisURI}

	server := asynq.NewServer(redisConn, asynq.Config{Concurrency: concurrency})
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskTypePublishPost, a.queue.HandlePublishPostTask)

	refreshJob := jobs.NewTokenRefreshJob(a.accounts,
		tokens.NewRefresher(*a.cfg, a.accounts, &http.Client{Timeout: 30 * time.Second}, a.log), a.log)
	c := cron.New()
	c.AddFunc("@every 00h10m00s", refreshJob.RefreshTokens)
	c.Start()
	defer c.Stop()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/healthz", func(ctx *fiber.Ctx) error {
		if err := a.db.Ping(); err != nil {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
		return ctx.JSON(fiber.Map{"status": "ok"})
	})

	errs := make(chan error, 2)
	go func() {
		a.log.Info("starting queue worker", "concurrency", concurrency)
		if err := server.Run(mux); err != nil {
			errs <- fmt.Errorf("queue worker stopped: %w", err)
		}
	}()
	go func() {
		a.log.Info("health endpoint listening", "addr", healthAddr)
		if err := app.Listen(healthAddr); err != nil {
			errs <- fmt.Errorf("health endpoint stopped: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errs:
		return err
	case <-quit:
	}

	a.log.Info("shutting down")
	server.Shutdown()
	if err := app.Shutdown(); err != nil {
		a.log.Error("failed to shut down health endpoint", "error", err)
	}
	return nil
}
