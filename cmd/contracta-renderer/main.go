// Contracta Renderer выполняет задания рендеринга.
//
// Renderer:
//   - Получает renders.requested из RabbitMQ и опрашивает PENDING задания
//   - Сливает шаблон со снимком контракта
//   - Печатает PDF через headless Chrome
//   - Публикует renders.completed
//
// Renderers масштабируются горизонтально: задание забирается атомарно.
// Задание, брошенное упавшим воркером, забирается снова через RENDER_STALE_AFTER.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Contracta/internal/export"
	"github.com/shaiso/Contracta/internal/mq"
	"github.com/shaiso/Contracta/internal/renderer"
	"github.com/shaiso/Contracta/internal/repo"
	"github.com/shaiso/Contracta/internal/telemetry"
)

func main() {
	logger := telemetry.SetupLogger("contracta-renderer")
	logger.Info("starting contracta-renderer")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	printer := export.NewChromePrinter(logger)
	defer printer.Close()

	cfg := renderer.Config{
		Jobs:      repo.NewRenderJobRepo(pool),
		Contracts: repo.NewContractRepo(pool),
		Templates: repo.NewContractTypeRepo(pool),
		Printer:   printer,
		Logger:    logger,
	}
	if v := os.Getenv("RENDER_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			logger.Error("invalid RENDER_POLL_INTERVAL", "value", v, "error", err)
			os.Exit(1)
		}
		cfg.PollInterval = d
	}
	if v := os.Getenv("RENDER_STALE_AFTER"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			logger.Error("invalid RENDER_STALE_AFTER", "value", v, "error", err)
			os.Exit(1)
		}
		cfg.StaleAfter = d
	}

	// RabbitMQ
	mqConn, err := mq.NewConnection(mq.URL(), logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, running in polling-only mode", "error", err)
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}
		cfg.Conn = mqConn
		cfg.Publisher = mq.NewPublisher(mqConn, logger)
	}

	r := renderer.New(cfg)
	r.Start(ctx)

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8082"
	if v := os.Getenv("RENDERER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	r.Stop()
	logger.Info("contracta-renderer stopped")
}
