// Contracta Sweeper удаляет завершённые задания рендеринга
// старше RENDER_RETENTION по расписанию SWEEP_CRON.
//
// Можно запускать несколько экземпляров: удаление выполняет только
// держатель pg advisory lock.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Contracta/internal/repo"
	"github.com/shaiso/Contracta/internal/sweeper"
	"github.com/shaiso/Contracta/internal/telemetry"
)

func main() {
	logger := telemetry.SetupLogger("contracta-sweeper")
	logger.Info("starting contracta-sweeper")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	retention := sweeper.DefaultRetention
	if v := os.Getenv("RENDER_RETENTION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			logger.Error("invalid RENDER_RETENTION", "value", v, "error", err)
			os.Exit(1)
		}
		retention = d
	}

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	sw, err := sweeper.New(sweeper.Config{
		Store:     repo.NewRenderJobRepo(pool),
		Locker:    sweeper.NewAdvisoryLocker(pool),
		Retention: retention,
		Schedule:  os.Getenv("SWEEP_CRON"),
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to create sweeper", "error", err)
		os.Exit(1)
	}
	sw.Start(ctx)

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8081"
	if v := os.Getenv("SWEEPER_PORT"); v != "" {
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

	sw.Stop()
	logger.Info("contracta-sweeper stopped")
}
