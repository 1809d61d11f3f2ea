package telemetry

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/shaiso/Contracta/internal/domain"
)

// LogLevel читает уровень из LOG_LEVEL (DEBUG, INFO, WARN, ERROR, регистр
// не важен, допускается смещение вида "INFO+2"). Пустое или неверное
// значение даёт INFO; второй результат false для неверного значения.
func LogLevel() (slog.Level, bool) {
	v := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if v == "" {
		return slog.LevelInfo, true
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return slog.LevelInfo, false
	}
	return level, true
}

// SetupLogger создаёт логгер сервиса и делает его глобальным.
// LOG_FORMAT=text включает текстовый вывод, по умолчанию JSON.
func SetupLogger(service string) *slog.Logger {
	level, ok := LogLevel()
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With("service", service)
	slog.SetDefault(logger)

	if !ok {
		logger.Warn("unknown LOG_LEVEL, using INFO", "value", os.Getenv("LOG_LEVEL"))
	}
	return logger
}

type loggerKey struct{}

// WithLogger кладёт логгер запроса в контекст.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext возвращает логгер из контекста или глобальный.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// ForJob добавляет к логгеру поля задания рендеринга.
func ForJob(logger *slog.Logger, job *domain.RenderJob) *slog.Logger {
	return logger.With(
		"job_id", job.ID,
		"contract_id", job.ContractID,
		"contract_type", job.ContractTypeID,
		"format", job.Format,
	)
}

// ForContract добавляет к логгеру поля контракта.
func ForContract(logger *slog.Logger, c *domain.Contract) *slog.Logger {
	return logger.With(
		"contract_id", c.ID,
		"contract_number", c.Number,
		"contract_type", c.ContractTypeID,
	)
}
