// Package telemetry содержит логирование и метрики сервисов Contracta.
//
//   - logging.go: slog-логгер с атрибутом service, уровень и формат из
//     LOG_LEVEL/LOG_FORMAT, логгер запроса в context
//   - metrics.go: Prometheus-метрики рендеринга, предпросмотра, HTTP и sweeper'а
//
// Каждый бинарник отдаёт метрики на /metrics.
package telemetry
