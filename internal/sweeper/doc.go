// Package sweeper удаляет завершённые задания рендеринга по истечении срока хранения.
//
// Sweeper запускается по cron-выражению (SWEEP_CRON) и удаляет задания
// в статусах SUCCEEDED и FAILED старше RENDER_RETENTION.
//
// Структура:
//   - sweeper.go: Sweeper (Start, Stop, Sweep)
//   - cron.go: парсинг cron-выражений и адаптер логгера для robfig/cron
//   - lock.go: leader election через pg_try_advisory_lock
//
// Использование:
//
//	sw, err := sweeper.New(sweeper.Config{
//	    Store:     renderJobRepo,
//	    Locker:    sweeper.NewAdvisoryLocker(pool),
//	    Retention: 30 * 24 * time.Hour,
//	    Schedule:  "0 * * * *",
//	    Logger:    logger,
//	})
//	sw.Start(ctx)
//	defer sw.Stop()
//
// Если запущено несколько экземпляров, удаление выполняет только
// держатель advisory lock.
package sweeper
