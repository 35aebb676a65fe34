package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// JobFunc представляет функцию задачи планировщика.
type JobFunc func(ctx context.Context) error

// JobID идентифицирует задачу.
type JobID = cron.EntryID

// JobOptions содержит опции задачи.
type JobOptions struct {
	// Name используется в логах.
	Name string
	// Timeout ограничивает одно выполнение (0 означает без ограничения).
	Timeout time.Duration
	// AllowOverlap разрешает запуск, пока предыдущий ещё идёт.
	// По умолчанию такие запуски пропускаются.
	AllowOverlap bool
}

// cronLogger адаптер для интеграции cron logger с slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append([]any{slog.Any("err", err)}, keysAndValues...)...)
}

// Scheduler управляет периодическими задачами.
type Scheduler struct {
	cron   *cron.Cron
	clog   cron.Logger
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	startOnce sync.Once
	stopOnce  sync.Once
}

// New создает планировщик. Задачи получают контекст, отменяемый при Stop.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "scheduler")
	clog := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithLogger(clog)),
		clog:   clog,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add добавляет задачу по cron-расписанию.
// Примеры расписаний:
//   - "0 */5 * * * *" - каждые 5 минут
//   - "@every 1m" - каждую минуту
func (s *Scheduler) Add(schedule string, job JobFunc, opts JobOptions) (JobID, error) {
	if opts.Name == "" {
		opts.Name = "unnamed"
	}
	chain := cron.NewChain(cron.Recover(s.clog))
	if !opts.AllowOverlap {
		chain = cron.NewChain(cron.Recover(s.clog), cron.SkipIfStillRunning(s.clog))
	}
	id, err := s.cron.AddJob(schedule, chain.Then(cron.FuncJob(func() { s.run(job, opts) })))
	if err != nil {
		return 0, fmt.Errorf("scheduler: add %s: %w", opts.Name, err)
	}
	s.logger.Info("job added", "name", opts.Name, "schedule", schedule, "id", id)
	return id, nil
}

// Trigger runs the job id once right now, outside its schedule. It reports
// false for unknown ids.
func (s *Scheduler) Trigger(id JobID) bool {
	e := s.cron.Entry(id)
	if !e.Valid() {
		return false
	}
	e.Job.Run()
	return true
}

// Start запускает планировщик.
func (s *Scheduler) Start() {
	s.startOnce.Do(func() {
		s.logger.Info("starting scheduler")
		s.cron.Start()
	})
}

// Stop останавливает планировщик и ждет завершения запущенных задач, но не
// дольше, чем позволяет ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		s.cancel()
		done := s.cron.Stop()
		select {
		case <-done.Done():
			s.logger.Info("scheduler stopped")
		case <-ctx.Done():
			err = fmt.Errorf("scheduler: stop: %w", ctx.Err())
		}
	})
	return err
}

func (s *Scheduler) run(job JobFunc, opts JobOptions) {
	ctx := s.ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	start := time.Now()
	if err := job(ctx); err != nil {
		s.logger.Error("job failed", "name", opts.Name, "err", err, "dur", time.Since(start))
		return
	}
	s.logger.Debug("job done", "name", opts.Name, "dur", time.Since(start))
}
