// Package scheduler запускает фоновые задачи бота по cron-расписанию
// (github.com/robfig/cron/v3, формат с секундами).
//
// Каждая задача получает контекст, который отменяется при Stop, и может
// иметь собственный таймаут. Паника в задаче перехватывается и логируется.
//
//	s := scheduler.New(log)
//	_, err := s.Add("@every 1m", func(ctx context.Context) error {
//	    limiter.Prune(10 * time.Minute)
//	    return nil
//	}, scheduler.JobOptions{Name: "ratelimit-prune"})
//	s.Start()
//	defer s.Stop(context.Background())
package scheduler
