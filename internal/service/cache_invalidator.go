package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutor-schedule-api/pkg/jobs"
)

const (
	jobInvalidateCalendar = "calendar.invalidate"
	syncInvalidateTimeout = 3 * time.Second
)

// CacheInvalidator evicts teacher calendars on a background queue so slot writes do not wait on Redis.
type CacheInvalidator struct {
	cache  *CacheService
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewCacheInvalidator builds the invalidator and its worker queue. Call Start before use.
func NewCacheInvalidator(cache *CacheService, cfg jobs.QueueConfig) *CacheInvalidator {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	inv := &CacheInvalidator{cache: cache, logger: cfg.Logger}
	inv.queue = jobs.NewQueue("cache-invalidation", inv.handle, cfg)
	return inv
}

// Start launches the workers.
func (i *CacheInvalidator) Start(ctx context.Context) {
	i.queue.Start(ctx)
}

// Stop discards pending evictions and waits for workers to exit.
func (i *CacheInvalidator) Stop() {
	i.queue.Stop()
}

// Stats exposes queue counters.
func (i *CacheInvalidator) Stats() jobs.Stats {
	return i.queue.Stats()
}

// InvalidateTeacherCalendar schedules eviction of every cached calendar of the teacher.
// When the queue cannot accept the job the eviction runs inline.
func (i *CacheInvalidator) InvalidateTeacherCalendar(teacherID string) {
	if i == nil || !i.cache.Enabled() || teacherID == "" {
		return
	}
	pattern := TeacherCalendarPattern(teacherID)
	err := i.queue.Enqueue(jobs.Job{Type: jobInvalidateCalendar, Key: pattern, Payload: pattern})
	if err == nil {
		return
	}
	i.logger.Warn("cache invalidation queue unavailable, evicting inline", zap.String("pattern", pattern), zap.Error(err))
	ctx, cancel := context.WithTimeout(context.Background(), syncInvalidateTimeout)
	defer cancel()
	_ = i.cache.Invalidate(ctx, pattern)
}

func (i *CacheInvalidator) handle(ctx context.Context, job jobs.Job) error {
	pattern, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", job.Payload, job.Type)
	}
	return i.cache.Invalidate(ctx, pattern)
}
