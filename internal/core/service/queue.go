package service

import (
	"context"
	"sync"
	"time"

	"spybot/internal/core/domain"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// WorkQueue runs tasks on a fixed set of workers in enqueue order.
type WorkQueue struct {
	name    domain.QueueClass
	workers int
	tasks   chan domain.Task

	mu     sync.RWMutex
	closed bool
	wg     conc.WaitGroup
}

func NewWorkQueue(name domain.QueueClass, workers, buffer int) *WorkQueue {
	if workers < 1 {
		workers = 1
	}

	if buffer < 0 {
		buffer = 0
	}

	return &WorkQueue{
		name:    name,
		workers: workers,
		tasks:   make(chan domain.Task, buffer),
	}
}

func (q *WorkQueue) Name() string {
	return string(q.name)
}

// Pending is the number of tasks waiting for a worker.
func (q *WorkQueue) Pending() int {
	return len(q.tasks)
}

// Start launches the workers. Tasks see ctx's values but not its cancellation,
// so whatever is still queued when Stop is called runs to completion.
func (q *WorkQueue) Start(ctx context.Context) {
	log.Info().Str("queue", q.Name()).Int("workers", q.workers).Msg("starting work queue")

	ctx = context.WithoutCancel(ctx)

	for i := range q.workers {
		q.wg.Go(func() {
			q.work(ctx, i)
		})
	}
}

func (q *WorkQueue) Enqueue(task domain.Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return domain.ErrQueueClosed
	}

	if task.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		task.ID = id
	}

	if task.Class == "" {
		task.Class = q.name
	}

	select {
	case q.tasks <- task:
		log.Debug().
			Str("queue", q.Name()).
			Str("task", task.ID.String()).
			Str("label", task.Label).
			Int64("chatId", task.ChatID).
			Msg("task enqueued")
		return nil
	default:
		log.Warn().Str("queue", q.Name()).Str("label", task.Label).Msg("queue full, rejecting task")
		return domain.ErrQueueFull
	}
}

// Stop rejects new tasks and waits until the workers have drained what is queued.
func (q *WorkQueue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	q.wg.Wait()
	log.Info().Str("queue", q.Name()).Msg("work queue stopped")
}

func (q *WorkQueue) work(ctx context.Context, worker int) {
	for task := range q.tasks {
		q.run(ctx, worker, task)
	}
}

func (q *WorkQueue) run(ctx context.Context, worker int, task domain.Task) {
	l := log.With().
		Str("queue", q.Name()).
		Int("worker", worker).
		Str("task", task.ID.String()).
		Str("label", task.Label).
		Int64("chatId", task.ChatID).
		Logger()

	if task.Run == nil {
		l.Warn().Msg("skipping task without payload")
		return
	}

	start := time.Now()

	var pc panics.Catcher
	pc.Try(func() {
		task.Run(ctx)
	})

	if r := pc.Recovered(); r != nil {
		l.Error().Err(r.AsError()).Bytes("stack", r.Stack).Msg("task panicked")
		return
	}

	l.Debug().Dur("took", time.Since(start)).Msg("task finished")
}
