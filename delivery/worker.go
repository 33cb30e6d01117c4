package delivery

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	werrors "github.com/pmcgeorge/weewx/errors"
	"github.com/pmcgeorge/weewx/metric"
	"github.com/pmcgeorge/weewx/queue"
)

// Config holds the worker-side delivery policy for one destination
type Config struct {
	// MaxBacklog bounds how many queued tasks survive trimming; nil means
	// unbounded. Trimming happens at consumption time: under sustained
	// overload only the most recent MaxBacklog tasks are delivered.
	MaxBacklog *int
	// LogSuccess and LogFailure gate the per-task outcome log lines
	LogSuccess bool
	LogFailure bool
	// PostsPerMinute caps the outbound delivery rate; 0 means no cap
	PostsPerMinute float64
}

// Worker drains one destination's queue on a dedicated goroutine. It is
// either running or permanently stopped; a stopped worker is never
// restarted.
type Worker[T any] struct {
	name      string
	queue     *queue.Queue[Task[T]]
	transport Transport[T]
	cfg       Config
	logger    *slog.Logger
	metrics   *metric.Metrics
	limiter   *rate.Limiter

	state    atomic.Int32
	lastPost atomic.Int64

	lifecycleMu sync.Mutex
	started     bool
	done        chan struct{}
}

// Option configures a Worker
type Option[T any] func(*Worker[T])

// WithMetrics attaches pipeline metrics. Without it the worker runs
// unobserved (nil input = nil feature).
func WithMetrics[T any](m *metric.Metrics) Option[T] {
	return func(w *Worker[T]) {
		w.metrics = m
	}
}

// NewWorker creates a worker for one destination
func NewWorker[T any](name string, q *queue.Queue[Task[T]], transport Transport[T],
	cfg Config, logger *slog.Logger, opts ...Option[T]) *Worker[T] {

	w := &Worker[T]{
		name:      name,
		queue:     q,
		transport: transport,
		cfg:       cfg,
		logger:    logger.With("destination", name),
		done:      make(chan struct{}),
	}
	if cfg.PostsPerMinute > 0 {
		w.limiter = rate.NewLimiter(rate.Limit(cfg.PostsPerMinute/60.0), 1)
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name returns the destination name the worker serves
func (w *Worker[T]) Name() string {
	return w.name
}

// State returns the worker's current lifecycle state
func (w *Worker[T]) State() State {
	return State(w.state.Load())
}

// LastPost returns the record timestamp of the last attempted post, zero
// if none. It is written only by the worker goroutine and read by the
// admission gate, hence the atomic.
func (w *Worker[T]) LastPost() int64 {
	return w.lastPost.Load()
}

// Start launches the worker goroutine. Cancelling ctx closes the queue,
// so the worker also winds down if the caller skips Stop.
func (w *Worker[T]) Start(ctx context.Context) error {
	w.lifecycleMu.Lock()
	defer w.lifecycleMu.Unlock()

	if w.started {
		return werrors.WrapFatal(werrors.ErrAlreadyStarted, "Worker", "Start", "check state")
	}
	w.started = true

	go func() {
		select {
		case <-ctx.Done():
			w.queue.Close()
		case <-w.done:
		}
	}()
	go w.run(ctx)
	return nil
}

// Stop pushes the close signal and waits up to timeout for the worker to
// reach a terminal state. On timeout it returns ErrStopTimeout and the
// caller proceeds regardless; the worker never blocks process exit.
func (w *Worker[T]) Stop(timeout time.Duration) error {
	w.lifecycleMu.Lock()
	defer w.lifecycleMu.Unlock()

	if !w.started {
		return nil
	}

	w.queue.Close()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-w.done:
		return nil
	case <-timer.C:
		w.logger.Error("worker did not stop within grace period", "timeout", timeout)
		return werrors.WrapTransient(werrors.ErrStopTimeout, "Worker", "Stop", "wait for exit")
	}
}

func (w *Worker[T]) run(ctx context.Context) {
	defer close(w.done)

	for {
		task, ok := w.queue.Pop()
		if !ok {
			w.setState(StoppedShutdown)
			w.logger.Debug("worker shut down")
			return
		}

		// Backlog trimming: discard popped tasks while the remaining
		// queue length still exceeds the bound, so only the most recent
		// tasks are ever delivered under overload.
		if w.cfg.MaxBacklog != nil && w.queue.Len() > *w.cfg.MaxBacklog {
			if w.metrics != nil {
				w.metrics.DroppedTotal.WithLabelValues(w.name).Inc()
			}
			w.logger.Debug("dropped backlogged task", "task", task.ID, "backlog", w.queue.Len())
			continue
		}

		if w.limiter != nil {
			if err := w.limiter.Wait(ctx); err != nil {
				w.setState(StoppedShutdown)
				return
			}
		}

		start := time.Now()
		err := w.transport.Deliver(ctx, task.Payload)

		// Last attempted post time, success or not; the admission gate
		// keys its interval check off this.
		w.lastPost.Store(task.Timestamp)

		if w.metrics != nil {
			w.metrics.PostDuration.WithLabelValues(w.name).Observe(time.Since(start).Seconds())
			w.metrics.QueueDepth.WithLabelValues(w.name).Set(float64(w.queue.Len()))
		}

		switch {
		case err == nil:
			w.countPost(metric.StatusSuccess)
			if w.cfg.LogSuccess {
				w.logger.Info("published record",
					"task", task.ID,
					"record_time", time.Unix(task.Timestamp, 0).UTC().Format(time.RFC3339))
			}

		case werrors.IsFatal(err):
			w.countPost(metric.StatusBadLogin)
			w.logger.Error("login rejected, terminating destination worker",
				"task", task.ID, "error", err)
			w.setState(StoppedFatal)
			return

		default:
			w.countPost(metric.StatusFailed)
			if w.cfg.LogFailure {
				w.logger.Error("failed to upload record", "task", task.ID, "error", err)
			}
		}
	}
}

func (w *Worker[T]) setState(s State) {
	w.state.Store(int32(s))
	if w.metrics != nil {
		w.metrics.WorkerState.WithLabelValues(w.name).Set(float64(s))
	}
}

func (w *Worker[T]) countPost(status string) {
	if w.metrics != nil {
		w.metrics.PostsTotal.WithLabelValues(w.name, status).Inc()
	}
}
