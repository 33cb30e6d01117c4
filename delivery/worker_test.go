package delivery

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	werrors "github.com/pmcgeorge/weewx/errors"
	"github.com/pmcgeorge/weewx/queue"
)

// fakeTransport records delivered payloads and answers from a scripted
// error sequence.
type fakeTransport struct {
	mu        sync.Mutex
	delivered []string
	errs      []error // consumed one per call; nil errs mean success
	block     chan struct{}
}

func (f *fakeTransport) Deliver(_ context.Context, payload string) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delivered = append(f.delivered, payload)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}

func (f *fakeTransport) deliveredPayloads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.delivered...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestWorkerDeliversInOrder(t *testing.T) {
	q := queue.New[Task[string]]()
	tr := &fakeTransport{}
	w := NewWorker("test", q, tr, Config{}, testLogger())

	require.NoError(t, w.Start(context.Background()))

	q.Push(NewTask(100, "a"))
	q.Push(NewTask(200, "b"))
	q.Push(NewTask(300, "c"))

	waitFor(t, func() bool { return len(tr.deliveredPayloads()) == 3 })
	assert.Equal(t, []string{"a", "b", "c"}, tr.deliveredPayloads())
	assert.Equal(t, Running, w.State())
	assert.Equal(t, int64(300), w.LastPost())

	assert.NoError(t, w.Stop(time.Second))
	assert.Equal(t, StoppedShutdown, w.State())
}

func TestWorkerBacklogTrimming(t *testing.T) {
	q := queue.New[Task[string]]()
	// Enqueue before the worker runs so trimming is deterministic
	for _, p := range []string{"t1", "t2", "t3", "t4", "t5"} {
		q.Push(NewTask(0, p))
	}

	tr := &fakeTransport{}
	w := NewWorker("test", q, tr, Config{MaxBacklog: intPtr(2)}, testLogger())
	require.NoError(t, w.Start(context.Background()))

	waitFor(t, func() bool { return len(tr.deliveredPayloads()) == 3 })
	time.Sleep(20 * time.Millisecond)

	// t1 and t2 are dropped without a delivery attempt: after popping
	// them the remaining length still exceeded the bound
	assert.Equal(t, []string{"t3", "t4", "t5"}, tr.deliveredPayloads())

	assert.NoError(t, w.Stop(time.Second))
}

func TestWorkerNoTrimmingWhenUnbounded(t *testing.T) {
	q := queue.New[Task[string]]()
	for _, p := range []string{"t1", "t2", "t3", "t4", "t5"} {
		q.Push(NewTask(0, p))
	}

	tr := &fakeTransport{}
	w := NewWorker("test", q, tr, Config{}, testLogger())
	require.NoError(t, w.Start(context.Background()))

	waitFor(t, func() bool { return len(tr.deliveredPayloads()) == 5 })
	assert.NoError(t, w.Stop(time.Second))
}

func TestWorkerRetryableFailureKeepsRunning(t *testing.T) {
	q := queue.New[Task[string]]()
	tr := &fakeTransport{errs: []error{werrors.ErrFailedPost}}
	w := NewWorker("test", q, tr, Config{LogFailure: true}, testLogger())
	require.NoError(t, w.Start(context.Background()))

	q.Push(NewTask(100, "fails"))
	q.Push(NewTask(200, "succeeds"))

	// The failed attempt still counts as an attempted post
	waitFor(t, func() bool { return w.LastPost() == 200 })
	assert.Equal(t, Running, w.State())
	assert.Len(t, tr.deliveredPayloads(), 2)

	assert.NoError(t, w.Stop(time.Second))
}

func TestWorkerBadLoginStopsPermanently(t *testing.T) {
	q := queue.New[Task[string]]()
	tr := &fakeTransport{errs: []error{werrors.ErrBadLogin}}
	w := NewWorker("test", q, tr, Config{}, testLogger())
	require.NoError(t, w.Start(context.Background()))

	q.Push(NewTask(100, "rejected"))
	waitFor(t, func() bool { return w.State() == StoppedFatal })

	// Later enqueues are never delivered
	q.Push(NewTask(200, "never"))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"rejected"}, tr.deliveredPayloads())

	// Stop after a fatal stop returns immediately
	assert.NoError(t, w.Stop(time.Second))
	assert.Equal(t, StoppedFatal, w.State())
}

func TestWorkerStopWakesBlockedWorker(t *testing.T) {
	q := queue.New[Task[string]]()
	tr := &fakeTransport{}
	w := NewWorker("test", q, tr, Config{}, testLogger())
	require.NoError(t, w.Start(context.Background()))

	// Worker is blocked on an empty queue; Stop must wake it
	done := make(chan error, 1)
	go func() { done <- w.Stop(time.Second) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
	assert.Equal(t, StoppedShutdown, w.State())
}

func TestWorkerStopTimeout(t *testing.T) {
	q := queue.New[Task[string]]()
	tr := &fakeTransport{block: make(chan struct{})}
	w := NewWorker("test", q, tr, Config{}, testLogger())
	require.NoError(t, w.Start(context.Background()))

	q.Push(NewTask(100, "stuck"))
	time.Sleep(20 * time.Millisecond)

	// In-flight delivery is not interrupted; Stop gives up after the
	// grace period and the caller proceeds regardless
	err := w.Stop(50 * time.Millisecond)
	assert.ErrorIs(t, err, werrors.ErrStopTimeout)

	close(tr.block)
}

func TestWorkerContextCancelClosesQueue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := queue.New[Task[string]]()
	w := NewWorker("test", q, &fakeTransport{}, Config{}, testLogger())
	require.NoError(t, w.Start(ctx))

	cancel()
	waitFor(t, func() bool { return w.State() == StoppedShutdown })
}

func TestWorkerDoubleStart(t *testing.T) {
	q := queue.New[Task[string]]()
	w := NewWorker("test", q, &fakeTransport{}, Config{}, testLogger())
	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()))
	assert.NoError(t, w.Stop(time.Second))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "stopped_shutdown", StoppedShutdown.String())
	assert.Equal(t, "stopped_fatal", StoppedFatal.String())
	assert.False(t, Running.Terminal())
	assert.True(t, StoppedFatal.Terminal())
}
