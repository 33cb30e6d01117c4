// Package destination assembles the per-destination upload pipelines: the
// admission gate, archive augmentation, protocol formatting, the delivery
// queue and its background worker.
package destination

import (
	"context"
	"log/slog"
	"time"

	"github.com/pmcgeorge/weewx/archive"
	"github.com/pmcgeorge/weewx/augment"
	"github.com/pmcgeorge/weewx/delivery"
	"github.com/pmcgeorge/weewx/gate"
	"github.com/pmcgeorge/weewx/metric"
	"github.com/pmcgeorge/weewx/queue"
	"github.com/pmcgeorge/weewx/record"
)

// Destination is one configured upload target. Submit never blocks on the
// network: it gates, augments and formats the record, then enqueues the
// payload for the destination's worker.
type Destination interface {
	Name() string
	Start(ctx context.Context) error
	Submit(ctx context.Context, rec record.Record) error
	Stop(timeout time.Duration) error
}

// Deps are the process-wide collaborators shared by every destination
type Deps struct {
	// Converter supplies unit conversions for the protocol formatters
	Converter record.Converter
	// Archive backs rain-total augmentation; nil disables it
	Archive archive.Archive
	// Location resolves the local start-of-day boundary for dayRain
	Location *time.Location
	// Logger is the parent logger; each destination derives its own
	Logger *slog.Logger
	// Metrics receives pipeline metrics; nil runs unobserved
	Metrics *metric.Metrics
}

// pipeline is the protocol-independent half of a destination: everything
// between Submit and the transport, parameterized by the payload type the
// formatter produces.
type pipeline[T any] struct {
	name    string
	gate    gate.Params
	aug     augment.Augmenter
	arch    archive.Archive
	format  func(record.Record) (T, error)
	queue   *queue.Queue[delivery.Task[T]]
	worker  *delivery.Worker[T]
	metrics *metric.Metrics
	logger  *slog.Logger

	now func() int64
}

func newPipeline[T any](name string, gateParams gate.Params, format func(record.Record) (T, error),
	transport delivery.Transport[T], deliveryCfg delivery.Config, deps Deps) *pipeline[T] {

	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	q := queue.New[delivery.Task[T]]()
	p := &pipeline[T]{
		name:    name,
		gate:    gateParams,
		aug:     augment.Augmenter{Location: deps.Location},
		arch:    deps.Archive,
		format:  format,
		queue:   q,
		metrics: deps.Metrics,
		logger:  deps.Logger.With("destination", name),
		now:     func() int64 { return time.Now().Unix() },
	}
	p.worker = delivery.NewWorker(name, q, transport, deliveryCfg, deps.Logger,
		delivery.WithMetrics[T](deps.Metrics))
	return p
}

func (p *pipeline[T]) Name() string {
	return p.name
}

// Start launches the destination's worker
func (p *pipeline[T]) Start(ctx context.Context) error {
	return p.worker.Start(ctx)
}

// Submit runs the record through the destination's front half. A gated
// record is skipped silently; an augmentation or formatting failure is
// returned to the caller and nothing is enqueued.
func (p *pipeline[T]) Submit(ctx context.Context, rec record.Record) error {
	if reason := gate.ShouldSkip(rec.Timestamp, p.now(), p.gate, p.worker.LastPost()); reason != gate.None {
		if p.metrics != nil {
			p.metrics.SkippedTotal.WithLabelValues(p.name, reason.String()).Inc()
		}
		p.logger.Debug("skipped record", "reason", reason.String(), "timestamp", rec.Timestamp)
		return nil
	}

	augmented, err := p.aug.Augment(ctx, rec, p.arch)
	if err != nil {
		return err
	}

	payload, err := p.format(augmented)
	if err != nil {
		return err
	}

	p.queue.Push(delivery.NewTask(rec.Timestamp, payload))
	if p.metrics != nil {
		p.metrics.QueueDepth.WithLabelValues(p.name).Set(float64(p.queue.Len()))
	}
	return nil
}

// Stop closes the queue and waits for the worker to drain
func (p *pipeline[T]) Stop(timeout time.Duration) error {
	return p.worker.Stop(timeout)
}
