// Package service runs the upload pipelines as one unit: records fan out
// to every destination, and shutdown drains every queue in parallel.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pmcgeorge/weewx/config"
	"github.com/pmcgeorge/weewx/delivery"
	"github.com/pmcgeorge/weewx/destination"
	werrors "github.com/pmcgeorge/weewx/errors"
	"github.com/pmcgeorge/weewx/pkg/retry"
	"github.com/pmcgeorge/weewx/record"
)

// Service fans observation records out to the configured destinations.
// Submit never blocks on the network; each destination drains its queue on
// its own worker.
type Service struct {
	destinations []destination.Destination
	logger       *slog.Logger

	lifecycleMu sync.Mutex
	started     bool
}

// New builds a service from loaded configuration. Disabled destinations
// are skipped; an invalid enabled destination fails construction.
func New(cfg *config.Config, deps destination.Deps) (*Service, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
		deps.Logger = logger
	}

	var dests []destination.Destination
	for _, dc := range cfg.Destinations {
		if !dc.IsEnabled() {
			logger.Info("destination disabled", "destination", dc.Name)
			continue
		}
		dest, err := build(dc, cfg.Station, deps)
		if err != nil {
			return nil, err
		}
		dests = append(dests, dest)
	}

	return &Service{destinations: dests, logger: logger}, nil
}

// build maps one configuration entry onto a destination pipeline
func build(dc config.DestinationConfig, station config.StationConfig,
	deps destination.Deps) (destination.Destination, error) {

	deliveryCfg := delivery.Config{
		MaxBacklog:     dc.MaxBacklog,
		LogSuccess:     dc.LogSuccess == nil || *dc.LogSuccess,
		LogFailure:     dc.LogFailure == nil || *dc.LogFailure,
		PostsPerMinute: dc.PostsPerMinute,
	}
	timeout := time.Duration(dc.TimeoutSeconds) * time.Second

	if dc.IsAmbient() {
		retryCfg := retry.DefaultConfig()
		retryCfg.MaxAttempts = dc.MaxTries
		return destination.NewAmbient(destination.AmbientConfig{
			Name:               dc.Name,
			URL:                dc.URL,
			Station:            dc.Station,
			Password:           dc.Password,
			SoftwareType:       station.SoftwareType(),
			RapidFire:          dc.RapidFire,
			StaleSeconds:       dc.StaleSeconds,
			MinIntervalSeconds: dc.PostIntervalSeconds,
			Timeout:            timeout,
			Retry:              retryCfg,
			Delivery:           deliveryCfg,
		}, deps)
	}

	return destination.NewCWOP(destination.CWOPConfig{
		Name:                   dc.Name,
		Station:                dc.Station,
		Passcode:               dc.Passcode,
		Latitude:               station.Latitude,
		Longitude:              station.Longitude,
		SoftwareName:           station.SoftwareName,
		SoftwareVersion:        station.SoftwareVersion,
		Hardware:               station.Hardware,
		Servers:                dc.Servers,
		MaxTries:               dc.MaxTries,
		Timeout:                timeout,
		ReconnectOnSendFailure: dc.ReconnectOnSendFailure,
		StaleSeconds:           dc.StaleSeconds,
		MinIntervalSeconds:     dc.PostIntervalSeconds,
		Delivery:               deliveryCfg,
	}, deps)
}

// Destinations returns the built destinations, mostly for inspection
func (s *Service) Destinations() []destination.Destination {
	return s.destinations
}

// Start launches every destination's worker
func (s *Service) Start(ctx context.Context) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if s.started {
		return werrors.WrapFatal(werrors.ErrAlreadyStarted, "Service", "Start", "check state")
	}
	for _, d := range s.destinations {
		if err := d.Start(ctx); err != nil {
			return werrors.Wrap(err, "Service", "Start", "start "+d.Name())
		}
	}
	s.started = true
	s.logger.Info("upload service started", "destinations", len(s.destinations))
	return nil
}

// Submit offers a record to every destination. One destination's failure
// is logged and does not keep the record from the others; Submit reports
// only how many destinations rejected it.
func (s *Service) Submit(ctx context.Context, rec record.Record) {
	for _, d := range s.destinations {
		if err := d.Submit(ctx, rec); err != nil {
			s.logger.Error("record rejected",
				"destination", d.Name(),
				"timestamp", rec.Timestamp,
				"error", err)
		}
	}
}

// Shutdown stops every destination in parallel, giving each the same
// drain budget. The first stop error is returned after all destinations
// have been stopped.
func (s *Service) Shutdown(timeout time.Duration) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false

	var g errgroup.Group
	for _, d := range s.destinations {
		d := d
		g.Go(func() error {
			if err := d.Stop(timeout); err != nil {
				s.logger.Warn("destination did not stop cleanly",
					"destination", d.Name(), "error", err)
				return err
			}
			return nil
		})
	}
	err := g.Wait()
	s.logger.Info("upload service stopped")
	return err
}
