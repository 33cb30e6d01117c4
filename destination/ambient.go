package destination

import (
	"time"

	"github.com/pmcgeorge/weewx/delivery"
	werrors "github.com/pmcgeorge/weewx/errors"
	"github.com/pmcgeorge/weewx/format/ambient"
	"github.com/pmcgeorge/weewx/gate"
	"github.com/pmcgeorge/weewx/pkg/retry"
	"github.com/pmcgeorge/weewx/transport/ambienthttp"
)

// AmbientConfig configures one Ambient-protocol destination
type AmbientConfig struct {
	// Name identifies the destination in logs and metrics
	Name string
	// URL is the provider's update endpoint
	URL string
	// Station and Password identify the account
	Station  string
	Password string
	// SoftwareType is the software identification tag sent with each post
	SoftwareType string
	// RapidFire enables the rapid-update markers on every post
	RapidFire bool
	// StaleSeconds and MinIntervalSeconds are the admission thresholds;
	// nil disables the check
	StaleSeconds       *int64
	MinIntervalSeconds *int64
	// Timeout bounds one HTTP request
	Timeout time.Duration
	// Retry is the per-task attempt policy
	Retry retry.Config
	// Delivery is the worker-side policy
	Delivery delivery.Config
}

// Validate checks the fields a post cannot be built without
func (c AmbientConfig) Validate() error {
	if c.Name == "" {
		return werrors.WrapInvalid(werrors.ErrMissingConfig, "AmbientConfig", "Validate", "name")
	}
	if c.URL == "" {
		return werrors.WrapInvalid(werrors.ErrMissingConfig, "AmbientConfig", "Validate", "url")
	}
	if c.Station == "" || c.Password == "" {
		return werrors.WrapInvalid(werrors.ErrMissingConfig, "AmbientConfig", "Validate", "station credentials")
	}
	return nil
}

// NewAmbient builds an Ambient-protocol destination
func NewAmbient(cfg AmbientConfig, deps Deps) (Destination, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	formatter := ambient.Formatter{
		URL:          cfg.URL,
		Station:      cfg.Station,
		Password:     cfg.Password,
		SoftwareType: cfg.SoftwareType,
		RapidFire:    cfg.RapidFire,
		Converter:    deps.Converter,
	}
	transport := ambienthttp.New(ambienthttp.Config{
		Name:    cfg.Name,
		Timeout: cfg.Timeout,
		Retry:   cfg.Retry,
	})
	gateParams := gate.Params{
		StaleSeconds:       cfg.StaleSeconds,
		MinIntervalSeconds: cfg.MinIntervalSeconds,
	}

	return newPipeline(cfg.Name, gateParams, formatter.Format, transport, cfg.Delivery, deps), nil
}
