package destination

import (
	"strings"
	"time"

	"github.com/pmcgeorge/weewx/delivery"
	werrors "github.com/pmcgeorge/weewx/errors"
	"github.com/pmcgeorge/weewx/format/cwop"
	"github.com/pmcgeorge/weewx/gate"
	"github.com/pmcgeorge/weewx/record"
	"github.com/pmcgeorge/weewx/transport/tnc"
)

// DefaultCWOPStaleSeconds is the admission threshold applied when the
// configuration does not set one. CWOP rejects older reports, so the
// check is always on.
const DefaultCWOPStaleSeconds int64 = 1800

// CWOPConfig configures one CWOP destination
type CWOPConfig struct {
	// Name identifies the destination in logs and metrics
	Name string
	// Station is the CWOP station id. CW/DW/EW stations are receive-only
	// and authenticate with passcode -1; other stations need a passcode.
	Station  string
	Passcode string
	// Latitude and Longitude of the station in decimal degrees
	Latitude  float64
	Longitude float64
	// SoftwareName, SoftwareVersion and Hardware identify the sending
	// equipment in the login line and the packet trailer
	SoftwareName    string
	SoftwareVersion string
	Hardware        string
	// Servers are "host:port" addresses tried in order
	Servers []string
	// MaxTries bounds connect passes over the server list
	MaxTries int
	// Timeout bounds each dial and each write
	Timeout time.Duration
	// ReconnectOnSendFailure retries a failed send once on a fresh
	// connection
	ReconnectOnSendFailure bool
	// StaleSeconds and MinIntervalSeconds are the admission thresholds.
	// Nil StaleSeconds means DefaultCWOPStaleSeconds, not disabled.
	StaleSeconds       *int64
	MinIntervalSeconds *int64
	// Delivery is the worker-side policy
	Delivery delivery.Config
}

// Validate checks the fields a packet cannot be built without
func (c CWOPConfig) Validate() error {
	if c.Name == "" {
		return werrors.WrapInvalid(werrors.ErrMissingConfig, "CWOPConfig", "Validate", "name")
	}
	if c.Station == "" {
		return werrors.WrapInvalid(werrors.ErrMissingConfig, "CWOPConfig", "Validate", "station")
	}
	if !cwop.HasValidPrefix(c.Station) && c.Passcode == "" {
		return werrors.WrapInvalid(werrors.ErrMissingConfig, "CWOPConfig", "Validate",
			"passcode required for registered stations")
	}
	if len(c.Servers) == 0 {
		return werrors.WrapInvalid(werrors.ErrMissingConfig, "CWOPConfig", "Validate", "servers")
	}
	return nil
}

// NewCWOP builds a CWOP destination
func NewCWOP(cfg CWOPConfig, deps Deps) (Destination, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	station := strings.ToUpper(cfg.Station)
	passcode := cfg.Passcode
	if cwop.HasValidPrefix(station) {
		passcode = cwop.ReceiveOnlyPasscode
	}

	formatter := cwop.Formatter{
		Station:         station,
		Passcode:        passcode,
		Latitude:        cfg.Latitude,
		Longitude:       cfg.Longitude,
		SoftwareName:    cfg.SoftwareName,
		SoftwareVersion: cfg.SoftwareVersion,
		Hardware:        cfg.Hardware,
		Converter:       deps.Converter,
	}
	format := func(rec record.Record) (tnc.Frame, error) {
		login, packet, err := formatter.Format(rec)
		if err != nil {
			return tnc.Frame{}, err
		}
		return tnc.Frame{Login: login, Packet: packet}, nil
	}

	transport := tnc.New(tnc.Config{
		Name:                   cfg.Name,
		Servers:                cfg.Servers,
		MaxTries:               cfg.MaxTries,
		Timeout:                cfg.Timeout,
		ReconnectOnSendFailure: cfg.ReconnectOnSendFailure,
	})

	stale := cfg.StaleSeconds
	if stale == nil {
		def := DefaultCWOPStaleSeconds
		stale = &def
	}
	gateParams := gate.Params{
		StaleSeconds:       stale,
		MinIntervalSeconds: cfg.MinIntervalSeconds,
	}

	return newPipeline(cfg.Name, gateParams, format, transport, cfg.Delivery, deps), nil
}
