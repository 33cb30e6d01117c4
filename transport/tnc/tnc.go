// Package tnc delivers APRS packets to CWOP servers over raw TCP, speaking
// the TNC2 wire convention: a login line followed by the position packet,
// each terminated with CRLF. The servers never acknowledge, so a completed
// write is the only success signal.
package tnc

import (
	"context"
	"fmt"
	"net"
	"time"

	werrors "github.com/pmcgeorge/weewx/errors"
)

// Frame is one complete CWOP submission
type Frame struct {
	// Login is the "user ... pass ..." line, already CRLF terminated
	Login string
	// Packet is the APRS position report, already CRLF terminated
	Packet string
}

// Config holds transport settings for one CWOP destination
type Config struct {
	// Name identifies the destination in errors and logs
	Name string
	// Servers are "host:port" addresses tried in order
	Servers []string
	// MaxTries bounds the dial attempts per server and the write attempts
	// per line
	MaxTries int
	// Timeout bounds each dial and each write
	Timeout time.Duration
	// ReconnectOnSendFailure retries a failed send once on a fresh
	// connection. Off by default: the worker's own retry of the whole
	// frame is usually enough.
	ReconnectOnSendFailure bool
}

// Transport sends frames to the first reachable server in the list
type Transport struct {
	name      string
	servers   []string
	maxTries  int
	timeout   time.Duration
	reconnect bool

	dial func(ctx context.Context, addr string) (net.Conn, error)
}

// New creates a TNC transport
func New(cfg Config) *Transport {
	maxTries := cfg.MaxTries
	if maxTries <= 0 {
		maxTries = 3
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	var dialer net.Dialer
	return &Transport{
		name:      cfg.Name,
		servers:   cfg.Servers,
		maxTries:  maxTries,
		timeout:   timeout,
		reconnect: cfg.ReconnectOnSendFailure,
		dial: func(ctx context.Context, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, "tcp", addr)
		},
	}
}

// Deliver connects to a server and writes the frame. If no server accepts
// a connection the error wraps ErrUnreachable; a write failure wraps
// ErrFailedPost.
func (t *Transport) Deliver(ctx context.Context, frame Frame) error {
	conn, err := t.connect(ctx)
	if err != nil {
		return err
	}

	if sendErr := t.send(conn, frame); sendErr != nil {
		conn.Close()
		if !t.reconnect {
			return fmt.Errorf("send to %s: %w: %v", t.name, werrors.ErrFailedPost, sendErr)
		}
		// One fresh connection, one more send
		conn, err = t.connect(ctx)
		if err != nil {
			return err
		}
		if sendErr = t.send(conn, frame); sendErr != nil {
			conn.Close()
			return fmt.Errorf("send to %s after reconnect: %w: %v", t.name, werrors.ErrFailedPost, sendErr)
		}
	}
	return conn.Close()
}

// connect gives each server up to maxTries dial attempts before moving on
// to the next, and returns the first connection that succeeds.
func (t *Transport) connect(ctx context.Context) (net.Conn, error) {
	if len(t.servers) == 0 {
		return nil, werrors.WrapInvalid(werrors.ErrMissingConfig, "tnc", "connect", "no servers configured")
	}

	var lastErr error
	for _, addr := range t.servers {
		for try := 0; try < t.maxTries; try++ {
			dialCtx, cancel := context.WithTimeout(ctx, t.timeout)
			conn, err := t.dial(dialCtx, addr)
			cancel()
			if err == nil {
				return conn, nil
			}
			lastErr = err
			if ctx.Err() != nil {
				return nil, fmt.Errorf("connect to %s: %w: %v", t.name, werrors.ErrUnreachable, ctx.Err())
			}
		}
	}
	return nil, fmt.Errorf("connect to %s: %w: %v", t.name, werrors.ErrUnreachable, lastErr)
}

// send writes the frame line by line, each line getting up to maxTries
// write attempts on the same connection.
func (t *Transport) send(conn net.Conn, frame Frame) error {
	if frame.Login != "" {
		if err := t.sendLine(conn, frame.Login); err != nil {
			return err
		}
	}
	return t.sendLine(conn, frame.Packet)
}

func (t *Transport) sendLine(conn net.Conn, line string) error {
	var lastErr error
	for try := 0; try < t.maxTries; try++ {
		if err := conn.SetWriteDeadline(time.Now().Add(t.timeout)); err != nil {
			return err
		}
		if _, err := conn.Write([]byte(line)); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("write failed after %d tries: %w", t.maxTries, lastErr)
}
