// Package ambienthttp delivers Ambient-protocol posts over HTTP GET.
//
// The providers signal success and failure in the response body, not the
// HTTP status: a body line starting with "ERROR" or "INVALID" means the
// station id or password was rejected, which is fatal for the destination.
package ambienthttp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	werrors "github.com/pmcgeorge/weewx/errors"
	"github.com/pmcgeorge/weewx/pkg/retry"
)

// Provider error tokens. PWSweather signals with ERROR, Wunderground with
// INVALID.
var errorTokens = []string{"ERROR", "INVALID"}

// Config holds transport settings for one destination
type Config struct {
	// Name identifies the destination in errors and logs
	Name string
	// Timeout bounds one HTTP request
	Timeout time.Duration
	// Retry is the per-task attempt policy
	Retry retry.Config
}

// Transport posts formatted request URLs to an Ambient provider
type Transport struct {
	name     string
	client   *http.Client
	retryCfg retry.Config
}

// New creates an HTTP transport
func New(cfg Config) *Transport {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Transport{
		name:     cfg.Name,
		client:   &http.Client{Timeout: timeout},
		retryCfg: cfg.Retry,
	}
}

// Deliver issues the GET request with retries. Network-level errors are
// retried; a provider error token in the response body fails immediately
// with ErrBadLogin regardless of remaining attempts.
func (t *Transport) Deliver(ctx context.Context, url string) error {
	err := retry.Do(ctx, t.retryCfg, func() error {
		return t.post(ctx, url)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, werrors.ErrBadLogin) {
		return err
	}
	return fmt.Errorf("upload to %s: %w: %v", t.name, werrors.ErrFailedPost, err)
}

func (t *Transport) post(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		// A malformed URL cannot become valid on retry
		return retry.NonRetryable(werrors.WrapInvalid(err, "ambienthttp", "post", "build request"))
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		for _, token := range errorTokens {
			if strings.HasPrefix(line, token) {
				return retry.NonRetryable(fmt.Errorf("%w: %s", werrors.ErrBadLogin, strings.TrimSpace(line)))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		// Treat a truncated body like any other network failure
		return err
	}
	return nil
}
