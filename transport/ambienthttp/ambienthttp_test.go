package ambienthttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	werrors "github.com/pmcgeorge/weewx/errors"
	"github.com/pmcgeorge/weewx/pkg/retry"
)

func testRetry(attempts int) retry.Config {
	return retry.Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDeliverSuccess(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "updateraw", r.URL.Query().Get("action"))
		fmt.Fprintln(w, "success")
	}))
	defer srv.Close()

	tr := New(Config{Name: "Wunderground-PWS", Retry: testRetry(3)})
	err := tr.Deliver(context.Background(), srv.URL+"?action=updateraw&ID=KORHOOD1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDeliverBadLoginStopsRetrying(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprintln(w, "INVALID username or password")
	}))
	defer srv.Close()

	tr := New(Config{Name: "Wunderground-PWS", Retry: testRetry(3)})
	err := tr.Deliver(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, werrors.ErrBadLogin)
	assert.Equal(t, int32(1), hits.Load(), "a rejected login must not be retried")
}

func TestDeliverErrorToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ERROR: bad request")
	}))
	defer srv.Close()

	tr := New(Config{Name: "PWSweather", Retry: testRetry(2)})
	err := tr.Deliver(context.Background(), srv.URL)
	assert.ErrorIs(t, err, werrors.ErrBadLogin)
}

func TestDeliverServerDownExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	tr := New(Config{Name: "Wunderground-PWS", Retry: testRetry(3)})
	err := tr.Deliver(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, werrors.ErrFailedPost)
}

func TestDeliverTransientThenSuccess(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		fmt.Fprintln(w, "success")
	}))
	defer srv.Close()

	tr := New(Config{Name: "Wunderground-PWS", Retry: testRetry(3)})
	err := tr.Deliver(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestDeliverContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := New(Config{Name: "Wunderground-PWS", Retry: testRetry(5)})
	err := tr.Deliver(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled) || errors.Is(err, werrors.ErrFailedPost))
}

func TestDeliverMalformedURL(t *testing.T) {
	tr := New(Config{Name: "Wunderground-PWS", Retry: testRetry(3)})
	err := tr.Deliver(context.Background(), "http://[::1]:namedport")
	require.Error(t, err)
	assert.ErrorIs(t, err, werrors.ErrFailedPost)
}
