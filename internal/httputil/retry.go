// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the literature sources,
// the PDF downloader, and the reasoning clients.
package httputil

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// transient responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// MaxRetryAfter caps how long a server-supplied Retry-After may delay us.
var MaxRetryAfter = 60 * time.Second

const defaultMaxRetries = 3

// Transient reports whether an HTTP status is worth retrying: 429 and 5xx.
func Transient(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status <= 599)
}

// DoWithRetry executes an HTTP request and retries transient failures
// (HTTP 429, 5xx, and transport errors) with exponential backoff. The delay
// starts at RetryBaseDelay and doubles each attempt; a Retry-After header
// overrides it, capped at MaxRetryAfter.
//
// When maxRetries is 0 the default (3) is used. Non-transient responses are
// returned immediately. On each retried response the body is drained and
// closed before sleeping. If the context is cancelled during a backoff wait
// the function returns ctx.Err(). After exhausting retries the last transient
// response is returned so the caller can inspect it; a transport error on the
// final attempt is returned as-is.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, log zerolog.Logger) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || attempt >= maxRetries {
				return nil, err
			}
		} else {
			if !Transient(resp.StatusCode) || attempt >= maxRetries {
				return resp, nil
			}
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		if resp != nil {
			if ra, ok := retryAfter(resp); ok {
				backoff = ra
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		ev := log.Debug().
			Str("url", req.URL.Redacted()).
			Int("attempt", attempt+1).
			Int("max_retries", maxRetries).
			Dur("backoff", backoff)
		if resp != nil {
			ev = ev.Int("status", resp.StatusCode)
		} else {
			ev = ev.Err(err)
		}
		ev.Msg("transient failure, retrying")

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func retryAfter(resp *http.Response) (time.Duration, bool) {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0, false
	}
	var d time.Duration
	if secs, err := strconv.Atoi(v); err == nil {
		d = time.Duration(secs) * time.Second
	} else if t, err := http.ParseTime(v); err == nil {
		d = time.Until(t)
	} else {
		return 0, false
	}
	if d <= 0 {
		return 0, false
	}
	if d > MaxRetryAfter {
		d = MaxRetryAfter
	}
	return d, true
}
