// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil builds the HTTP client used to talk to the platform.
package httputil

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/naccdata/nacc-common/pkg/types"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// throttled or unavailable responses. Tests override this to avoid real
// sleeps.
var RetryBaseDelay = 2 * time.Second

const (
	defaultMaxRetries = 5
	defaultTimeout    = 60 * time.Second
)

// Retryable reports whether a response should be retried: HTTP 429 and the
// gateway errors a load balancer returns while the platform restarts.
// Transport errors are returned to the caller as-is.
func Retryable(resp *resty.Response, err error) bool {
	if err != nil || resp == nil {
		return false
	}
	switch resp.StatusCode() {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// NewClient returns a resty client configured from cfg. Retryable
// responses are retried up to cfg.MaxRetries times (default 5), waiting
// RetryBaseDelay and doubling with jitter on each attempt. After the last
// retry the final response is returned so the caller can inspect it.
func NewClient(cfg types.HTTPConfig, logger *zap.SugaredLogger) *resty.Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := resty.New()
	c.SetLogger(logger)
	c.SetTimeout(timeout)
	if cfg.UserAgent != "" {
		c.SetHeader("User-Agent", cfg.UserAgent)
	}
	c.SetRetryCount(maxRetries)
	c.SetRetryWaitTime(RetryBaseDelay)
	c.SetRetryMaxWaitTime(RetryBaseDelay << maxRetries)
	c.AddRetryCondition(Retryable)
	c.AddRetryHook(func(resp *resty.Response, err error) {
		if resp == nil {
			return
		}
		logger.Warnw("platform request throttled, retrying",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"attempt", resp.Request.Attempt,
			"max_retries", maxRetries)
	})
	c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debugw("platform request",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"duration_ms", resp.Time().Milliseconds())
		return nil
	})
	return c
}
