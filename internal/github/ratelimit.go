package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/codeGROOVE-dev/retry"
	gh "github.com/google/go-github/v57/github"
)

const (
	resetBuffer         = time.Second
	defaultAbuseBackoff = 60 * time.Second
)

// call runs fn against a pooled client. Transient failures are retried a
// bounded number of times; primary and secondary rate limits are waited out
// and the same request retried with no cap other than ctx.
func call[T any](ctx context.Context, c *Client, op string, fn func(*gh.Client) (T, *gh.Response, error)) (T, *gh.Response, error) {
	log := c.logger.WithField("op", op)

	for {
		var (
			out     T
			resp    *gh.Response
			lastErr error
		)

		err := retry.Do(
			func() error {
				mc := c.pool.GetClient()
				var err error
				out, resp, err = fn(mc.Client)
				mc.observe(resp)
				if err != nil {
					lastErr = err
					if !transient(err, resp) {
						return retry.Unrecoverable(err)
					}
					return err
				}
				lastErr = nil
				return nil
			},
			retry.Context(ctx),
			retry.Attempts(max(c.cfg.RetryAttempts, 1)),
			retry.Delay(c.cfg.RetryDelay),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
			retry.OnRetry(func(n uint, err error) {
				log.WithError(err).WithField("attempt", n+1).Debug("Retrying GitHub request")
			}),
		)
		if err == nil {
			return out, resp, nil
		}
		if lastErr == nil {
			lastErr = err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, resp, ctxErr
		}

		wait, limited := rateLimitWait(lastErr)
		if !limited {
			return out, resp, lastErr
		}

		log.WithField("wait", wait.Round(time.Second).String()).Warn("GitHub rate limit hit, waiting before retrying")
		if err := c.sleep(ctx, wait); err != nil {
			return out, resp, fmt.Errorf("waiting for rate limit: %w", err)
		}
	}
}

// rateLimitWait reports how long to block for a rate-limit error.
func rateLimitWait(err error) (time.Duration, bool) {
	var rle *gh.RateLimitError
	if errors.As(err, &rle) {
		wait := time.Until(rle.Rate.Reset.Time) + resetBuffer
		if wait < resetBuffer {
			wait = resetBuffer
		}
		return wait, true
	}

	var abuse *gh.AbuseRateLimitError
	if errors.As(err, &abuse) {
		if abuse.RetryAfter != nil {
			return *abuse.RetryAfter, true
		}
		return defaultAbuseBackoff, true
	}

	var er *gh.ErrorResponse
	if errors.As(err, &er) && er.Response != nil && er.Response.StatusCode == http.StatusTooManyRequests {
		return tooManyRequestsWait(er.Response.Header), true
	}

	return 0, false
}

// tooManyRequestsWait reads a 429: an exhausted quota waits for its reset,
// otherwise Retry-After or the default backoff applies.
func tooManyRequestsWait(h http.Header) time.Duration {
	if h.Get("X-RateLimit-Remaining") == "0" {
		if reset, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
			wait := time.Until(time.Unix(reset, 0)) + resetBuffer
			return max(wait, resetBuffer)
		}
	}
	if secs, err := strconv.Atoi(h.Get("Retry-After")); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultAbuseBackoff
}

// transient reports whether err is worth retrying immediately: network
// failures and server errors. Rate limits and client errors are not.
func transient(err error, resp *gh.Response) bool {
	if _, limited := rateLimitWait(err); limited {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if resp != nil && resp.StatusCode < http.StatusInternalServerError {
		return false
	}
	return true
}

func isNotFound(resp *gh.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}

