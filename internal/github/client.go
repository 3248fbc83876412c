// Package github is the hosting-platform collaborator: profiles, repository
// listings and organizations, with rate limits waited out.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// TokenEnv is read when no token flag is given.
const TokenEnv = "GITHUNT_GITHUB_TOKEN"

// ErrNotFound is returned when the requested account does not exist.
var ErrNotFound = errors.New("not found")

// Client wraps a client pool with rate-limit handling.
type Client struct {
	pool   *ClientPool
	cfg    Config
	logger logrus.FieldLogger
	sleep  func(context.Context, time.Duration) error
}

func NewClient(pool *ClientPool, cfg Config, logger logrus.FieldLogger) *Client {
	return &Client{
		pool:   pool,
		cfg:    cfg,
		logger: logger,
		sleep:  sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ResolveToken returns the explicit token, then the environment variable,
// then a token saved by an earlier run. An explicit token is saved for later
// runs.
func ResolveToken(explicit string, logger logrus.FieldLogger) string {
	configDir, _ := os.UserConfigDir()
	tokenFile := ""
	if configDir != "" {
		tokenFile = filepath.Join(configDir, "githunt", "token")
	}

	if explicit != "" {
		if tokenFile != "" {
			if err := saveToken(tokenFile, explicit); err != nil {
				logger.WithError(err).Debug("Could not save token")
			}
		}
		return explicit
	}

	if token := os.Getenv(TokenEnv); token != "" {
		return token
	}

	if tokenFile != "" {
		if data, err := os.ReadFile(tokenFile); err == nil {
			if token := strings.TrimSpace(string(data)); token != "" {
				return token
			}
		}
	}
	return ""
}

func saveToken(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

// ValidateToken fetches the authenticated user. A rate-limited response is
// not treated as an invalid token.
func (c *Client) ValidateToken(ctx context.Context) error {
	_, resp, err := c.pool.GetClient().Client.Users.Get(ctx, "")
	if err != nil {
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusUnauthorized:
				return fmt.Errorf("invalid GitHub token")
			case http.StatusForbidden, http.StatusTooManyRequests:
				c.logger.Warn("Rate limited, skipping token validation")
				return nil
			}
		}
		return fmt.Errorf("error validating token: %w", err)
	}
	return nil
}
