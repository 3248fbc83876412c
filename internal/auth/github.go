package auth

import (
	"context"
	"fmt"

	"github.com/gnomegl/githunt/internal/config"
	"github.com/gnomegl/githunt/internal/github"
	"github.com/sirupsen/logrus"
)

// SetupClientPool builds the token pool from the config: the token file if
// there is one, otherwise the single resolved token. Without any token it
// warns and returns an anonymous pool.
func SetupClientPool(ctx context.Context, cfg *config.AppConfig, logger logrus.FieldLogger) (*github.ClientPool, error) {
	var tokens, proxies []string
	var err error

	if cfg.TokenFile != "" {
		if tokens, err = github.ReadTokenFile(cfg.TokenFile); err != nil {
			return nil, err
		}
	} else if token := github.ResolveToken(cfg.Token, logger); token != "" {
		tokens = []string{token}
	}

	if cfg.ProxyFile != "" {
		if proxies, err = github.ReadProxyFile(cfg.ProxyFile); err != nil {
			return nil, err
		}
	}

	pool, err := github.NewClientPool(tokens, proxies)
	if err != nil {
		return nil, err
	}

	if !pool.Authenticated() {
		warnNoToken(logger)
		return pool, nil
	}

	client := github.NewClient(pool, github.DefaultConfig(), logger)
	if err := client.ValidateToken(ctx); err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	logger.WithField("tokens", pool.Size()).Debug("Tokens validated")
	return pool, nil
}

func warnNoToken(logger logrus.FieldLogger) {
	logger.Warn("No GitHub personal access token was provided")
	logger.Warn("This will potentially reduce the quality of the results")
	logger.Warn("You may also get rate-limited by GitHub!")
	logger.Warnf("Set --token or %s to use one", github.TokenEnv)
}
