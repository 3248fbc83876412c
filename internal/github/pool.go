package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// ManagedClient is one token (optionally behind a proxy) and the quota the
// API last reported for it.
type ManagedClient struct {
	Client    *gh.Client
	Token     string
	Proxy     string
	remaining int
	resetAt   time.Time
	mu        sync.Mutex
}

func (mc *ManagedClient) UpdateRateLimit(remaining int, resetAt time.Time) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.remaining = remaining
	mc.resetAt = resetAt
}

func (mc *ManagedClient) Remaining() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.remaining
}

func (mc *ManagedClient) ResetAt() time.Time {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.resetAt
}

func (mc *ManagedClient) observe(resp *gh.Response) {
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}
	mc.UpdateRateLimit(resp.Rate.Remaining, resp.Rate.Reset.Time)
}

type ClientPool struct {
	clients []*ManagedClient
	mu      sync.Mutex
}

// NewClientPool builds one client per token, pairing the i-th token with the
// i-th proxy when there is one. Without tokens the pool holds a single
// anonymous client.
func NewClientPool(tokens []string, proxies []string) (*ClientPool, error) {
	if len(tokens) == 0 {
		client, err := createClientWithProxy("", firstOrEmpty(proxies))
		if err != nil {
			return nil, err
		}
		return &ClientPool{
			clients: []*ManagedClient{{
				Client:    client,
				remaining: 60,
			}},
		}, nil
	}

	pool := &ClientPool{
		clients: make([]*ManagedClient, 0, len(tokens)),
	}

	for i, token := range tokens {
		var proxyURL string
		if i < len(proxies) {
			proxyURL = proxies[i]
		}

		client, err := createClientWithProxy(token, proxyURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create client for token %d: %w", i+1, err)
		}

		pool.clients = append(pool.clients, &ManagedClient{
			Client:    client,
			Token:     token,
			Proxy:     proxyURL,
			remaining: 5000,
		})
	}

	return pool, nil
}

func firstOrEmpty(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

func createClientWithProxy(token, proxyURL string) (*gh.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", proxyURL, err)
		}
		transport.Proxy = http.ProxyURL(parsed)
	}

	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = &http.Client{
			Transport: &oauth2.Transport{
				Source: ts,
				Base:   transport,
			},
		}
	} else {
		httpClient = &http.Client{Transport: transport}
	}

	return gh.NewClient(httpClient), nil
}

// GetClient picks the client with the most remaining quota. When every
// client is nearly exhausted it prefers the one whose quota resets first.
func (p *ClientPool) GetClient() *ManagedClient {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.clients) == 1 {
		return p.clients[0]
	}

	var best *ManagedClient
	bestRemaining := -1

	for _, mc := range p.clients {
		if rem := mc.Remaining(); rem > bestRemaining {
			bestRemaining = rem
			best = mc
		}
	}

	if bestRemaining < 100 {
		var earliest *ManagedClient
		earliestReset := time.Now().Add(24 * time.Hour)

		for _, mc := range p.clients {
			if reset := mc.ResetAt(); reset.Before(earliestReset) {
				earliestReset = reset
				earliest = mc
			}
		}

		if earliest != nil {
			return earliest
		}
	}

	return best
}

// Authenticated reports whether the pool holds at least one token.
func (p *ClientPool) Authenticated() bool {
	return p.PrimaryToken() != ""
}

func (p *ClientPool) PrimaryToken() string {
	if len(p.clients) == 0 {
		return ""
	}
	return p.clients[0].Token
}

func (p *ClientPool) Size() int {
	return len(p.clients)
}

func (p *ClientPool) AllClients() []*ManagedClient {
	return p.clients
}

// LogRateLimits queries and logs the core quota of every client.
func (p *ClientPool) LogRateLimits(ctx context.Context, logger logrus.FieldLogger) {
	for i, mc := range p.clients {
		log := logger.WithField("token", i+1)
		if mc.Proxy != "" {
			log = log.WithField("proxied", true)
		}

		limits, _, err := mc.Client.RateLimit.Get(ctx)
		if err != nil || limits == nil || limits.Core == nil {
			log.WithError(err).Warn("Could not fetch rate limit")
			continue
		}

		core := limits.Core
		mc.UpdateRateLimit(core.Remaining, core.Reset.Time)
		log.WithFields(logrus.Fields{
			"remaining": core.Remaining,
			"limit":     core.Limit,
			"reset":     core.Reset.Time.Format(time.RFC3339),
		}).Info("Rate limit")
	}
}
