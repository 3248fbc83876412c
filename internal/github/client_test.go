package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, mutate func(*Config)) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	pool, err := NewClientPool(nil, nil)
	require.NoError(t, err)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	for _, mc := range pool.AllClients() {
		mc.Client.BaseURL = base
	}

	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	if mutate != nil {
		mutate(&cfg)
	}

	logger, _ := test.NewNullLogger()
	c := NewClient(pool, cfg, logger)

	var slept []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return c, &slept
}

func TestFetchProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 42, "login": "octo", "name": "Octo Cat", "email": "octo@example.com",
			"bio": "cat", "location": "Athens", "blog": "https://octo.example", "followers": 3,
			"following": 4, "public_repos": 5, "type": "User"}`)
	})
	c, _ := newTestClient(t, mux, nil)

	p, err := c.FetchProfile(context.Background(), "octo")
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.ID)
	assert.Equal(t, "Octo Cat", p.Name)
	assert.Equal(t, "Athens", p.Location)
	assert.Equal(t, 5, p.PublicRepos)
	assert.False(t, p.IsOrganization)
	assert.Equal(t, "42+octo@users.noreply.github.com", p.NoReplyEmail())
}

func TestFetchProfileNotFound(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	}), nil)

	_, err := c.FetchProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), hits.Load(), "client errors are not retried")
}

func TestCallRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"id": 1, "login": "octo"}`)
	}), nil)

	p, err := c.FetchProfile(context.Background(), "octo")
	require.NoError(t, err)
	assert.Equal(t, "octo", p.Login)
	assert.Equal(t, int32(3), hits.Load())
}

func TestCallGivesUpOnPersistentServerErrors(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}), nil)

	_, err := c.FetchProfile(context.Background(), "octo")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(3), hits.Load())
}

func TestCallWaitsForPrimaryRateLimit(t *testing.T) {
	var hits atomic.Int32
	reset := time.Now().Add(-10 * time.Second).Unix()
	c, slept := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("X-RateLimit-Limit", "60")
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset, 10))
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
			return
		}
		fmt.Fprint(w, `{"id": 1, "login": "octo"}`)
	}), nil)

	p, err := c.FetchProfile(context.Background(), "octo")
	require.NoError(t, err)
	assert.Equal(t, "octo", p.Login)
	require.Len(t, *slept, 1)
	assert.Equal(t, resetBuffer, (*slept)[0], "a reset in the past still waits the buffer")
}

func TestCallWaitsForSecondaryRateLimit(t *testing.T) {
	var hits atomic.Int32
	c, slept := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message": "You have exceeded a secondary rate limit.",
				"documentation_url": "https://docs.github.com/rest/overview/resources-in-the-rest-api#secondary-rate-limits"}`)
			return
		}
		fmt.Fprint(w, `{"id": 1, "login": "octo"}`)
	}), nil)

	_, err := c.FetchProfile(context.Background(), "octo")
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{defaultAbuseBackoff}, *slept)
}

func TestCallWaitsForTooManyRequests(t *testing.T) {
	past := strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10)
	tests := []struct {
		name    string
		headers map[string]string
		want    time.Duration
	}{
		{"retry after", map[string]string{"Retry-After": "7"}, 7 * time.Second},
		{"no hint", nil, defaultAbuseBackoff},
		{"quota exhausted", map[string]string{"X-RateLimit-Remaining": "0", "X-RateLimit-Reset": past}, resetBuffer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			c, slept := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if hits.Add(1) == 1 {
					for k, v := range tt.headers {
						w.Header().Set(k, v)
					}
					w.WriteHeader(http.StatusTooManyRequests)
					fmt.Fprint(w, `{"message": "You have exceeded a secondary rate limit."}`)
					return
				}
				fmt.Fprint(w, `{"id": 1, "login": "octo"}`)
			}), nil)

			p, err := c.FetchProfile(context.Background(), "octo")
			require.NoError(t, err)
			assert.Equal(t, "octo", p.Login)
			assert.Equal(t, int32(2), hits.Load())
			assert.Equal(t, []time.Duration{tt.want}, *slept)
		})
	}
}

func TestCallStopsWhenCancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "You have exceeded a secondary rate limit.",
			"documentation_url": "https://docs.github.com/rest/overview/resources-in-the-rest-api#secondary-rate-limits"}`)
	}), nil)
	c.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}

	_, err := c.FetchProfile(ctx, "octo")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadListFiles(t *testing.T) {
	dir := t.TempDir()
	tokens := filepath.Join(dir, "tokens")
	require.NoError(t, os.WriteFile(tokens, []byte("# comment\nghp_one\n\n  ghp_two  \n"), 0o600))
	proxies := filepath.Join(dir, "proxies")
	require.NoError(t, os.WriteFile(proxies, []byte("10.0.0.1:8080\nsocks5://10.0.0.2:1080\n"), 0o600))
	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, []byte("# nothing\n"), 0o600))

	got, err := ReadTokenFile(tokens)
	require.NoError(t, err)
	assert.Equal(t, []string{"ghp_one", "ghp_two"}, got)

	got, err = ReadProxyFile(proxies)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://10.0.0.1:8080", "socks5://10.0.0.2:1080"}, got)

	_, err = ReadTokenFile(empty)
	assert.Error(t, err)

	_, err = ReadTokenFile(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestClientPoolSelection(t *testing.T) {
	pool, err := NewClientPool([]string{"a", "b", "c"}, []string{"http://proxy:1"})
	require.NoError(t, err)
	require.Equal(t, 3, pool.Size())
	assert.True(t, pool.Authenticated())
	assert.Equal(t, "http://proxy:1", pool.AllClients()[0].Proxy)
	assert.Empty(t, pool.AllClients()[1].Proxy)

	now := time.Now()
	pool.AllClients()[0].UpdateRateLimit(10, now.Add(time.Hour))
	pool.AllClients()[1].UpdateRateLimit(4000, now.Add(time.Hour))
	pool.AllClients()[2].UpdateRateLimit(200, now.Add(time.Hour))
	assert.Same(t, pool.AllClients()[1], pool.GetClient())

	pool.AllClients()[1].UpdateRateLimit(5, now.Add(30*time.Minute))
	pool.AllClients()[2].UpdateRateLimit(50, now.Add(10*time.Minute))
	assert.Same(t, pool.AllClients()[2], pool.GetClient(), "nearly exhausted pools prefer the earliest reset")

	_, err = NewClientPool([]string{"a"}, []string{"://bad"})
	assert.Error(t, err)

	anon, err := NewClientPool(nil, nil)
	require.NoError(t, err)
	assert.False(t, anon.Authenticated())
}

func TestResolveToken(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	logger, _ := test.NewNullLogger()

	t.Setenv(TokenEnv, "")
	assert.Equal(t, "", ResolveToken("", logger))

	t.Setenv(TokenEnv, "from-env")
	assert.Equal(t, "from-env", ResolveToken("", logger))
	assert.Equal(t, "explicit", ResolveToken("explicit", logger))

	t.Setenv(TokenEnv, "")
	assert.Equal(t, "explicit", ResolveToken("", logger), "explicit tokens are remembered")
}
