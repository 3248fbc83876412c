package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gnomegl/githunt/internal/acquire"
	"github.com/gnomegl/githunt/internal/country"
	"github.com/gnomegl/githunt/internal/display"
	"github.com/gnomegl/githunt/internal/identity"
	"github.com/gnomegl/githunt/internal/metrics"
	"github.com/gnomegl/githunt/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) FetchProfile(ctx context.Context, login string) (*models.Profile, error) {
	args := m.Called(ctx, login)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

func (m *mockSource) CollectRepositories(ctx context.Context, p *models.Profile) ([]models.Repository, error) {
	args := m.Called(ctx, p)
	repos, _ := args.Get(0).([]models.Repository)
	return repos, args.Error(1)
}

// fakeGit clones by creating the directory and serves a fixed history per
// clone URL.
type fakeGit struct {
	mu      sync.Mutex
	dirs    map[string]string
	history map[string][]models.Commit
	broken  map[string]bool
}

func (f *fakeGit) Clone(_ context.Context, url, dir string) error {
	if f.broken[url] {
		return errors.New("remote hung up")
	}
	f.mu.Lock()
	f.dirs[dir] = url
	f.mu.Unlock()
	return os.MkdirAll(dir, 0o700)
}

func (f *fakeGit) Log(_ context.Context, dir string) ([]models.Commit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history[f.dirs[dir]], nil
}

type fakeCountries struct {
	topN int
	seen int
}

func (f *fakeCountries) Infer(timestamps []time.Time, topN int) []country.Result {
	f.topN = topN
	f.seen = len(timestamps)
	if len(timestamps) == 0 {
		return nil
	}
	return []country.Result{{Code: "GR", Name: "Greece", Flag: "🇬🇷", GlobalProbability: 1}}
}

var monday = time.Date(2024, 1, 8, 9, 0, 0, 0, time.FixedZone("", 2*3600))

func commit(hash, name, email string) models.Commit {
	return models.Commit{Hash: hash, AuthorName: name, AuthorEmail: email, CommittedAt: monday}
}

type harness struct {
	source    *mockSource
	git       *fakeGit
	countries *fakeCountries
	run       *metrics.Run
	orch      *Orchestrator
	out       *bytes.Buffer
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	logger, _ := test.NewNullLogger()

	h := &harness{
		source: &mockSource{},
		git: &fakeGit{
			dirs:    make(map[string]string),
			history: make(map[string][]models.Commit),
			broken:  make(map[string]bool),
		},
		countries: &fakeCountries{},
		run:       metrics.NewRun(),
		out:       &bytes.Buffer{},
	}
	coordinator := acquire.NewCoordinator(h.git, 2, logger,
		acquire.WithBaseDir(t.TempDir()),
		acquire.WithProgress(nil),
		acquire.WithRecorder(h.run),
	)
	expander := identity.NewExpander(h.git, logger, identity.WithRecorder(h.run))
	h.orch = NewOrchestrator(h.source, coordinator, expander, h.countries, h.run, opts, logger)
	h.orch.SetOutput(h.out)
	return h
}

var octo = &models.Profile{ID: 7, Login: "octo", Name: "Octo Cat"}

func repo(name string) models.Repository {
	return models.Repository{FullName: name, CloneURL: "https://github.com/" + name + ".git"}
}

func TestAnalyzeCloneFailureKeepsAliases(t *testing.T) {
	h := newHarness(t, Options{InferCountry: true, InferActivity: true, TopCountries: 3})
	repos := []models.Repository{repo("octo/broken"), repo("octo/good")}
	h.source.On("FetchProfile", mock.Anything, "octo").Return(octo, nil)
	h.source.On("CollectRepositories", mock.Anything, octo).Return(repos, nil)
	h.git.broken[repos[0].CloneURL] = true
	h.git.history[repos[1].CloneURL] = []models.Commit{
		commit("h1", "octo", "octo@work.com"),
		commit("h2", "Octo at Work", "octo@work.com"),
	}

	report, attributed, err := h.orch.Analyze(context.Background(), "octo")
	require.NoError(t, err)

	assert.Equal(t, 2, report.Repositories)
	assert.Equal(t, 1, report.Cloned)
	assert.NotNil(t, report.Identity.Alias("Octo at Work"))
	assert.True(t, report.Identity.KnowsEmail("octo@work.com"))
	assert.Len(t, report.Identity.Timestamps, 2)
	assert.Len(t, attributed, 2)

	assert.Equal(t, 3, h.countries.topN)
	assert.Equal(t, 2, h.countries.seen)
	require.Len(t, report.Countries, 1)
	assert.Equal(t, map[time.Weekday]float64{time.Monday: 1}, report.Activity.Share)
	h.source.AssertExpectations(t)
}

func TestAnalyzeProfileFailureIsFatal(t *testing.T) {
	h := newHarness(t, Options{})
	h.source.On("FetchProfile", mock.Anything, "ghost").Return(nil, errors.New("not found"))

	_, _, err := h.orch.Analyze(context.Background(), "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not query the GitHub user 'ghost'")
	h.source.AssertNotCalled(t, "CollectRepositories", mock.Anything, mock.Anything)
}

func TestAnalyzeDisabledInference(t *testing.T) {
	h := newHarness(t, Options{})
	h.source.On("FetchProfile", mock.Anything, "octo").Return(octo, nil)
	h.source.On("CollectRepositories", mock.Anything, octo).Return([]models.Repository(nil), nil)

	report, _, err := h.orch.Analyze(context.Background(), "octo")
	require.NoError(t, err)
	assert.Nil(t, report.Countries)
	assert.Nil(t, report.Activity)
	assert.Equal(t, 1, report.Passes)
}

func TestAnalyzeNoTimestampsGivesEmptyCountries(t *testing.T) {
	h := newHarness(t, Options{InferCountry: true, InferActivity: true})
	h.source.On("FetchProfile", mock.Anything, "octo").Return(octo, nil)
	h.source.On("CollectRepositories", mock.Anything, octo).Return([]models.Repository(nil), nil)

	report, _, err := h.orch.Analyze(context.Background(), "octo")
	require.NoError(t, err)
	assert.NotNil(t, report.Countries)
	assert.Empty(t, report.Countries)
	assert.Empty(t, report.Activity.Share)
}

func TestRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		InferCountry:  true,
		InferActivity: true,
		TopCountries:  5,
		Output:        "json",
		GraphPath:     filepath.Join(dir, "octo.gexf"),
		MetricsPath:   filepath.Join(dir, "run.prom"),
	}
	h := newHarness(t, opts)
	repos := []models.Repository{repo("octo/good")}
	h.source.On("FetchProfile", mock.Anything, "octo").Return(octo, nil)
	h.source.On("CollectRepositories", mock.Anything, octo).Return(repos, nil)
	h.git.history[repos[0].CloneURL] = []models.Commit{commit("h1", "octo", "octo@work.com")}

	require.NoError(t, h.orch.Run(context.Background(), "octo"))

	var out display.JSONOutput
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &out))
	assert.Equal(t, "octo", out.Target)
	assert.Contains(t, out.Emails, "octo@work.com")

	gexf, err := os.ReadFile(opts.GraphPath)
	require.NoError(t, err)
	assert.Contains(t, string(gexf), `id="email:octo@work.com"`)

	prom, err := os.ReadFile(opts.MetricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `githunt_clones_total{outcome="ok"} 1`)
	assert.Contains(t, string(prom), "githunt_repositories 1")
}

func TestRunTextOutput(t *testing.T) {
	h := newHarness(t, Options{Output: "text"})
	h.source.On("FetchProfile", mock.Anything, "octo").Return(octo, nil)
	h.source.On("CollectRepositories", mock.Anything, octo).Return([]models.Repository(nil), nil)

	require.NoError(t, h.orch.Run(context.Background(), "octo"))
	assert.True(t, strings.Contains(h.out.String(), "USER: octo"))
}
