package config

import (
	"os"
	"path/filepath"
	"testing"

	appcli "github.com/gnomegl/githunt/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func parse(t *testing.T, args ...string) (*AppConfig, error) {
	t.Helper()
	var (
		cfg *AppConfig
		err error
	)
	app := appcli.NewApp(func(c *cli.Context) error {
		cfg, err = ParseConfig(c)
		return nil
	})
	app.Writer = os.Stderr
	require.NoError(t, app.Run(append([]string{"githunt"}, args...)))
	return cfg, err
}

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("GITHUNT_GITHUB_TOKEN", "")
	cfg, err := parse(t, "octo")
	require.NoError(t, err)

	assert.Equal(t, "octo", cfg.Target)
	assert.Equal(t, 7, cfg.Workers)
	assert.Equal(t, 5, cfg.TopCountries)
	assert.True(t, cfg.InferCountry)
	assert.True(t, cfg.InferActivity)
	assert.True(t, cfg.WeakAliases)
	assert.True(t, cfg.ScanOrgs)
	assert.False(t, cfg.ScanForks)
	assert.False(t, cfg.PopulationPrior)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "./githunt.log", cfg.LogsPath)
	assert.Equal(t, "text", cfg.Output)
	assert.Empty(t, cfg.Token)
}

func TestParseConfigFlags(t *testing.T) {
	cfg, err := parse(t,
		"-t", "ghp_x", "-w", "3", "-n", "2", "--no-country", "--no-active-hours",
		"--no-alias-based-inference", "--no-scan-orgs", "--blacklisted-orgs", "a, b,,c",
		"--scan-forks", "-p", "-l", "debug", "-o", "json", "-g", "out.gexf",
		"--metrics-file", "run.prom", "--workspace-dir", "/tmp/x", "octo")
	require.NoError(t, err)

	assert.Equal(t, "ghp_x", cfg.Token)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 2, cfg.TopCountries)
	assert.False(t, cfg.InferCountry)
	assert.False(t, cfg.InferActivity)
	assert.False(t, cfg.WeakAliases)
	assert.False(t, cfg.ScanOrgs)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.BlacklistedOrgs)
	assert.True(t, cfg.ScanForks)
	assert.True(t, cfg.PopulationPrior)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, "out.gexf", cfg.GraphPath)
	assert.Equal(t, "run.prom", cfg.MetricsPath)
	assert.Equal(t, "/tmp/x", cfg.WorkspaceDir)
}

func TestParseConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "githunt.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
workers = 12
top_countries = 9
no_scan_orgs = true
blacklisted_orgs = ["bigcorp"]
population_prior = true
level = "warn"
`), 0o600))

	cfg, err := parse(t, "-c", path, "-n", "1", "octo")
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Workers)
	assert.Equal(t, 1, cfg.TopCountries, "flags win over the file")
	assert.False(t, cfg.ScanOrgs)
	assert.Equal(t, []string{"bigcorp"}, cfg.BlacklistedOrgs)
	assert.True(t, cfg.PopulationPrior)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.InferCountry)
}

func TestParseConfigErrors(t *testing.T) {
	_, err := parse(t)
	assert.ErrorIs(t, err, ErrNoTarget)

	_, err = parse(t, "octo", "other")
	assert.ErrorIs(t, err, ErrNoTarget)

	_, err = parse(t, "-w", "0", "octo")
	assert.Error(t, err)

	_, err = parse(t, "-n", "-1", "octo")
	assert.Error(t, err)

	_, err = parse(t, "-o", "xml", "octo")
	assert.Error(t, err)

	_, err = parse(t, "-c", filepath.Join(t.TempDir(), "missing.toml"), "octo")
	assert.Error(t, err)
}
