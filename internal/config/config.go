package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v2"
)

// ErrNoTarget is returned when the command line names no account.
var ErrNoTarget = errors.New("exactly one username is required")

type AppConfig struct {
	Target string

	Token     string
	TokenFile string
	ProxyFile string

	Workers         int
	TopCountries    int
	InferCountry    bool
	InferActivity   bool
	WeakAliases     bool
	ScanOrgs        bool
	BlacklistedOrgs []string
	ScanForks       bool
	PopulationPrior bool

	LogLevel string
	LogsPath string

	Output       string
	GraphPath    string
	MetricsPath  string
	WorkspaceDir string
}

// FileConfig is the TOML config file. Unset keys leave the defaults alone.
type FileConfig struct {
	Workers         *int     `toml:"workers"`
	TopCountries    *int     `toml:"top_countries"`
	NoCountry       *bool    `toml:"no_country"`
	NoActiveHours   *bool    `toml:"no_active_hours"`
	NoAliasInfer    *bool    `toml:"no_alias_based_inference"`
	NoScanOrgs      *bool    `toml:"no_scan_orgs"`
	BlacklistedOrgs []string `toml:"blacklisted_orgs"`
	ScanForks       *bool    `toml:"scan_forks"`
	PopulationPrior *bool    `toml:"population_prior"`
	Level           *string  `toml:"level"`
	LogsPath        *string  `toml:"logs_path"`
	Output          *string  `toml:"output"`
	TokenFile       *string  `toml:"token_file"`
	ProxyFile       *string  `toml:"proxy_file"`
	WorkspaceDir    *string  `toml:"workspace_dir"`
}

func Default() *AppConfig {
	return &AppConfig{
		Workers:       7,
		TopCountries:  5,
		InferCountry:  true,
		InferActivity: true,
		WeakAliases:   true,
		ScanOrgs:      true,
		LogLevel:      "info",
		LogsPath:      "./githunt.log",
		Output:        "text",
	}
}

// ParseConfig builds the run configuration: defaults, then the TOML file
// given with --config, then every flag set on the command line.
func ParseConfig(c *cli.Context) (*AppConfig, error) {
	if c.NArg() != 1 {
		return nil, ErrNoTarget
	}

	cfg := Default()
	cfg.Target = c.Args().First()

	if path := c.String("config"); path != "" {
		var fc FileConfig
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		cfg.applyFile(&fc)
	}

	cfg.applyFlags(c)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *AppConfig) applyFile(fc *FileConfig) {
	setInt(&cfg.Workers, fc.Workers)
	setInt(&cfg.TopCountries, fc.TopCountries)
	setNegated(&cfg.InferCountry, fc.NoCountry)
	setNegated(&cfg.InferActivity, fc.NoActiveHours)
	setNegated(&cfg.WeakAliases, fc.NoAliasInfer)
	setNegated(&cfg.ScanOrgs, fc.NoScanOrgs)
	if fc.BlacklistedOrgs != nil {
		cfg.BlacklistedOrgs = fc.BlacklistedOrgs
	}
	setBool(&cfg.ScanForks, fc.ScanForks)
	setBool(&cfg.PopulationPrior, fc.PopulationPrior)
	setString(&cfg.LogLevel, fc.Level)
	setString(&cfg.LogsPath, fc.LogsPath)
	setString(&cfg.Output, fc.Output)
	setString(&cfg.TokenFile, fc.TokenFile)
	setString(&cfg.ProxyFile, fc.ProxyFile)
	setString(&cfg.WorkspaceDir, fc.WorkspaceDir)
}

func (cfg *AppConfig) applyFlags(c *cli.Context) {
	cfg.Token = c.String("token")

	if c.IsSet("token-file") {
		cfg.TokenFile = c.String("token-file")
	}
	if c.IsSet("proxy-file") {
		cfg.ProxyFile = c.String("proxy-file")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("top-countries") {
		cfg.TopCountries = c.Int("top-countries")
	}
	if c.IsSet("no-country") {
		cfg.InferCountry = !c.Bool("no-country")
	}
	if c.IsSet("no-active-hours") {
		cfg.InferActivity = !c.Bool("no-active-hours")
	}
	if c.IsSet("no-alias-based-inference") {
		cfg.WeakAliases = !c.Bool("no-alias-based-inference")
	}
	if c.IsSet("no-scan-orgs") {
		cfg.ScanOrgs = !c.Bool("no-scan-orgs")
	}
	if c.IsSet("blacklisted-orgs") {
		cfg.BlacklistedOrgs = splitList(c.String("blacklisted-orgs"))
	}
	if c.IsSet("scan-forks") {
		cfg.ScanForks = c.Bool("scan-forks")
	}
	if c.IsSet("population-prior") {
		cfg.PopulationPrior = c.Bool("population-prior")
	}
	if c.IsSet("level") {
		cfg.LogLevel = c.String("level")
	}
	if c.IsSet("logs-path") {
		cfg.LogsPath = c.String("logs-path")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("workspace-dir") {
		cfg.WorkspaceDir = c.String("workspace-dir")
	}
	cfg.GraphPath = c.String("graph")
	cfg.MetricsPath = c.String("metrics-file")
}

func (cfg *AppConfig) Validate() error {
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	if cfg.TopCountries < 0 {
		return fmt.Errorf("top countries must not be negative, got %d", cfg.TopCountries)
	}
	switch cfg.Output {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q", cfg.Output)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setNegated(dst *bool, v *bool) {
	if v != nil {
		*dst = !*v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
