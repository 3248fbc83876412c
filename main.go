package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/gnomegl/githunt/internal/acquire"
	"github.com/gnomegl/githunt/internal/art"
	"github.com/gnomegl/githunt/internal/auth"
	appcli "github.com/gnomegl/githunt/internal/cli"
	"github.com/gnomegl/githunt/internal/config"
	"github.com/gnomegl/githunt/internal/country"
	"github.com/gnomegl/githunt/internal/geo"
	"github.com/gnomegl/githunt/internal/git"
	"github.com/gnomegl/githunt/internal/github"
	"github.com/gnomegl/githunt/internal/identity"
	"github.com/gnomegl/githunt/internal/logging"
	"github.com/gnomegl/githunt/internal/metrics"
	"github.com/gnomegl/githunt/internal/service"
	"github.com/gnomegl/githunt/internal/timezone"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func runApp(c *cli.Context) error {
	cfg, err := config.ParseConfig(c)
	if errors.Is(err, config.ErrNoTarget) {
		return cli.ShowAppHelp(c)
	}
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.LogLevel, cfg.LogsPath)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := auth.SetupClientPool(ctx, cfg, logger)
	if err != nil {
		return err
	}

	ghCfg := github.DefaultConfig()
	ghCfg.IncludeForks = cfg.ScanForks
	ghCfg.ScanOrgs = cfg.ScanOrgs
	ghCfg.BlacklistedOrgs = cfg.BlacklistedOrgs
	logger.WithField("blacklisted_orgs", cfg.BlacklistedOrgs).Debug("Blacklisted organizations")

	client := github.NewClient(pool, ghCfg, logger)
	gitClient := &git.Client{}
	run := metrics.NewRun()

	coordinator := acquire.NewCoordinator(gitClient, cfg.Workers, logger,
		acquire.WithBaseDir(cfg.WorkspaceDir),
		acquire.WithRecorder(run),
	)
	expander := identity.NewExpander(gitClient, logger,
		identity.WithWeakInference(cfg.WeakAliases),
		identity.WithRecorder(run),
	)

	var countries service.CountryInferrer
	if cfg.InferCountry {
		resolver := timezone.NewResolver(timezone.DefaultCatalog(), logger)
		countries = country.NewEngine(resolver, timezone.DefaultIndex(), geo.Default(), logger,
			country.WithPopulationPrior(cfg.PopulationPrior))
	}

	orchestrator := service.NewOrchestrator(client, coordinator, expander, countries, run, service.Options{
		TopCountries:  cfg.TopCountries,
		InferCountry:  cfg.InferCountry,
		InferActivity: cfg.InferActivity,
		Output:        cfg.Output,
		GraphPath:     cfg.GraphPath,
		MetricsPath:   cfg.MetricsPath,
	}, logger)

	if err := orchestrator.Run(ctx, cfg.Target); err != nil {
		logger.WithError(err).Error("Run aborted")
		return err
	}

	if pool.Authenticated() {
		pool.LogRateLimits(ctx, logger)
	}
	return nil
}

func main() {
	log.SetFlags(0)
	// A missing .env file is fine.
	_ = godotenv.Load()

	app := appcli.NewApp(runApp)
	app.Before = func(c *cli.Context) error {
		if !c.Bool("help") && !c.Bool("version") {
			art.PrintLogo(os.Stderr)
		}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
