// Package service runs one investigation: profile, repositories, clones,
// identity expansion, inference and output.
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gnomegl/githunt/internal/activity"
	"github.com/gnomegl/githunt/internal/country"
	"github.com/gnomegl/githunt/internal/display"
	"github.com/gnomegl/githunt/internal/graph"
	"github.com/gnomegl/githunt/internal/identity"
	"github.com/gnomegl/githunt/internal/models"
	"github.com/sirupsen/logrus"
)

type AccountSource interface {
	FetchProfile(ctx context.Context, login string) (*models.Profile, error)
	CollectRepositories(ctx context.Context, p *models.Profile) ([]models.Repository, error)
}

type Acquirer interface {
	With(ctx context.Context, login string, repos []models.Repository, fn func([]models.ClonedRepository) error) error
}

type Expander interface {
	Expand(ctx context.Context, repos []models.ClonedRepository, id *models.Identity) (*identity.Result, error)
}

type CountryInferrer interface {
	Infer(timestamps []time.Time, topN int) []country.Result
}

type MetricsSink interface {
	SetRepositories(n int)
	WriteFile(path string) error
}

type Options struct {
	TopCountries  int
	InferCountry  bool
	InferActivity bool

	Output      string
	GraphPath   string
	MetricsPath string
}

type Orchestrator struct {
	source    AccountSource
	acquirer  Acquirer
	expander  Expander
	countries CountryInferrer
	metrics   MetricsSink
	opts      Options
	logger    logrus.FieldLogger
	out       io.Writer
}

func NewOrchestrator(source AccountSource, acquirer Acquirer, expander Expander, countries CountryInferrer, metrics MetricsSink, opts Options, logger logrus.FieldLogger) *Orchestrator {
	return &Orchestrator{
		source:    source,
		acquirer:  acquirer,
		expander:  expander,
		countries: countries,
		metrics:   metrics,
		opts:      opts,
		logger:    logger,
		out:       os.Stdout,
	}
}

// SetOutput redirects the report, which goes to stdout by default.
func (o *Orchestrator) SetOutput(w io.Writer) {
	o.out = w
}

// Analyze gathers everything known about login. Only a failed profile query,
// a failed workspace or cancellation make it return an error.
func (o *Orchestrator) Analyze(ctx context.Context, login string) (*display.Report, []identity.Attribution, error) {
	log := o.logger.WithField("user", login)

	profile, err := o.source.FetchProfile(ctx, login)
	if err != nil {
		return nil, nil, fmt.Errorf("could not query the GitHub user '%s': %w", login, err)
	}
	log.Info("Data has been successfully retrieved from the git host")

	repos, err := o.source.CollectRepositories(ctx, profile)
	if err != nil {
		return nil, nil, fmt.Errorf("collecting repositories: %w", err)
	}
	log.WithField("repositories", len(repos)).Info("Collected repositories")
	if o.metrics != nil {
		o.metrics.SetRepositories(len(repos))
	}

	report := &display.Report{
		Profile:      profile,
		Identity:     models.NewIdentity(profile),
		Repositories: len(repos),
	}

	var attributed []identity.Attribution
	err = o.acquirer.With(ctx, profile.Login, repos, func(cloned []models.ClonedRepository) error {
		report.Cloned = len(cloned)
		res, err := o.expander.Expand(ctx, cloned, report.Identity)
		if err != nil {
			return err
		}
		report.Passes = res.Passes
		attributed = res.Attributed
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	log.WithFields(logrus.Fields{
		"emails":     len(report.Identity.Emails),
		"aliases":    len(report.Identity.Aliases),
		"timestamps": len(report.Identity.Timestamps),
	}).Info("Successfully visited repositories")

	if o.opts.InferCountry && o.countries != nil {
		report.Countries = o.countries.Infer(report.Identity.Timestamps, o.opts.TopCountries)
		if report.Countries == nil {
			report.Countries = []country.Result{}
		}
		log.WithField("countries", len(report.Countries)).Info("Successfully inferred countries")
	}
	if o.opts.InferActivity {
		report.Activity = activity.Analyze(report.Identity.Timestamps)
		log.Info("Successfully inferred activity")
	}

	return report, attributed, nil
}

// Run analyzes login and writes every requested output. Failing to write an
// output file is logged and does not fail the run.
func (o *Orchestrator) Run(ctx context.Context, login string) error {
	report, attributed, err := o.Analyze(ctx, login)
	if err != nil {
		return err
	}

	switch o.opts.Output {
	case "json":
		if err := display.JSON(o.out, report); err != nil {
			o.logger.WithError(err).Error("Failed writing the JSON report")
		}
	default:
		display.Text(o.out, report)
	}

	if o.opts.GraphPath != "" {
		if err := writeGraph(o.opts.GraphPath, graph.Build(report.Identity, attributed)); err != nil {
			o.logger.WithError(err).WithField("path", o.opts.GraphPath).Error("Failed writing the identity graph")
		} else {
			o.logger.WithField("path", o.opts.GraphPath).Info("Wrote identity graph")
		}
	}

	if o.opts.MetricsPath != "" && o.metrics != nil {
		if err := o.metrics.WriteFile(o.opts.MetricsPath); err != nil {
			o.logger.WithError(err).WithField("path", o.opts.MetricsPath).Error("Failed writing run metrics")
		}
	}
	return nil
}

func writeGraph(path string, g *graph.Graph) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating graph file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return graph.WriteGEXF(f, g)
}
