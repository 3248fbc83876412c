// Package identity grows a seed account into the set of committer names and
// emails that belong to the same person by scanning cloned histories until
// nothing new turns up.
package identity

import (
	"context"
	"unicode/utf8"

	"github.com/gnomegl/githunt/internal/models"
	"github.com/sirupsen/logrus"
)

// HistoryReader returns every commit reachable in a local clone.
type HistoryReader interface {
	Log(ctx context.Context, dir string) ([]models.Commit, error)
}

// ScanResult is the outcome of reading one repository during a pass.
type ScanResult struct {
	Repo    models.ClonedRepository
	Commits []models.Commit
	Err     error
}

// Attribution is a commit from the final pass that carries a known alias or
// a known email.
type Attribution struct {
	Repo   string
	Commit models.Commit
}

type Result struct {
	Passes       int
	ScanFailures int
	Attributed   []Attribution
}

// Recorder receives per-pass progress. It may be nil.
type Recorder interface {
	ObservePass(aliases, emails, timestamps int)
	ObserveScanFailure()
}

type Expander struct {
	reader   HistoryReader
	logger   logrus.FieldLogger
	weak     bool
	recorder Recorder
}

type Option func(*Expander)

// WithWeakInference enables name-only alias discovery.
func WithWeakInference(enabled bool) Option {
	return func(e *Expander) {
		e.weak = enabled
	}
}

func WithRecorder(r Recorder) Option {
	return func(e *Expander) {
		e.recorder = r
	}
}

func NewExpander(reader HistoryReader, logger logrus.FieldLogger, opts ...Option) *Expander {
	e := &Expander{
		reader: reader,
		logger: logger,
		weak:   true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand runs full passes over repos until a pass discovers neither an alias
// nor an email, then sorts the collected timestamps. Repositories that cannot
// be read only lose their contribution to the pass they failed in.
func (e *Expander) Expand(ctx context.Context, repos []models.ClonedRepository, id *models.Identity) (*Result, error) {
	e.logger.Debug("Starting global identity expansion")

	res := &Result{}
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		res.Passes++
		log := e.logger.WithField("pass", res.Passes)
		log.Debug("Expansion pass")

		p := &pass{}
		for _, scan := range e.scan(ctx, repos) {
			if scan.Err != nil {
				res.ScanFailures++
				if e.recorder != nil {
					e.recorder.ObserveScanFailure()
				}
				log.WithError(scan.Err).WithField("repo", scan.Repo.Repo.FullName).
					Warn("Failed scanning the repository (is the repository empty?)")
				continue
			}
			for _, c := range scan.Commits {
				e.visit(log, scan.Repo.Repo.FullName, c, id, p)
			}
		}

		res.Attributed = p.attributed
		if e.recorder != nil {
			e.recorder.ObservePass(len(id.Aliases), len(id.Emails), len(id.Timestamps))
		}
		log.WithFields(logrus.Fields{
			"aliases":    len(id.Aliases),
			"emails":     len(id.Emails),
			"timestamps": len(id.Timestamps),
		}).Debug("Pass complete")

		if !p.productive {
			break
		}
	}

	id.SortTimestamps()
	e.logger.WithField("passes", res.Passes).Info("Identity expansion converged")
	return res, nil
}

// scan reads every repository once, sequentially.
func (e *Expander) scan(ctx context.Context, repos []models.ClonedRepository) []ScanResult {
	results := make([]ScanResult, 0, len(repos))
	for _, repo := range repos {
		commits, err := e.reader.Log(ctx, repo.Dir)
		results = append(results, ScanResult{Repo: repo, Commits: commits, Err: err})
	}
	return results
}

type pass struct {
	productive bool
	attributed []Attribution
}

func (e *Expander) visit(log logrus.FieldLogger, repo string, c models.Commit, id *models.Identity, p *pass) {
	log = log.WithField("repo", repo)
	name := c.AuthorName

	if name == id.Login || (id.DisplayName != "" && name == id.DisplayName) {
		if main := id.Main(); !main.IsSigned {
			main.IsSigned = c.Signed
		}
	}

	existing := id.Alias(name)
	strictName := existing != nil
	strictEmail := id.MatchesEmail(c.AuthorEmail)

	if strictName || strictEmail {
		p.attributed = append(p.attributed, Attribution{Repo: repo, Commit: c})
	}

	if strictEmail {
		id.AddTimestamp(repo+"\x00"+c.Hash, c.CommittedAt)
	}

	if strictName && id.AddEmail(c.AuthorEmail) {
		log.WithFields(logrus.Fields{"email": c.AuthorEmail, "alias": name}).Debug("Discovered email")
		p.productive = true
	}

	if existing != nil {
		return
	}

	if strictEmail {
		a := id.AddAlias(name, c.Signed)
		log.WithField("alias", a.String()).Debug("Discovered alias (strong confidence)")
		p.productive = true
		return
	}

	if e.weak && utf8.RuneCountInString(name) > 3 && weakMatch([]string{id.Login, id.DisplayName}, name) {
		a := id.AddAlias(name, c.Signed)
		log.WithField("alias", a.String()).Debug("Discovered alias (weak confidence)")
		p.productive = true
	}
}
