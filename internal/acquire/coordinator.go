// Package acquire clones a user's repositories into a scratch workspace with
// bounded parallelism.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gnomegl/githunt/internal/models"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Cloner interface {
	Clone(ctx context.Context, url, dir string) error
}

// Recorder is told about every clone attempt. It may be nil.
type Recorder interface {
	ObserveClone(ok bool)
}

type Coordinator struct {
	cloner   Cloner
	workers  int
	baseDir  string
	logger   logrus.FieldLogger
	recorder Recorder
	progress io.Writer
}

type Option func(*Coordinator)

// WithBaseDir places workspaces under dir instead of the temp dir.
func WithBaseDir(dir string) Option {
	return func(c *Coordinator) {
		c.baseDir = dir
	}
}

func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) {
		c.recorder = r
	}
}

// WithProgress sets where the progress bar is drawn. nil disables it.
func WithProgress(w io.Writer) Option {
	return func(c *Coordinator) {
		c.progress = w
	}
}

func NewCoordinator(cloner Cloner, workers int, logger logrus.FieldLogger, opts ...Option) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	c := &Coordinator{
		cloner:   cloner,
		workers:  workers,
		logger:   logger,
		progress: os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// With clones repos into a fresh workspace, hands the successful clones to fn
// once every clone has resolved, and removes the workspace on every exit path.
func (c *Coordinator) With(ctx context.Context, login string, repos []models.Repository, fn func([]models.ClonedRepository) error) (err error) {
	ws, err := NewWorkspace(c.baseDir, login)
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := ws.Remove(); rmErr != nil {
			c.logger.WithError(rmErr).WithField("workspace", ws.Root()).Error("Failed removing workspace")
			err = errors.Join(err, fmt.Errorf("removing workspace: %w", rmErr))
		}
	}()

	c.logger.WithField("workspace", ws.Root()).Debug("Created workspace")

	cloned, err := c.Clone(ctx, ws, repos)
	if err != nil {
		return err
	}
	return fn(cloned)
}

// Clone runs up to the configured number of clones at once. Failed clones are
// logged and left out of the result, which keeps the order of repos.
func (c *Coordinator) Clone(ctx context.Context, ws *Workspace, repos []models.Repository) ([]models.ClonedRepository, error) {
	results := make([]*models.ClonedRepository, len(repos))
	bar := c.newBar(len(repos))

	var g errgroup.Group
	g.SetLimit(c.workers)

	for i, repo := range repos {
		g.Go(func() error {
			defer bar.Add(1)

			if ctx.Err() != nil {
				return nil
			}

			dir := ws.Dir(i, repo.FullName)
			log := c.logger.WithField("repo", repo.FullName)
			log.Debug("Cloning repository")

			err := c.cloner.Clone(ctx, repo.CloneURL, dir)
			if c.recorder != nil {
				c.recorder.ObserveClone(err == nil)
			}
			if err != nil {
				log.WithError(err).Warn("Failed cloning the repository")
				return nil
			}

			results[i] = &models.ClonedRepository{Repo: repo, Dir: dir}
			return nil
		})
	}

	_ = g.Wait()
	_ = bar.Finish()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cloned := make([]models.ClonedRepository, 0, len(repos))
	for _, r := range results {
		if r != nil {
			cloned = append(cloned, *r)
		}
	}

	c.logger.WithFields(logrus.Fields{
		"cloned": len(cloned),
		"failed": len(repos) - len(cloned),
	}).Info("Finished cloning repositories")
	return cloned, nil
}

func (c *Coordinator) newBar(n int) *progressbar.ProgressBar {
	if c.progress == nil {
		return progressbar.DefaultSilent(int64(n))
	}
	return progressbar.NewOptions(n,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(10),
		progressbar.OptionSetDescription("[cyan]Cloning repositories[reset]"),
		progressbar.OptionSetWriter(c.progress),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]#[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: "-",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
