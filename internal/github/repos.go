package github

import (
	"context"
	"fmt"

	"github.com/gnomegl/githunt/internal/models"
	gh "github.com/google/go-github/v57/github"
)

// FetchRepos lists the repositories login owns. On a failed page it returns
// what was collected so far along with the error.
func (c *Client) FetchRepos(ctx context.Context, login string) ([]models.Repository, error) {
	opt := &gh.RepositoryListByUserOptions{
		Type:        "owner",
		ListOptions: gh.ListOptions{PerPage: c.cfg.PerPage},
	}

	var repos []models.Repository
	log := c.logger.WithField("user", login)
	for {
		page, resp, err := call(ctx, c, "repositories.list_by_user", func(client *gh.Client) ([]*gh.Repository, *gh.Response, error) {
			return client.Repositories.ListByUser(ctx, login, opt)
		})
		if err != nil {
			return repos, fmt.Errorf("error fetching repositories: %w", err)
		}
		repos = c.keep(log, repos, page)
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return repos, nil
}

// CollectRepositories gathers the repositories to scan for an account: its
// own, then those of its organizations unless disabled or blacklisted. A
// failed collection only ends that collection; whatever was gathered is
// kept. Cancellation is the only error returned.
func (c *Client) CollectRepositories(ctx context.Context, p *models.Profile) ([]models.Repository, error) {
	log := c.logger.WithField("user", p.Login)

	var repos []models.Repository
	if p.IsOrganization {
		own, err := c.FetchOrgRepos(ctx, p.Login)
		repos = append(repos, own...)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return repos, ctxErr
			}
			log.WithError(err).Error("Querying organization repositories failed")
		}
		return repos, nil
	}

	own, err := c.FetchRepos(ctx, p.Login)
	repos = append(repos, own...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return repos, ctxErr
		}
		log.WithError(err).Error("Querying repositories failed")
	}

	if !c.cfg.ScanOrgs {
		log.Warn("Not scanning organizations (as requested with '--no-scan-orgs')")
		return repos, nil
	}

	orgs, err := c.ListOrganizations(ctx, p.Login)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return repos, ctxErr
		}
		log.WithError(err).Warn("Querying organizations failed, skipping organization scanning")
		return repos, nil
	}

	log.WithField("organizations", len(orgs)).Debug("Scanning organizations")
	for _, org := range orgs {
		if c.cfg.blacklisted(org) {
			log.WithField("org", org).Warn("Skipping blacklisted organization")
			continue
		}
		orgRepos, err := c.FetchOrgRepos(ctx, org)
		repos = append(repos, orgRepos...)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return repos, ctxErr
			}
			log.WithError(err).WithField("org", org).Error("Querying organization repositories failed")
		}
	}

	return repos, nil
}
