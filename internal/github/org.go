package github

import (
	"context"
	"fmt"

	"github.com/gnomegl/githunt/internal/models"
	gh "github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
)

// ListOrganizations returns the logins of the public organizations of a user.
func (c *Client) ListOrganizations(ctx context.Context, login string) ([]string, error) {
	var orgs []string
	opt := &gh.ListOptions{PerPage: c.cfg.PerPage}

	for {
		page, resp, err := call(ctx, c, "organizations.list", func(client *gh.Client) ([]*gh.Organization, *gh.Response, error) {
			return client.Organizations.List(ctx, login, opt)
		})
		if err != nil {
			return orgs, fmt.Errorf("error fetching organizations: %w", err)
		}
		for _, o := range page {
			orgs = append(orgs, o.GetLogin())
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return orgs, nil
}

// FetchOrgRepos lists the public repositories of an organization. On a
// failed page it returns what was collected so far along with the error.
func (c *Client) FetchOrgRepos(ctx context.Context, org string) ([]models.Repository, error) {
	opt := &gh.RepositoryListByOrgOptions{
		Type:        "public",
		ListOptions: gh.ListOptions{PerPage: c.cfg.PerPage},
	}

	var repos []models.Repository
	log := c.logger.WithField("org", org)
	for {
		page, resp, err := call(ctx, c, "repositories.list_by_org", func(client *gh.Client) ([]*gh.Repository, *gh.Response, error) {
			return client.Repositories.ListByOrg(ctx, org, opt)
		})
		if err != nil {
			return repos, fmt.Errorf("error fetching repositories of %s: %w", org, err)
		}
		repos = c.keep(log, repos, page)
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return repos, nil
}

// keep appends the repositories of one page, dropping forks unless they
// were asked for.
func (c *Client) keep(log logrus.FieldLogger, repos []models.Repository, page []*gh.Repository) []models.Repository {
	for _, r := range page {
		repo := toRepository(r)
		if repo.IsFork && !c.cfg.IncludeForks {
			log.WithField("repo", repo.FullName).Warn("Skipping the scan of a fork (use '--scan-forks' to scan forks)")
			continue
		}
		log.WithFields(logrus.Fields{"repo": repo.FullName, "stars": repo.Stars}).Info("Added repository to list")
		repos = append(repos, repo)
	}
	return repos
}
