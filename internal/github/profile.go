package github

import (
	"context"
	"fmt"

	"github.com/gnomegl/githunt/internal/models"
	gh "github.com/google/go-github/v57/github"
)

// FetchProfile loads the public profile of login. It returns ErrNotFound for
// an unknown account.
func (c *Client) FetchProfile(ctx context.Context, login string) (*models.Profile, error) {
	user, resp, err := call(ctx, c, "users.get", func(client *gh.Client) (*gh.User, *gh.Response, error) {
		return client.Users.Get(ctx, login)
	})
	if err != nil {
		if isNotFound(resp) {
			return nil, fmt.Errorf("user %q: %w", login, ErrNotFound)
		}
		return nil, fmt.Errorf("fetching user %q: %w", login, err)
	}
	return toProfile(user), nil
}

func toProfile(u *gh.User) *models.Profile {
	return &models.Profile{
		ID:             u.GetID(),
		Login:          u.GetLogin(),
		Name:           u.GetName(),
		Bio:            u.GetBio(),
		Location:       u.GetLocation(),
		Blog:           u.GetBlog(),
		Email:          u.GetEmail(),
		Company:        u.GetCompany(),
		Followers:      u.GetFollowers(),
		Following:      u.GetFollowing(),
		PublicRepos:    u.GetPublicRepos(),
		IsOrganization: u.GetType() == "Organization",
	}
}

func toRepository(r *gh.Repository) models.Repository {
	return models.Repository{
		FullName:    r.GetFullName(),
		Description: r.GetDescription(),
		Homepage:    r.GetHomepage(),
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		Watchers:    r.GetWatchersCount(),
		CloneURL:    r.GetCloneURL(),
		IsFork:      r.GetFork(),
	}
}
