package models

import (
	"fmt"
	"time"
)

// Profile is the parsed account record returned by the hosting API.
// ID, Login and Name are always set; every other field may be empty.
type Profile struct {
	ID             int64  `json:"id"`
	Login          string `json:"login"`
	Name           string `json:"name,omitempty"`
	Bio            string `json:"bio,omitempty"`
	Location       string `json:"location,omitempty"`
	Blog           string `json:"blog,omitempty"`
	Email          string `json:"email,omitempty"`
	Company        string `json:"company,omitempty"`
	Followers      int    `json:"followers"`
	Following      int    `json:"following"`
	PublicRepos    int    `json:"public_repos"`
	IsOrganization bool   `json:"is_organization"`
}

// NoReplyEmail is the address GitHub attributes web commits to.
func (p *Profile) NoReplyEmail() string {
	return fmt.Sprintf("%d+%s@users.noreply.github.com", p.ID, p.Login)
}

// Repository describes a remote repository. Description and Homepage are
// optional and empty when the API does not supply them.
type Repository struct {
	FullName    string `json:"full_name"`
	Description string `json:"description,omitempty"`
	Homepage    string `json:"homepage,omitempty"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	Watchers    int    `json:"watchers"`
	CloneURL    string `json:"clone_url"`
	IsFork      bool   `json:"is_fork"`
}

// ClonedRepository is a local working copy of a Repository. It only lives
// for the duration of one run.
type ClonedRepository struct {
	Repo Repository
	Dir  string
}

type Commit struct {
	Hash        string
	AuthorName  string
	AuthorEmail string
	CommittedAt time.Time
	Signed      bool
}

type Alias struct {
	Name     string `json:"name"`
	IsMain   bool   `json:"is_main"`
	IsSigned bool   `json:"is_signed"`
}

func (a *Alias) String() string {
	return fmt.Sprintf("<%s (is_main: %t, is_signed: %t)>", a.Name, a.IsMain, a.IsSigned)
}
