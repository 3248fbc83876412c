package models

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

var profileEmailRegex = regexp.MustCompile(`[^@]+@[^@]+\.[^@]+`)

// Identity is the set of aliases, emails and commit timestamps believed to
// belong to one account. Only the identity expansion loop mutates it.
type Identity struct {
	Login       string
	DisplayName string

	Aliases    []*Alias
	Emails     []string
	Timestamps []time.Time

	emails  map[string]struct{}
	trimmed map[string]struct{}
	counted map[string]struct{}
}

// NewIdentity seeds an identity from an account profile: the login becomes
// the main alias and the no-reply address is always known.
func NewIdentity(p *Profile) *Identity {
	id := &Identity{
		Login:       p.Login,
		DisplayName: p.Name,
		Aliases:     []*Alias{{Name: p.Login, IsMain: true}},
		emails:      make(map[string]struct{}),
		trimmed:     make(map[string]struct{}),
		counted:     make(map[string]struct{}),
	}

	id.AddEmail(p.NoReplyEmail())
	if p.Email != "" && profileEmailRegex.MatchString(p.Email) {
		id.AddEmail(p.Email)
	}

	return id
}

func (id *Identity) Main() *Alias {
	return id.Aliases[0]
}

// Alias returns the alias whose name is exactly name, or nil.
func (id *Identity) Alias(name string) *Alias {
	for _, a := range id.Aliases {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// AddAlias appends a non-main alias. It returns nil when an alias with the
// same exact name already exists.
func (id *Identity) AddAlias(name string, signed bool) *Alias {
	if id.Alias(name) != nil {
		return nil
	}
	a := &Alias{Name: name, IsSigned: signed}
	id.Aliases = append(id.Aliases, a)
	return a
}

// KnowsEmail reports whether email is already in the set, byte for byte.
func (id *Identity) KnowsEmail(email string) bool {
	_, ok := id.emails[email]
	return ok
}

// MatchesEmail compares whitespace-trimmed addresses.
func (id *Identity) MatchesEmail(email string) bool {
	_, ok := id.trimmed[strings.TrimSpace(email)]
	return ok
}

// AddEmail records email and reports whether it was new.
func (id *Identity) AddEmail(email string) bool {
	if id.KnowsEmail(email) {
		return false
	}
	id.emails[email] = struct{}{}
	id.trimmed[strings.TrimSpace(email)] = struct{}{}
	id.Emails = append(id.Emails, email)
	return true
}

// AddTimestamp attributes the timestamp of one commit, identified by key, to
// the identity. A commit is counted once no matter how many passes see it.
func (id *Identity) AddTimestamp(key string, t time.Time) bool {
	if _, ok := id.counted[key]; ok {
		return false
	}
	id.counted[key] = struct{}{}
	id.Timestamps = append(id.Timestamps, t)
	return true
}

func (id *Identity) SortTimestamps() {
	sort.SliceStable(id.Timestamps, func(i, j int) bool {
		return id.Timestamps[i].Before(id.Timestamps[j])
	})
}
