package display

import (
	"time"

	"github.com/gnomegl/githunt/internal/activity"
	"github.com/gnomegl/githunt/internal/country"
	"github.com/gnomegl/githunt/internal/models"
)

// Report is everything one run found about an account. Countries and
// Activity are nil when the matching inference was disabled.
type Report struct {
	Profile      *models.Profile
	Identity     *models.Identity
	Repositories int
	Cloned       int
	Passes       int
	Countries    []country.Result
	Activity     *activity.Report
}

type JSONOutput struct {
	Target       string           `json:"target"`
	User         *models.Profile  `json:"user"`
	Emails       []string         `json:"emails"`
	Aliases      []*models.Alias  `json:"aliases"`
	Timestamps   int              `json:"timestamps"`
	Repositories int              `json:"repositories"`
	Cloned       int              `json:"cloned"`
	Passes       int              `json:"passes"`
	FirstCommit  *time.Time       `json:"first_commit,omitempty"`
	LastCommit   *time.Time       `json:"last_commit,omitempty"`
	Countries    []country.Result `json:"countries,omitempty"`
	Activity     []JSONDay        `json:"activity,omitempty"`
}

// JSONDay carries the bounds both as clock times and as mean seconds since
// local midnight.
type JSONDay struct {
	Day          string  `json:"day"`
	Share        float64 `json:"share"`
	From         string  `json:"from"`
	To           string  `json:"to"`
	LowerSeconds float64 `json:"lower_seconds"`
	UpperSeconds float64 `json:"upper_seconds"`
}
