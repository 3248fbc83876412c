package display

import (
	"encoding/json"
	"io"

	"github.com/gnomegl/githunt/internal/activity"
	"github.com/gnomegl/githunt/internal/utils"
)

// JSON writes the report as a single indented document.
func JSON(w io.Writer, r *Report) error {
	out := JSONOutput{
		Target:       r.Profile.Login,
		User:         r.Profile,
		Emails:       r.Identity.Emails,
		Aliases:      r.Identity.Aliases,
		Timestamps:   len(r.Identity.Timestamps),
		Repositories: r.Repositories,
		Cloned:       r.Cloned,
		Passes:       r.Passes,
		Countries:    r.Countries,
		Activity:     activityDays(r.Activity),
	}
	if n := len(r.Identity.Timestamps); n > 0 {
		first, last := r.Identity.Timestamps[0], r.Identity.Timestamps[n-1]
		out.FirstCommit, out.LastCommit = &first, &last
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func activityDays(rep *activity.Report) []JSONDay {
	if rep == nil {
		return nil
	}
	days := make([]JSONDay, 0, len(rep.Share))
	for _, d := range activity.Week {
		share, ok := rep.Share[d]
		if !ok {
			continue
		}
		b := rep.Bounds[d]
		days = append(days, JSONDay{
			Day:          d.String(),
			Share:        share,
			From:         utils.FormatClock(b.Lower),
			To:           utils.FormatClock(b.Upper),
			LowerSeconds: b.Lower,
			UpperSeconds: b.Upper,
		})
	}
	return days
}
