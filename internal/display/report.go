package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gnomegl/githunt/internal/activity"
	"github.com/gnomegl/githunt/internal/country"
	"github.com/gnomegl/githunt/internal/utils"
)

// Text renders the human readable report.
func Text(w io.Writer, r *Report) {
	UserInfo(w, r.Profile)

	id := r.Identity
	section(w, "EMAILS", len(id.Emails))
	for _, e := range id.Emails {
		fmt.Fprintf(w, "  - %s\n", e)
	}

	section(w, "ALIASES", len(id.Aliases))
	for _, a := range id.Aliases {
		line := a.String()
		switch {
		case a.IsMain:
			color.New(color.FgGreen).Fprintf(w, "  - %s\n", line)
		case a.IsSigned:
			color.New(color.FgYellow).Fprintf(w, "  - %s\n", line)
		default:
			fmt.Fprintf(w, "  - %s\n", line)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %d collected across %d repositories (%d cloned, %d passes)\n",
		color.WhiteString("Timestamps:"), len(id.Timestamps), r.Repositories, r.Cloned, r.Passes)

	if r.Countries != nil {
		countries(w, r.Countries)
	}
	if r.Activity != nil {
		activityReport(w, r.Activity)
	}
}

func section(w io.Writer, title string, n int) {
	fmt.Fprintln(w)
	headerColor.Fprintf(w, "%s", title)
	fmt.Fprintf(w, " (%d)\n", n)
	fmt.Fprintln(w, strings.Repeat("-", 40))
}

func countries(w io.Writer, results []country.Result) {
	section(w, "INFERRED COUNTRIES", len(results))
	if len(results) == 0 {
		color.New(color.FgYellow).Fprintln(w, "  no candidate country")
		return
	}
	for i, c := range results {
		fmt.Fprintf(w, "  %d) %s %s (chance: %.1f%% locally, %.1f%% globally)\n",
			i+1, c.Flag, c.Name, c.LocalProbability*100, c.GlobalProbability*100)
	}
}

func activityReport(w io.Writer, rep *activity.Report) {
	section(w, "ACTIVITY", len(rep.Share))
	if len(rep.Share) == 0 {
		color.New(color.FgYellow).Fprintln(w, "  no activity")
		return
	}
	for _, d := range activity.Week {
		if share, ok := rep.Share[d]; ok {
			fmt.Fprintf(w, "  - %s: %.1f%% of activity\n", d, share*100)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, color.WhiteString("Average active hours:"))
	for _, d := range activity.Week {
		if b, ok := rep.Bounds[d]; ok {
			fmt.Fprintf(w, "  - %s: from %s to %s\n", d, utils.FormatClock(b.Lower), utils.FormatClock(b.Upper))
		}
	}

	if day, ok := utils.MostActiveDay(rep.Share); ok {
		fmt.Fprintf(w, "%s %s\n", color.WhiteString("Most active day:"), day)
	}
}
