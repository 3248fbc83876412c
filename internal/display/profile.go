package display

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gnomegl/githunt/internal/models"
)

var headerColor = color.New(color.Bold, color.FgCyan)

func UserInfo(w io.Writer, p *models.Profile) {
	if p == nil {
		return
	}

	fmt.Fprintln(w)
	if p.IsOrganization {
		headerColor.Fprintf(w, "ORGANIZATION: %s\n", p.Login)
	} else {
		headerColor.Fprintf(w, "USER: %s\n", p.Login)
	}

	printField(w, "Name", p.Name)
	printField(w, "Email", p.Email)
	printField(w, "Company", p.Company)
	printField(w, "Location", p.Location)
	printField(w, "Bio", p.Bio)
	printField(w, "Website", p.Blog)

	fmt.Fprintln(w)
	if p.IsOrganization {
		fmt.Fprintf(w, "%s %d\n", color.WhiteString("Repos:"), p.PublicRepos)
	} else {
		fmt.Fprintf(w, "%s %d  %s %d  %s %d\n",
			color.WhiteString("Repos:"), p.PublicRepos,
			color.WhiteString("Followers:"), p.Followers,
			color.WhiteString("Following:"), p.Following)
	}
}

func printField(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "%s %s\n", color.WhiteString(label+":"), value)
}
