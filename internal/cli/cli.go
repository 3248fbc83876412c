package cli

import (
	"github.com/gnomegl/githunt/internal/github"
	"github.com/gnomegl/githunt/internal/utils"
	"github.com/urfave/cli/v2"
)

const helpTemplate = `{{.Name}} - {{.Usage}}

Usage: {{.HelpName}} [options] <username>

Options:
   {{range .VisibleFlags}}{{.}}
   {{end}}`

func NewApp(action cli.ActionFunc) *cli.App {
	cli.AppHelpTemplate = helpTemplate

	return &cli.App{
		Name:    "githunt",
		Usage:   "OSINT tool to find the aliases, emails, country and active hours of a GitHub user",
		Version: "v" + utils.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "token",
				Aliases: []string{"t"},
				Usage:   "GitHub personal access token",
				EnvVars: []string{github.TokenEnv},
			},
			&cli.StringFlag{
				Name:  "token-file",
				Usage: "File with one GitHub token per line, used as a pool",
			},
			&cli.StringFlag{
				Name:  "proxy-file",
				Usage: "File with one proxy per line, paired with the pooled tokens",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML config file",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Value:   7,
				Usage:   "Number of repositories cloned in parallel",
			},
			&cli.IntFlag{
				Name:    "top-countries",
				Aliases: []string{"n"},
				Value:   5,
				Usage:   "Number of countries to report",
			},
			&cli.BoolFlag{
				Name:  "no-country",
				Usage: "Do not infer the country",
			},
			&cli.BoolFlag{
				Name:  "no-active-hours",
				Usage: "Do not infer the active hours",
			},
			&cli.BoolFlag{
				Name:  "no-alias-based-inference",
				Usage: "Only discover aliases through known emails",
			},
			&cli.BoolFlag{
				Name:  "no-scan-orgs",
				Usage: "Do not scan the user's organizations",
			},
			&cli.StringFlag{
				Name:  "blacklisted-orgs",
				Usage: "Comma separated organizations to skip",
			},
			&cli.BoolFlag{
				Name:  "scan-forks",
				Usage: "Also scan forked repositories",
			},
			&cli.BoolFlag{
				Name:    "population-prior",
				Aliases: []string{"p"},
				Usage:   "Favor countries with a larger population",
			},
			&cli.StringFlag{
				Name:    "level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (trace, debug, info, warn, error, fatal)",
			},
			&cli.StringFlag{
				Name:  "logs-path",
				Value: "./githunt.log",
				Usage: "Log file",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "text",
				Usage:   "Output format (text, json)",
			},
			&cli.StringFlag{
				Name:    "graph",
				Aliases: []string{"g"},
				Usage:   "Write the identity graph as GEXF to this file",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "Write run metrics in Prometheus text format to this file",
			},
			&cli.StringFlag{
				Name:  "workspace-dir",
				Usage: "Directory for the temporary clones (default: system temp dir)",
			},
		},
		Action:    action,
		ArgsUsage: "<username>",
		Authors: []*cli.Author{
			{Name: "gnomegl"},
		},
	}
}
