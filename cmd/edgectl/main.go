package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "edgectl",
		Usage: "run the edge optimizer stages offline",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging on stderr"},
		},
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "print the page context of a local HTML file as JSON",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "content-type", Usage: "Content-Type used for charset detection", Value: "text/html"},
				},
				Action: ExtractAction,
			},
			{
				Name:      "rewrite",
				Usage:     "rewrite a local HTML file and write it to stdout",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "origin", Usage: "origin the document was served from", Required: true},
					&cli.StringFlag{Name: "suggestion", Usage: "file holding an advisor reply"},
					&cli.StringFlag{Name: "rules", Usage: "rewrite rules file (.yaml or .toml)", EnvVars: []string{"RULES_FILE"}},
					&cli.StringFlag{Name: "content-type", Usage: "Content-Type used for charset detection", Value: "text/html"},
				},
				Action: RewriteAction,
			},
			{
				Name:      "fetch",
				Usage:     "run the full pipeline against a live URL",
				ArgsUsage: "URL",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "headers", Aliases: []string{"i"}, Usage: "print status and response headers to stderr"},
				},
				Action: FetchAction,
			},
		},
	}
}
