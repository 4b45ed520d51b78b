package main

import (
	"fmt"
	"os"

	"github.com/dtnitsch/bbs-archive-parser/internal/db"
	"github.com/dtnitsch/bbs-archive-parser/internal/inspect"
	"github.com/dtnitsch/bbs-archive-parser/internal/reimport"
	"github.com/dtnitsch/bbs-archive-parser/internal/workset"
	"github.com/urfave/cli/v2"
)

const version = "0.3.0"

func main() {
	app := &cli.App{
		Name:    "bbs-archive-parser",
		Usage:   "Reconstruct topics, quotes and reply links from archived BBS pages",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Load configuration from `FILE` (default: ./config.yml)"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Only log errors"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Log debug output"},
			&cli.StringFlag{Name: "mongo", Usage: "MongoDB `URI` of the raw archive"},
			&cli.StringFlag{Name: "redis", Usage: "Redis `ADDR` holding worksets"},
			&cli.StringFlag{Name: "postgres", Usage: "PostgreSQL connection `URL` for imported topics"},
			&cli.StringFlag{Name: "sqlite", Usage: "SQLite archive `PATH`"},
			&cli.StringFlag{Name: "nats", Usage: "NATS server `URL` to publish topics to"},
			&cli.StringFlag{Name: "base-url", Usage: "Origin relative image paths resolve against"},
			&cli.StringFlag{Name: "output-dir", Usage: "Directory for run manifests and YAML topics"},
			&cli.StringFlag{Name: "ollama-url", Usage: "Ollama endpoint for embedding similarity (lexical when empty)"},
		},
		Commands: []*cli.Command{
			{
				Name:   "parse",
				Usage:  "Assemble one document and print the topic as YAML",
				Action: inspect.ParseAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Read the raw document from a YAML `FILE`"},
					&cli.StringFlag{Name: "board", Aliases: []string{"b"}, Usage: "Board the reid belongs to"},
					&cli.StringFlag{Name: "reid", Aliases: []string{"r"}, Usage: "Load the document with this reid from the source"},
					&cli.StringFlag{Name: "dir", Usage: "Read documents from `DIR`/<board>/<reid>.yaml instead of MongoDB"},
					&cli.BoolFlag{Name: "no-probe", Usage: "Keep every image without checking it"},
					&cli.BoolFlag{Name: "no-resolve", Usage: "Skip reply-target resolution"},
					&cli.IntFlag{Name: "top-k", Usage: "Candidates ranked per reply"},
				},
			},
			{
				Name:   "reimport",
				Usage:  "Parse every document of a board and store the topics",
				Action: reimport.ReimportAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "board", Aliases: []string{"b"}, Usage: "The board to reimport", Required: true},
					&cli.StringFlag{Name: "poi", Usage: "Only these reids: a comma-separated list or a file with one reid per line"},
					&cli.StringFlag{Name: "workset", Usage: "Only the reids in this Redis workset (empty `NAME` for the board default)"},
					&cli.StringFlag{Name: "dir", Usage: "Read documents from `DIR`/<board>/<reid>.yaml instead of MongoDB"},
					&cli.BoolFlag{Name: "dry-run", Aliases: []string{"d"}, Usage: "Parse only, store nothing"},
					&cli.BoolFlag{Name: "yaml", Usage: "Also write each topic to <output-dir>/topics/<board>/<reid>.yaml"},
					&cli.BoolFlag{Name: "no-probe", Usage: "Keep every image without checking it"},
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Number of parsing workers"},
					&cli.IntFlag{Name: "top-k", Usage: "Candidates ranked per reply"},
				},
			},
			{
				Name:  "topics",
				Usage: "Browse the SQLite archive",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List stored topics, newest reid first",
						Action: db.TopicsAction,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "board", Aliases: []string{"b"}, Usage: "Only this board"},
							&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Maximum topics to show"},
						},
					},
					{
						Name:      "show",
						Usage:     "Print a stored topic as YAML",
						ArgsUsage: "<reid>",
						Action:    db.TopicAction,
					},
					{
						Name:   "authors",
						Usage:  "Rank authors by post count",
						Action: db.AuthorsAction,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "board", Aliases: []string{"b"}, Usage: "Only this board"},
							&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 25, Usage: "Maximum authors to show"},
						},
					},
					{
						Name:   "runs",
						Usage:  "List past reimport runs",
						Action: db.RunsAction,
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 10, Usage: "Maximum runs to show"},
						},
					},
				},
			},
			{
				Name:  "workset",
				Usage: "Manage Redis worksets of reids",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "board", Aliases: []string{"b"}, Usage: "Board the workset belongs to", Required: true},
					&cli.StringFlag{Name: "name", Usage: "Workset name (empty for the board default)"},
				},
				Subcommands: []*cli.Command{
					{Name: "list", Usage: "Print the reids in the workset", Action: workset.ListAction},
					{
						Name:   "add",
						Usage:  "Add reids to the workset",
						Action: workset.AddAction,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "poi", Usage: "Comma-separated reids or a file with one reid per line", Required: true},
							&cli.BoolFlag{Name: "reset", Usage: "Clear the workset first"},
						},
					},
					{
						Name:   "remove",
						Usage:  "Remove reids from the workset",
						Action: workset.RemoveAction,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "poi", Usage: "Comma-separated reids or a file with one reid per line", Required: true},
						},
					},
					{Name: "reset", Usage: "Delete the workset", Action: workset.ResetAction},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
