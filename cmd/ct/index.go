package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/sonnes/cheftrends/manifest"
)

func indexCmd() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Regenerate the archive page from the manifest",
		Description: `Reads manifest.json from the given directory and writes archive.html
alongside it. generate --archive does this on every run; use index after
editing or pruning the manifest by hand.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Directory containing manifest.json (writes archive.html there)",
				Value:   "docs/archive",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return rebuildIndex(cmd.String("dir"))
		},
	}
}

func rebuildIndex(dir string) error {
	m, err := manifest.Load(dir)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	return writeIndex(dir, m)
}
