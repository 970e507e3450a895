package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := newRootCmd().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:  "ct",
		Usage: "Research this week's food trends and publish them as a report",
		Description: `
      _          __   _                      _
  ___| |__   ___ / _| | |_ _ __ ___ _ __   __| |___
 / __| '_ \ / _ \ |_  | __| '__/ _ \ '_ \ / _' / __|
| (__| | | |  __/  _| | |_| | |  __/ | | | (_| \__ \
 \___|_| |_|\___|_|    \__|_|  \___|_| |_|\__,_|___/

 Web-searched trend reports for the kitchen.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log level: debug, info, warn, error",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file when it exists",
				Value: ".env",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level, err := log.ParseLevel(cmd.String("log"))
			if err != nil {
				return ctx, err
			}
			log.SetLevel(level)

			if err := loadEnvFile(cmd.String("env-file")); err != nil {
				return ctx, err
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			generateCmd(),
			serveCmd(),
			fetchCmd(),
			indexCmd(),
		},
	}
}

// loadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	log.Debug("loaded environment", "file", path)
	return nil
}
