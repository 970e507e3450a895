package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/sonnes/cheftrends/relay"
	htmlrender "github.com/sonnes/cheftrends/render/html"
	"github.com/sonnes/cheftrends/server"
)

func serveCmd() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Usage:   "Address to listen on",
			Value:   ":8080",
			Sources: cli.EnvVars("CT_ADDR"),
		},
		&cli.StringFlag{
			Name:    "admin-user",
			Usage:   "User name for HTTP basic auth",
			Value:   "chef",
			Sources: cli.EnvVars("ADMIN_USER"),
		},
		&cli.StringFlag{
			Name:     "admin-password",
			Usage:    "Password for HTTP basic auth",
			Required: true,
			Sources:  cli.EnvVars("ADMIN_PASSWORD"),
		},
		&cli.StringFlag{
			Name:    "session-secret",
			Usage:   "Secret for signing session cookies; empty requires basic auth on every request",
			Sources: cli.EnvVars("SESSION_SECRET"),
		},
	}

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the interactive trend page behind basic auth",
		Flags: append(flags, providerFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			prov, cfg, err := newProvider(cmd)
			if err != nil {
				return err
			}

			creds, err := server.NewCredentials(cmd.String("admin-user"), cmd.String("admin-password"), 0)
			if err != nil {
				return err
			}

			logger := log.Default().With("component", "server")
			rel := relay.New(prov, relay.Config{Timeout: cfg.Timeout}, logger)
			srv := server.New(server.Config{
				Addr:          cmd.String("addr"),
				SessionSecret: cmd.String("session-secret"),
			}, creds, rel, htmlrender.New(), logger)

			if cmd.String("session-secret") == "" {
				logger.Warn("no session secret set, every request needs basic auth")
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Start(ctx)
		},
	}
}
