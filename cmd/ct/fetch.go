package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/sonnes/cheftrends/relay"
)

func fetchCmd() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Stream a report from a running server to the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Usage:   "Base URL of the server",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars("CT_URL"),
			},
			&cli.StringFlag{
				Name:    "focus",
				Aliases: []string{"f"},
				Usage:   "Optional focus for the report",
			},
			&cli.StringFlag{
				Name:    "user",
				Usage:   "Basic auth user",
				Value:   "chef",
				Sources: cli.EnvVars("ADMIN_USER"),
			},
			&cli.StringFlag{
				Name:    "password",
				Usage:   "Basic auth password",
				Sources: cli.EnvVars("ADMIN_PASSWORD"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c := fetchClient{
				baseURL:  cmd.String("url"),
				user:     cmd.String("user"),
				password: cmd.String("password"),
				http:     http.DefaultClient,
			}
			_, err := c.fetch(ctx, cmd.String("focus"), os.Stdout)
			if err != nil {
				log.Debug("fetch failed", "err", err)
				return cli.Exit(failureMessage, 1)
			}
			return nil
		},
	}
}

// fetchClient requests a streamed report from a running server.
type fetchClient struct {
	baseURL  string
	user     string
	password string
	http     *http.Client
}

// fetch posts focus to the stream endpoint and writes text to out as it
// arrives. It returns the whole report text once the server signals the end.
func (c fetchClient) fetch(ctx context.Context, focus string, out io.Writer) (string, error) {
	body, err := json.Marshal(map[string]string{"focus": focus})
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(c.baseURL, "/") + "/stream"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.SetBasicAuth(c.user, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("post %s: %s", url, resp.Status)
	}

	text, err := relay.Read(resp.Body, func(s string) {
		fmt.Fprint(out, s)
	})
	fmt.Fprintln(out)
	return text, err
}
