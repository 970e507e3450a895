package main

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/urfave/cli/v3"

	"github.com/sonnes/cheftrends/core"
	"github.com/sonnes/cheftrends/provider"
	"github.com/sonnes/cheftrends/provider/anthropic"
	"github.com/sonnes/cheftrends/redact"
	"github.com/sonnes/cheftrends/render"
	htmlrender "github.com/sonnes/cheftrends/render/html"
	jsonrender "github.com/sonnes/cheftrends/render/json"
	"github.com/sonnes/cheftrends/render/terminal"
)

// reportTitle heads every generated report.
const reportTitle = "This Week's Food Trends"

// failureMessage is the only error text shown to someone reading a report.
const failureMessage = "Something went wrong. Please try again in a moment."

// renderOptions carries the flags that shape renderer output.
type renderOptions struct {
	markdown    bool
	archiveHref string
	showSteps   bool
}

// app holds the renderer registry used by CLI commands.
type app struct {
	renderers map[string]func(renderOptions) render.Renderer
}

func newApp() *app {
	return &app{
		renderers: map[string]func(renderOptions) render.Renderer{
			"html": func(o renderOptions) render.Renderer {
				r := htmlrender.New()
				r.Markdown = o.markdown
				r.ArchiveHref = o.archiveHref
				return r
			},
			"json": func(renderOptions) render.Renderer { return jsonrender.New(true) },
			"terminal": func(o renderOptions) render.Renderer {
				r := terminal.New()
				r.ShowSteps = o.showSteps
				return r
			},
		},
	}
}

func (a *app) renderer(name string, o renderOptions) (render.Renderer, error) {
	fn, ok := a.renderers[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (want one of %s)", name, strings.Join(a.formats(), ", "))
	}
	return fn(o), nil
}

func (a *app) formats() []string {
	names := make([]string, 0, len(a.renderers))
	for name := range a.renderers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// providerFlags are shared by every command that calls the model.
func providerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "Anthropic API key",
			Sources: cli.EnvVars("ANTHROPIC_API_KEY"),
		},
		&cli.StringFlag{
			Name:    "model",
			Usage:   "Model name",
			Value:   provider.DefaultModel,
			Sources: cli.EnvVars("CT_MODEL"),
		},
		&cli.IntFlag{
			Name:  "max-tokens",
			Usage: "Maximum output tokens",
			Value: provider.DefaultMaxTokens,
		},
		&cli.IntFlag{
			Name:  "thinking-budget",
			Usage: "Extended thinking token budget (0 disables thinking)",
			Value: provider.DefaultThinkingBudget,
		},
		&cli.IntFlag{
			Name:  "web-search-max-uses",
			Usage: "Maximum web searches per report",
			Value: provider.DefaultWebSearchMaxUses,
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "Maximum duration of one model call",
			Value:   provider.DefaultTimeout,
			Sources: cli.EnvVars("CT_TIMEOUT"),
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Use a canned report instead of calling the model",
		},
	}
}

// providerConfig reads the provider flags.
func providerConfig(cmd *cli.Command) provider.Config {
	return provider.Config{
		Model:            cmd.String("model"),
		MaxTokens:        int(cmd.Int("max-tokens")),
		ThinkingBudget:   int(cmd.Int("thinking-budget")),
		WebSearchMaxUses: int(cmd.Int("web-search-max-uses")),
		Timeout:          cmd.Duration("timeout"),
	}.WithDefaults()
}

// newProvider builds the provider selected by the flags.
func newProvider(cmd *cli.Command) (provider.Provider, provider.Config, error) {
	cfg := providerConfig(cmd)
	if cmd.Bool("dry-run") {
		return dryRunProvider(), cfg, nil
	}
	key := cmd.String("api-key")
	if key == "" {
		return nil, cfg, fmt.Errorf("an API key is required: set ANTHROPIC_API_KEY or --api-key (or use --dry-run)")
	}
	return anthropic.New(cfg, option.WithAPIKey(key)), cfg, nil
}

// dryRunProvider returns a provider that replays a canned report, streamed in
// small fragments.
func dryRunProvider() *provider.Fake {
	blocks := dryRunBlocks()

	var events []provider.Event
	for _, b := range blocks {
		switch b.Type {
		case core.BlockThinking:
			events = append(events, provider.Event{Kind: provider.EventThinking, Text: b.Text})
		case core.BlockText:
			for _, chunk := range chunkText(b.Text, 24) {
				events = append(events, provider.Event{Kind: provider.EventText, Text: chunk})
			}
		default:
			events = append(events, provider.Event{Kind: provider.EventTool})
		}
	}

	return &provider.Fake{
		Events: events,
		Response: &provider.Response{
			Model:   "dry-run",
			Content: blocks,
		},
	}
}

// chunkText splits s into pieces of at most n bytes without splitting runes.
func chunkText(s string, n int) []string {
	var chunks []string
	for len(s) > 0 {
		end := min(n, len(s))
		for end < len(s) && !utf8.RuneStart(s[end]) {
			end++
		}
		chunks = append(chunks, s[:end])
		s = s[end:]
	}
	return chunks
}

// newRedactor builds a Redactor from CLI flags. Returns nil when --no-redact
// is set or no rule sets are selected.
func newRedactor(cmd *cli.Command) (*redact.Redactor, error) {
	if cmd.Bool("no-redact") {
		return nil, nil
	}
	return redactorFor(cmd.StringSlice("redact"))
}

func redactorFor(sets []string) (*redact.Redactor, error) {
	r, err := redact.New(redact.Config{Sets: sets})
	if err != nil {
		return nil, fmt.Errorf("invalid --redact: %w", err)
	}
	if r.Empty() {
		return nil, nil
	}
	return r, nil
}
