package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/sonnes/cheftrends/compact"
	"github.com/sonnes/cheftrends/core"
	"github.com/sonnes/cheftrends/manifest"
	"github.com/sonnes/cheftrends/prompt"
	"github.com/sonnes/cheftrends/provider"
	"github.com/sonnes/cheftrends/publish"
	"github.com/sonnes/cheftrends/redact"
	"github.com/sonnes/cheftrends/relay"
	htmlrender "github.com/sonnes/cheftrends/render/html"
)

// archiveIndex is the archive listing page written next to manifest.json.
const archiveIndex = "archive.html"

func generateCmd() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "focus",
			Aliases: []string{"f"},
			Usage:   "Optional focus for this week's report, e.g. \"brunch desserts\"",
		},
		&cli.StringFlag{
			Name:  "out",
			Usage: "Output file (\"-\" for stdout). Defaults to stdout for non-html formats",
			Value: "docs/index.html",
		},
		&cli.StringFlag{
			Name:  "o",
			Usage: "Output format: html, json, terminal",
			Value: "html",
		},
		&cli.BoolFlag{
			Name:  "no-markdown",
			Usage: "Show the report body as plain text instead of converting markdown",
		},
		&cli.StringFlag{
			Name:  "preamble",
			Usage: "Regexp matching the first line of the report; earlier lines are dropped. Empty disables",
			Value: core.DefaultPreamble,
		},
		&cli.BoolFlag{
			Name:  "final-only",
			Usage: "Keep only the text written after the last web search",
		},
		&cli.StringFlag{
			Name:  "archive",
			Usage: "Also write the report into this archive directory and update its manifest and index",
		},
		&cli.IntFlag{
			Name:  "keep",
			Usage: "With --archive, keep only the newest N reports (0 keeps all)",
		},
		&cli.BoolFlag{
			Name:  "stream",
			Usage: "Use a streaming call and print the report to stderr as it is written",
		},
		&cli.BoolFlag{
			Name:  "steps",
			Usage: "Show research steps in terminal output",
		},
		&cli.StringSliceFlag{
			Name:  "redact",
			Usage: "Redaction rules applied before rendering: secrets, pii. Example: --redact=secrets,pii",
			Value: []string{"secrets"},
		},
		&cli.BoolFlag{
			Name:  "no-redact",
			Usage: "Disable redaction",
		},
		&cli.BoolFlag{
			Name:  "publish",
			Usage: "Commit the written report with git instead of printing the git steps",
		},
		&cli.BoolFlag{
			Name:  "push",
			Usage: "Push after committing (implies --publish)",
		},
	}

	return &cli.Command{
		Name:  "generate",
		Usage: "Generate this week's trend report",
		Description: `Asks the model for this week's food trends, with web search enabled, and
renders the answer. The default writes docs/index.html, ready to be committed
and published.`,
		Flags: append(flags, providerFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			prov, cfg, err := newProvider(cmd)
			if err != nil {
				return err
			}

			opts := generateOptions{
				focus:      cmd.String("focus"),
				out:        cmd.String("out"),
				format:     cmd.String("o"),
				markdown:   !cmd.Bool("no-markdown"),
				finalOnly:  cmd.Bool("final-only"),
				archiveDir: cmd.String("archive"),
				keep:       int(cmd.Int("keep")),
				stream:     cmd.Bool("stream"),
				showSteps:  cmd.Bool("steps"),
				publish:    cmd.Bool("publish") || cmd.Bool("push"),
				push:       cmd.Bool("push"),
			}
			opts.redactor, err = newRedactor(cmd)
			if err != nil {
				return err
			}
			if opts.format != "html" && !cmd.IsSet("out") {
				opts.out = "-"
			}
			if expr := cmd.String("preamble"); expr != "" {
				opts.preamble, err = regexp.Compile(expr)
				if err != nil {
					return fmt.Errorf("invalid --preamble: %w", err)
				}
			}

			return runGenerate(ctx, prov, cfg, opts, time.Now(), os.Stdout, os.Stderr)
		},
	}
}

// generateOptions are the resolved flags of the generate command.
type generateOptions struct {
	focus      string
	out        string // "-" writes to stdout
	format     string
	markdown   bool
	preamble   *regexp.Regexp
	finalOnly  bool
	archiveDir string
	keep       int
	stream     bool
	showSteps  bool
	publish    bool
	push       bool
	redactor   *redact.Redactor // nil disables redaction
}

// runGenerate produces one report. It makes a single attempt: any provider
// failure is returned to the caller.
func runGenerate(ctx context.Context, prov provider.Provider, cfg provider.Config, opts generateOptions, now time.Time, stdout, stderr io.Writer) error {
	a := newApp()
	rnd, err := a.renderer(opts.format, renderOptions{markdown: opts.markdown, showSteps: opts.showSteps})
	if err != nil {
		return err
	}

	p := prompt.Build(opts.focus, now)

	fmt.Fprintln(stderr, "Querying the model for food trends...")
	fmt.Fprintln(stderr, "(This may take 1-2 minutes with extended thinking + web search)")
	fmt.Fprintln(stderr)

	start := time.Now()
	var rep *core.Report
	if opts.stream {
		rep, err = streamReport(ctx, prov, cfg, p, stderr)
	} else {
		rep, err = completeReport(ctx, prov, p)
	}
	if err != nil {
		return err
	}
	log.Debug("report received", "elapsed", time.Since(start).Round(time.Second), "blocks", len(rep.Blocks))

	transformers := []core.Transformer{
		compact.New(compact.Config{
			StripThinking: true,
			FinalOnly:     opts.finalOnly,
			Preamble:      opts.preamble,
		}),
	}
	if opts.redactor != nil {
		transformers = append(transformers, opts.redactor)
	}
	transformers = append(transformers, core.TransformFunc(requireBody))
	if err := core.Chain(rep, transformers...); err != nil {
		return err
	}

	if opts.out == "-" {
		if err := rnd.Render(stdout, rep); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	} else {
		if err := writeFile(opts.out, func(w io.Writer) error { return rnd.Render(w, rep) }); err != nil {
			return err
		}
	}

	if opts.archiveDir != "" {
		if err := archiveReport(opts.archiveDir, rep, opts.markdown, opts.keep); err != nil {
			return fmt.Errorf("archive: %w", err)
		}
	}

	if opts.out == "-" {
		return nil
	}
	if !opts.publish {
		printNextSteps(stdout, opts.out, opts.archiveDir, rep)
		return nil
	}

	res, err := publish.Run(ctx, publish.Config{
		Paths:   publishPaths(opts.out, opts.archiveDir),
		Message: publish.CommitMessage(rep.DateLabel()),
		Push:    opts.push,
		Output:  stderr,
	})
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	switch {
	case res.Pushed:
		fmt.Fprintf(stdout, "Done! Report written to %s, committed and pushed.\n", opts.out)
	case res.Committed:
		fmt.Fprintf(stdout, "Done! Report written to %s and committed. Run git push to publish it.\n", opts.out)
	default:
		fmt.Fprintf(stdout, "Done! Report written to %s (no changes to commit).\n", opts.out)
	}
	return nil
}

func publishPaths(out, archiveDir string) []string {
	paths := []string{out}
	if archiveDir != "" {
		paths = append(paths, archiveDir)
	}
	return paths
}

// completeReport issues one blocking request and builds the report from the
// returned content blocks.
func completeReport(ctx context.Context, prov provider.Provider, p prompt.Prompt) (*core.Report, error) {
	resp, err := prov.Complete(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}
	rep := core.NewReport(reportTitle, p.Focus, p.Now, resp.Content)
	rep.Model = resp.Model
	usage := resp.Usage
	rep.Usage = &usage
	return rep, nil
}

// streamReport relays a streaming request, echoing text to progress as it
// arrives, and builds the report from the collected text.
func streamReport(ctx context.Context, prov provider.Provider, cfg provider.Config, p prompt.Prompt, progress io.Writer) (*core.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	rel := relay.New(prov, relay.Config{Timeout: cfg.Timeout}, log.Default())
	text, err := relay.Collect(ctx, rel.Start(ctx, p), func(s string) {
		fmt.Fprint(progress, s)
	})
	fmt.Fprintln(progress)
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}

	rep := core.NewReport(reportTitle, p.Focus, p.Now, []core.ContentBlock{
		{Type: core.BlockText, Text: text},
	})
	rep.Model = cfg.Model
	return rep, nil
}

// requireBody rejects reports with nothing left to publish.
func requireBody(rep *core.Report) error {
	if strings.TrimSpace(rep.Body) == "" {
		return provider.ErrEmptyResponse
	}
	return nil
}

// archiveReport writes <dir>/<id>.html, adds it to the manifest and
// regenerates the archive index page. With keep > 0 only the newest keep
// reports stay archived.
func archiveReport(dir string, rep *core.Report, markdown bool, keep int) error {
	href := rep.ID + ".html"

	page := htmlrender.New()
	page.Markdown = markdown
	page.ArchiveHref = archiveIndex
	if err := writeFile(filepath.Join(dir, href), func(w io.Writer) error { return page.Render(w, rep) }); err != nil {
		return err
	}

	m, err := manifest.Load(dir)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	m.Add(core.NewManifestEntry(rep, href))
	for _, old := range m.Prune(keep) {
		if old.Href == "" {
			continue
		}
		if err := os.Remove(filepath.Join(dir, old.Href)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("prune %s: %w", old.Href, err)
		}
		log.Debug("pruned archived report", "id", old.ID)
	}
	if err := m.Save(); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return writeIndex(dir, m)
}

// writeIndex renders the archive listing for m into dir.
func writeIndex(dir string, m *manifest.Manifest) error {
	r := htmlrender.New()
	return writeFile(filepath.Join(dir, archiveIndex), func(w io.Writer) error {
		return r.RenderIndex(w, m.Entries)
	})
}

// writeFile creates path (and its parent directories) and fills it with fn.
func writeFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func printNextSteps(w io.Writer, out, archiveDir string, rep *core.Report) {
	paths := publishPaths(out, archiveDir)
	fmt.Fprintf(w, "Done! Report written to %s\n", out)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintf(w, "  git add %s\n", strings.Join(paths, " "))
	fmt.Fprintf(w, "  git commit -m '%s'\n", publish.CommitMessage(rep.DateLabel()))
	fmt.Fprintln(w, "  git push")
}
