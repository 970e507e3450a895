// Package terminal renders reports as ANSI-styled text for reading in a shell.
package terminal

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/term"

	"github.com/sonnes/cheftrends/core"
)

const defaultWidth = 100

// maxWidth caps the body width so long lines stay readable on wide terminals.
const maxWidth = 88

var strongRE = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)

// Renderer pretty-prints a report to the terminal.
type Renderer struct {
	// Width overrides terminal width detection. Zero means auto-detect.
	Width int

	// ShowSteps lists the research steps (thinking and searches) before the body.
	ShowSteps bool
}

// New creates a terminal Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render writes the report to w.
func (r *Renderer) Render(w io.Writer, rep *core.Report) error {
	width := min(r.termWidth(), maxWidth)

	writeHeader(w, rep)

	if r.ShowSteps {
		steps, _ := rep.SplitContent()
		writeSteps(w, steps, width)
	}

	writeSeparator(w, width)
	fmt.Fprintln(w)
	writeBody(w, rep.Body, width)
	fmt.Fprintln(w)
	return nil
}

func (r *Renderer) termWidth() int {
	if r.Width > 0 {
		return r.Width
	}
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// writeHeader renders the report metadata block.
func writeHeader(w io.Writer, rep *core.Report) {
	fmt.Fprintln(w, styleTitle.Render(rep.Title))

	// date  relative_time  model
	var parts []string
	if !rep.GeneratedAt.IsZero() {
		parts = append(parts, rep.DateLabel(), core.RelativeTime(rep.GeneratedAt))
	}
	if rep.Model != "" {
		parts = append(parts, rep.Model)
	}
	if len(parts) > 0 {
		fmt.Fprintln(w, styleMeta.Render(strings.Join(parts, "  ")))
	}
	if rep.Focus != "" {
		fmt.Fprintln(w, styleMeta.Render("Focus: ")+styleFocus.Render(rep.Focus))
	}

	if rep.Usage != nil {
		fmt.Fprintln(w)
		writeUsage(w, rep.Usage)
	}
}

// writeUsage renders counters in two rows: values then labels.
func writeUsage(w io.Writer, u *core.Usage) {
	type stat struct {
		value int
		label string
	}
	stats := []stat{
		{u.InputTokens, "INPUT"},
		{u.OutputTokens, "OUTPUT"},
	}
	if u.WebSearchRequests > 0 {
		stats = append(stats, stat{u.WebSearchRequests, "SEARCHES"})
	}

	var values, labels []string
	for _, s := range stats {
		formatted := formatNumber(s.value)
		colWidth := max(len(formatted), len(s.label))
		values = append(values, fmt.Sprintf("%*s", colWidth, formatted))
		labels = append(labels, fmt.Sprintf("%-*s", colWidth, s.label))
	}

	fmt.Fprintln(w, "  "+styleStat.Render(strings.Join(values, "    ")))
	fmt.Fprintln(w, "  "+styleStatLabel.Render(strings.Join(labels, "    ")))
}

// writeSteps renders one line per research step.
func writeSteps(w io.Writer, steps []core.ContentBlock, width int) {
	contentWidth := max(width-4, 40)

	var lines []string
	for _, b := range steps {
		switch b.Type {
		case core.BlockThinking, core.BlockRedactedThinking:
			lines = append(lines, styleThinking.Render("▸ Thinking..."))
		case core.BlockServerToolUse, core.BlockToolUse:
			verb, detail := describeTool(b)
			line := styleToolName.Render("⚙ " + verb)
			if detail != "" {
				verbWidth := lipgloss.Width("⚙ " + verb + "  ")
				line += "  " + styleToolDetail.Render(truncate(detail, contentWidth-verbWidth))
			}
			lines = append(lines, line)
		case core.BlockText:
			if text := strings.TrimSpace(b.Text); text != "" {
				lines = append(lines, styleToolDetail.Render(truncate(text, contentWidth)))
			}
		}
	}
	if len(lines) == 0 {
		return
	}

	writeSeparator(w, width)
	fmt.Fprintln(w)
	for _, line := range lines {
		fmt.Fprintln(w, "  "+line)
	}
}

// writeBody renders the markdown body line by line: headings and bullets are
// styled, rules become separators and paragraphs are word-wrapped.
func writeBody(w io.Writer, body string, width int) {
	contentWidth := max(width-2, 20)

	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		line = strings.TrimRight(line, " \r")
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			fmt.Fprintln(w)
		case isRule(trimmed):
			fmt.Fprintln(w, " "+styleSeparator.Render(strings.Repeat("─", min(contentWidth, 40))))
		case strings.HasPrefix(trimmed, "#"):
			heading := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			fmt.Fprintln(w, " "+styleHeading.Render(strongRE.ReplaceAllString(heading, "$1")))
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			indent := len(line) - len(strings.TrimLeft(line, " \t"))
			prefix := strings.Repeat(" ", 2+indent)
			writeWrapped(w, prefix+styleBullet.Render("•")+" ", prefix+"  ", emphasize(trimmed[2:]), contentWidth-indent-2)
		default:
			writeWrapped(w, "  ", "  ", emphasize(trimmed), contentWidth)
		}
	}
}

// writeWrapped word-wraps s to width and writes it with first prefixing the
// first line and rest prefixing continuation lines.
func writeWrapped(w io.Writer, first, rest, s string, width int) {
	wrapped := ansi.Wordwrap(s, max(width, 10), "")
	for i, l := range strings.Split(wrapped, "\n") {
		if i == 0 {
			fmt.Fprintln(w, first+l)
			continue
		}
		fmt.Fprintln(w, rest+l)
	}
}

func emphasize(s string) string {
	return strongRE.ReplaceAllStringFunc(s, func(m string) string {
		return lipgloss.NewStyle().Bold(true).Render(m[2 : len(m)-2])
	})
}

func isRule(s string) bool {
	if len(s) < 3 {
		return false
	}
	c := s[0]
	if c != '-' && c != '*' && c != '_' {
		return false
	}
	return strings.Count(s, string(c)) == len(s)
}

// writeSeparator renders a horizontal rule.
func writeSeparator(w io.Writer, width int) {
	n := min(width, 72)
	fmt.Fprintln(w)
	fmt.Fprintln(w, styleSeparator.Render(strings.Repeat("─", n)))
}

// truncate shortens text to maxWidth, appending "..." if needed.
// Multi-line text is reduced to the first line.
func truncate(s string, maxWidth int) string {
	if maxWidth < 4 {
		maxWidth = 4
	}
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if lipgloss.Width(s) <= maxWidth {
		return s
	}

	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > maxWidth {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return formatNumber(n/1000) + "," + fmt.Sprintf("%03d", n%1000)
}
