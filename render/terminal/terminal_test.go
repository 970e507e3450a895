package terminal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnes/cheftrends/core"
)

func buildTestReport(generatedAt time.Time) *core.Report {
	r := core.NewReport("This Week's Food Trends", "brunch desserts", generatedAt, []core.ContentBlock{
		{Type: core.BlockThinking, Text: "Look for dessert signals."},
		{Type: core.BlockServerToolUse, Name: "web_search", Input: map[string]any{"query": "brunch dessert trends"}},
		{Type: core.BlockWebSearchToolResult},
		{Type: core.BlockText, Text: "## Trend A\n\nTrend A is **rising** on menus.\n\n- Miso caramel toast\n- Black sesame buns\n\n---\n\nDone."},
	})
	r.Model = "claude-opus-4-5-20251101"
	return r
}

func TestRenderHeader(t *testing.T) {
	rep := buildTestReport(time.Now())
	rep.Usage = &core.Usage{InputTokens: 229, OutputTokens: 1273, WebSearchRequests: 4}

	r := &Renderer{Width: 100}
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, rep))

	out := ansi.Strip(buf.String())

	assert.Contains(t, out, "This Week's Food Trends")
	assert.Contains(t, out, rep.DateLabel())
	assert.Contains(t, out, "just now")
	assert.Contains(t, out, "claude-opus-4-5-20251101")
	assert.Contains(t, out, "Focus: brunch desserts")
	assert.Contains(t, out, "229")
	assert.Contains(t, out, "1,273")
	assert.Contains(t, out, "INPUT")
	assert.Contains(t, out, "OUTPUT")
	assert.Contains(t, out, "SEARCHES")
}

func TestRenderHeaderWithoutSearches(t *testing.T) {
	rep := buildTestReport(time.Now())
	rep.Usage = &core.Usage{InputTokens: 10, OutputTokens: 20}

	var buf bytes.Buffer
	require.NoError(t, (&Renderer{Width: 80}).Render(&buf, rep))

	out := ansi.Strip(buf.String())
	assert.Contains(t, out, "INPUT")
	assert.NotContains(t, out, "SEARCHES")
}

func TestRenderBody(t *testing.T) {
	r := &Renderer{Width: 80}
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, buildTestReport(time.Now())))

	out := ansi.Strip(buf.String())

	assert.Contains(t, out, "Trend A")
	assert.NotContains(t, out, "## Trend A")
	assert.Contains(t, out, "Trend A is rising on menus.")
	assert.NotContains(t, out, "**")
	assert.Contains(t, out, "• Miso caramel toast")
	assert.Contains(t, out, "• Black sesame buns")
	assert.Contains(t, out, "Done.")
}

func TestRenderHidesStepsByDefault(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&Renderer{Width: 80}).Render(&buf, buildTestReport(time.Now())))

	out := ansi.Strip(buf.String())
	assert.NotContains(t, out, "Thinking...")
	assert.NotContains(t, out, "brunch dessert trends")
}

func TestRenderSteps(t *testing.T) {
	r := &Renderer{Width: 80, ShowSteps: true}
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, buildTestReport(time.Now())))

	out := ansi.Strip(buf.String())
	assert.Contains(t, out, "▸ Thinking...")
	assert.Contains(t, out, "⚙ Searched")
	assert.Contains(t, out, "brunch dessert trends")

	steps := strings.Index(out, "⚙ Searched")
	body := strings.Index(out, "Trend A is rising")
	assert.Less(t, steps, body)
}

func TestRenderWrapsLongParagraphs(t *testing.T) {
	words := strings.TrimSpace(strings.Repeat("sourdough ", 40))
	rep := core.NewReport("Food Trends", "", time.Now(), []core.ContentBlock{
		{Type: core.BlockText, Text: words},
	})

	var buf bytes.Buffer
	require.NoError(t, (&Renderer{Width: 40}).Render(&buf, rep))

	out := ansi.Strip(buf.String())
	assert.Equal(t, 40, strings.Count(out, "sourdough"))
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "sourdough") {
			assert.LessOrEqual(t, ansi.StringWidth(line), 40, "line too wide: %q", line)
		}
	}
}

func TestRenderEmptyBody(t *testing.T) {
	rep := core.NewReport("Food Trends", "", time.Time{}, nil)

	var buf bytes.Buffer
	require.NoError(t, (&Renderer{Width: 80}).Render(&buf, rep))

	out := ansi.Strip(buf.String())
	assert.Contains(t, out, "Food Trends")
	assert.NotContains(t, out, "Focus:")
	assert.NotContains(t, out, "INPUT")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		expect   string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 8, "hello..."},
		{"first line only", "line one\nline two", 20, "line one"},
		{"min width", "abcdef", 2, "a..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, truncate(tt.input, tt.maxWidth))
		})
	}
}

func TestIsRule(t *testing.T) {
	assert.True(t, isRule("---"))
	assert.True(t, isRule("*****"))
	assert.True(t, isRule("___"))
	assert.False(t, isRule("--"))
	assert.False(t, isRule("-- x"))
	assert.False(t, isRule("abc"))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "-1,500", formatNumber(-1500))
}
