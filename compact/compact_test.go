package compact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnes/cheftrends/core"
)

func buildTestReport() *core.Report {
	blocks := []core.ContentBlock{
		{Type: core.BlockThinking, Text: "The member events angle matters."},
		{Type: core.BlockText, Text: "I'll start with a broad search.\n"},
		{Type: core.BlockServerToolUse, Name: "web_search", Input: map[string]any{"query": "viral food tiktok this week"}},
		{Type: core.BlockWebSearchToolResult},
		{Type: core.BlockRedactedThinking},
		{Type: core.BlockText, Text: "Now I have enough.\n\n# This Week's Trends\n\n"},
		{Type: core.BlockText, Text: "**Cottage Cheese Flatbread**\n- Platform: TikTok\n"},
	}
	return core.NewReport("Trends", "", time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), blocks)
}

func TestTransformKeepsAllTextByDefault(t *testing.T) {
	r := buildTestReport()
	require.NoError(t, New(Config{}).Transform(r))

	assert.Equal(t, "I'll start with a broad search.\nNow I have enough.\n\n# This Week's Trends\n\n**Cottage Cheese Flatbread**\n- Platform: TikTok", r.Body)
	assert.Len(t, r.Blocks, 7)
}

func TestTransformStripsPreamble(t *testing.T) {
	r := buildTestReport()
	require.NoError(t, New(Config{Preamble: core.DefaultPreambleRE}).Transform(r))

	assert.Equal(t, "# This Week's Trends\n\n**Cottage Cheese Flatbread**\n- Platform: TikTok", r.Body)
}

func TestTransformFinalOnly(t *testing.T) {
	r := buildTestReport()
	require.NoError(t, New(Config{FinalOnly: true}).Transform(r))

	assert.Equal(t, "Now I have enough.\n\n# This Week's Trends\n\n**Cottage Cheese Flatbread**\n- Platform: TikTok", r.Body)
}

func TestTransformStripThinking(t *testing.T) {
	r := buildTestReport()
	require.NoError(t, New(Config{StripThinking: true}).Transform(r))

	require.Len(t, r.Blocks, 5)
	for _, b := range r.Blocks {
		assert.NotEqual(t, core.BlockThinking, b.Type)
		assert.NotEqual(t, core.BlockRedactedThinking, b.Type)
	}
	assert.Equal(t, []string{"viral food tiktok this week"}, r.SearchQueries())
}

func TestFilterThinking(t *testing.T) {
	blocks := []core.ContentBlock{
		{Type: core.BlockThinking, Text: "reasoning"},
		{Type: core.BlockText, Text: "visible"},
		{Type: core.BlockToolUse, Name: "web_search"},
	}

	filtered := filterThinking(blocks)
	require.Len(t, filtered, 2)
	assert.Equal(t, core.BlockText, filtered[0].Type)
	assert.Equal(t, core.BlockToolUse, filtered[1].Type)
}

func TestFilterThinkingNoop(t *testing.T) {
	blocks := []core.ContentBlock{
		{Type: core.BlockText, Text: "hello"},
	}
	filtered := filterThinking(blocks)
	require.Len(t, filtered, 1)
	assert.Equal(t, "hello", filtered[0].Text)
}
