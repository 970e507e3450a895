// Package core defines the report model shared by the provider, relay and
// renderers: a generated trend report, the content blocks it was assembled
// from, and the deltas streamed while it is being written.
package core

import (
	"strings"
	"time"
)

// IDLayout formats the report ID derived from the generation date.
const IDLayout = "2006-01-02"

// DateLayout is the human-readable date used in prompts and page labels.
const DateLayout = "January 2, 2006"

// Report is the top-level container for a single generated report.
type Report struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Focus       string         `json:"focus,omitempty"`
	Model       string         `json:"model,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
	Usage       *Usage         `json:"usage,omitempty"`
	Blocks      []ContentBlock `json:"blocks,omitempty"`
	Body        string         `json:"body"` // final report text, usually markdown
}

// NewReport creates a Report stamped with the given generation time. The body
// is initialized from the text blocks.
func NewReport(title, focus string, generatedAt time.Time, blocks []ContentBlock) *Report {
	r := &Report{
		ID:          generatedAt.Format(IDLayout),
		Title:       title,
		Focus:       focus,
		GeneratedAt: generatedAt,
		Blocks:      blocks,
	}
	r.Body = r.Text()
	return r
}

// Text concatenates the text blocks verbatim, in order. Thinking and tool
// blocks are never part of the visible text.
func (r *Report) Text() string {
	var sb strings.Builder
	for _, b := range r.Blocks {
		if b.Type == BlockText {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// DateLabel returns the generation date formatted for display.
func (r *Report) DateLabel() string {
	return r.GeneratedAt.Format(DateLayout)
}

// Usage holds token and tool counters reported by the provider.
type Usage struct {
	InputTokens       int `json:"input_tokens,omitempty"`
	OutputTokens      int `json:"output_tokens,omitempty"`
	WebSearchRequests int `json:"web_search_requests,omitempty"`
}

// ContentBlock is one piece of a provider response. The Type field determines
// which other fields are populated.
type ContentBlock struct {
	Type  BlockType `json:"type"`
	Text  string    `json:"text,omitempty"`  // set for "text" and "thinking"
	Name  string    `json:"name,omitempty"`  // tool name, set for tool blocks
	Input any       `json:"input,omitempty"` // tool input params
}

// BlockType enumerates content block kinds.
type BlockType string

const (
	BlockText                BlockType = "text"
	BlockThinking            BlockType = "thinking"
	BlockRedactedThinking    BlockType = "redacted_thinking"
	BlockServerToolUse       BlockType = "server_tool_use"
	BlockWebSearchToolResult BlockType = "web_search_tool_result"
	BlockToolUse             BlockType = "tool_use"
)

// Visible reports whether blocks of this type belong in the report text.
func (t BlockType) Visible() bool {
	return t == BlockText
}
