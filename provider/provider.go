// Package provider defines the interface for calling a hosted language model
// with web search enabled, either streaming or as one blocking request.
package provider

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/sonnes/cheftrends/core"
	"github.com/sonnes/cheftrends/prompt"
)

// Defaults applied by Config.WithDefaults.
const (
	DefaultModel            = "claude-opus-4-5-20251101"
	DefaultMaxTokens        = 16000
	DefaultThinkingBudget   = 10000
	DefaultWebSearchMaxUses = 15
	DefaultTimeout          = 10 * time.Minute
)

// ErrEmptyResponse is returned when a completed response carries no text.
var ErrEmptyResponse = errors.New("provider returned no text")

// Config controls the upstream request.
type Config struct {
	Model            string
	MaxTokens        int
	ThinkingBudget   int // zero disables extended thinking
	WebSearchMaxUses int
	// Timeout bounds one upstream call from request to last byte.
	Timeout time.Duration
}

// WithDefaults returns a copy of c with zero fields replaced by defaults.
// ThinkingBudget is left alone since zero is meaningful.
func (c Config) WithDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.WebSearchMaxUses <= 0 {
		c.WebSearchMaxUses = DefaultWebSearchMaxUses
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// EventKind classifies streamed provider events.
type EventKind int

const (
	EventText     EventKind = iota // user-visible text fragment
	EventThinking                  // reasoning content
	EventTool                      // tool call metadata or results
	EventOther                     // lifecycle events (start, stop, usage)
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventThinking:
		return "thinking"
	case EventTool:
		return "tool"
	default:
		return "other"
	}
}

// Event is one item of a provider stream. Text is set for text and thinking events.
type Event struct {
	Kind EventKind
	Text string
}

// Response is the result of a blocking request.
type Response struct {
	Model   string
	Content []core.ContentBlock
	Usage   core.Usage
}

// Provider calls a hosted model with the configured system instruction,
// thinking budget, web search tool and output budget.
type Provider interface {
	// Stream opens a streaming request. Events arrive in generation order;
	// iteration stops after the first error.
	Stream(ctx context.Context, p prompt.Prompt) iter.Seq2[Event, error]

	// Complete issues one request and waits for the whole response.
	Complete(ctx context.Context, p prompt.Prompt) (*Response, error)
}
