// Package anthropic implements provider.Provider with the Anthropic Messages
// API: extended thinking, the server-side web search tool and streaming.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sonnes/cheftrends/core"
	"github.com/sonnes/cheftrends/prompt"
	"github.com/sonnes/cheftrends/provider"
)

// ErrIncomplete is returned when the event stream ends before message_stop,
// e.g. when the connection is closed mid-response.
var ErrIncomplete = errors.New("stream ended before message_stop")

// Client calls the Messages API.
type Client struct {
	client anthropic.Client
	cfg    provider.Config
}

// New creates a Client. Options are passed to the SDK; without
// option.WithAPIKey the SDK reads ANTHROPIC_API_KEY.
func New(cfg provider.Config, opts ...option.RequestOption) *Client {
	return &Client{
		client: anthropic.NewClient(opts...),
		cfg:    cfg.WithDefaults(),
	}
}

// Config returns the effective configuration.
func (c *Client) Config() provider.Config {
	return c.cfg
}

func (c *Client) params(p prompt.Prompt) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: int64(c.cfg.MaxTokens),
		System:    []anthropic.TextBlockParam{{Text: p.System}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.User)),
		},
		Tools: []anthropic.ToolUnionParam{{
			OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{
				MaxUses: anthropic.Int(int64(c.cfg.WebSearchMaxUses)),
			},
		}},
	}
	if c.cfg.ThinkingBudget > 0 {
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(int64(c.cfg.ThinkingBudget))
	}
	return params
}

// Stream implements provider.Provider.
func (c *Client) Stream(ctx context.Context, p prompt.Prompt) iter.Seq2[provider.Event, error] {
	return func(yield func(provider.Event, error) bool) {
		ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		stream := c.client.Messages.NewStreaming(ctx, c.params(p))
		defer stream.Close()

		stopped := false
		for stream.Next() {
			ev := stream.Current()
			if _, ok := ev.AsAny().(anthropic.MessageStopEvent); ok {
				stopped = true
			}
			if !yield(mapEvent(ev), nil) {
				return
			}
		}

		switch err := stream.Err(); {
		case err != nil:
			yield(provider.Event{}, fmt.Errorf("anthropic stream: %w", err))
		case !stopped:
			yield(provider.Event{}, ErrIncomplete)
		}
	}
}

// mapEvent classifies a stream event. Only text_delta carries visible text.
func mapEvent(ev anthropic.MessageStreamEventUnion) provider.Event {
	switch event := ev.AsAny().(type) {
	case anthropic.ContentBlockDeltaEvent:
		switch delta := event.Delta.AsAny().(type) {
		case anthropic.TextDelta:
			return provider.Event{Kind: provider.EventText, Text: delta.Text}
		case anthropic.ThinkingDelta:
			return provider.Event{Kind: provider.EventThinking, Text: delta.Thinking}
		case anthropic.SignatureDelta:
			return provider.Event{Kind: provider.EventThinking}
		case anthropic.InputJSONDelta:
			return provider.Event{Kind: provider.EventTool}
		}
	case anthropic.ContentBlockStartEvent:
		switch core.BlockType(event.ContentBlock.Type) {
		case core.BlockThinking, core.BlockRedactedThinking:
			return provider.Event{Kind: provider.EventThinking}
		case core.BlockServerToolUse, core.BlockWebSearchToolResult, core.BlockToolUse:
			return provider.Event{Kind: provider.EventTool}
		}
	}
	return provider.Event{Kind: provider.EventOther}
}

// Complete implements provider.Provider.
func (c *Client) Complete(ctx context.Context, p prompt.Prompt) (*provider.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	msg, err := c.client.Messages.New(ctx, c.params(p))
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	resp := &provider.Response{
		Model: string(msg.Model),
		Usage: core.Usage{
			InputTokens:       int(msg.Usage.InputTokens),
			OutputTokens:      int(msg.Usage.OutputTokens),
			WebSearchRequests: int(msg.Usage.ServerToolUse.WebSearchRequests),
		},
	}
	for _, b := range msg.Content {
		if cb, ok := mapContentBlock(b.RawJSON()); ok {
			resp.Content = append(resp.Content, cb)
		}
	}
	return resp, nil
}

// rawContentBlock mirrors the JSON of a response content block.
type rawContentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Thinking string `json:"thinking"`
	Name     string `json:"name"`
	Input    any    `json:"input"`
}

func mapContentBlock(raw string) (core.ContentBlock, bool) {
	var b rawContentBlock
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return core.ContentBlock{}, false
	}

	switch t := core.BlockType(b.Type); t {
	case core.BlockText:
		return core.ContentBlock{Type: t, Text: b.Text}, true
	case core.BlockThinking:
		return core.ContentBlock{Type: t, Text: b.Thinking}, true
	case core.BlockRedactedThinking, core.BlockWebSearchToolResult:
		return core.ContentBlock{Type: t}, true
	case core.BlockServerToolUse, core.BlockToolUse:
		return core.ContentBlock{Type: t, Name: b.Name, Input: b.Input}, true
	default:
		return core.ContentBlock{}, false
	}
}
