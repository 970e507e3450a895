// Package compact provides a Transformer that reduces a provider response to
// the report body: reasoning is dropped and model chatter before the report is
// stripped.
package compact

import (
	"regexp"
	"strings"

	"github.com/sonnes/cheftrends/core"
)

// Config controls the compact transformer behavior.
type Config struct {
	// StripThinking removes thinking blocks from the report.
	StripThinking bool
	// FinalOnly builds the body from the trailing text blocks only, dropping
	// text written between web searches.
	FinalOnly bool
	// Preamble, when non-nil, marks the first line of the report body; text
	// before it is dropped. See core.StripPreamble.
	Preamble *regexp.Regexp
}

// Compactor rebuilds the report body from visible text blocks.
type Compactor struct {
	stripThinking bool
	finalOnly     bool
	preamble      *regexp.Regexp
}

// New creates a Compactor from the given config.
func New(cfg Config) *Compactor {
	return &Compactor{
		stripThinking: cfg.StripThinking,
		finalOnly:     cfg.FinalOnly,
		preamble:      cfg.Preamble,
	}
}

// Transform implements core.Transformer.
func (c *Compactor) Transform(r *core.Report) error {
	blocks := r.Blocks
	if c.finalOnly {
		_, blocks = r.SplitContent()
	}
	r.Body = strings.TrimSpace(core.StripPreamble(joinText(blocks), c.preamble))

	if c.stripThinking {
		r.Blocks = filterThinking(r.Blocks)
	}
	return nil
}

func joinText(blocks []core.ContentBlock) string {
	var sb strings.Builder
	for _, b := range blocks {
		if b.Type.Visible() {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

func filterThinking(blocks []core.ContentBlock) []core.ContentBlock {
	out := make([]core.ContentBlock, 0, len(blocks))
	for _, b := range blocks {
		if b.Type != core.BlockThinking && b.Type != core.BlockRedactedThinking {
			out = append(out, b)
		}
	}
	return out
}
