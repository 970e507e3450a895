// Generates an example HTML trend report and writes it to stdout.
// Usage: go run ./render/html/cmd/example > example.html
package main

import (
	"os"
	"time"

	"github.com/sonnes/cheftrends/core"
	htmlrender "github.com/sonnes/cheftrends/render/html"
)

func main() {
	now := time.Date(2026, 3, 9, 7, 30, 0, 0, time.UTC)

	rep := core.NewReport("This Week's Food Trends", "planning a spring brunch menu", now, []core.ContentBlock{
		{Type: core.BlockThinking, Text: "Start with restaurant industry news for March 2026, then look at social media for brunch-specific signals."},
		{Type: core.BlockServerToolUse, Name: "web_search", Input: map[string]any{"query": "restaurant food trends March 2026"}},
		{Type: core.BlockWebSearchToolResult},
		{Type: core.BlockServerToolUse, Name: "web_search", Input: map[string]any{"query": "viral brunch dishes this week"}},
		{Type: core.BlockWebSearchToolResult},
		{Type: core.BlockText, Text: `## Trending This Week

### 1. Savory Dutch Babies
Chefs are swapping lemon and sugar for **miso butter, charred scallion and cured egg yolk**. The format travels well from a cast iron pan to the pass and photographs beautifully.

*How to use it:* run it as a shareable starter on the weekend brunch menu.

### 2. Yuzu Kosho Everything
| Where it shows up | Why it works |
|-------------------|--------------|
| Hollandaise       | Heat and citrus cut the richness |
| Avocado toast     | A new note on a tired dish |
| Bloody Mary rims  | Easy upsell at the bar |

### 3. Black Sesame Desserts
Black sesame soft serve and tahini-swirled morning buns keep appearing in new openings.

---

## Quick Ideas for Your Menu
- Miso caramel French toast
- Yuzu kosho hollandaise on a crab cake Benedict
- Black sesame cruffin as a weekend special
`},
	})
	rep.Model = "claude-opus-4-5-20251101"
	rep.Usage = &core.Usage{InputTokens: 48520, OutputTokens: 3340, WebSearchRequests: 2}

	r := htmlrender.New()
	r.ArchiveHref = "archive.html"
	if err := r.Render(os.Stdout, rep); err != nil {
		os.Stderr.WriteString("error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
