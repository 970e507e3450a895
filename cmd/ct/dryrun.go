package main

import "github.com/sonnes/cheftrends/core"

// dryRunBlocks is the canned response replayed by --dry-run.
func dryRunBlocks() []core.ContentBlock {
	return []core.ContentBlock{
		{Type: core.BlockThinking, Text: "Check industry coverage first, then social platforms for dishes that are rising but not yet everywhere."},
		{Type: core.BlockServerToolUse, Name: "web_search", Input: map[string]any{"query": "restaurant food trends this week"}},
		{Type: core.BlockWebSearchToolResult},
		{Type: core.BlockServerToolUse, Name: "web_search", Input: map[string]any{"query": "viral dishes social media chefs"}},
		{Type: core.BlockWebSearchToolResult},
		{Type: core.BlockText, Text: "I have enough to put the report together.\n\n"},
		{Type: core.BlockText, Text: `## Trending This Week

### 1. Savory Dutch Babies
**What it is:** A puffed oven pancake topped with miso butter, charred scallions and cured egg yolk.
**Why it's trending:** Short-form cooking videos made the tableside puff a moment.
**Menu idea:** A shareable brunch starter finished at the table.

### 2. Yuzu Kosho Hollandaise
**What it is:** Classic hollandaise brightened with the Japanese citrus-chili paste.
**Why it's trending:** Chefs are looking for heat that still reads as refined.
**Menu idea:** Crab cake Benedict with yuzu kosho hollandaise.

### 3. Black Sesame Desserts
**What it is:** Nutty, gray-black sesame in soft serve, cremeux and laminated pastry.
**Why it's trending:** New bakery openings keep featuring it as a signature flavor.
**Menu idea:** Black sesame panna cotta with poached pear.

---

## Quick Ideas for Your Menu
- Miso caramel French toast
- Yuzu kosho deviled eggs for the bar menu
- Black sesame cruffin as a weekend special
`},
	}
}
