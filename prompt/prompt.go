// Package prompt assembles the system instruction and user message sent to the
// model provider for a trend report.
package prompt

import (
	"bytes"
	"strings"
	"text/template"
	"time"

	"github.com/sonnes/cheftrends/core"
)

// DefaultFocus replaces an empty focus so that the model still gets an explicit
// instruction in the optional_focus section.
const DefaultFocus = "No specific focus—give a general trend overview."

// System is the fixed system instruction.
const System = `You are a culinary trend analyst specializing in upscale American country club dining. You have web search capabilities—use them extensively.

When searching:
- Start with broad queries, then narrow based on what you find
- Search multiple platforms: TikTok trends, Instagram food aesthetic, Pinterest recipes
- Prioritize sources from the past 7-14 days
- If search results are sparse or conflicting, say so explicitly rather than speculating

Your client serves affluent women aged 30-55 who actively consume food content on TikTok and Instagram. They want dishes that are photogenic, on-trend, and feel special.`

const userTemplate = `<objective>
Find 5-8 emerging food trends that would work for an upscale country club menu. Focus on trends in the "rising" phase—viral enough to be recognized, early enough to feel novel.
</objective>

<audience>
- Affluent stay-at-home moms, 30-55
- Active on TikTok, Instagram, Pinterest
- Want Instagram-worthy dishes
- Health-conscious but indulgent ("treat yourself" mentality)
- Country club setting: brunch, ladies' luncheons, member events
</audience>

<search_guidance>
Search for:
- "viral food tiktok this week"
- "trending recipes {{.Month}} {{.Year}}"
- "food aesthetic instagram {{.Year}}"
- "pinterest food trends"
- Evolution of trends like "girl dinner", "mob wife aesthetic food", "cottage cheese recipes"
- Viral restaurant dishes being recreated at home
- Trending ingredients and flavor combinations
</search_guidance>

<output_format>
For each trend, provide:

**[Trend Name]**
- Platform: Where it's hottest (TikTok/Instagram/Pinterest)
- Velocity: Early / Rising / Peaking / Saturated
- The Hook: Why it's going viral (visual appeal, health halo, nostalgia, etc.)
- Country Club Adaptation: A specific dish concept for upscale execution
- Plating Notes: What makes it photographable
- Source: Link or reference to where you found it

End with a "Skip These" section listing 2-3 trends that are oversaturated or declining.
</output_format>

<optional_focus>
{{.Focus}}
</optional_focus>

Today's date is {{.Date}}. Search for the most current information available.`

var userTmpl = template.Must(template.New("user").Parse(userTemplate))

// Prompt is a fully assembled request.
type Prompt struct {
	System string
	User   string
	Focus  string // trimmed user focus; empty when none was given
	Now    time.Time
}

// data is the template data passed to the user template.
type data struct {
	Focus string
	Date  string
	Month string
	Year  int
}

// Build substitutes focus and the date derived from now into the user
// template. Focus is trimmed; an empty focus is replaced by DefaultFocus.
func Build(focus string, now time.Time) Prompt {
	focus = strings.TrimSpace(focus)
	instruction := focus
	if instruction == "" {
		instruction = DefaultFocus
	}

	var buf bytes.Buffer
	// The template only references fields of data, so execution cannot fail.
	_ = userTmpl.Execute(&buf, data{
		Focus: instruction,
		Date:  now.Format(core.DateLayout),
		Month: now.Format("January"),
		Year:  now.Year(),
	})

	return Prompt{
		System: System,
		User:   buf.String(),
		Focus:  focus,
		Now:    now,
	}
}
