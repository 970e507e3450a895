package terminal

import "github.com/charmbracelet/lipgloss"

var (
	// Accent colors: amber for headings, emerald for list bullets.
	colorHeading = lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#fbbf24"}
	colorBullet  = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34d399"}

	// UI colors.
	colorBright = lipgloss.AdaptiveColor{Light: "#0f172a", Dark: "#f1f5f9"}
	colorDim    = lipgloss.AdaptiveColor{Light: "#94a3b8", Dark: "#64748b"}
	colorTool   = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#a78bfa"} // purple
)

var (
	styleTitle = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleMeta  = lipgloss.NewStyle().Foreground(colorDim)
	styleFocus = lipgloss.NewStyle().Foreground(colorBright).Italic(true)

	styleStat      = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleStatLabel = lipgloss.NewStyle().Foreground(colorDim)

	styleHeading = lipgloss.NewStyle().Foreground(colorHeading).Bold(true)
	styleBullet  = lipgloss.NewStyle().Foreground(colorBullet)

	styleToolName   = lipgloss.NewStyle().Foreground(colorTool).Bold(true)
	styleToolDetail = lipgloss.NewStyle().Foreground(colorDim)
	styleThinking   = lipgloss.NewStyle().Foreground(colorDim).Italic(true)

	styleSeparator = lipgloss.NewStyle().Foreground(colorDim)
)
