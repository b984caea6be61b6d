package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/kudos/internal/model"
	"github.com/existflow/kudos/internal/theme"
)

// Palette is the set of colors for one resolved theme
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Surface   lipgloss.Color
	Text      lipgloss.Color
	TextMuted lipgloss.Color
	Border    lipgloss.Color

	Star      lipgloss.Color
	Featured  lipgloss.Color
	Published lipgloss.Color
	Danger    lipgloss.Color
	Warning   lipgloss.Color
}

var (
	darkPalette = Palette{
		Primary:   lipgloss.Color("#4ECDC4"),
		Secondary: lipgloss.Color("#6C757D"),
		Surface:   lipgloss.Color("#16213e"),
		Text:      lipgloss.Color("#FFFFFF"),
		TextMuted: lipgloss.Color("#888888"),
		Border:    lipgloss.Color("#333333"),
		Star:      lipgloss.Color("#FFE66D"),
		Featured:  lipgloss.Color("#FFB347"),
		Published: lipgloss.Color("#95E1A3"),
		Danger:    lipgloss.Color("#FF6B6B"),
		Warning:   lipgloss.Color("#FFE66D"),
	}

	lightPalette = Palette{
		Primary:   lipgloss.Color("#0E7C86"),
		Secondary: lipgloss.Color("#6C757D"),
		Surface:   lipgloss.Color("#E8EEF5"),
		Text:      lipgloss.Color("#1A1A2E"),
		TextMuted: lipgloss.Color("#5C5C5C"),
		Border:    lipgloss.Color("#C8C8C8"),
		Star:      lipgloss.Color("#B8860B"),
		Featured:  lipgloss.Color("#D2691E"),
		Published: lipgloss.Color("#2E8B57"),
		Danger:    lipgloss.Color("#C0392B"),
		Warning:   lipgloss.Color("#B8860B"),
	}
)

// PaletteFor returns the palette for a resolved theme
func PaletteFor(resolved theme.Theme) Palette {
	if resolved == theme.Light {
		return lightPalette
	}
	return darkPalette
}

// Styles are rebuilt whenever the resolved theme changes
type Styles struct {
	Palette Palette

	Header      lipgloss.Style
	Tab         lipgloss.Style
	TabActive   lipgloss.Style
	List        lipgloss.Style
	Item        lipgloss.Style
	ItemActive  lipgloss.Style
	Muted       lipgloss.Style
	Stars       lipgloss.Style
	Featured    lipgloss.Style
	Published   lipgloss.Style
	Danger      lipgloss.Style
	StatusBar   lipgloss.Style
	Modal       lipgloss.Style
	Help        lipgloss.Style
	PageCurrent lipgloss.Style
	Error       lipgloss.Style
}

// NewStyles builds styles for a resolved theme
func NewStyles(resolved theme.Theme) Styles {
	p := PaletteFor(resolved)
	return Styles{
		Palette: p,

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary).
			Padding(0, 1),

		Tab: lipgloss.NewStyle().
			Foreground(p.TextMuted).
			Padding(0, 2),

		TabActive: lipgloss.NewStyle().
			Foreground(p.Primary).
			Bold(true).
			Underline(true).
			Padding(0, 2),

		List: lipgloss.NewStyle().
			Padding(1, 2),

		Item: lipgloss.NewStyle().
			Foreground(p.Text).
			Padding(0, 1),

		ItemActive: lipgloss.NewStyle().
			Foreground(p.Text).
			Background(p.Surface).
			Bold(true).
			Padding(0, 1),

		Muted:     lipgloss.NewStyle().Foreground(p.TextMuted),
		Stars:     lipgloss.NewStyle().Foreground(p.Star),
		Featured:  lipgloss.NewStyle().Foreground(p.Featured).Bold(true),
		Published: lipgloss.NewStyle().Foreground(p.Published),
		Danger:    lipgloss.NewStyle().Foreground(p.Danger).Bold(true),

		StatusBar: lipgloss.NewStyle().
			Foreground(p.TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(p.Border),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Primary).
			Padding(1, 2),

		Help:        lipgloss.NewStyle().Foreground(p.TextMuted),
		PageCurrent: lipgloss.NewStyle().Foreground(p.Primary).Bold(true),
		Error:       lipgloss.NewStyle().Foreground(p.Danger),
	}
}

// TokenStatus returns the style for an invite token status
func (s Styles) TokenStatus(status model.TokenStatus) lipgloss.Style {
	switch status {
	case model.TokenActive:
		return s.Published
	case model.TokenUsed:
		return s.Muted
	case model.TokenExpired:
		return lipgloss.NewStyle().Foreground(s.Palette.Warning)
	default:
		return s.Danger
	}
}

// ProjectStatus returns the style for a project status
func (s Styles) ProjectStatus(status model.ProjectStatus) lipgloss.Style {
	switch status {
	case model.ProjectActive:
		return s.Published
	case model.ProjectCompleted:
		return lipgloss.NewStyle().Foreground(s.Palette.Primary)
	default:
		return s.Muted
	}
}

// FormatRating renders a rating as colored stars
func (s Styles) FormatRating(rating int) string {
	return s.Stars.Render(model.Stars(rating))
}
