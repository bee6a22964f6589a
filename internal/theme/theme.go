// Package theme provides color theme definitions for the TUI.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines all colors used in the application UI.
type Theme struct {
	Accent    lipgloss.Color
	AccentFg  lipgloss.Color // text on Accent background
	AccentDim lipgloss.Color
	Border    lipgloss.Color
	BorderDim lipgloss.Color
	MutedFg   lipgloss.Color
	TextFg    lipgloss.Color
	SuccessFg lipgloss.Color
	WarnFg    lipgloss.Color
	ErrorFg   lipgloss.Color
	Cyan      lipgloss.Color
	Pink      lipgloss.Color
	Yellow    lipgloss.Color

	// Diff rendering.
	AddedFg      lipgloss.Color
	RemovedFg    lipgloss.Color
	HunkHeaderFg lipgloss.Color
}

// Theme names.
const (
	DraculaName    = "dracula"
	NordName       = "nord"
	CleanLightName = "clean-light"
)

// Dracula returns the Dracula theme (dark background, vibrant colors).
func Dracula() *Theme {
	return &Theme{
		Accent:       lipgloss.Color("#BD93F9"),
		AccentFg:     lipgloss.Color("#282A36"),
		AccentDim:    lipgloss.Color("#44475A"),
		Border:       lipgloss.Color("#6272A4"),
		BorderDim:    lipgloss.Color("#44475A"),
		MutedFg:      lipgloss.Color("#6272A4"),
		TextFg:       lipgloss.Color("#F8F8F2"),
		SuccessFg:    lipgloss.Color("#50FA7B"),
		WarnFg:       lipgloss.Color("#FFB86C"),
		ErrorFg:      lipgloss.Color("#FF5555"),
		Cyan:         lipgloss.Color("#8BE9FD"),
		Pink:         lipgloss.Color("#FF79C6"),
		Yellow:       lipgloss.Color("#F1FA8C"),
		AddedFg:      lipgloss.Color("#50FA7B"),
		RemovedFg:    lipgloss.Color("#FF5555"),
		HunkHeaderFg: lipgloss.Color("#8BE9FD"),
	}
}

// Nord returns a cool dark theme with blue accents.
func Nord() *Theme {
	return &Theme{
		Accent:       lipgloss.Color("#88C0D0"),
		AccentFg:     lipgloss.Color("#2E3440"),
		AccentDim:    lipgloss.Color("#3B4252"),
		Border:       lipgloss.Color("#4C566A"),
		BorderDim:    lipgloss.Color("#3B4252"),
		MutedFg:      lipgloss.Color("#616E88"),
		TextFg:       lipgloss.Color("#ECEFF4"),
		SuccessFg:    lipgloss.Color("#A3BE8C"),
		WarnFg:       lipgloss.Color("#EBCB8B"),
		ErrorFg:      lipgloss.Color("#BF616A"),
		Cyan:         lipgloss.Color("#8FBCBB"),
		Pink:         lipgloss.Color("#B48EAD"),
		Yellow:       lipgloss.Color("#EBCB8B"),
		AddedFg:      lipgloss.Color("#A3BE8C"),
		RemovedFg:    lipgloss.Color("#BF616A"),
		HunkHeaderFg: lipgloss.Color("#88C0D0"),
	}
}

// CleanLight returns a theme optimized for light terminal backgrounds.
func CleanLight() *Theme {
	return &Theme{
		Accent:       lipgloss.Color("#c6dbe5"),
		AccentFg:     lipgloss.Color("#24292F"),
		AccentDim:    lipgloss.Color("#DDF4FF"),
		Border:       lipgloss.Color("#D0D7DE"),
		BorderDim:    lipgloss.Color("#E1E4E8"),
		MutedFg:      lipgloss.Color("#6E7781"),
		TextFg:       lipgloss.Color("#24292F"),
		SuccessFg:    lipgloss.Color("#1A7F37"),
		WarnFg:       lipgloss.Color("#9A6700"),
		ErrorFg:      lipgloss.Color("#CF222E"),
		Cyan:         lipgloss.Color("#0598BC"),
		Pink:         lipgloss.Color("#BF3989"),
		Yellow:       lipgloss.Color("#D4A72C"),
		AddedFg:      lipgloss.Color("#1A7F37"),
		RemovedFg:    lipgloss.Color("#CF222E"),
		HunkHeaderFg: lipgloss.Color("#0598BC"),
	}
}

// ByName returns the theme registered under name, or nil when unknown.
func ByName(name string) *Theme {
	switch name {
	case DraculaName, "":
		return Dracula()
	case NordName:
		return Nord()
	case CleanLightName:
		return CleanLight()
	default:
		return nil
	}
}

// AvailableThemes lists all registered theme names.
func AvailableThemes() []string {
	return []string{DraculaName, NordName, CleanLightName}
}
