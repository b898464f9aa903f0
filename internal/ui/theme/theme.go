package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme and styling
type Theme struct {
	Name string

	Foreground lipgloss.Color

	// UI elements
	Border        lipgloss.Color
	BorderFocused lipgloss.Color
	Selection     lipgloss.Color
	Cursor        lipgloss.Color

	// Status colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	Metadata    lipgloss.Color // help and counts
	TableHeader lipgloss.Color

	// chroma style name for SQL highlighting
	SyntaxStyle string
}

// GetTheme returns a theme by name, falling back to the default theme
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMochaTheme()
	default:
		return DefaultTheme()
	}
}

// DefaultTheme returns the default dark theme using ANSI 256 colors
func DefaultTheme() Theme {
	return Theme{
		Name:          "default",
		Foreground:    lipgloss.Color("252"),
		Border:        lipgloss.Color("240"),
		BorderFocused: lipgloss.Color("62"),
		Selection:     lipgloss.Color("237"),
		Cursor:        lipgloss.Color("248"),
		Success:       lipgloss.Color("42"),
		Warning:       lipgloss.Color("220"),
		Error:         lipgloss.Color("196"),
		Info:          lipgloss.Color("75"),
		Metadata:      lipgloss.Color("244"),
		TableHeader:   lipgloss.Color("62"),
		SyntaxStyle:   "monokai",
	}
}

// CatppuccinMochaTheme returns the Catppuccin Mocha palette
func CatppuccinMochaTheme() Theme {
	return Theme{
		Name:          "catppuccin-mocha",
		Foreground:    lipgloss.Color("#cdd6f4"), // Text
		Border:        lipgloss.Color("#45475a"), // Surface1
		BorderFocused: lipgloss.Color("#89b4fa"), // Blue
		Selection:     lipgloss.Color("#313244"), // Surface0
		Cursor:        lipgloss.Color("#f5e0dc"), // Rosewater
		Success:       lipgloss.Color("#a6e3a1"), // Green
		Warning:       lipgloss.Color("#f9e2af"), // Yellow
		Error:         lipgloss.Color("#f38ba8"), // Red
		Info:          lipgloss.Color("#89dceb"), // Sky
		Metadata:      lipgloss.Color("#6c7086"), // Overlay0
		TableHeader:   lipgloss.Color("#89b4fa"), // Blue
		SyntaxStyle:   "catppuccin-mocha",
	}
}
