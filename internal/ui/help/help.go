package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyquery/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// Section is a titled group of key bindings
type Section struct {
	Title    string
	Bindings []KeyBinding
}

// GetFilterPickerKeys returns the filter picker key bindings
func GetFilterPickerKeys() []KeyBinding {
	return []KeyBinding{
		{"Space/Tab", "Toggle value"},
		{"Ctrl+A", "Check all shown"},
		{"Ctrl+X", "Uncheck all shown"},
		{"Enter", "Apply"},
		{"Esc", "Cancel"},
	}
}

// GetNavigationKeys returns list navigation key bindings
func GetNavigationKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/Ctrl+P", "Move up"},
		{"↓/Ctrl+N", "Move down"},
		{"Type", "Search values"},
		{"?", "Toggle help"},
	}
}

// ShortHelp renders bindings on one line
func ShortHelp(bindings []KeyBinding) string {
	parts := make([]string, len(bindings))
	for i, kb := range bindings {
		parts[i] = kb.Key + ": " + strings.ToLower(kb.Description)
	}
	return strings.Join(parts, " │ ")
}

// Render creates the full help view
func Render(title string, sections []Section, th theme.Theme) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.TableHeader)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Info)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Warning).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	for _, s := range sections {
		b.WriteString(sectionStyle.Render(s.Title))
		b.WriteString("\n")
		for _, kb := range s.Bindings {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(kb.Key))
			b.WriteString(descStyle.Render(kb.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press '?' to close help"))
	return b.String()
}
