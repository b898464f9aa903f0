package help

import (
	"strings"
	"testing"

	"github.com/rebeliceyang/lazyquery/internal/ui/theme"
)

func TestShortHelp(t *testing.T) {
	got := ShortHelp([]KeyBinding{{"Enter", "Apply"}, {"Esc", "Cancel"}})
	if got != "Enter: apply │ Esc: cancel" {
		t.Errorf("unexpected short help %q", got)
	}
}

func TestRender(t *testing.T) {
	out := Render("Filter help", []Section{
		{Title: "Selection", Bindings: GetFilterPickerKeys()},
		{Title: "Navigation", Bindings: GetNavigationKeys()},
	}, theme.DefaultTheme())

	for _, want := range []string{"Filter help", "Selection", "Navigation", "Ctrl+A", "Check all shown", "Search values"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}
