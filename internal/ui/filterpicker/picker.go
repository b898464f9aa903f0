// Package filterpicker is the checkbox list used to choose the allowed values
// of one column filter.
package filterpicker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazyquery/internal/autofilter"
	"github.com/rebeliceyang/lazyquery/internal/ui/help"
	"github.com/rebeliceyang/lazyquery/internal/ui/theme"
)

// Selection is the outcome of a picker session
type Selection struct {
	Column    string
	Values    autofilter.Set
	Cancelled bool
}

// Model presents the candidate values of a column with checkboxes
type Model struct {
	Column string
	Theme  theme.Theme
	Height int // visible list rows

	values  []string
	checked map[string]bool
	search  textinput.Model
	visible []int // indexes into values matching the search
	cursor  int
	offset  int

	showHelp bool
	result   Selection
	done     bool
}

// New creates a picker over values. A nil preselected checks everything,
// matching a column without a filter.
func New(column string, values, preselected autofilter.Set, th theme.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		Column:  column,
		Theme:   th,
		Height:  15,
		values:  values.Sorted(),
		checked: make(map[string]bool, values.Len()),
		search:  ti,
	}
	for _, v := range m.values {
		m.checked[v] = preselected == nil || preselected.Has(v)
	}
	m.refilter()
	return m
}

// Selected returns the checked values
func (m Model) Selected() autofilter.Set {
	s := autofilter.NewSet()
	for v, on := range m.checked {
		if on {
			s.Add(v)
		}
	}
	return s
}

// Result returns the selection once the picker is done
func (m Model) Result() (Selection, bool) {
	return m.result, m.done
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles keyboard input
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case "esc", "ctrl+c":
		m.result = Selection{Column: m.Column, Cancelled: true}
		m.done = true
		return m, tea.Quit
	case "enter":
		m.result = Selection{Column: m.Column, Values: m.Selected()}
		m.done = true
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	case "up", "ctrl+p":
		m.move(-1)
		return m, nil
	case "down", "ctrl+n":
		m.move(1)
		return m, nil
	case " ", "space":
		// while searching, space belongs to the search text
		if m.search.Value() != "" {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}}
			break
		}
		m.toggle()
		return m, nil
	case "tab":
		m.toggle()
		return m, nil
	case "ctrl+a":
		m.setVisible(true)
		return m, nil
	case "ctrl+x":
		m.setVisible(false)
		return m, nil
	}

	var cmd tea.Cmd
	before := m.search.Value()
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.refilter()
	}
	return m, cmd
}

func (m *Model) toggle() {
	if v, ok := m.current(); ok {
		m.checked[v] = !m.checked[v]
	}
}

func (m *Model) move(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.Height {
		m.offset = m.cursor - m.Height + 1
	}
}

func (m Model) current() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return "", false
	}
	return m.values[m.visible[m.cursor]], true
}

// setVisible checks or unchecks every value matching the search
func (m *Model) setVisible(on bool) {
	for _, i := range m.visible {
		m.checked[m.values[i]] = on
	}
}

// refilter narrows the list to values containing the search text, ignoring case
func (m *Model) refilter() {
	needle := strings.ToLower(m.search.Value())
	m.visible = m.visible[:0]
	for i, v := range m.values {
		if needle == "" || strings.Contains(strings.ToLower(v), needle) {
			m.visible = append(m.visible, i)
		}
	}
	m.cursor = 0
	m.offset = 0
}

// View renders the picker
func (m Model) View() string {
	if m.done {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Foreground(m.Theme.TableHeader).
		Bold(true)
	cursorStyle := lipgloss.NewStyle().
		Background(m.Theme.Selection).
		Foreground(m.Theme.Foreground)
	checkStyle := lipgloss.NewStyle().Foreground(m.Theme.Success)
	helpStyle := lipgloss.NewStyle().
		Foreground(m.Theme.Metadata).
		Italic(true)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.Theme.BorderFocused).
		Padding(0, 1)

	if m.showHelp {
		return box.Render(help.Render("Filter: "+m.Column, []help.Section{
			{Title: "Selection", Bindings: help.GetFilterPickerKeys()},
			{Title: "Navigation", Bindings: help.GetNavigationKeys()},
		}, m.Theme))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Filter: "+m.Column) + "\n")
	b.WriteString(m.search.View() + "\n\n")

	if len(m.visible) == 0 {
		b.WriteString(helpStyle.Render("(no matching values)") + "\n")
	}

	end := m.offset + m.Height
	if end > len(m.visible) {
		end = len(m.visible)
	}
	for i := m.offset; i < end; i++ {
		v := m.values[m.visible[i]]
		box := "[ ]"
		if m.checked[v] {
			box = checkStyle.Render("[x]")
		}
		line := box + " " + v
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + helpStyle.Render(fmt.Sprintf("%d of %d selected", m.Selected().Len(), len(m.values))) + "\n")
	b.WriteString(helpStyle.Render(help.ShortHelp(help.GetFilterPickerKeys()) + " │ ?: help"))
	return box.Render(b.String())
}

// Run shows the picker in the terminal and blocks until the user applies or cancels
func Run(column string, values, preselected autofilter.Set, th theme.Theme) (Selection, error) {
	p := tea.NewProgram(New(column, values, preselected, th))
	final, err := p.Run()
	if err != nil {
		return Selection{}, fmt.Errorf("filter picker failed: %w", err)
	}

	sel, done := final.(Model).Result()
	if !done {
		return Selection{Column: column, Cancelled: true}, nil
	}
	return sel, nil
}
