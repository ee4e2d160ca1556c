// Package choose presents an interactive multi-select list on stderr,
// used to narrow a fixture run to a hand-picked subset.
package choose

import (
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Item is one selectable row. Detail renders dimmed next to the label
// and is not part of the returned selection.
type Item struct {
	Label    string
	Detail   string
	Selected bool
}

type Option func(*model)

func WithHeader(h string) Option { return func(m *model) { m.header = h } }
func WithShowHelp(b bool) Option { return func(m *model) { m.showHelp = b } }
func WithHeight(n int) Option    { return func(m *model) { m.height = n } }

type keymap struct {
	Down, Up, Right, Left, Home, End key.Binding
	ToggleAll, Toggle                key.Binding
	Abort, Quit, Submit              key.Binding
}

func (k keymap) FullHelp() [][]key.Binding { return nil }
func (k keymap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Toggle,
		key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑↓", "navigate")),
		k.Submit,
		k.ToggleAll,
	}
}

type model struct {
	header      string
	items       []Item
	labelWidth  int
	quitting    bool
	submitted   bool
	index       int
	numSelected int
	height      int
	paginator   paginator.Model
	showHelp    bool
	help        help.Model
	keymap      keymap

	cursorStyle       lipgloss.Style
	headerStyle       lipgloss.Style
	itemStyle         lipgloss.Style
	selectedItemStyle lipgloss.Style
	detailStyle       lipgloss.Style
}

func defaultKeymap() keymap {
	return keymap{
		Down:  key.NewBinding(key.WithKeys("down", "j", "ctrl+n")),
		Up:    key.NewBinding(key.WithKeys("up", "k", "ctrl+p")),
		Right: key.NewBinding(key.WithKeys("right", "l")),
		Left:  key.NewBinding(key.WithKeys("left", "h")),
		Home:  key.NewBinding(key.WithKeys("g", "home")),
		End:   key.NewBinding(key.WithKeys("G", "end")),
		ToggleAll: key.NewBinding(
			key.WithKeys("a", "ctrl+a"),
			key.WithHelp("ctrl+a", "toggle all"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "tab", "x"),
			key.WithHelp("x", "toggle"),
		),
		Abort:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "abort")),
		Quit:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "quit")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	}
}

func newModel(items []Item, opts ...Option) model {
	its := make([]Item, len(items))
	copy(its, items)

	m := model{
		items:             its,
		height:            10,
		showHelp:          true,
		help:              help.New(),
		keymap:            defaultKeymap(),
		cursorStyle:       lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		headerStyle:       lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true),
		itemStyle:         lipgloss.NewStyle(),
		selectedItemStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		detailStyle:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}

	for _, opt := range opts {
		opt(&m)
	}

	for _, it := range its {
		if it.Selected {
			m.numSelected++
		}
		if w := lipgloss.Width(it.Label); w > m.labelWidth {
			m.labelWidth = w
		}
	}

	p := paginator.New()
	p.Type = paginator.Dots
	p.PerPage = m.height
	p.SetTotalPages(len(its))
	m.paginator = p

	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m, nil
	case tea.KeyMsg:
		start, end := m.paginator.GetSliceBounds(len(m.items))
		km := m.keymap
		switch {
		case key.Matches(msg, km.Down):
			m.index++
			if m.index >= len(m.items) {
				m.index = 0
				m.paginator.Page = 0
			}
			if m.index >= end {
				m.paginator.NextPage()
			}
		case key.Matches(msg, km.Up):
			m.index--
			if m.index < 0 {
				m.index = len(m.items) - 1
				m.paginator.Page = m.paginator.TotalPages - 1
			}
			if m.index < start {
				m.paginator.PrevPage()
			}
		case key.Matches(msg, km.Right):
			m.index = clamp(m.index+m.height, 0, len(m.items)-1)
			m.paginator.NextPage()
		case key.Matches(msg, km.Left):
			m.index = clamp(m.index-m.height, 0, len(m.items)-1)
			m.paginator.PrevPage()
		case key.Matches(msg, km.End):
			m.index = len(m.items) - 1
			m.paginator.Page = m.paginator.TotalPages - 1
		case key.Matches(msg, km.Home):
			m.index = 0
			m.paginator.Page = 0
		case key.Matches(msg, km.ToggleAll):
			if m.numSelected < len(m.items) {
				m = m.selectAll()
			} else {
				m = m.deselectAll()
			}
		case key.Matches(msg, km.Quit), key.Matches(msg, km.Abort):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, km.Toggle):
			if m.items[m.index].Selected {
				m.items[m.index].Selected = false
				m.numSelected--
			} else {
				m.items[m.index].Selected = true
				m.numSelected++
			}
		case key.Matches(msg, km.Submit):
			m.quitting = true
			m.submitted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.paginator, cmd = m.paginator.Update(msg)
	return m, cmd
}

func (m model) selectAll() model {
	for i := range m.items {
		m.items[i].Selected = true
	}
	m.numSelected = len(m.items)
	return m
}

func (m model) deselectAll() model {
	for i := range m.items {
		m.items[i].Selected = false
	}
	m.numSelected = 0
	return m
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	start, end := m.paginator.GetSliceBounds(len(m.items))

	cursor := "> "
	selectedPrefix := "[x] "
	unselectedPrefix := "[ ] "

	for i, it := range m.items[start:end] {
		if i == m.index%m.height {
			s.WriteString(m.cursorStyle.Render(cursor))
		} else {
			s.WriteString(strings.Repeat(" ", lipgloss.Width(cursor)))
		}

		label := it.Label
		if it.Detail != "" {
			label += strings.Repeat(" ", m.labelWidth-lipgloss.Width(it.Label))
		}
		switch {
		case it.Selected:
			s.WriteString(m.selectedItemStyle.Render(selectedPrefix + label))
		case i == m.index%m.height:
			s.WriteString(m.cursorStyle.Render(unselectedPrefix + label))
		default:
			s.WriteString(m.itemStyle.Render(unselectedPrefix + label))
		}
		if it.Detail != "" {
			s.WriteString(m.detailStyle.Render("  " + it.Detail))
		}
		if i != m.height-1 {
			s.WriteRune('\n')
		}
	}

	if m.paginator.TotalPages > 1 {
		s.WriteString(strings.Repeat("\n", m.height-m.paginator.ItemsOnPage(len(m.items))+1))
		s.WriteString("  " + m.paginator.View())
	}

	var parts []string
	if m.header != "" {
		parts = append(parts, m.headerStyle.Render(m.header))
	}
	parts = append(parts, s.String())
	if m.showHelp {
		parts = append(parts, "", m.help.View(m.keymap))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Pick presents the list and returns the labels of the selected items.
// A nil slice means the user cancelled (Esc/Ctrl+C).
func Pick(items []Item, opts ...Option) ([]string, error) {
	m := newModel(items, opts...)
	tm, err := tea.NewProgram(m, tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return nil, err
	}
	result := tm.(model)
	if !result.submitted {
		return nil, nil
	}
	var labels []string
	for _, it := range result.items {
		if it.Selected {
			labels = append(labels, it.Label)
		}
	}
	return labels, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
