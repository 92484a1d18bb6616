// Package tui is the interactive diff browser: a scrollable change list
// with a per-component detail view.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rezmoss/sbomdiff/internal/diff"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	addedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#69DB7C"))

	removedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	changedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD43B"))

	detailKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

type viewMode int

const (
	listView viewMode = iota
	detailView
)

type changeKind int

const (
	kindAdded changeKind = iota
	kindRemoved
	kindChanged
	kindEdges
)

// changeItem is one list entry: an added/removed/changed component or
// the edge-change group.
type changeItem struct {
	kind   changeKind
	id     string
	detail []string
}

func (i changeItem) Title() string {
	switch i.kind {
	case kindAdded:
		return addedStyle.Render("+ " + i.id)
	case kindRemoved:
		return removedStyle.Render("- " + i.id)
	case kindChanged:
		return changedStyle.Render("~ " + i.id)
	default:
		return changedStyle.Render("~ dependency edges")
	}
}

func (i changeItem) Description() string {
	if len(i.detail) == 0 {
		return ""
	}
	if len(i.detail) == 1 {
		return dimStyle.Render(i.detail[0])
	}
	return dimStyle.Render(fmt.Sprintf("%s (+%d more)", i.detail[0], len(i.detail)-1))
}

func (i changeItem) FilterValue() string {
	return i.id + " " + strings.Join(i.detail, " ")
}

type keyMap struct {
	Enter key.Binding
	Back  key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "details"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "backspace"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Model is the bubbletea model for the diff browser.
type Model struct {
	list     list.Model
	viewport viewport.Model
	mode     viewMode
	selected changeItem
	width    int
	height   int
	ready    bool
}

func buildItems(d *diff.Diff) []list.Item {
	var items []list.Item
	for _, c := range d.Added {
		detail := []string{}
		if c.Version != "" {
			detail = append(detail, "version "+c.Version)
		}
		items = append(items, changeItem{kind: kindAdded, id: c.ID, detail: detail})
	}
	for _, c := range d.Removed {
		detail := []string{}
		if c.Version != "" {
			detail = append(detail, "version "+c.Version)
		}
		items = append(items, changeItem{kind: kindRemoved, id: c.ID, detail: detail})
	}
	for _, c := range d.Changed {
		var detail []string
		for _, ch := range c.Changes {
			detail = append(detail, fmt.Sprintf("%s: %s -> %s", ch.Field, ch.OldString(), ch.NewString()))
		}
		items = append(items, changeItem{kind: kindChanged, id: c.ID, detail: detail})
	}
	if len(d.EdgeChanges.Added) > 0 || len(d.EdgeChanges.Removed) > 0 {
		var detail []string
		for _, e := range d.EdgeChanges.Added {
			detail = append(detail, fmt.Sprintf("+ %s -> %s", e.Parent, e.Child))
		}
		for _, e := range d.EdgeChanges.Removed {
			detail = append(detail, fmt.Sprintf("- %s -> %s", e.Parent, e.Child))
		}
		items = append(items, changeItem{kind: kindEdges, id: "dependency edges", detail: detail})
	}
	return items
}

// NewModel builds the browser model for a diff.
func NewModel(d *diff.Diff) Model {
	delegate := list.NewDefaultDelegate()
	l := list.New(buildItems(d), delegate, 0, 0)
	l.Title = fmt.Sprintf("sbom-diff: %d added, %d removed, %d changed",
		len(d.Added), len(d.Removed), len(d.Changed))
	l.Styles.Title = titleStyle
	l.SetShowHelp(true)

	return Model{
		list:     l,
		viewport: viewport.New(0, 0),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4
		m.ready = true

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case key.Matches(msg, keys.Quit):
			if m.mode == listView {
				return m, tea.Quit
			}
			m.mode = listView
			return m, nil

		case key.Matches(msg, keys.Enter):
			if m.mode == listView {
				if item, ok := m.list.SelectedItem().(changeItem); ok {
					m.selected = item
					m.viewport.SetContent(m.detailContent(item))
					m.viewport.GotoTop()
					m.mode = detailView
				}
				return m, nil
			}

		case key.Matches(msg, keys.Back):
			if m.mode == detailView {
				m.mode = listView
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.mode {
	case listView:
		m.list, cmd = m.list.Update(msg)
	case detailView:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	switch m.mode {
	case detailView:
		header := titleStyle.Render(m.selected.id)
		help := helpStyle.Render("esc/q back • ctrl+c quit")
		return header + "\n" + m.viewport.View() + "\n" + help
	default:
		return m.list.View()
	}
}

func (m Model) detailContent(item changeItem) string {
	var b strings.Builder
	switch item.kind {
	case kindAdded:
		b.WriteString(detailKeyStyle.Render("added component") + "\n\n")
	case kindRemoved:
		b.WriteString(detailKeyStyle.Render("removed component") + "\n\n")
	case kindChanged:
		b.WriteString(detailKeyStyle.Render("field changes") + "\n\n")
	case kindEdges:
		b.WriteString(detailKeyStyle.Render("dependency edge changes") + "\n\n")
	}
	if len(item.detail) == 0 {
		b.WriteString(dimStyle.Render("(no further detail)"))
		return b.String()
	}
	for _, line := range item.detail {
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

// Run starts the interactive browser and blocks until the user quits.
func Run(d *diff.Diff) error {
	p := tea.NewProgram(NewModel(d), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
