package ui

import (
	"errors"
	"os"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var ErrPickCancelled = errors.New("selection cancelled")

type PickItem struct {
	Name   string
	Path   string
	Detail string
}

func (i PickItem) Title() string { return i.Name }

func (i PickItem) Description() string {
	if i.Detail == "" {
		return i.Path
	}
	return i.Detail + "  " + i.Path
}

// FilterValue lets the list's fuzzy filter match on both name and path.
func (i PickItem) FilterValue() string { return i.Name + " " + i.Path }

type pickerModel struct {
	list   list.Model
	chosen *PickItem
}

func newPickerModel(items []PickItem, title string) pickerModel {
	listItems := make([]list.Item, 0, len(items))
	for _, it := range items {
		listItems = append(listItems, it)
	}
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(accent).BorderForeground(accent)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.BorderForeground(accent)

	l := list.New(listItems, delegate, 80, 20)
	l.Title = title
	l.Styles.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFF7DB")).Background(accent).Padding(0, 1)
	l.SetShowStatusBar(false)
	return pickerModel{list: l}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if it, ok := m.list.SelectedItem().(PickItem); ok {
				m.chosen = &it
			}
			return m, tea.Quit
		case "ctrl+c", "esc", "q":
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	return m.list.View()
}

// Pick shows an interactive fuzzy list on stderr and returns the chosen
// item. Stdout is left untouched so callers can print the path for cd.
func Pick(items []PickItem, title string) (PickItem, error) {
	p := tea.NewProgram(newPickerModel(items, title), tea.WithOutput(os.Stderr), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return PickItem{}, err
	}
	m, ok := final.(pickerModel)
	if !ok || m.chosen == nil {
		return PickItem{}, ErrPickCancelled
	}
	return *m.chosen, nil
}
