package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dd0wney/cluso-pockets/pkg/notify"
	"github.com/dd0wney/cluso-pockets/pkg/pocket"
	"github.com/dd0wney/cluso-pockets/pkg/topology"
	"go.nanomsg.org/mangos/v3"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	membersBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#FFFF00")).
			Padding(0, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	summaryView view = iota
	pocketsView
	lookupView
	viewCount
)

var viewNames = []string{"Summary", "Pockets", "Lookup"}

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Enter    key.Binding
	Reload   key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "look up"),
	),
	Reload: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "reload"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Enter, k.Reload, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Enter},
		{k.Up, k.Down},
		{k.Reload, k.Quit},
	}
}

type loader func() (*pocket.Index, error)

type model struct {
	load        loader
	watch       *notify.Subscriber
	index       *pocket.Index
	currentView view
	pocketTable table.Model
	lookupInput textinput.Model
	help        help.Model
	keys        keyMap
	width       int
	height      int
	message     string
	messageErr  bool
	lookupID    string
}

// modelLoadedMsg carries a notification from pocketd
type modelLoadedMsg notify.Event

// watchErrMsg ends watching after a receive failure
type watchErrMsg struct{ err error }

func waitForEvent(s *notify.Subscriber) tea.Cmd {
	return func() tea.Msg {
		for {
			ev, err := s.Recv()
			if errors.Is(err, mangos.ErrRecvTimeout) {
				continue
			}
			if err != nil {
				return watchErrMsg{err: err}
			}
			return modelLoadedMsg(ev)
		}
	}
}

func initialModel(load loader, ix *pocket.Index, watch *notify.Subscriber) model {
	ti := textinput.New()
	ti.Placeholder = "entity id"
	ti.CharLimit = 128
	ti.Width = 40

	columns := []table.Column{
		{Title: "Pocket", Width: 8},
		{Title: "Size", Width: 6},
		{Title: "Colour", Width: 9},
		{Title: "Entities", Width: 50},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)

	m := model{
		load:        load,
		watch:       watch,
		currentView: summaryView,
		pocketTable: t,
		lookupInput: ti,
		help:        help.New(),
		keys:        keys,
	}
	m.setIndex(ix)
	return m
}

func (m *model) setIndex(ix *pocket.Index) {
	m.index = ix
	rows := make([]table.Row, 0, ix.PocketCount())
	for _, p := range ix.Pockets() {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", p.Index),
			fmt.Sprintf("%d", p.Size()),
			p.Color,
			strings.Join(p.Entities, ", "),
		})
	}
	m.pocketTable.SetRows(rows)
	if m.pocketTable.Cursor() >= len(rows) {
		m.pocketTable.SetCursor(0)
	}
}

func (m *model) reload(reason string) {
	start := time.Now()
	ix, err := m.load()
	if err != nil {
		m.message = fmt.Sprintf("Reload failed, keeping run %s: %v", m.index.RunID(), err)
		m.messageErr = true
		return
	}
	m.setIndex(ix)
	m.message = fmt.Sprintf("%s: %d pockets in %s", reason, ix.PocketCount(), time.Since(start).Round(time.Millisecond))
	m.messageErr = false
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.watch != nil {
		cmds = append(cmds, waitForEvent(m.watch))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case modelLoadedMsg:
		m.reload("pocketd reloaded run " + msg.RunID)
		return m, waitForEvent(m.watch)

	case watchErrMsg:
		m.message = fmt.Sprintf("Stopped watching: %v", msg.err)
		m.messageErr = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.switchView((m.currentView + 1) % viewCount)
			return m, nil

		case key.Matches(msg, m.keys.ShiftTab):
			m.switchView((m.currentView + viewCount - 1) % viewCount)
			return m, nil

		case key.Matches(msg, m.keys.Reload):
			m.reload("Reloaded")
			return m, nil

		case key.Matches(msg, m.keys.Enter):
			if m.currentView == lookupView {
				m.lookupID = strings.TrimSpace(m.lookupInput.Value())
				return m, nil
			}
		}
	}

	switch m.currentView {
	case pocketsView:
		m.pocketTable, cmd = m.pocketTable.Update(msg)
		cmds = append(cmds, cmd)
	case lookupView:
		m.lookupInput, cmd = m.lookupInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) switchView(v view) {
	m.currentView = v
	if v == lookupView {
		m.lookupInput.Focus()
	} else {
		m.lookupInput.Blur()
	}
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Pocket Explorer"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n")

	switch m.currentView {
	case summaryView:
		s.WriteString(m.renderSummary())
	case pocketsView:
		s.WriteString(m.renderPockets())
	case lookupView:
		s.WriteString(m.renderLookup())
	}

	if m.message != "" {
		s.WriteString("\n\n  ")
		if m.messageErr {
			s.WriteString(errorStyle.Render("✗ " + m.message))
		} else {
			s.WriteString(successStyle.Render("✓ " + m.message))
		}
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	return s.String()
}

func (m model) renderTabs() string {
	tabs := make([]string, len(viewNames))
	for i, name := range viewNames {
		if view(i) == m.currentView {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = inactiveTabStyle.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m model) renderSummary() string {
	st := m.index.Stats()
	stats := fmt.Sprintf(
		"Run            %s\nLoaded         %s\n\nEntities       %d\nConcave links  %d\nPockets        %d\nIn pockets     %d\nLargest        %d\nSingletons     %d",
		m.index.RunID(),
		m.index.CreatedAt().Format(time.RFC3339),
		st.Entities, st.ConcaveLinks, st.Pockets, st.EntitiesInPockets, st.LargestPocket, st.Singletons,
	)

	var legend strings.Builder
	legend.WriteString("Pockets by size\n\n")
	for i, p := range largest(m.index.Pockets(), 8) {
		if i > 0 {
			legend.WriteString("\n")
		}
		legend.WriteString(swatch(p.Color))
		legend.WriteString(fmt.Sprintf(" #%-4d %d", p.Index, p.Size()))
	}

	return contentStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		statsBoxStyle.Render(stats),
		statsBoxStyle.Render(legend.String()),
	))
}

func (m model) renderPockets() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(fmt.Sprintf("Pockets (%d)", m.index.PocketCount())))
	s.WriteString("\n\n")
	s.WriteString(m.pocketTable.View())

	if row := m.pocketTable.SelectedRow(); row != nil {
		var n int
		fmt.Sscanf(row[0], "%d", &n)
		if p, ok := m.index.Pocket(n); ok {
			s.WriteString("\n\n")
			s.WriteString(membersBoxStyle.Render(swatch(p.Color) + fmt.Sprintf(" Pocket %d\n\n", p.Index) + strings.Join(p.Entities, "\n")))
		}
	}
	return contentStyle.Render(s.String())
}

func (m model) renderLookup() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Entity Lookup"))
	s.WriteString("\n\n")
	s.WriteString(m.lookupInput.View())
	s.WriteString("\n\n")

	if m.lookupID != "" {
		if n, ok := m.index.PocketOf(m.lookupID); ok {
			p, _ := m.index.Pocket(n)
			s.WriteString(swatch(p.Color))
			s.WriteString(fmt.Sprintf(" %s is in pocket %d with %d entities", m.lookupID, n, p.Size()))
		} else {
			s.WriteString(swatch(pocket.NoPocketColor))
			s.WriteString(fmt.Sprintf(" %s is not in a pocket", m.lookupID))
		}
	}
	return contentStyle.Render(s.String())
}

func swatch(hex string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██")
}

// largest returns up to n pockets, biggest first
func largest(ps []pocket.Pocket, n int) []pocket.Pocket {
	out := append([]pocket.Pocket(nil), ps...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Size() > out[j-1].Size(); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func main() {
	modelDir := flag.String("model", "./data_dump", "Model dump directory")
	delimiter := flag.String("delimiter", topology.DefaultDelimiter, "Edge table pair key delimiter")
	strict := flag.Bool("strict", false, "Fail when the neighbor graph disagrees with the edge table")
	watch := flag.String("watch", "", "Reload when pocketd at this address announces a new model")
	flag.Parse()

	load := func() (*pocket.Index, error) {
		snap, err := topology.LoadDir(*modelDir, topology.LoadOptions{
			DecodeOptions: topology.DecodeOptions{Delimiter: *delimiter},
		})
		if err != nil {
			return nil, err
		}
		return pocket.Analyze(snap, pocket.WithStrictNeighbors(*strict))
	}

	ix, err := load()
	if err != nil {
		log.Fatalf("Failed to analyse %s: %v", *modelDir, err)
	}

	var sub *notify.Subscriber
	if *watch != "" {
		sub, err = notify.Subscribe(*watch, time.Second)
		if err != nil {
			log.Fatalf("Failed to watch %s: %v", *watch, err)
		}
		defer sub.Close()
	}

	p := tea.NewProgram(initialModel(load, ix, sub), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
