package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"raceday/internal/race"
)

const (
	minBarWidth = 20
	maxBarWidth = 60
)

// raceEventMsg wraps a controller event for the bubbletea loop.
type raceEventMsg race.Event

// RaceModel is the race screen: one lane per participant, a status line,
// and a key-hint footer.
type RaceModel struct {
	ctx        context.Context
	controller *race.Controller
	bars       []progress.Model
	styles     Styles

	width    int
	height   int
	showHelp bool
	quitting bool
}

// NewRaceModel builds the race screen around an idle controller.
func NewRaceModel(ctx context.Context, controller *race.Controller, styles Styles) RaceModel {
	snapshot := controller.Snapshot()
	bars := make([]progress.Model, len(snapshot))
	for i := range bars {
		bars[i] = progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(maxBarWidth),
			progress.WithoutPercentage(),
		)
	}
	return RaceModel{
		ctx:        ctx,
		controller: controller,
		bars:       bars,
		styles:     styles,
	}
}

// Init starts listening for controller events.
func (m RaceModel) Init() tea.Cmd {
	return m.waitForEvent()
}

// waitForEvent blocks on the controller's update channel and forwards the
// next event into the bubbletea loop.
func (m RaceModel) waitForEvent() tea.Cmd {
	events := m.controller.Events()
	return func() tea.Msg {
		return raceEventMsg(<-events)
	}
}

// Update handles messages.
func (m RaceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case raceEventMsg:
		// State is re-read from Snapshot in View; the event is only a wakeup.
		// A config reload can change the participant count, so keep one bar
		// per lane.
		if n := len(m.controller.Snapshot()); n != len(m.bars) {
			bars := make([]progress.Model, n)
			for i := range bars {
				bars[i] = progress.New(
					progress.WithDefaultGradient(),
					progress.WithWidth(maxBarWidth),
					progress.WithoutPercentage(),
				)
			}
			m.bars = bars
			m.SetSize(m.width, m.height)
		}
		return m, m.waitForEvent()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			m.controller.Pause()
			return m, tea.Quit
		case " ":
			m.controller.Toggle(m.ctx)
			return m, nil
		case "r":
			m.controller.Reset()
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		}
	}
	return m, nil
}

// View renders the race screen.
func (m RaceModel) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.helpView()
	}

	header := m.styles.Header.Render("RACEDAY")

	snapshot := m.controller.Snapshot()
	lanes := make([]string, 0, len(snapshot))
	for i, s := range snapshot {
		lanes = append(lanes, m.renderLane(i, s))
	}

	status := m.renderStatus(snapshot)
	footer := m.styles.Muted.Render(" space: start/pause • r: reset • ?: help • q: quit")

	sections := []string{header}
	sections = append(sections, lanes...)
	sections = append(sections, status, footer)
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m RaceModel) renderLane(i int, s race.State) string {
	pct := 0.0
	if s.Max > 0 {
		pct = float64(s.Current) / float64(s.Max)
	}

	name := m.styles.Name.Render(s.Name)
	var bar string
	if i < len(m.bars) {
		bar = m.bars[i].ViewAs(pct)
	}
	counter := m.styles.Counter.Render(fmt.Sprintf("%d/%d  %3.0f%%", s.Current, s.Max, pct*100))

	return m.styles.Lane.Render(lipgloss.JoinVertical(lipgloss.Left, name, bar, counter))
}

func (m RaceModel) renderStatus(snapshot []race.State) string {
	if winner := m.controller.Winner(); winner != "" {
		all := true
		for _, s := range snapshot {
			if !s.Finished {
				all = false
				break
			}
		}
		label := fmt.Sprintf("%s finished first!", winner)
		if all {
			label = fmt.Sprintf("Race over! %s won", winner)
		}
		return m.styles.Winner.Render(label)
	}
	if m.controller.Running() {
		return m.styles.Status.Render("Racing…")
	}
	return m.styles.Status.Render("Paused. Press space to start")
}

// SetSize updates the layout for a new terminal size.
func (m *RaceModel) SetSize(w, h int) {
	m.width = w
	m.height = h

	// Lane chrome: border (2) + padding (2).
	barWidth := w - 8
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}
	if barWidth > maxBarWidth {
		barWidth = maxBarWidth
	}
	for i := range m.bars {
		m.bars[i].Width = barWidth
	}
}
