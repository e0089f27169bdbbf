package ui

import (
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# raceday

Two participants race their progress bars to the finish. Each one advances
by its own increment after its own delay; they run concurrently and do not
wait for each other.

## Keys

| Key | Action |
|-----|--------|
| space | Start or pause the race |
| r | Reset all progress to zero |
| ? | Toggle this help |
| q / ctrl+c / esc | Quit |

## Behavior

- Progress only ever moves forward while racing; pausing keeps it in place.
- Reset always returns every participant to zero, racing or not.
- Participants are configured in the config file and reloaded automatically
  while the race is idle.
`

func (m RaceModel) helpView() string {
	width := m.width
	if width <= 0 || width > 80 {
		width = 80
	}

	var renderer *glamour.TermRenderer
	var err error
	if m.styles.Theme.IsDark {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithStylePath("dark"),
			glamour.WithWordWrap(width),
		)
	} else {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(width),
		)
	}
	if err != nil {
		return helpMarkdown
	}

	out, err := renderer.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out + m.styles.Muted.Render(" ?: close help")
}
