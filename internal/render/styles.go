package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	banner  lipgloss.Style
	section lipgloss.Style
	label   lipgloss.Style
	index   lipgloss.Style
	head    lipgloss.Style
	value   lipgloss.Style
	err     lipgloss.Style
}

// ANSI Color reference
// 1	Red
// 2	Green
// 4	Blue
// 6	Cyan
// 7	White
// 12	Bright Blue

func newStyles(w io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(w)
	if !color {
		plain := r.NewStyle()
		return styles{
			banner:  plain.Border(lipgloss.NormalBorder()).Padding(0, 5),
			section: plain,
			label:   plain,
			index:   plain,
			head:    plain,
			value:   plain,
			err:     plain,
		}
	}
	return styles{
		banner:  r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(6)).Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.ANSIColor(2)).Padding(0, 5),
		section: r.NewStyle().Bold(true),
		label:   r.NewStyle().Foreground(lipgloss.ANSIColor(2)),
		index:   r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(12)),
		head:    r.NewStyle().Foreground(lipgloss.ANSIColor(2)),
		value:   r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(6)),
		err:     r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(1)),
	}
}
