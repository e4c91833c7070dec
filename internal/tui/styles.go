package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/flip-z/projectboard/internal/board"
)

var (
	colorAccent = lipgloss.Color("#86f7c5")
	colorWarn   = lipgloss.Color("#ffcc66")
	colorDone   = lipgloss.Color("#7aa2ff")
	colorError  = lipgloss.Color("#ff6b6b")
	colorDim    = lipgloss.Color("#7a84a6")
	colorText   = lipgloss.Color("#e9eefc")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	dimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	filterStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(colorDim)
	activeStyle   = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(colorAccent).Underline(true)
	chipStyle     = lipgloss.NewStyle().Foreground(colorDim)
	cardStyle     = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle = lipgloss.NewStyle().PaddingLeft(1).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(colorAccent)
	linkStyle     = lipgloss.NewStyle().Foreground(colorAccent)
)

func badgeStyle(k board.StatusKind) lipgloss.Style {
	s := lipgloss.NewStyle().Padding(0, 1)
	switch k {
	case board.StatusKindOpen:
		return s.Foreground(colorAccent)
	case board.StatusKindInProgress:
		return s.Foreground(colorWarn)
	case board.StatusKindDone:
		return s.Foreground(colorDone)
	default:
		return s.Foreground(colorText)
	}
}
