package tui

import "github.com/charmbracelet/lipgloss"

const sidebarWidth = 28

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	sidebarStyle = lipgloss.NewStyle().
			Width(sidebarWidth).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			PaddingRight(1)

	chatItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	chatCursorStyle = lipgloss.NewStyle().
			PaddingLeft(0).
			Bold(true).
			Foreground(lipgloss.Color("205"))

	chatSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(lipgloss.Color("42"))

	labelStyle = lipgloss.NewStyle().
			Faint(true)

	userTurnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	infoStyle = lipgloss.NewStyle().
			Faint(true)

	helpStyle = lipgloss.NewStyle().
			Faint(true)

	promptStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			Padding(0, 1)
)
