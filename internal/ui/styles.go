package ui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor   = lipgloss.Color("29")  // Зеленый
	secondaryColor = lipgloss.Color("214") // Оранжевый
	grayColor      = lipgloss.Color("240")

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 1).
			Bold(true)

	borderStyle = lipgloss.NewStyle().Foreground(grayColor)

	userMsgStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true).
			Render

	systemMsgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Render

	resultMsgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Render

	actionMsgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Render

	errorMsgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true).
			Render

	hintStyle = lipgloss.NewStyle().Foreground(grayColor).Italic(true).Render
)
