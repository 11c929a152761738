package ui

import (
	"fmt"
	"strings"
)

func (m MainModel) View() string {
	if !m.ready {
		return "Initializing UI..."
	}

	header := headerStyle.
		Width(m.width).
		Render(fitWidth(m.statusLine(), m.width-2))

	body := m.viewport.View()
	if m.showResults {
		body = m.results.View()
	}

	border := borderStyle.Render(strings.Repeat("─", max(m.width, 1)))

	return fmt.Sprintf("%s\n%s\n%s\n%s",
		header,
		body,
		border,
		m.textarea.View(),
	)
}

// statusLine - содержимое строки статуса.
func (m MainModel) statusLine() string {
	image := m.imageRef
	if image == "" {
		image = "NONE"
	}
	prompt := "-"
	if m.extraPrompt != "" {
		prompt = "set"
	}
	records := "?"
	if m.records >= 0 {
		records = fmt.Sprintf("%d", m.records)
	}

	return fmt.Sprintf("IMAGE: %s | PROMPT: %s | MODEL: %s | LOG: %s | %s",
		image, prompt, m.deps.Model, records, m.status)
}
