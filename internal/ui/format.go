package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/ilkoid/sortbot/pkg/audit"
	"github.com/ilkoid/sortbot/pkg/sorter"
)

// summaryLen - длина описания в таблице результатов (в символах).
const summaryLen = 50

const helpText = `Commands:
  open <path|s3://key>   select an image (.png .jpg .jpeg .bmp .gif)
  ls [dir|s3://prefix]   list images
  prompt [text]          set the extra prompt (empty clears it)
  classify [image]       describe, classify and log the selected image
  search [keyword]       search the log (empty keyword shows everything)
  help                   show this help
  quit                   exit
Esc closes the results table, Ctrl+C exits.`

func newResultsTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 5},
			{Title: "Category", Width: 14},
			{Title: "Action", Width: 42},
			{Title: "Description", Width: summaryLen},
			{Title: "Time", Width: 19},
		}),
		table.WithFocused(true),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(grayColor).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(primaryColor)
	t.SetStyles(s)
	return t
}

// eventRows конвертирует записи журнала в строки таблицы.
func eventRows(evs []audit.Event) []table.Row {
	rows := make([]table.Row, 0, len(evs))
	for _, ev := range evs {
		created := "-"
		if !ev.CreatedAt.IsZero() {
			created = ev.CreatedAt.Format("2006-01-02 15:04:05")
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", ev.ID),
			ev.Category,
			ev.Action,
			summarize(ev.Description, summaryLen),
			created,
		})
	}
	return rows
}

// summarize возвращает первые n символов описания в одну строку.
func summarize(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// formatResult - блок лога для итога классификации.
func formatResult(res sorter.Result) string {
	var b strings.Builder
	b.WriteString(resultMsgStyle("RESULT > ") + res.ImageRef + " → " + resultMsgStyle(res.Label))
	b.WriteString("\n")
	b.WriteString(res.Description)
	b.WriteString("\n")
	b.WriteString(actionMsgStyle("Expected action: " + string(res.Action)))
	return b.String()
}

// wrapLines переносит строки лога по ширине окна.
func wrapLines(lines []string, width int) string {
	if width <= 0 {
		return strings.Join(lines, "\n")
	}
	wrapped := make([]string, 0, len(lines))
	for _, line := range lines {
		wrapped = append(wrapped, wordwrap.String(line, width))
	}
	return strings.Join(wrapped, "\n")
}

// fitWidth обрезает строку статуса под ширину окна.
func fitWidth(s string, width int) string {
	if width <= 0 {
		return s
	}
	return truncate.StringWithTail(s, uint(width), "…")
}
