package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/sortbot/pkg/events"
	"github.com/ilkoid/sortbot/pkg/tui"
)

const (
	headerHeight = 1
	borderHeight = 1
)

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit

		case tea.KeyEsc:
			if m.showResults {
				m.showResults = false
				return m, nil
			}
			return m, tea.Quit

		case tea.KeyEnter:
			input := m.textarea.Value()
			if strings.TrimSpace(input) == "" {
				return m, nil
			}
			m.textarea.Reset()
			m.showResults = false
			m.appendLog(userMsgStyle("USER > ") + input)
			return m.performCommand(input)
		}

		// Клавиши навигации листают таблицу или лог, остальные идут в ввод.
		if isNavKey(msg) {
			var cmd tea.Cmd
			if m.showResults {
				m.results, cmd = m.results.Update(msg)
			} else {
				m.viewport, cmd = m.viewport.Update(msg)
			}
			return m, cmd
		}

		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd

	case tui.EventMsg:
		m.handleEvent(events.Event(msg))
		return m, tui.WaitForEvent(m.eventSub, tui.ToEventMsg)

	case classifyResultMsg:
		m.processing = false
		m.handleClassifyResult(msg)
		m.textarea.Focus()
		return m, nil

	case searchResultMsg:
		if msg.Err != nil {
			m.appendError(msg.Err)
			return m, nil
		}
		m.results.SetRows(eventRows(msg.Events))
		m.results.GotoTop()
		m.showResults = true
		m.appendLog(systemMsgStyle(fmt.Sprintf("Found %d record(s) for %q.", len(msg.Events), msg.Keyword)))
		return m, nil

	case listResultMsg:
		if msg.Err != nil {
			m.appendError(msg.Err)
			return m, nil
		}
		if len(msg.Refs) == 0 {
			m.appendLog(systemMsgStyle("No images found."))
			return m, nil
		}
		m.appendLog(systemMsgStyle(fmt.Sprintf("Images (%d):", len(msg.Refs))))
		for _, ref := range msg.Refs {
			m.appendLog("  " + ref)
		}
		return m, nil

	case countMsg:
		if msg.Err == nil {
			m.records = msg.N
		}
		return m, nil
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func isNavKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown, tea.KeyHome, tea.KeyEnd:
		return true
	}
	return false
}

// handleEvent обновляет строку статуса по событиям конвейера.
func (m *MainModel) handleEvent(ev events.Event) {
	switch data := ev.Data.(type) {
	case events.DescribingData:
		m.status = "analyzing " + data.ImageRef
	case events.ClassifiedData:
		m.status = fmt.Sprintf("classified as %s in %dms", data.Category, data.Duration.Milliseconds())
	case events.SavedData:
		m.status = fmt.Sprintf("saved #%d", data.ID)
	case events.ErrorData:
		m.status = "error"
	}
}

func (m *MainModel) handleClassifyResult(msg classifyResultMsg) {
	res := msg.Result

	// Описание не получено: показывать нечего.
	if res.Description == "" {
		m.status = "failed"
		m.appendError(msg.Err)
		return
	}

	m.appendLog(formatResult(res))
	if res.Saved {
		m.status = fmt.Sprintf("saved #%d", res.ID)
		if m.records >= 0 {
			m.records++
		}
		m.appendLog(systemMsgStyle(fmt.Sprintf("Result and action saved to the log (#%d).", res.ID)))
		return
	}

	m.status = "not saved"
	m.appendError(fmt.Errorf("result was not saved: %w", msg.Err))
}

// resize пересчитывает размеры компонентов.
func (m *MainModel) resize(width, height int) {
	m.width = width
	m.textarea.SetWidth(width)

	vpHeight := height - headerHeight - borderHeight - m.textarea.Height()
	if vpHeight < 1 {
		vpHeight = 1
	}

	wasAtBottom := m.viewport.AtBottom()
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.viewport.SetContent(wrapLines(m.logLines, width))
	if wasAtBottom || !m.ready {
		m.viewport.GotoBottom()
	}

	m.results.SetWidth(width)
	m.results.SetHeight(vpHeight)
	m.ready = true
}

// appendLog добавляет строку в лог и прокручивает вниз.
func (m *MainModel) appendLog(str string) {
	m.logLines = append(m.logLines, str)
	m.viewport.SetContent(wrapLines(m.logLines, m.width))
	m.viewport.GotoBottom()
}

func (m *MainModel) appendError(err error) {
	if err == nil {
		return
	}
	m.appendLog(errorMsgStyle("ERROR: ") + err.Error())
}
