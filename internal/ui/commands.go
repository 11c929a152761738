package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/sortbot/pkg/audit"
	"github.com/ilkoid/sortbot/pkg/imagesource"
	"github.com/ilkoid/sortbot/pkg/sorter"
)

// errBusy - классификация уже выполняется.
var errBusy = errors.New("classification is already running")

// classifyResultMsg - итог команды classify.
type classifyResultMsg struct {
	Result sorter.Result
	Err    error
}

// searchResultMsg - итог команды search.
type searchResultMsg struct {
	Keyword string
	Events  []audit.Event
	Err     error
}

// listResultMsg - итог команды ls.
type listResultMsg struct {
	Location string
	Refs     []string
	Err      error
}

// countMsg - число записей журнала.
type countMsg struct {
	N   int
	Err error
}

func classifyCmd(parent context.Context, p Pipeline, req sorter.Request, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		res, err := p.Classify(ctx, req)
		return classifyResultMsg{Result: res, Err: err}
	}
}

func searchCmd(parent context.Context, p Pipeline, keyword string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, 30*time.Second)
		defer cancel()

		evs, err := p.Search(ctx, keyword)
		return searchResultMsg{Keyword: keyword, Events: evs, Err: err}
	}
}

func listCmd(parent context.Context, l ImageLister, location string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, 30*time.Second)
		defer cancel()

		refs, err := l.List(ctx, location)
		return listResultMsg{Location: location, Refs: refs, Err: err}
	}
}

func countCmd(parent context.Context, c Counter) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, 5*time.Second)
		defer cancel()

		n, err := c.Count(ctx)
		return countMsg{N: n, Err: err}
	}
}

// splitCommand делит ввод на команду и остаток строки.
func splitCommand(input string) (cmd, rest string) {
	input = strings.TrimSpace(input)
	if i := strings.IndexAny(input, " \t"); i >= 0 {
		return strings.ToLower(input[:i]), strings.TrimSpace(input[i+1:])
	}
	return strings.ToLower(input), ""
}

// performCommand обрабатывает ввод пользователя.
//
// Быстрые команды меняют модель сразу, долгие возвращают tea.Cmd.
func (m MainModel) performCommand(input string) (MainModel, tea.Cmd) {
	cmd, rest := splitCommand(input)

	switch cmd {
	case "open":
		if rest == "" {
			m.appendError(fmt.Errorf("usage: open <path|s3://key>"))
			return m, nil
		}
		if err := imagesource.ValidateRef(rest); err != nil {
			m.appendError(err)
			return m, nil
		}
		m.imageRef = rest
		m.appendLog(systemMsgStyle("Image selected: ") + rest)
		return m, nil

	case "ls":
		if m.deps.Images == nil {
			m.appendError(fmt.Errorf("image listing is not available"))
			return m, nil
		}
		return m, listCmd(m.deps.Context, m.deps.Images, rest)

	case "prompt":
		m.extraPrompt = rest
		if rest == "" {
			m.appendLog(systemMsgStyle("Extra prompt cleared."))
		} else {
			m.appendLog(systemMsgStyle("Extra prompt set: ") + rest)
		}
		return m, nil

	case "classify":
		if rest != "" {
			if err := imagesource.ValidateRef(rest); err != nil {
				m.appendError(err)
				return m, nil
			}
			m.imageRef = rest
		}
		if m.imageRef == "" {
			m.appendError(fmt.Errorf("no image selected, use 'open <path>' first"))
			return m, nil
		}
		if m.processing {
			m.appendError(errBusy)
			return m, nil
		}
		m.processing = true
		m.status = "analyzing " + m.imageRef
		req := sorter.Request{ImageRef: m.imageRef, Prompt: m.extraPrompt}
		return m, classifyCmd(m.deps.Context, m.deps.Pipeline, req, m.deps.Timeout)

	case "search":
		return m, searchCmd(m.deps.Context, m.deps.Pipeline, rest)

	case "help", "?":
		m.appendLog(helpText)
		return m, nil

	case "quit", "exit":
		return m, tea.Quit

	default:
		m.appendError(fmt.Errorf("unknown command: '%s'. Type 'help' for the list of commands", cmd))
		return m, nil
	}
}
