// Package ui реализует Bubble Tea TUI сортировщика.
//
// Экран: строка статуса, лог (или таблица результатов поиска) и поле ввода
// команд. Долгие операции (классификация, поиск, листинг) выполняются
// как tea.Cmd и возвращают результат сообщением.
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/sortbot/pkg/audit"
	"github.com/ilkoid/sortbot/pkg/events"
	"github.com/ilkoid/sortbot/pkg/sorter"
	"github.com/ilkoid/sortbot/pkg/tui"
)

const defaultTimeout = 2 * time.Minute

// Pipeline - то, что UI нужно от конвейера.
type Pipeline interface {
	Classify(ctx context.Context, req sorter.Request) (sorter.Result, error)
	Search(ctx context.Context, keyword string) ([]audit.Event, error)
}

// ImageLister перечисляет изображения в директории или по S3 префиксу.
type ImageLister interface {
	List(ctx context.Context, location string) ([]string, error)
}

// Counter возвращает число записей журнала.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Deps - зависимости UI.
type Deps struct {
	Pipeline Pipeline
	Images   ImageLister // nil - команда ls недоступна
	Store    Counter     // nil - счетчик записей не показывается
	Model    string
	Timeout  time.Duration // Таймаут одной классификации

	// Context - контекст запуска. Отмена прерывает текущие операции.
	Context context.Context
}

// MainModel - главная модель UI (Bubble Tea Model).
type MainModel struct {
	viewport viewport.Model
	textarea textarea.Model
	results  table.Model

	deps     Deps
	eventSub events.Subscriber

	imageRef    string // Выбранное изображение
	extraPrompt string // Дополнительный промпт пользователя
	records     int    // Записей в журнале, -1 если неизвестно
	status      string
	processing  bool
	showResults bool

	logLines []string // Строки лога без переноса
	width    int
	ready    bool
}

// InitialModel создает начальное состояние UI.
func InitialModel(deps Deps, eventSub events.Subscriber) MainModel {
	if deps.Timeout <= 0 {
		deps.Timeout = defaultTimeout
	}
	if deps.Context == nil {
		deps.Context = context.Background()
	}

	ta := textarea.New()
	ta.Placeholder = "Type a command (open <image>, classify, search <keyword>, help)..."
	ta.Focus()
	ta.Prompt = "┃ "
	ta.CharLimit = 500
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	m := MainModel{
		viewport: viewport.New(0, 0),
		textarea: ta,
		results:  newResultsTable(),
		deps:     deps,
		eventSub: eventSub,
		records:  -1,
		status:   "ready",
	}
	m.appendLog(systemMsgStyle("Sortbot initialized."))
	m.appendLog(hintStyle("Type 'help' for the list of commands."))
	return m
}

// Init запускает мигание курсора, чтение событий и подсчет записей.
func (m MainModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.eventSub != nil {
		cmds = append(cmds, tui.ReceiveEventCmd(m.eventSub, tui.ToEventMsg))
	}
	if m.deps.Store != nil {
		cmds = append(cmds, countCmd(m.deps.Context, m.deps.Store))
	}
	return tea.Batch(cmds...)
}
