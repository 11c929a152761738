// Package tui предоставляет reusable helpers для подключения Bubble Tea к
// событиям конвейера.
//
// Это НЕ готовый TUI (он остаётся в internal/ui/), а адаптер между
// pkg/events (Port) и сообщениями Bubble Tea.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/sortbot/pkg/events"
)

// EventMsg - events.Event в виде Bubble Tea сообщения.
type EventMsg events.Event

// ReceiveEventCmd возвращает Cmd, который ждет одно событие из Subscriber.
//
// Когда канал закрыт, Cmd возвращает nil и чтение прекращается.
func ReceiveEventCmd(sub events.Subscriber, converter func(events.Event) tea.Msg) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-sub.Events()
		if !ok {
			return nil
		}
		return converter(event)
	}
}

// WaitForEvent продолжает чтение после обработки очередного события:
//
//	case tui.EventMsg:
//	    // ... обработка
//	    return m, tui.WaitForEvent(sub, converter)
func WaitForEvent(sub events.Subscriber, converter func(events.Event) tea.Msg) tea.Cmd {
	return ReceiveEventCmd(sub, converter)
}

// ToEventMsg - стандартный converter.
func ToEventMsg(event events.Event) tea.Msg {
	return EventMsg(event)
}
