package events

import (
	"context"
	"sync"
	"time"
)

// ChanEmitter - реализация Emitter через буферизованный канал.
//
// Thread-safe. Используется TUI для получения событий конвейера.
type ChanEmitter struct {
	mu     sync.RWMutex
	ch     chan Event
	closed bool
}

// NewChanEmitter создаёт новый ChanEmitter с буферизованным каналом.
//
// buffer определяет размер буфера канала.
// Если buffer = 0, канал будет небуферизованным (blocking).
func NewChanEmitter(buffer int) *ChanEmitter {
	return &ChanEmitter{
		ch: make(chan Event, buffer),
	}
}

// Emit отправляет событие в канал.
//
// Пустой Timestamp заполняется текущим временем. После Close и при
// отмене context событие отбрасывается.
func (e *ChanEmitter) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// RLock удерживается до конца отправки: Close не закроет канал под Emit.
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return
	}

	select {
	case e.ch <- event:
	case <-ctx.Done():
	}
}

// Subscribe возвращает Subscriber для чтения событий.
//
// Подписчики делят один канал: каждое событие получит только один из них.
func (e *ChanEmitter) Subscribe() Subscriber {
	return &chanSubscriber{ch: e.ch}
}

// Close закрывает канал. Повторный вызов безопасен.
func (e *ChanEmitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	close(e.ch)
}

type chanSubscriber struct {
	ch <-chan Event
}

// Events возвращает read-only канал событий.
func (s *chanSubscriber) Events() <-chan Event {
	return s.ch
}

// Close - no-op: канал закрывается только через ChanEmitter.Close().
func (s *chanSubscriber) Close() {}

var (
	_ Emitter    = (*ChanEmitter)(nil)
	_ Subscriber = (*chanSubscriber)(nil)
)
