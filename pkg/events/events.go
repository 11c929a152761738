// Package events предоставляет Port для наблюдения за конвейером сортировки.
//
// Конвейер (pkg/sorter) зависит только от Emitter, а UI подписывается
// через Subscriber и не знает, как устроена классификация.
//
//	emitter := events.NewChanEmitter(16)
//	s := sorter.New(describer, store, sorter.WithEmitter(emitter))
//
//	for event := range emitter.Subscribe().Events() {
//	    switch event.Type {
//	    case events.EventDescribing:
//	        ui.showSpinner()
//	    case events.EventClassified:
//	        ui.showResult(event.Data)
//	    }
//	}
//
// Все реализации должны быть thread-safe.
package events

import (
	"context"
	"time"
)

// EventType - тип события конвейера.
type EventType string

const (
	// EventDescribing - изображение отправлено vision модели.
	EventDescribing EventType = "describing"

	// EventClassified - описание получено, категория и действие определены.
	EventClassified EventType = "classified"

	// EventSaved - решение записано в журнал.
	EventSaved EventType = "saved"

	// EventError - ошибка на любом шаге.
	EventError EventType = "error"

	// EventDone - обработка запроса завершена (успешно или нет).
	EventDone EventType = "done"
)

// EventData - sealed interface для данных события.
type EventData interface {
	eventData()
}

// DescribingData содержит данные для EventDescribing.
type DescribingData struct {
	RequestID string
	ImageRef  string
	Prompt    string
}

func (DescribingData) eventData() {}

// ClassifiedData содержит данные для EventClassified.
type ClassifiedData struct {
	RequestID   string
	ImageRef    string
	Category    string
	Action      string
	Description string
	Duration    time.Duration
}

func (ClassifiedData) eventData() {}

// SavedData содержит данные для EventSaved.
type SavedData struct {
	RequestID string
	ID        int64
}

func (SavedData) eventData() {}

// ErrorData содержит данные для EventError.
type ErrorData struct {
	RequestID string
	Err       error
}

func (ErrorData) eventData() {}

// DoneData содержит данные для EventDone.
type DoneData struct {
	RequestID string
	Saved     bool
}

func (DoneData) eventData() {}

// Event - событие конвейера.
type Event struct {
	Type      EventType
	Data      EventData
	Timestamp time.Time
}

// Emitter - Port для отправки событий.
type Emitter interface {
	// Emit отправляет событие. Если context отменён, событие теряется.
	Emit(ctx context.Context, event Event)
}

// Subscriber позволяет читать события из канала.
type Subscriber interface {
	// Events возвращает read-only канал событий.
	Events() <-chan Event

	// Close освобождает подписчика.
	Close()
}

// Nop - Emitter, который ничего не делает.
type Nop struct{}

// Emit ничего не делает.
func (Nop) Emit(context.Context, Event) {}

var _ Emitter = Nop{}
