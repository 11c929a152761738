// Package sorter связывает описание изображения, классификацию и журнал.
//
// Одно событие классификации проходит шаги строго по порядку:
// описание (vision) -> категория (waste.Extractor) -> действие
// (waste.Resolve) -> запись в журнал (audit). Следующее событие
// начинается только после завершения предыдущего.
package sorter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ilkoid/sortbot/pkg/audit"
	"github.com/ilkoid/sortbot/pkg/events"
	"github.com/ilkoid/sortbot/pkg/prompt"
	"github.com/ilkoid/sortbot/pkg/utils"
	"github.com/ilkoid/sortbot/pkg/vision"
	"github.com/ilkoid/sortbot/pkg/waste"
)

// ErrEmptyImageRef - запрос без ссылки на изображение.
var ErrEmptyImageRef = errors.New("image reference is required")

// Recorder - то, что конвейеру нужно от журнала.
type Recorder interface {
	Append(ctx context.Context, rec audit.Record) (int64, error)
	Search(ctx context.Context, keyword string) ([]audit.Event, error)
}

var _ Recorder = (*audit.Store)(nil)

// Request - одно событие классификации.
type Request struct {
	ImageRef string
	Prompt   string // Дополнительный промпт пользователя, может быть пустым
}

// Decision - категория и действие для описания.
type Decision struct {
	Category waste.Category
	Label    string
	Action   waste.Action
}

// Result - итог классификации.
type Result struct {
	RequestID   string
	ImageRef    string
	Prompt      string // Полный промпт, отправленный модели
	Description string
	Decision

	ID       int64 // ID записи в журнале, 0 если не сохранено
	Saved    bool
	Duration time.Duration
}

// Summary возвращает описание с ожидаемым действием в конце.
func (r Result) Summary() string {
	return fmt.Sprintf("%s\n\nExpected action: %s", r.Description, r.Action)
}

// Sorter - конвейер классификации.
type Sorter struct {
	describer vision.Describer
	recorder  Recorder
	emitter   events.Emitter
	extractor *waste.Extractor
	prompt    *prompt.PromptFile

	mu sync.Mutex // одно событие за раз
}

// Option настраивает Sorter.
type Option func(*Sorter)

// WithEmitter подключает получателя событий конвейера.
func WithEmitter(e events.Emitter) Option {
	return func(s *Sorter) {
		if e != nil {
			s.emitter = e
		}
	}
}

// WithExtractor заменяет набор ключевых слов по умолчанию.
func WithExtractor(x *waste.Extractor) Option {
	return func(s *Sorter) {
		if x != nil {
			s.extractor = x
		}
	}
}

// WithPrompt заменяет встроенный промпт классификации.
func WithPrompt(pf *prompt.PromptFile) Option {
	return func(s *Sorter) {
		if pf != nil {
			s.prompt = pf
		}
	}
}

// New создает конвейер. describer и recorder обязательны.
func New(describer vision.Describer, recorder Recorder, opts ...Option) *Sorter {
	s := &Sorter{
		describer: describer,
		recorder:  recorder,
		emitter:   events.Nop{},
		extractor: waste.NewExtractor(nil),
		prompt:    prompt.DefaultClassify(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Decide определяет категорию и действие по описанию.
func (s *Sorter) Decide(description string) Decision {
	c := s.extractor.Extract(description)
	return Decision{
		Category: c,
		Label:    c.Label(),
		Action:   waste.Resolve(c, description),
	}
}

// Classify выполняет полный цикл для одного изображения.
//
// Если описание получить не удалось, в журнал ничего не пишется.
// Если не удалась запись, возвращается заполненный Result (Saved=false)
// вместе с ошибкой журнала.
func (s *Sorter) Classify(ctx context.Context, req Request) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	res := Result{
		RequestID: uuid.NewString(),
		ImageRef:  strings.TrimSpace(req.ImageRef),
	}

	if res.ImageRef == "" {
		return res, s.fail(ctx, res, ErrEmptyImageRef)
	}

	fullPrompt, err := s.prompt.BuildUserPrompt(req.Prompt)
	if err != nil {
		return res, s.fail(ctx, res, fmt.Errorf("build prompt: %w", err))
	}
	res.Prompt = fullPrompt

	utils.Info("Classification started",
		"request_id", res.RequestID,
		"image", res.ImageRef,
		"extra_prompt", req.Prompt != "")
	s.emit(ctx, events.EventDescribing, events.DescribingData{
		RequestID: res.RequestID,
		ImageRef:  res.ImageRef,
		Prompt:    fullPrompt,
	})

	description, err := s.describer.Describe(ctx, res.ImageRef, fullPrompt)
	if err != nil {
		return res, s.fail(ctx, res, fmt.Errorf("describe %s: %w", res.ImageRef, err))
	}

	res.Description = description
	res.Decision = s.Decide(description)
	res.Duration = time.Since(start)

	utils.Info("Image classified",
		"request_id", res.RequestID,
		"category", res.Label,
		"action", string(res.Action),
		"duration_ms", res.Duration.Milliseconds())
	s.emit(ctx, events.EventClassified, events.ClassifiedData{
		RequestID:   res.RequestID,
		ImageRef:    res.ImageRef,
		Category:    res.Label,
		Action:      string(res.Action),
		Description: description,
		Duration:    res.Duration,
	})

	id, err := s.recorder.Append(ctx, audit.Record{
		ImageRef:    res.ImageRef,
		Category:    res.Label,
		Description: description,
		Action:      string(res.Action),
	})
	if err != nil {
		return res, s.fail(ctx, res, err)
	}

	res.ID = id
	res.Saved = true

	utils.Info("Classification saved", "request_id", res.RequestID, "id", id)
	s.emit(ctx, events.EventSaved, events.SavedData{RequestID: res.RequestID, ID: id})
	s.emit(ctx, events.EventDone, events.DoneData{RequestID: res.RequestID, Saved: true})

	return res, nil
}

// Search возвращает записи журнала по ключевому слову, новые первыми.
func (s *Sorter) Search(ctx context.Context, keyword string) ([]audit.Event, error) {
	return s.recorder.Search(ctx, keyword)
}

// fail логирует ошибку, отправляет EventError и EventDone и возвращает err.
func (s *Sorter) fail(ctx context.Context, res Result, err error) error {
	utils.Error("Classification failed",
		"request_id", res.RequestID,
		"image", res.ImageRef,
		"error", err)
	s.emit(ctx, events.EventError, events.ErrorData{RequestID: res.RequestID, Err: err})
	s.emit(ctx, events.EventDone, events.DoneData{RequestID: res.RequestID})
	return err
}

func (s *Sorter) emit(ctx context.Context, typ events.EventType, data events.EventData) {
	s.emitter.Emit(ctx, events.Event{
		Type:      typ,
		Data:      data,
		Timestamp: time.Now(),
	})
}
