package vision

import "errors"

var (
	// ErrNoChoices - провайдер вернул ответ без вариантов.
	ErrNoChoices = errors.New("no choices in response")

	// ErrEmptyDescription - модель вернула пустой текст.
	ErrEmptyDescription = errors.New("empty description")
)
