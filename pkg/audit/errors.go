package audit

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable возвращается когда базу не удалось открыть или
// получить из неё соединение.
//
// Пример использования:
//
//	if errors.Is(err, audit.ErrStorageUnavailable) {
//	    // результат классификации валиден, но не сохранён
//	}
var ErrStorageUnavailable = errors.New("audit storage unavailable")

// ErrWriteFailure возвращается когда запись не удалось зафиксировать.
var ErrWriteFailure = errors.New("audit write failed")

// ErrClosed возвращается при обращении к закрытому хранилищу.
var ErrClosed = errors.New("audit store is closed")

// OpError - ошибка операции с контекстом.
//
// Kind - одна из сентинельных ошибок пакета, Err - исходная ошибка драйвера.
// Поддерживает errors.Is() для обеих.
type OpError struct {
	Op   string // "initialize", "append", "search", "count"
	Path string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("audit %s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("audit %s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

// Is проверяет что ошибка относится к Kind.
func (e *OpError) Is(target error) bool {
	return target == e.Kind
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// IsUnavailable - удобная обертка над errors.Is(err, ErrStorageUnavailable).
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
