// Package utils предоставляет простой файловый логгер для CLI и TUI утилит.
//
// Логгер создаёт .log файл с timestamp в имени.
// Thread-safe через sync.Mutex.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	logFile     *os.File
	logMutex    sync.Mutex
	initialized bool
	minLevel    = levelInfo
)

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

var levelNames = map[string]int{
	"DEBUG": levelDebug,
	"INFO":  levelInfo,
	"WARN":  levelWarn,
	"ERROR": levelError,
}

// InitLogger создает/открывает .log файл в текущей директории.
func InitLogger() error {
	return InitLoggerIn("")
}

// InitLoggerIn создает/открывает .log файл в директории dir.
//
// Имя файла: sortbot-YYYY-MM-DD-HH-MM.log (например, sortbot-2026-10-19-15-30.log).
// Пустой dir - текущая директория.
func InitLoggerIn(dir string) error {
	logMutex.Lock()
	defer logMutex.Unlock()

	if initialized {
		return nil
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log dir: %w", err)
		}
	}

	timestamp := time.Now().Format("2006-01-02-15-04")
	filename := filepath.Join(dir, fmt.Sprintf("sortbot-%s.log", timestamp))

	var err error
	logFile, err = os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	initialized = true
	// Пишем напрямую без Info чтобы избежать deadlock (мьютекс уже захвачен)
	writeLine(fmt.Sprintf("[%s] INFO: Logger initialized file=%s\n",
		time.Now().Format("2006-01-02 15:04:05"), filename))

	return nil
}

// SetDebug включает/выключает DEBUG сообщения (по умолчанию выключены).
func SetDebug(enabled bool) {
	logMutex.Lock()
	defer logMutex.Unlock()

	if enabled {
		minLevel = levelDebug
	} else {
		minLevel = levelInfo
	}
}

// Info - информационное сообщение.
func Info(msg string, keyvals ...any) {
	log("INFO", msg, keyvals...)
}

// Error - сообщение об ошибке.
func Error(msg string, keyvals ...any) {
	log("ERROR", msg, keyvals...)
}

// Debug - отладочное сообщение.
func Debug(msg string, keyvals ...any) {
	log("DEBUG", msg, keyvals...)
}

// Warn - предупреждение.
func Warn(msg string, keyvals ...any) {
	log("WARN", msg, keyvals...)
}

// log - внутренняя функция записи в лог.
//
// Формат: [YYYY-MM-DD HH:MM:SS] LEVEL: message key1=value1 key2=value2
// До InitLogger сообщения отбрасываются.
func log(level, msg string, keyvals ...any) {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile == nil || levelNames[level] < minLevel {
		return
	}

	writeLine(formatLine(time.Now(), level, msg, keyvals...))
}

// formatLine собирает строку лога. Непарный последний ключ отбрасывается.
func formatLine(ts time.Time, level, msg string, keyvals ...any) string {
	line := fmt.Sprintf("[%s] %s: %s", ts.Format("2006-01-02 15:04:05"), level, msg)

	for i := 0; i+1 < len(keyvals); i += 2 {
		line += fmt.Sprintf(" %v=%v", keyvals[i], keyvals[i+1])
	}

	return line + "\n"
}

// writeLine пишет в файл; при ошибке записи - fallback на stderr.
// Вызывается под logMutex.
func writeLine(line string) {
	if _, err := logFile.WriteString(line); err != nil {
		fmt.Fprintf(os.Stderr, "%s", line)
		fmt.Fprintf(os.Stderr, "[LOGGER ERROR: WriteString failed: %v]\n", err)
		return
	}

	if err := logFile.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Sync failed: %v]\n", err)
	}
}

// Close закрывает лог-файл.
//
// Вызывается через defer в main().
func Close() {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile != nil {
		if err := logFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Close failed: %v]\n", err)
		}
		logFile = nil
	}
	initialized = false
}
