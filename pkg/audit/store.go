// Package audit реализует журнал решений сортировки поверх SQLite.
//
// Журнал только дописывается: записи не изменяются и не удаляются.
// Поиск - по вхождению подстроки в категорию, описание или действие,
// новые записи первыми.
//
// Поиск через LIKE, поэтому латиница сравнивается без учета регистра,
// остальные символы - точно. Спецсимволы LIKE в ключевом слове
// экранируются, ключевое слово всегда ищется как литерал.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ilkoid/sortbot/pkg/config"
)

// Имя таблицы и колонки совпадают с базой первой версии приложения,
// чтобы старые журналы открывались без миграции.
const schema = `
CREATE TABLE IF NOT EXISTS logs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	image_path  TEXT NOT NULL,
	category    TEXT NOT NULL,
	description TEXT,
	action      TEXT,
	created_at  DATETIME DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at);
`

// В URI имени файла SQLite символы '?' и '#' начинают параметры и
// фрагмент, '%' - escape последовательность.
var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// Record - данные одного решения, которые передает вызывающий код.
type Record struct {
	ImageRef    string
	Category    string
	Description string
	Action      string
}

// Event - сохраненная запись журнала.
type Event struct {
	ID int64
	Record
	CreatedAt time.Time
}

// Store - журнал решений.
//
// Thread-safe. Append сериализуется мьютексом (один писатель), Search
// выполняется параллельно с записью. Каждая операция берет отдельное
// соединение из пула и возвращает его по завершении.
type Store struct {
	db   *sql.DB
	path string

	writeMu sync.Mutex

	mu     sync.RWMutex
	closed bool
}

// Open открывает (или создает) файл базы. Схему не трогает - для этого
// есть Initialize.
func Open(cfg config.StorageConfig) (*Store, error) {
	cfg = cfg.GetDefaults()

	if strings.TrimSpace(cfg.Path) == "" {
		return nil, &OpError{Op: "open", Kind: ErrStorageUnavailable, Err: errors.New("path is empty")}
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &OpError{Op: "open", Path: cfg.Path, Kind: ErrStorageUnavailable, Err: err}
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_txlock=immediate",
		uriPathEscaper.Replace(cfg.Path), cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, &OpError{Op: "open", Path: cfg.Path, Kind: ErrStorageUnavailable, Err: err}
	}

	return &Store{db: db, path: cfg.Path}, nil
}

// Path возвращает путь к файлу базы.
func (s *Store) Path() string {
	return s.path
}

// Initialize создает таблицу и индекс если их нет.
//
// Идемпотентна: безопасно вызывать при каждом старте, в том числе из
// нескольких процессов одновременно.
func (s *Store) Initialize(ctx context.Context) error {
	conn, err := s.conn(ctx, "initialize")
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		return &OpError{Op: "initialize", Path: s.path, Kind: ErrStorageUnavailable, Err: err}
	}
	return nil
}

// Append добавляет запись и возвращает присвоенный ID.
//
// Содержимое полей не валидируется: пустое описание допустимо, пустые
// ссылка и категория - ответственность вызывающего.
func (s *Store) Append(ctx context.Context, rec Record) (int64, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	conn, err := s.conn(ctx, "append")
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx,
		`INSERT INTO logs (image_path, category, description, action) VALUES (?, ?, ?, ?)`,
		rec.ImageRef, rec.Category, rec.Description, rec.Action)
	if err != nil {
		return 0, &OpError{Op: "append", Path: s.path, Kind: ErrWriteFailure, Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, &OpError{Op: "append", Path: s.path, Kind: ErrWriteFailure, Err: err}
	}
	return id, nil
}

// Search возвращает записи, где keyword входит в категорию, описание или
// действие. Пустой keyword возвращает весь журнал.
func (s *Store) Search(ctx context.Context, keyword string) ([]Event, error) {
	conn, err := s.conn(ctx, "search")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	pattern := "%" + escapeLike(keyword) + "%"

	rows, err := conn.QueryContext(ctx, `
		SELECT id, image_path, category, COALESCE(description, ''), COALESCE(action, ''), created_at
		FROM logs
		WHERE category LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR action LIKE ? ESCAPE '\'
		ORDER BY created_at DESC, id DESC`,
		pattern, pattern, pattern)
	if err != nil {
		return nil, &OpError{Op: "search", Path: s.path, Kind: ErrStorageUnavailable, Err: err}
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev        Event
			createdAt sql.NullTime
		)
		if err := rows.Scan(&ev.ID, &ev.ImageRef, &ev.Category, &ev.Description, &ev.Action, &createdAt); err != nil {
			return nil, &OpError{Op: "search", Path: s.path, Kind: ErrStorageUnavailable, Err: err}
		}
		ev.CreatedAt = createdAt.Time
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, &OpError{Op: "search", Path: s.path, Kind: ErrStorageUnavailable, Err: err}
	}

	return events, nil
}

// Count возвращает количество записей в журнале.
func (s *Store) Count(ctx context.Context) (int, error) {
	conn, err := s.conn(ctx, "count")
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	var n int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM logs`).Scan(&n); err != nil {
		return 0, &OpError{Op: "count", Path: s.path, Kind: ErrStorageUnavailable, Err: err}
	}
	return n, nil
}

// Close закрывает пул соединений. Повторный вызов - no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// conn берет соединение из пула на время одной операции.
func (s *Store) conn(ctx context.Context, op string) (*sql.Conn, error) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()

	if closed {
		return nil, &OpError{Op: op, Path: s.path, Kind: ErrStorageUnavailable, Err: ErrClosed}
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, &OpError{Op: op, Path: s.path, Kind: ErrStorageUnavailable, Err: err}
	}
	return conn, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
