package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dayloop/dayloop/internal/models"
)

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

const schemaVersion = 1

var schema = []string{
	`CREATE TABLE IF NOT EXISTS schema_info (
		version INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS todos (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		category TEXT NOT NULL,
		display_order INTEGER NOT NULL DEFAULT 0,
		scheduled_time TEXT,
		is_completed INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		data TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_completed ON todos(is_completed)`,
}

func (s *SQLiteStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	var version int
	err = s.db.QueryRow(`SELECT version FROM schema_info LIMIT 1`).Scan(&version)
	if err == sql.ErrNoRows {
		if _, err := s.db.Exec(`INSERT INTO schema_info (version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	} else if version > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, schemaVersion)
	}

	// Initialize default settings if not present
	if _, err := s.GetSettings(); err != nil {
		if err := s.SaveSettings(models.DefaultSettings()); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'dayloop init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) AddTodo(todo models.Todo) error {
	if err := todo.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(`
		INSERT INTO todos (id, title, category, display_order, scheduled_time, is_completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		todo.ID, todo.Title, string(todo.Category), todo.Order,
		nullableString(todo.ScheduledTime), boolToInt(todo.IsCompleted),
		todo.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert todo: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTodo(id string) (models.Todo, error) {
	row := s.db.QueryRow(`
		SELECT id, title, category, display_order, scheduled_time, is_completed, created_at
		FROM todos WHERE id = ?`, id)

	todo, err := scanTodo(row)
	if err == sql.ErrNoRows {
		return models.Todo{}, ErrNotFound
	}
	if err != nil {
		return models.Todo{}, fmt.Errorf("failed to get todo: %w", err)
	}
	return todo, nil
}

func (s *SQLiteStore) GetAllTodos() ([]models.Todo, error) {
	return s.queryTodos(`
		SELECT id, title, category, display_order, scheduled_time, is_completed, created_at
		FROM todos`)
}

func (s *SQLiteStore) GetCompletedTodos() ([]models.Todo, error) {
	return s.queryTodos(`
		SELECT id, title, category, display_order, scheduled_time, is_completed, created_at
		FROM todos WHERE is_completed = 1`)
}

func (s *SQLiteStore) CountIncomplete() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM todos WHERE is_completed = 0`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count incomplete todos: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) UpdateTodo(todo models.Todo) error {
	if err := todo.Validate(); err != nil {
		return err
	}
	res, err := s.db.Exec(`
		UPDATE todos
		SET title = ?, category = ?, display_order = ?, scheduled_time = ?, is_completed = ?
		WHERE id = ?`,
		todo.Title, string(todo.Category), todo.Order,
		nullableString(todo.ScheduledTime), boolToInt(todo.IsCompleted), todo.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SaveTodos(todos []models.Todo) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		UPDATE todos
		SET title = ?, category = ?, display_order = ?, scheduled_time = ?, is_completed = ?
		WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch update: %w", err)
	}
	defer stmt.Close()

	for _, todo := range todos {
		if err := todo.Validate(); err != nil {
			return err
		}
		if _, err := stmt.Exec(
			todo.Title, string(todo.Category), todo.Order,
			nullableString(todo.ScheduledTime), boolToInt(todo.IsCompleted), todo.ID,
		); err != nil {
			return fmt.Errorf("failed to save todo %s: %w", todo.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch save: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteTodo(id string) error {
	res, err := s.db.Exec(`DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) GetSettings() (models.Settings, error) {
	var raw string
	err := s.db.QueryRow(`SELECT data FROM settings WHERE id = 1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return models.Settings{}, fmt.Errorf("settings not initialized")
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}

	var settings models.Settings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return models.Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	return settings, nil
}

func (s *SQLiteStore) SaveSettings(settings models.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO settings (id, data) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data`, string(raw))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (models.Todo, error) {
	var t models.Todo
	var category, createdAt string
	var scheduledTime sql.NullString
	var completed int

	err := row.Scan(&t.ID, &t.Title, &category, &t.Order, &scheduledTime, &completed, &createdAt)
	if err != nil {
		return models.Todo{}, err
	}

	t.Category = models.Category(category)
	t.IsCompleted = completed != 0
	if scheduledTime.Valid {
		t.ScheduledTime = scheduledTime.String
	}

	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return models.Todo{}, fmt.Errorf("invalid created_at for todo %s: %w", t.ID, err)
	}
	t.CreatedAt = parsed

	return t, nil
}

func (s *SQLiteStore) queryTodos(query string, args ...any) ([]models.Todo, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	defer rows.Close()

	var todos []models.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read todos: %w", err)
	}

	models.SortTodos(todos)
	return todos, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
