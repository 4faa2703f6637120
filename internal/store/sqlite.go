package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/devaloi/noteboard/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens or creates a SQLite database at the given path.
// Use ":memory:" for an in-memory database.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// A single connection keeps :memory: databases coherent and avoids
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			is_admin INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		);
		CREATE TABLE IF NOT EXISTS notes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			owner_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			category_id INTEGER NOT NULL REFERENCES categories(id)
		);
		CREATE INDEX IF NOT EXISTS idx_notes_owner ON notes(owner_id);
		CREATE INDEX IF NOT EXISTS idx_notes_category ON notes(category_id);
	`)
	return err
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *SQLiteStore) CreateUser(ctx context.Context, email, passwordHash string, isAdmin bool) (domain.User, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, is_admin) VALUES (?, ?, ?)",
		email, passwordHash, isAdmin,
	)
	if isUniqueViolation(err) {
		return domain.User{}, ErrEmailTaken
	}
	if err != nil {
		return domain.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{ID: id, Email: email, PasswordHash: passwordHash, IsAdmin: isAdmin}, nil
}

func (s *SQLiteStore) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, is_admin FROM users WHERE email = ?", email))
}

func (s *SQLiteStore) UserByID(ctx context.Context, id int64) (domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, is_admin FROM users WHERE id = ?", id))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *SQLiteStore) Users(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, email, password_hash, is_admin FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsAdmin); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO categories (name) VALUES (?)", name)
	if isUniqueViolation(err) {
		return domain.Category{}, ErrNameTaken
	}
	if err != nil {
		return domain.Category{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Category{}, err
	}
	return domain.Category{ID: id, Name: name}, nil
}

func (s *SQLiteStore) Categories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *SQLiteStore) CategoryByID(ctx context.Context, id int64) (domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRowContext(ctx, "SELECT id, name FROM categories WHERE id = ?", id).
		Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, ErrNotFound
	}
	if err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

func (s *SQLiteStore) UpdateCategory(ctx context.Context, id int64, name string) (domain.Category, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE categories SET name = ? WHERE id = ?", name, id)
	if isUniqueViolation(err) {
		return domain.Category{}, ErrNameTaken
	}
	if err != nil {
		return domain.Category{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Category{}, err
	}
	if n == 0 {
		return domain.Category{}, ErrNotFound
	}
	return domain.Category{ID: id, Name: name}, nil
}

func (s *SQLiteStore) DeleteCategory(ctx context.Context, id int64) error {
	var inUse int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notes WHERE category_id = ?", id).Scan(&inUse); err != nil {
		return err
	}
	if inUse > 0 {
		return ErrCategoryInUse
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CreateNote(ctx context.Context, title, content string, ownerID, categoryID int64) (domain.Note, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO notes (title, content, owner_id, category_id) VALUES (?, ?, ?, ?)",
		title, content, ownerID, categoryID,
	)
	if err != nil {
		return domain.Note{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Note{}, err
	}
	return domain.Note{ID: id, Title: title, Content: content, OwnerID: ownerID, CategoryID: categoryID}, nil
}

func (s *SQLiteStore) NoteByID(ctx context.Context, id int64) (domain.Note, error) {
	var n domain.Note
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, content, owner_id, category_id FROM notes WHERE id = ?", id).
		Scan(&n.ID, &n.Title, &n.Content, &n.OwnerID, &n.CategoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Note{}, ErrNotFound
	}
	if err != nil {
		return domain.Note{}, err
	}
	return n, nil
}

func (s *SQLiteStore) NotesByOwner(ctx context.Context, ownerID int64) ([]domain.Note, error) {
	return s.queryNotes(ctx,
		"SELECT id, title, content, owner_id, category_id FROM notes WHERE owner_id = ? ORDER BY id", ownerID)
}

func (s *SQLiteStore) Notes(ctx context.Context) ([]domain.Note, error) {
	return s.queryNotes(ctx,
		"SELECT id, title, content, owner_id, category_id FROM notes ORDER BY id")
}

func (s *SQLiteStore) queryNotes(ctx context.Context, query string, args ...any) ([]domain.Note, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.OwnerID, &n.CategoryID); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *SQLiteStore) UpdateNote(ctx context.Context, note domain.Note) (domain.Note, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notes SET title = ?, content = ?, category_id = ? WHERE id = ?",
		note.Title, note.Content, note.CategoryID, note.ID,
	)
	if err != nil {
		return domain.Note{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Note{}, err
	}
	if n == 0 {
		return domain.Note{}, ErrNotFound
	}
	return s.NoteByID(ctx, note.ID)
}

func (s *SQLiteStore) DeleteNote(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
