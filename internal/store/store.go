package store

import (
	"context"
	"errors"

	"github.com/devaloi/noteboard/internal/domain"
)

// Sentinel errors for callers to branch on.
var (
	ErrNotFound      = errors.New("not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrNameTaken     = errors.New("name already taken")
	ErrCategoryInUse = errors.New("category is in use")
)

// Store defines the persistence interface for users, notes and categories.
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string, isAdmin bool) (domain.User, error)
	UserByEmail(ctx context.Context, email string) (domain.User, error)
	UserByID(ctx context.Context, id int64) (domain.User, error)
	Users(ctx context.Context) ([]domain.User, error)

	CreateCategory(ctx context.Context, name string) (domain.Category, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	CategoryByID(ctx context.Context, id int64) (domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) (domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	CreateNote(ctx context.Context, title, content string, ownerID, categoryID int64) (domain.Note, error)
	NoteByID(ctx context.Context, id int64) (domain.Note, error)
	NotesByOwner(ctx context.Context, ownerID int64) ([]domain.Note, error)
	Notes(ctx context.Context) ([]domain.Note, error)
	UpdateNote(ctx context.Context, note domain.Note) (domain.Note, error)
	DeleteNote(ctx context.Context, id int64) error

	// Close releases any resources held by the store.
	Close() error
}
