package domain

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"is_admin"`
}

// Category groups notes and is shared across users.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Note belongs to one owner and one category.
type Note struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	OwnerID    int64  `json:"owner_id"`
	CategoryID int64  `json:"category_id"`
}
