package handler

import (
	"net/http"
	"strconv"

	"github.com/devaloi/noteboard/internal/auth"
	"github.com/devaloi/noteboard/internal/domain"
)

// pageData is the common template payload.
type pageData struct {
	User       *domain.User
	Error      string
	Note       *domain.Note
	Notes      []domain.Note
	Categories []domain.Category
	Users      []domain.User
}

func (h *Handler) render(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.log.Error().Err(err).Str("template", name).Msg("render failed")
	}
}

// sessionUser resolves the logged-in user from the session cookie,
// or nil for anonymous visitors.
func (h *Handler) sessionUser(r *http.Request) *domain.User {
	uid, err := h.tokens.SessionUserID(r)
	if err != nil {
		return nil
	}
	user, err := h.store.UserByID(r.Context(), uid)
	if err != nil {
		return nil
	}
	return &user
}

// requireSessionUser redirects anonymous visitors to the login page.
func (h *Handler) requireSessionUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user := h.sessionUser(r)
	if user == nil {
		http.Redirect(w, r, "/login-html", http.StatusFound)
		return nil, false
	}
	return user, true
}

func (h *Handler) webIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, "index.html", pageData{User: h.sessionUser(r)})
}

func (h *Handler) webLoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login.html", pageData{User: h.sessionUser(r)})
}

func (h *Handler) webLoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := normalizeEmail(r.FormValue("email"))
	password := r.FormValue("password")

	key := throttleKey(r, email)
	if h.throttle.Blocked(key) {
		w.WriteHeader(http.StatusTooManyRequests)
		h.render(w, "login.html", pageData{Error: "Слишком много попыток, попробуйте позже"})
		return
	}

	user, err := h.store.UserByEmail(r.Context(), email)
	if err != nil || !auth.VerifyPassword(password, user.PasswordHash) {
		h.throttle.Fail(key)
		h.log.Warn().Str("email", email).Msg("web login failed")
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, "login.html", pageData{Error: "Неверный email или пароль"})
		return
	}
	h.throttle.Reset(key)

	if err := h.tokens.SetSession(w, user.ID); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.log.Info().Int64("user_id", user.ID).Msg("web login")
	http.Redirect(w, r, "/ui/", http.StatusFound)
}

func (h *Handler) webRegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "register.html", pageData{User: h.sessionUser(r)})
}

func (h *Handler) webRegisterSubmit(w http.ResponseWriter, r *http.Request) {
	email := normalizeEmail(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || len(password) < 6 {
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, "register.html", pageData{Error: "Укажите email и пароль не короче 6 символов"})
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	user, err := h.store.CreateUser(r.Context(), email, hash, false)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, "register.html", pageData{Error: "Email уже зарегистрирован"})
		return
	}

	if err := h.tokens.SetSession(w, user.ID); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.log.Info().Int64("user_id", user.ID).Msg("web registration")
	http.Redirect(w, r, "/ui/", http.StatusFound)
}

func (h *Handler) webLogout(w http.ResponseWriter, r *http.Request) {
	h.tokens.ClearSession(w)
	http.Redirect(w, r, "/login-html", http.StatusFound)
}

func (h *Handler) webNotesList(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireSessionUser(w, r)
	if !ok {
		return
	}
	notes, err := h.store.NotesByOwner(r.Context(), user.ID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, "notes_list.html", pageData{User: user, Notes: notes})
}

func (h *Handler) webNoteNewPage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireSessionUser(w, r)
	if !ok {
		return
	}
	cats, err := h.store.Categories(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, "notes_new.html", pageData{User: user, Categories: cats})
}

func (h *Handler) webNoteNewSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireSessionUser(w, r)
	if !ok {
		return
	}
	categoryID, _ := strconv.ParseInt(r.FormValue("category_id"), 10, 64)
	note, err := h.store.CreateNote(r.Context(), r.FormValue("title"), r.FormValue("content"), user.ID, categoryID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.log.Info().Int64("note_id", note.ID).Int64("user_id", user.ID).Msg("note created via web")
	http.Redirect(w, r, "/ui/notes/"+strconv.FormatInt(note.ID, 10), http.StatusFound)
}

// webOwnedNote loads the requested note and redirects to the list when it
// is missing or owned by someone else.
func (h *Handler) webOwnedNote(w http.ResponseWriter, r *http.Request, user *domain.User) (*domain.Note, bool) {
	note, err := h.store.NoteByID(r.Context(), pathID(r))
	if err != nil || note.OwnerID != user.ID {
		http.Redirect(w, r, "/ui/notes", http.StatusFound)
		return nil, false
	}
	return &note, true
}

func (h *Handler) webNoteDetail(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireSessionUser(w, r)
	if !ok {
		return
	}
	note, ok := h.webOwnedNote(w, r, user)
	if !ok {
		return
	}
	h.render(w, "note_detail.html", pageData{User: user, Note: note})
}

func (h *Handler) webNoteEditPage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireSessionUser(w, r)
	if !ok {
		return
	}
	note, ok := h.webOwnedNote(w, r, user)
	if !ok {
		return
	}
	cats, err := h.store.Categories(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, "notes_edit.html", pageData{User: user, Note: note, Categories: cats})
}

func (h *Handler) webNoteEditSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireSessionUser(w, r)
	if !ok {
		return
	}
	note, ok := h.webOwnedNote(w, r, user)
	if !ok {
		return
	}

	note.Title = r.FormValue("title")
	note.Content = r.FormValue("content")
	if categoryID, err := strconv.ParseInt(r.FormValue("category_id"), 10, 64); err == nil {
		note.CategoryID = categoryID
	}
	if _, err := h.store.UpdateNote(r.Context(), *note); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/ui/notes/"+strconv.FormatInt(note.ID, 10), http.StatusFound)
}

func (h *Handler) webNoteDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireSessionUser(w, r)
	if !ok {
		return
	}
	note, ok := h.webOwnedNote(w, r, user)
	if !ok {
		return
	}
	if err := h.store.DeleteNote(r.Context(), note.ID); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.log.Info().Int64("note_id", note.ID).Int64("user_id", user.ID).Msg("note deleted via web")
	http.Redirect(w, r, "/ui/notes", http.StatusFound)
}

func (h *Handler) webChatPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "chat.html", pageData{User: h.sessionUser(r)})
}
