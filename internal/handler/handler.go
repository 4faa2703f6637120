package handler

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/devaloi/noteboard/internal/auth"
	"github.com/devaloi/noteboard/internal/chat"
	"github.com/devaloi/noteboard/internal/domain"
	"github.com/devaloi/noteboard/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler bundles the application's HTTP dependencies.
type Handler struct {
	store    store.Store
	tokens   *auth.Manager
	throttle *auth.Throttle
	registry *chat.Registry
	bcast    *chat.Broadcaster
	history  *chat.History
	log      zerolog.Logger
	tmpl     *template.Template
}

// New creates the handler set.
func New(st store.Store, tokens *auth.Manager, throttle *auth.Throttle, registry *chat.Registry, bcast *chat.Broadcaster, history *chat.History, log zerolog.Logger) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Handler{
		store:    st,
		tokens:   tokens,
		throttle: throttle,
		registry: registry,
		bcast:    bcast,
		history:  history,
		log:      log,
		tmpl:     tmpl,
	}, nil
}

// Routes builds the application router.
func (h *Handler) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ping", h.ping).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/register", h.apiRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.apiLogin).Methods(http.MethodPost)
	api.Handle("/auth/me", h.requireToken(h.apiMe)).Methods(http.MethodGet)

	api.Handle("/notes", h.requireToken(h.apiCreateNote)).Methods(http.MethodPost)
	api.Handle("/notes", h.requireToken(h.apiListNotes)).Methods(http.MethodGet)
	api.Handle("/notes/{id:[0-9]+}", h.requireToken(h.apiGetNote)).Methods(http.MethodGet)
	api.Handle("/notes/{id:[0-9]+}", h.requireToken(h.apiUpdateNote)).Methods(http.MethodPut)
	api.Handle("/notes/{id:[0-9]+}", h.requireToken(h.apiDeleteNote)).Methods(http.MethodDelete)

	api.Handle("/categories", h.requireToken(h.apiListCategories)).Methods(http.MethodGet)
	api.Handle("/categories", h.requireAdminToken(h.apiCreateCategory)).Methods(http.MethodPost)
	api.Handle("/categories/{id:[0-9]+}", h.requireAdminToken(h.apiUpdateCategory)).Methods(http.MethodPut)
	api.Handle("/categories/{id:[0-9]+}", h.requireAdminToken(h.apiDeleteCategory)).Methods(http.MethodDelete)

	r.HandleFunc("/login-html", h.webLoginPage).Methods(http.MethodGet)
	r.HandleFunc("/login-html", h.webLoginSubmit).Methods(http.MethodPost)
	r.HandleFunc("/register-html", h.webRegisterPage).Methods(http.MethodGet)
	r.HandleFunc("/register-html", h.webRegisterSubmit).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.webLogout).Methods(http.MethodGet)

	ui := r.PathPrefix("/ui").Subrouter()
	ui.HandleFunc("", h.webIndex).Methods(http.MethodGet)
	ui.HandleFunc("/", h.webIndex).Methods(http.MethodGet)
	ui.HandleFunc("/notes", h.webNotesList).Methods(http.MethodGet)
	ui.HandleFunc("/notes/new", h.webNoteNewPage).Methods(http.MethodGet)
	ui.HandleFunc("/notes/new", h.webNoteNewSubmit).Methods(http.MethodPost)
	ui.HandleFunc("/notes/{id:[0-9]+}", h.webNoteDetail).Methods(http.MethodGet)
	ui.HandleFunc("/notes/{id:[0-9]+}/edit", h.webNoteEditPage).Methods(http.MethodGet)
	ui.HandleFunc("/notes/{id:[0-9]+}/edit", h.webNoteEditSubmit).Methods(http.MethodPost)
	ui.HandleFunc("/notes/{id:[0-9]+}/delete", h.webNoteDelete).Methods(http.MethodPost)

	r.HandleFunc("/chat", h.webChatPage).Methods(http.MethodGet)
	r.HandleFunc("/admin", h.adminPage).Methods(http.MethodGet)
	r.HandleFunc("/ws/anon-chat", h.serveWS)

	return r
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func apiError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// throttleKey identifies a login source for the brute-force guard.
func throttleKey(r *http.Request, email string) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return host + "|" + email
}

type ctxKey int

const userKey ctxKey = iota

// userFrom returns the authenticated user stored by requireToken.
func userFrom(r *http.Request) domain.User {
	u, _ := r.Context().Value(userKey).(domain.User)
	return u
}

// requireToken authenticates a bearer token and loads the user into the
// request context.
func (h *Handler) requireToken(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			apiError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		userID, err := h.tokens.Verify(tokenString)
		if err != nil {
			apiError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		user, err := h.store.UserByID(r.Context(), userID)
		if err != nil {
			apiError(w, http.StatusUnauthorized, "user not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// requireAdminToken is requireToken plus an admin check.
func (h *Handler) requireAdminToken(next http.HandlerFunc) http.Handler {
	return h.requireToken(func(w http.ResponseWriter, r *http.Request) {
		if !userFrom(r).IsAdmin {
			apiError(w, http.StatusForbidden, "admins only")
			return
		}
		next(w, r)
	})
}
