package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/devaloi/noteboard/internal/auth"
	"github.com/devaloi/noteboard/internal/store"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *Handler) apiRegister(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	email := normalizeEmail(in.Email)
	if email == "" || len(in.Password) < 6 {
		apiError(w, http.StatusBadRequest, "email and password (min 6 chars) required")
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "internal error")
		return
	}
	user, err := h.store.CreateUser(r.Context(), email, hash, false)
	if errors.Is(err, store.ErrEmailTaken) {
		apiError(w, http.StatusBadRequest, "email already registered")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("create user")
		apiError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.log.Info().Int64("user_id", user.ID).Msg("user registered")
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) apiLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	email := normalizeEmail(in.Email)
	key := throttleKey(r, email)
	if h.throttle.Blocked(key) {
		apiError(w, http.StatusTooManyRequests, "too many failed attempts, try again later")
		return
	}

	user, err := h.store.UserByEmail(r.Context(), email)
	if err != nil || !auth.VerifyPassword(in.Password, user.PasswordHash) {
		h.throttle.Fail(key)
		h.log.Warn().Str("email", email).Msg("login failed")
		apiError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	h.throttle.Reset(key)

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) apiMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r))
}
