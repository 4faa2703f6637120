package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/devaloi/noteboard/internal/domain"
	"github.com/devaloi/noteboard/internal/store"
)

type noteCreate struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CategoryID int64  `json:"category_id"`
}

type noteUpdate struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	CategoryID *int64  `json:"category_id"`
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

// ownedNote loads the note and enforces ownership. Foreign notes are
// indistinguishable from missing ones.
func (h *Handler) ownedNote(w http.ResponseWriter, r *http.Request) (domain.Note, bool) {
	note, err := h.store.NoteByID(r.Context(), pathID(r))
	if errors.Is(err, store.ErrNotFound) || (err == nil && note.OwnerID != userFrom(r).ID) {
		apiError(w, http.StatusNotFound, "note not found")
		return domain.Note{}, false
	}
	if err != nil {
		h.log.Error().Err(err).Msg("load note")
		apiError(w, http.StatusInternalServerError, "internal error")
		return domain.Note{}, false
	}
	return note, true
}

func (h *Handler) apiCreateNote(w http.ResponseWriter, r *http.Request) {
	var in noteCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if in.Title == "" || in.Content == "" {
		apiError(w, http.StatusBadRequest, "title and content required")
		return
	}
	if _, err := h.store.CategoryByID(r.Context(), in.CategoryID); err != nil {
		apiError(w, http.StatusBadRequest, "category does not exist")
		return
	}

	user := userFrom(r)
	note, err := h.store.CreateNote(r.Context(), in.Title, in.Content, user.ID, in.CategoryID)
	if err != nil {
		h.log.Error().Err(err).Msg("create note")
		apiError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.log.Info().Int64("note_id", note.ID).Int64("user_id", user.ID).Msg("note created")
	writeJSON(w, http.StatusCreated, note)
}

func (h *Handler) apiListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.store.NotesByOwner(r.Context(), userFrom(r).ID)
	if err != nil {
		h.log.Error().Err(err).Msg("list notes")
		apiError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *Handler) apiGetNote(w http.ResponseWriter, r *http.Request) {
	note, ok := h.ownedNote(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *Handler) apiUpdateNote(w http.ResponseWriter, r *http.Request) {
	note, ok := h.ownedNote(w, r)
	if !ok {
		return
	}

	var in noteUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if in.Title != nil {
		note.Title = *in.Title
	}
	if in.Content != nil {
		note.Content = *in.Content
	}
	if in.CategoryID != nil {
		if _, err := h.store.CategoryByID(r.Context(), *in.CategoryID); err != nil {
			apiError(w, http.StatusBadRequest, "category does not exist")
			return
		}
		note.CategoryID = *in.CategoryID
	}

	updated, err := h.store.UpdateNote(r.Context(), note)
	if err != nil {
		h.log.Error().Err(err).Msg("update note")
		apiError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) apiDeleteNote(w http.ResponseWriter, r *http.Request) {
	note, ok := h.ownedNote(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteNote(r.Context(), note.ID); err != nil {
		h.log.Error().Err(err).Msg("delete note")
		apiError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
