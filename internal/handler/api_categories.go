package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/devaloi/noteboard/internal/domain"
	"github.com/devaloi/noteboard/internal/store"
)

type categoryIn struct {
	Name string `json:"name"`
}

func (h *Handler) apiListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.store.Categories(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list categories")
		apiError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *Handler) apiCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		apiError(w, http.StatusBadRequest, "name required")
		return
	}

	cat, err := h.store.CreateCategory(r.Context(), name)
	if errors.Is(err, store.ErrNameTaken) {
		apiError(w, http.StatusBadRequest, "category already exists")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("create category")
		apiError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

func (h *Handler) apiUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	cat, err := h.store.UpdateCategory(r.Context(), pathID(r), strings.TrimSpace(in.Name))
	if errors.Is(err, store.ErrNotFound) {
		apiError(w, http.StatusNotFound, "category not found")
		return
	}
	if errors.Is(err, store.ErrNameTaken) {
		apiError(w, http.StatusBadRequest, "category already exists")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("update category")
		apiError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (h *Handler) apiDeleteCategory(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteCategory(r.Context(), pathID(r))
	switch {
	case errors.Is(err, store.ErrNotFound):
		apiError(w, http.StatusNotFound, "category not found")
	case errors.Is(err, store.ErrCategoryInUse):
		apiError(w, http.StatusConflict, "category is in use")
	case err != nil:
		h.log.Error().Err(err).Msg("delete category")
		apiError(w, http.StatusInternalServerError, "internal error")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
