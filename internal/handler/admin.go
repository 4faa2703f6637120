package handler

import "net/http"

// adminPage renders the admin console: all users, categories and notes.
// Requires an admin session.
func (h *Handler) adminPage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireSessionUser(w, r)
	if !ok {
		return
	}
	if !user.IsAdmin {
		http.Error(w, "admins only", http.StatusForbidden)
		return
	}

	users, err := h.store.Users(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	cats, err := h.store.Categories(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	notes, err := h.store.Notes(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.render(w, "admin.html", pageData{User: user, Users: users, Categories: cats, Notes: notes})
}
