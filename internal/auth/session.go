package auth

import "net/http"

const sessionCookie = "noteboard_session"

// SetSession writes the HTML session cookie for userID. The cookie value
// is a signed token from the same manager that issues API tokens.
func (m *Manager) SetSession(w http.ResponseWriter, userID int64) error {
	token, err := m.Issue(userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl.Seconds()),
	})
	return nil
}

// ClearSession expires the session cookie.
func (m *Manager) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// SessionUserID extracts and verifies the user id from the session cookie.
func (m *Manager) SessionUserID(r *http.Request) (int64, error) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return m.Verify(c.Value)
}
