package handler

import (
	"net/http"

	"github.com/google/uuid"
)

// clientCookie identifies a browser so its query notifications reach its own
// event stream.
const clientCookie = "tramboard_client"

// clientID returns the browser's client id, issuing a cookie on first use.
// It must run before the response header is written.
func clientID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(clientCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     clientCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
