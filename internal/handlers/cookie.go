package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/ffacttt-hash/frontend/internal/env"
)

// The search session cookie is scoped to the session's own path, so each
// tab holds the token for its session only.
const sessionCookieName = "search_session"

func (h *Handler) sessionToken(id string) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}

func (h *Handler) ownsSession(r *http.Request, id string) bool {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Value), []byte(h.sessionToken(id))) == 1
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    h.sessionToken(id),
		Path:     sessionPath(id),
		HttpOnly: true,
		SameSite: sameSite(),
		Secure:   secure(),
	})
}

func clearSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     sessionPath(id),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: sameSite(),
		Secure:   secure(),
	})
}

func sessionPath(id string) string {
	return "/search/sessions/" + id
}

func sameSite() http.SameSite {
	switch env.Current {
	case env.Production:
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}

func secure() bool {
	switch env.Current {
	case env.Production:
		return true
	default:
		return false
	}
}
