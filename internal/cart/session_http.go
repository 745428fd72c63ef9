package cart

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"FlashIt/pkg/kit"
)

type sessionKey struct{}

func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

func (s *Server) cookieName() string {
	if s.CookieName != "" {
		return s.CookieName
	}
	return defaultCookie
}

// session resolves the shopper's cart session from the X-Cart-Session header
// or the session cookie. Missing or invalid tokens start a new session whose
// token is returned in both places.
func (s *Server) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := s.existingSession(r); ok {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
			return
		}

		id, token, err := s.Sessions.Issue()
		if err != nil {
			if s.Log != nil {
				s.Log.Error("issue cart session failed", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     s.cookieName(),
			Value:    token,
			Path:     "/",
			MaxAge:   int(s.Sessions.TTL().Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		w.Header().Set(SessionHeader, token)

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}

func (s *Server) existingSession(r *http.Request) (string, bool) {
	token := r.Header.Get(SessionHeader)
	if token == "" {
		if ck, err := r.Cookie(s.cookieName()); err == nil {
			token = ck.Value
		}
	}
	if token == "" {
		return "", false
	}

	id, err := s.Sessions.Parse(token)
	if err != nil {
		return "", false
	}
	return id, true
}
