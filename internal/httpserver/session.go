// internal/httpserver/session.go
//
// Anonymous browser sessions.
// A session is a UUID carried in an HS256 JWT inside an HttpOnly cookie, so
// a client cannot pick another session's id. There are no user accounts.

package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jeopardy/internal/game"
)

const sessionCookieName = "jeopardy_session"

// sessionLifetime bounds the cookie; the server drops idle sessions sooner.
const sessionLifetime = 7 * 24 * time.Hour

var errNoSession = errors.New("no session")

type sessionSigner struct {
	secret []byte
	secure bool
}

// sign creates a token for session id.
func (s *sessionSigner) sign(id string) (string, time.Time, error) {
	exp := time.Now().Add(sessionLifetime)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString(s.secret)
	return ss, exp, err
}

// parse validates a token and returns its session id.
func (s *sessionSigner) parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return "", fmt.Errorf("%w: %v", errNoSession, err)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("%w: bad subject", errNoSession)
	}
	return claims.Subject, nil
}

// sessionID returns the caller's session id, issuing a cookie when missing or invalid.
func (s *sessionSigner) sessionID(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		if id, err := s.parse(c.Value); err == nil {
			return id, nil
		}
		log.Debug().Msg("discarding invalid session cookie")
	}

	id := uuid.NewString()
	tok, exp, err := s.sign(id)
	if err != nil {
		return "", err
	}
	sameSite := http.SameSiteLaxMode
	if s.secure {
		sameSite = http.SameSiteStrictMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: sameSite,
		Expires:  exp,
	})
	return id, nil
}

// controller returns the caller's controller, creating one on first use.
func (s *Server) controller(w http.ResponseWriter, r *http.Request) (*game.Controller, error) {
	id, err := s.sessions.sessionID(w, r)
	if err != nil {
		return nil, err
	}
	if c, err := s.store.Get(r.Context(), id); err == nil {
		return c, nil
	}
	c := game.NewController(id, s.builder, nil)
	if err := s.store.Save(r.Context(), c); err != nil {
		return nil, err
	}
	log.Info().Str("session", id).Int("live", s.store.Len()).Msg("session created")
	return c, nil
}
