package server

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookie is the name of the cookie carrying the signed session token.
const SessionCookie = "ct_session"

// DefaultSessionTTL is how long a session cookie stays valid.
const DefaultSessionTTL = 12 * time.Hour

// ErrNoPassword is returned by NewCredentials when the password is empty.
var ErrNoPassword = errors.New("admin password is required")

// Credentials holds the single admin identity. It is built once at startup and
// never modified afterwards.
type Credentials struct {
	user string
	hash []byte
}

// NewCredentials hashes password with bcrypt at the given cost. A zero cost
// uses bcrypt.DefaultCost.
func NewCredentials(user, password string, cost int) (*Credentials, error) {
	if password == "" {
		return nil, ErrNoPassword
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &Credentials{user: user, hash: hash}, nil
}

// User returns the admin user name.
func (c *Credentials) User() string { return c.user }

// Verify reports whether user and password match. The bcrypt comparison runs
// for every call, whether or not the user name matches.
func (c *Credentials) Verify(user, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(c.user)) == 1
	passOK := bcrypt.CompareHashAndPassword(c.hash, []byte(password)) == nil
	return userOK && passOK
}

// sessions issues and checks HS256 session tokens.
type sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func (s *sessions) issue(user string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, exp, nil
}

// verify returns the token subject if the token is validly signed and unexpired.
func (s *sessions) verify(tok string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tok, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// requireAuth admits requests carrying a valid session cookie or correct basic
// auth credentials. Successful basic auth starts a session when sessions are
// enabled. Everything else gets 401 with a basic auth challenge.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.sessions != nil {
			if ck, err := r.Cookie(SessionCookie); err == nil {
				if sub, err := s.sessions.verify(ck.Value); err == nil && sub == s.creds.User() {
					next(w, r)
					return
				}
				s.logger.Debug("session rejected", "remote", r.RemoteAddr)
			}
		}

		user, pass, ok := r.BasicAuth()
		if !ok || !s.creds.Verify(user, pass) {
			if ok {
				s.logger.Warn("authentication failed", "remote", r.RemoteAddr, "user", user)
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="`+Realm+`"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if s.sessions != nil {
			s.startSession(w, user)
		}
		next(w, r)
	}
}

func (s *Server) startSession(w http.ResponseWriter, user string) {
	tok, exp, err := s.sessions.issue(user)
	if err != nil {
		s.logger.Error("issue session", "err", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    tok,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
