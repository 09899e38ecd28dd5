// Package session keeps the logged-in user id in a signed cookie and carries
// one-shot flash notices between requests.
package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "recipebox"

// Secret is the HMAC key for session tokens.
type Secret []byte

// NewSecret returns 32 random bytes. The secret lives for the process only,
// so every restart logs everyone out.
func NewSecret() (Secret, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	return b, nil
}

// Options control the session cookie.
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager reads and writes the session cookie.
type Manager struct {
	secret Secret
	opts   Options
	now    func() time.Time
}

func NewManager(secret Secret, opts Options) *Manager {
	return &Manager{secret: secret, opts: opts, now: time.Now}
}

// Set issues a token for userID and stores it in the cookie.
func (m *Manager) Set(c *gin.Context, userID uuid.UUID) error {
	token, err := m.Issue(userID)
	if err != nil {
		return err
	}
	m.write(c, token, int(m.opts.TTL.Seconds()))
	return nil
}

// Get returns the user id from a valid session cookie. A missing, tampered,
// expired or wrongly signed cookie reads as no session.
func (m *Manager) Get(c *gin.Context) (uuid.UUID, bool) {
	raw, err := c.Cookie(m.opts.CookieName)
	if err != nil || raw == "" {
		return uuid.Nil, false
	}
	id, err := m.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Clear expires the session cookie.
func (m *Manager) Clear(c *gin.Context) {
	m.write(c, "", -1)
}

// Issue signs a token carrying userID as subject.
func (m *Manager) Issue(userID uuid.UUID) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.opts.TTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.secret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Parse verifies a token and returns its subject.
func (m *Manager) Parse(raw string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(m.secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errors.New("invalid session subject")
	}
	return id, nil
}

func (m *Manager) write(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   m.opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
