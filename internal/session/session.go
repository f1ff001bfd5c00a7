// Package session issues and resolves staff sessions. A session is an explicit
// value carried in a signed token; there is no process-wide current user.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"pub_pos_backend/internal/models"
)

const issuer = "pub-pos-backend"

var (
	ErrInvalidToken = errors.New("invalid or expired session token")
	ErrRevoked      = errors.New("session has been logged out")
)

// Session identifies the signed-in staff member and the role that gates their screens.
type Session struct {
	ID        string           `json:"id"`
	StaffID   string           `json:"staffId"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      models.StaffRole `json:"role"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

// Allows reports whether the session may act as any of roles. Superadmin may act as every role.
func (s *Session) Allows(roles ...models.StaffRole) bool {
	for _, r := range roles {
		if s.Role.Satisfies(r) {
			return true
		}
	}
	return false
}

// Claims defines the JWT claims structure
type Claims struct {
	StaffID string `json:"staff_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs sessions and remembers logged-out token ids until they expire.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// Issue creates a session for staff. The session role is the record's role, so a
// superadmin signing in through another role's screen stays superadmin.
func (m *Manager) Issue(staff models.Staff) (string, *Session, error) {
	now := m.now()
	sess := &Session{
		ID:        uuid.NewString(),
		StaffID:   staff.ID,
		Name:      staff.Name,
		Email:     staff.Email,
		Role:      staff.Role,
		ExpiresAt: now.Add(m.ttl).Truncate(time.Second),
	}

	claims := &Claims{
		StaffID: sess.StaffID,
		Name:    sess.Name,
		Email:   sess.Email,
		Role:    string(sess.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.StaffID,
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, sess, nil
}

// Parse validates a token and returns its session.
func (m *Manager) Parse(tokenString string) (*Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	role, ok := models.ParseStaffRole(claims.Role)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}

	m.mu.Lock()
	_, revoked := m.revoked[claims.ID]
	m.mu.Unlock()
	if revoked {
		return nil, ErrRevoked
	}

	sess := &Session{
		ID:      claims.ID,
		StaffID: claims.StaffID,
		Name:    claims.Name,
		Email:   claims.Email,
		Role:    role,
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

// Revoke ends a session before its expiry.
func (m *Manager) Revoke(sess *Session) {
	if sess == nil || sess.ID == "" {
		return
	}
	m.mu.Lock()
	m.revoked[sess.ID] = sess.ExpiresAt
	m.mu.Unlock()
}

// PurgeRevoked forgets revoked ids whose tokens have expired anyway.
func (m *Manager) PurgeRevoked() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, exp := range m.revoked {
		if now.After(exp) {
			delete(m.revoked, id)
			n++
		}
	}
	return n
}
