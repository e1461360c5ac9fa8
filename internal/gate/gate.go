// Package gate implements the office access gate: a single shared passphrase
// exchanged for an opaque session token. It is a convenience barrier for the
// management console, not an authentication system.
package gate

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"os"
	"sync"
)

// EnvPassphrase configures the shared passphrase. When unset the gate
// refuses every attempt.
const EnvPassphrase = "MEDGHOR_OFFICE_PASSPHRASE"

// ErrDenied is returned for a wrong or missing passphrase.
var ErrDenied = errors.New("gate: access denied")

// Gate grants and validates office session tokens.
type Gate interface {
	// Grant exchanges the shared passphrase for a session token.
	Grant(passphrase string) (string, error)
	// Check reports whether the token is a live session.
	Check(token string) bool
	// Revoke ends the session for the given token. Unknown tokens are a
	// no-op.
	Revoke(token string)
}

// SharedSecret is an in-memory Gate keyed by one passphrase. Tokens survive
// until revoked or the process restarts, mirroring a client-side persisted
// flag.
type SharedSecret struct {
	passphrase string
	mu         sync.RWMutex
	tokens     map[string]struct{}
}

var _ Gate = (*SharedSecret)(nil)

// NewSharedSecret constructs a gate around the given passphrase. An empty
// passphrase disables the gate: Grant always fails.
func NewSharedSecret(passphrase string) *SharedSecret {
	return &SharedSecret{
		passphrase: passphrase,
		tokens:     make(map[string]struct{}),
	}
}

// OpenFromEnv constructs a gate from MEDGHOR_OFFICE_PASSPHRASE.
func OpenFromEnv() *SharedSecret {
	return NewSharedSecret(os.Getenv(EnvPassphrase))
}

// Grant compares the passphrase in constant time and mints a fresh token on
// success.
func (g *SharedSecret) Grant(passphrase string) (string, error) {
	if g.passphrase == "" {
		return "", ErrDenied
	}
	if subtle.ConstantTimeCompare([]byte(passphrase), []byte(g.passphrase)) != 1 {
		return "", ErrDenied
	}
	token := newToken()
	g.mu.Lock()
	g.tokens[token] = struct{}{}
	g.mu.Unlock()
	return token, nil
}

// Check reports whether token identifies a live session.
func (g *SharedSecret) Check(token string) bool {
	if token == "" {
		return false
	}
	g.mu.RLock()
	_, ok := g.tokens[token]
	g.mu.RUnlock()
	return ok
}

// Revoke drops the session for token.
func (g *SharedSecret) Revoke(token string) {
	g.mu.Lock()
	delete(g.tokens, token)
	g.mu.Unlock()
}

func newToken() string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		panic("gate: entropy unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
