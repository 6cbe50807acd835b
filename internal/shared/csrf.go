package shared

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

const (
	// CSRFSessionKey is where the active token lives inside the session.
	CSRFSessionKey = "csrf_token"
	// CSRFFormField is the hidden input name every mutating form submits.
	CSRFFormField = "csrf_token"
)

// CSRFManager mints per-session tokens for the entry forms. A token is an
// HMAC over the session ID and a random nonce, so tokens cannot be replayed
// across sessions even if one leaks.
type CSRFManager struct {
	secret []byte
}

// NewCSRFManager returns a manager keyed with the given secret.
func NewCSRFManager(secret string) *CSRFManager {
	return &CSRFManager{secret: []byte(secret)}
}

// EnsureToken returns the session's token, minting one on first use.
func (m *CSRFManager) EnsureToken(ctx context.Context, sess *Session) (string, error) {
	if sess == nil {
		return "", errors.New("session missing")
	}
	if token := sess.Get(CSRFSessionKey); token != "" {
		return token, nil
	}
	token, err := m.mintToken(sess.ID)
	if err != nil {
		return "", err
	}
	sess.Set(CSRFSessionKey, token)
	return token, nil
}

// VerifyToken checks a submitted token against the session token in
// constant time.
func (m *CSRFManager) VerifyToken(ctx context.Context, sess *Session, token string) error {
	if sess == nil {
		return ErrCSRFTokenMissing
	}
	stored := sess.Get(CSRFSessionKey)
	if stored == "" || token == "" {
		return ErrCSRFTokenMissing
	}
	if !hmac.Equal([]byte(stored), []byte(token)) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

func (m *CSRFManager) mintToken(sessionID string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write([]byte(sessionID))
	_, _ = mac.Write(nonce)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nonce)), nil
}
