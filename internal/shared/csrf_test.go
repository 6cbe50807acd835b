package shared

import (
	"context"
	"testing"
)

func TestEnsureTokenIsStablePerSession(t *testing.T) {
	manager := NewCSRFManager("secret")
	sess := &Session{ID: "session-a"}
	ctx := context.Background()

	first, err := manager.EnsureToken(ctx, sess)
	if err != nil {
		t.Fatalf("ensure token: %v", err)
	}
	if first == "" {
		t.Fatal("expected a non-empty token")
	}
	second, err := manager.EnsureToken(ctx, sess)
	if err != nil {
		t.Fatalf("ensure token: %v", err)
	}
	if first != second {
		t.Fatal("expected the same token on repeated calls")
	}
}

func TestEnsureTokenDiffersAcrossSessions(t *testing.T) {
	manager := NewCSRFManager("secret")
	ctx := context.Background()

	tokenA, err := manager.EnsureToken(ctx, &Session{ID: "session-a"})
	if err != nil {
		t.Fatalf("ensure token: %v", err)
	}
	tokenB, err := manager.EnsureToken(ctx, &Session{ID: "session-b"})
	if err != nil {
		t.Fatalf("ensure token: %v", err)
	}
	if tokenA == tokenB {
		t.Fatal("expected distinct tokens per session")
	}
}

func TestVerifyToken(t *testing.T) {
	manager := NewCSRFManager("secret")
	sess := &Session{ID: "session-a"}
	ctx := context.Background()

	token, err := manager.EnsureToken(ctx, sess)
	if err != nil {
		t.Fatalf("ensure token: %v", err)
	}

	if err := manager.VerifyToken(ctx, sess, token); err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if err := manager.VerifyToken(ctx, sess, "forged"); err != ErrCSRFTokenMismatch {
		t.Fatalf("expected mismatch error, got %v", err)
	}
	if err := manager.VerifyToken(ctx, sess, ""); err != ErrCSRFTokenMissing {
		t.Fatalf("expected missing error, got %v", err)
	}
	if err := manager.VerifyToken(ctx, nil, token); err != ErrCSRFTokenMissing {
		t.Fatalf("expected missing error for nil session, got %v", err)
	}
}
