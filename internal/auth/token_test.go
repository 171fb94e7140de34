package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndValidate(t *testing.T) {
	issuer := NewTokenIssuer("test-key", 24)

	token, err := issuer.Issue(42, "riverside", "school")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.AccountID != 42 || claims.Username != "riverside" || claims.Role != "school" {
		t.Errorf("claims mismatch: %+v", claims)
	}
	if claims.ExpiresAt == nil {
		t.Error("expected absolute expiry on token")
	}
}

func TestValidateMissingToken(t *testing.T) {
	issuer := NewTokenIssuer("test-key", 24)
	if _, err := issuer.Validate(""); err != ErrMissingToken {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}
}

func TestValidateWrongKey(t *testing.T) {
	issuer := NewTokenIssuer("test-key", 24)
	other := NewTokenIssuer("other-key", 24)

	token, _ := issuer.Issue(1, "riverside", "school")
	if _, err := other.Validate(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for wrong key, got %v", err)
	}
}

func TestValidateMalformed(t *testing.T) {
	issuer := NewTokenIssuer("test-key", 24)
	if _, err := issuer.Validate("not.a.token"); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}

func TestValidateExpired(t *testing.T) {
	// TTL of -1 hour puts the expiry in the past
	issuer := NewTokenIssuer("test-key", -1)

	token, err := issuer.Issue(1, "riverside", "school")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := issuer.Validate(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestValidateRejectsWrongAlgorithm(t *testing.T) {
	issuer := NewTokenIssuer("test-key", 24)

	// alg "none" tokens must never validate
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{AccountID: 1, Role: "admin"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build unsigned token: %v", err)
	}

	if _, err := issuer.Validate(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for alg=none, got %v", err)
	}
}

func TestAdminToken(t *testing.T) {
	issuer := NewTokenIssuer("test-key", 24)

	token, _ := issuer.Issue(0, "admin", "admin")
	claims, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.AccountID != 0 || claims.Role != "admin" {
		t.Errorf("admin claims mismatch: %+v", claims)
	}
}
