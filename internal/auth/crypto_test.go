package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal plaintext")
	}

	if err := VerifyPassword("s3cret", hash); err != nil {
		t.Errorf("VerifyPassword failed for correct password: %v", err)
	}
	if err := VerifyPassword("wrong", hash); err == nil {
		t.Error("VerifyPassword accepted wrong password")
	}
}

func TestConstantTimeEquals(t *testing.T) {
	if !ConstantTimeEquals("admin", "admin") {
		t.Error("equal strings reported unequal")
	}
	if ConstantTimeEquals("admin", "Admin") {
		t.Error("unequal strings reported equal")
	}
	if ConstantTimeEquals("admin", "admin ") {
		t.Error("different lengths reported equal")
	}
}
