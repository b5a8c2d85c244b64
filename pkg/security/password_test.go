package security

import (
	"testing"

	"github.com/latsops/pos-backend/pkg/config"
)

func TestHashAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := config.PasswordConfig{ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}

	hash, err := HashPassword("till-operator-pw", cfg)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	ok, err := VerifyPassword("till-operator-pw", hash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected password to verify")
	}

	ok, err = VerifyPassword("wrong", hash)
	if err != nil {
		t.Fatalf("verify wrong: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch")
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	t.Parallel()

	if _, err := VerifyPassword("pw", "$md5$nope"); err == nil {
		t.Fatalf("expected error for malformed hash")
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	t.Parallel()

	if _, err := HashPassword("", config.PasswordConfig{}); err == nil {
		t.Fatalf("expected error for empty password")
	}
}
