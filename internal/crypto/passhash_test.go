package crypto

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *BcryptHasher {
	t.Helper()
	h, err := NewBcryptHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcryptHasher: %v", err)
	}
	return h
}

func TestNewBcryptHasher_CostRange(t *testing.T) {
	t.Parallel()

	if _, err := NewBcryptHasher(bcrypt.MinCost - 1); err == nil {
		t.Fatalf("want error for cost below minimum")
	}
	if _, err := NewBcryptHasher(bcrypt.MaxCost + 1); err == nil {
		t.Fatalf("want error for cost above maximum")
	}
	h, err := NewBcryptHasher(DefaultCost)
	if err != nil {
		t.Fatalf("default cost: %v", err)
	}
	if h.Cost() != DefaultCost {
		t.Fatalf("cost=%d, want=%d", h.Cost(), DefaultCost)
	}
}

func TestHash_SaltedAndUsesCost(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	h1, err := h.Hash("p@ssw0rd")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	h2, err := h.Hash("p@ssw0rd")
	if err != nil {
		t.Fatalf("Hash(2): %v", err)
	}
	if h1 == h2 {
		t.Fatalf("same password hashed twice to the same value: salt missing")
	}
	if strings.Contains(h1, "p@ssw0rd") {
		t.Fatalf("hash contains plaintext")
	}
	cost, err := bcrypt.Cost([]byte(h1))
	if err != nil || cost != bcrypt.MinCost {
		t.Fatalf("cost=%d err=%v", cost, err)
	}
	if !h.Verify("p@ssw0rd", h1) || !h.Verify("p@ssw0rd", h2) {
		t.Fatalf("both hashes must verify")
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	hash, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !h.Verify("correct horse battery staple", hash) {
		t.Fatalf("Verify: expected true for correct password")
	}
	if h.Verify("wrong", hash) {
		t.Fatalf("Verify: expected false for wrong password")
	}
	if h.Verify("", hash) {
		t.Fatalf("Verify: expected false for empty password")
	}
	for _, bad := range []string{"", "invalid_hash", "$2a$10$short", "$2a$99$" + strings.Repeat("x", 53)} {
		if h.Verify("correct horse battery staple", bad) {
			t.Fatalf("Verify: expected false for malformed hash %q", bad)
		}
	}
}

func TestHash_LongPasswordTruncatedTo72Bytes(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	base := strings.Repeat("a", 72)
	hash, err := h.Hash(base + "tail-one")
	if err != nil {
		t.Fatalf("Hash long: %v", err)
	}
	if !h.Verify(base+"tail-two", hash) {
		t.Fatalf("bytes past 72 must not affect verification")
	}
	if h.Verify(strings.Repeat("a", 71)+"b", hash) {
		t.Fatalf("bytes within 72 must affect verification")
	}
}
