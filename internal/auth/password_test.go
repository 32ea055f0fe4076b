package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashingLifecycle(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)

	password := "S3curePass!"
	hash, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("unexpected error hashing password: %v", err)
	}
	if hash == "" {
		t.Fatal("expected hash to be populated")
	}
	if hash == password {
		t.Fatal("hash must not equal the plaintext")
	}

	if err := hasher.Verify(hash, password); err != nil {
		t.Fatalf("expected password to verify, got error: %v", err)
	}

	if err := hasher.Verify(hash, "wrong"); err == nil {
		t.Fatal("expected verification to fail for wrong password")
	}
}

func TestVerifyRejectsTamperedHash(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("original")
	if err != nil {
		t.Fatalf("unexpected error hashing password: %v", err)
	}

	// Flip the last character of the digest.
	tampered := []byte(hash)
	if tampered[len(tampered)-1] == 'a' {
		tampered[len(tampered)-1] = 'b'
	} else {
		tampered[len(tampered)-1] = 'a'
	}

	if err := hasher.Verify(string(tampered), "original"); err == nil {
		t.Fatal("expected verification to fail for tampered hash")
	}
}

func TestHasherRejectsEmptyInputs(t *testing.T) {
	hasher := NewHasher(0)
	if _, err := hasher.Hash("   "); err == nil {
		t.Fatal("expected error for blank password")
	}
	if err := hasher.Verify("", "secret"); err == nil {
		t.Fatal("expected error for empty stored hash")
	}
}

func TestHasherCostClamping(t *testing.T) {
	tests := []struct {
		name string
		cost int
		want int
	}{
		{name: "zero selects default", cost: 0, want: bcrypt.DefaultCost},
		{name: "below minimum", cost: 2, want: bcrypt.MinCost},
		{name: "above maximum", cost: 99, want: bcrypt.MaxCost},
		{name: "in range", cost: 12, want: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewHasher(tt.cost).Cost(); got != tt.want {
				t.Fatalf("expected cost %d, got %d", tt.want, got)
			}
		})
	}
}
