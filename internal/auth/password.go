package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes credentials with bcrypt at a fixed, clamped cost. bcrypt
// embeds the salt in the digest and compares in constant time, so a Hasher
// carries no other state.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher. A non-positive cost selects bcrypt.DefaultCost;
// out-of-range values are clamped to what the algorithm accepts.
func NewHasher(cost int) *Hasher {
	switch {
	case cost <= 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// Cost returns the effective bcrypt cost.
func (h *Hasher) Cost() int {
	if h == nil {
		return bcrypt.DefaultCost
	}
	return h.cost
}

// Hash 对明文密码进行哈希处理
func (h *Hasher) Hash(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password must not be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost())
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify 验证密码是否与存储的哈希值匹配
func (h *Hasher) Verify(hash, candidate string) error {
	if strings.TrimSpace(hash) == "" {
		return errors.New("stored password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate))
}
