// Package hash implements password hashing on bcrypt. bcrypt embeds a random
// per-call salt in its output and is deliberately slow, which is exactly the
// profile a credential store needs.
package hash

import "golang.org/x/crypto/bcrypt"

type Bcrypt struct {
	cost int
}

// NewBcrypt returns a hasher with the given cost factor. Cost values outside
// bcrypt's supported range fall back to the library default.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash derives a salted hash from plaintext. The salt is generated inside
// bcrypt, so two calls with the same plaintext produce different outputs.
func (b *Bcrypt) Hash(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether plaintext matches hash. bcrypt compares in constant
// time, so partial matches leak nothing through timing.
func (b *Bcrypt) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
