// Package password hashes and verifies user passwords with salted, adaptive
// one-way functions. Every encoded hash embeds its own salt and cost, so
// verification needs only the stored string and the candidate password.
package password

import (
	"fmt"
	"strings"
)

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// Hasher produces and checks encoded password hashes.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encoded string) bool
}

// New returns the hasher named by algorithm. cost is the bcrypt cost or the
// argon2id time parameter; zero selects the default.
func New(algorithm string, cost int) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmBcrypt:
		return NewBcrypt(cost)
	case AlgorithmArgon2id:
		params := DefaultArgon2Params
		if cost > 0 {
			params.Time = uint32(cost)
		}
		return NewArgon2id(params)
	default:
		return nil, fmt.Errorf("unsupported password algorithm %q", algorithm)
	}
}
