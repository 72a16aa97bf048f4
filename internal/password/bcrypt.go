package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"login-portal/internal/apperror"
)

// MaxBcryptBytes is the longest password bcrypt consumes. Longer input would
// be silently truncated by the cipher, so it is rejected instead.
const MaxBcryptBytes = 72

type Bcrypt struct {
	cost int
}

func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Bcrypt{cost: cost}, nil
}

func (b *Bcrypt) Hash(plain string) (string, error) {
	if len(plain) > MaxBcryptBytes {
		return "", apperror.NewValidationError(fmt.Sprintf("Password must be at most %d bytes", MaxBcryptBytes))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (b *Bcrypt) Verify(plain, encoded string) bool {
	if len(plain) > MaxBcryptBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plain)) == nil
}
