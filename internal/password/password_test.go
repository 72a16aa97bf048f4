package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"login-portal/internal/apperror"
)

var testArgon2Params = Argon2Params{
	Memory:      8 * 1024,
	Time:        1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func testHashers(t *testing.T) map[string]Hasher {
	t.Helper()
	b, err := NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)
	a, err := NewArgon2id(testArgon2Params)
	require.NoError(t, err)
	return map[string]Hasher{"bcrypt": b, "argon2id": a}
}

func TestRoundTrip(t *testing.T) {
	passwords := []string{
		"Secr3t!",
		"x",
		"pässwörd ✓ 密码 🔑",
		" leading and trailing ",
		strings.Repeat("a", MaxBcryptBytes),
		strings.Repeat("é", MaxBcryptBytes/2),
	}

	for name, h := range testHashers(t) {
		t.Run(name, func(t *testing.T) {
			for _, pw := range passwords {
				encoded, err := h.Hash(pw)
				require.NoError(t, err)
				if len(pw) > 4 {
					assert.NotContains(t, encoded, pw)
				}
				assert.True(t, h.Verify(pw, encoded), "exact password must verify: %q", pw)

				for _, other := range []string{pw + "x", strings.TrimSpace(pw), strings.ToUpper(pw), ""} {
					if other == pw {
						continue
					}
					assert.False(t, h.Verify(other, encoded), "%q must not verify against hash of %q", other, pw)
				}
			}
		})
	}
}

func TestHashIsSalted(t *testing.T) {
	for name, h := range testHashers(t) {
		t.Run(name, func(t *testing.T) {
			a, err := h.Hash("same")
			require.NoError(t, err)
			b, err := h.Hash("same")
			require.NoError(t, err)
			assert.NotEqual(t, a, b)
		})
	}
}

func TestBcryptRejectsOverlongPassword(t *testing.T) {
	h, err := NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)

	_, err = h.Hash(strings.Repeat("a", MaxBcryptBytes+1))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.ValidationError))

	encoded, err := h.Hash(strings.Repeat("a", MaxBcryptBytes))
	require.NoError(t, err)
	assert.False(t, h.Verify(strings.Repeat("a", MaxBcryptBytes+1), encoded))
}

func TestArgon2idRejectsMalformedHash(t *testing.T) {
	h, err := NewArgon2id(testArgon2Params)
	require.NoError(t, err)

	for _, bad := range []string{
		"",
		"$2a$10$abcdefghijklmnopqrstuv",
		"$argon2id$v=19$m=8192,t=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5",
	} {
		assert.False(t, h.Verify("pw", bad), bad)
	}
}

func TestNewSelectsAlgorithm(t *testing.T) {
	h, err := New("", bcrypt.MinCost)
	require.NoError(t, err)
	assert.IsType(t, &Bcrypt{}, h)

	h, err = New("ARGON2ID", 2)
	require.NoError(t, err)
	require.IsType(t, &Argon2id{}, h)
	assert.Equal(t, uint32(2), h.(*Argon2id).params.Time)

	_, err = New("md5", 0)
	assert.Error(t, err)

	_, err = NewBcrypt(bcrypt.MaxCost + 1)
	assert.Error(t, err)
}
