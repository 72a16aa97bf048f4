package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2Params are the tunables encoded into every argon2id hash.
type Argon2Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Time:        1,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

type Argon2id struct {
	params Argon2Params
}

func NewArgon2id(params Argon2Params) (*Argon2id, error) {
	switch {
	case params.Memory < 8:
		return nil, errors.New("argon2id memory must be at least 8 KiB")
	case params.Time < 1:
		return nil, errors.New("argon2id time must be at least 1")
	case params.Parallelism < 1:
		return nil, errors.New("argon2id parallelism must be at least 1")
	case params.SaltLength < 16:
		return nil, errors.New("argon2id salt must be at least 16 bytes")
	case params.KeyLength < 16:
		return nil, errors.New("argon2id key must be at least 16 bytes")
	}
	return &Argon2id{params: params}, nil
}

func (a *Argon2id) Hash(plain string) (string, error) {
	salt := make([]byte, a.params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	key := argon2.IDKey([]byte(plain), salt, a.params.Time, a.params.Memory, a.params.Parallelism, a.params.KeyLength)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		AlgorithmArgon2id,
		argon2.Version,
		a.params.Memory,
		a.params.Time,
		a.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (a *Argon2id) Verify(plain, encoded string) bool {
	params, salt, key, err := decodeArgon2id(encoded)
	if err != nil {
		return false
	}
	computed := argon2.IDKey([]byte(plain), salt, params.Time, params.Memory, params.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(computed, key) == 1
}

// decodeArgon2id parses $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>.
func decodeArgon2id(encoded string) (Argon2Params, []byte, []byte, error) {
	var params Argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != AlgorithmArgon2id {
		return params, nil, nil, errors.New("invalid argon2id hash format")
	}

	version, ok := strings.CutPrefix(parts[2], "v=")
	if !ok {
		return params, nil, nil, errors.New("missing argon2id version")
	}
	if v, err := strconv.Atoi(version); err != nil || v != argon2.Version {
		return params, nil, nil, fmt.Errorf("unsupported argon2id version %q", version)
	}

	for _, kv := range strings.Split(parts[3], ",") {
		name, value, found := strings.Cut(kv, "=")
		if !found {
			return params, nil, nil, fmt.Errorf("invalid argon2id parameter %q", kv)
		}
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return params, nil, nil, fmt.Errorf("invalid argon2id parameter %q: %w", kv, err)
		}
		switch name {
		case "m":
			params.Memory = uint32(n)
		case "t":
			params.Time = uint32(n)
		case "p":
			if n == 0 || n > 255 {
				return params, nil, nil, fmt.Errorf("invalid argon2id parallelism %d", n)
			}
			params.Parallelism = uint8(n)
		default:
			return params, nil, nil, fmt.Errorf("unknown argon2id parameter %q", name)
		}
	}
	if params.Memory == 0 || params.Time == 0 || params.Parallelism == 0 {
		return params, nil, nil, errors.New("incomplete argon2id parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, fmt.Errorf("decode salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return params, nil, nil, errors.New("decode argon2id key")
	}
	params.SaltLength = uint32(len(salt))
	params.KeyLength = uint32(len(key))
	return params, salt, key, nil
}
