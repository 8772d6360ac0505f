package security

import (
	"bytes"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

var defaultParams = Argon2Params{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 2,
	KeyLen:  32,
	SaltLen: 16,
}

var ErrMalformedHash = errors.New("malformed password hash")

const argon2Prefix = "$argon2id$"

func HashPassword(password string) ([]byte, error) {
	return HashPasswordWithParams(password, defaultParams)
}

// HashPasswordWithParams encodes as $argon2id$v=19$t=..,m=..,p=..$<salt>$<hash>.
func HashPasswordWithParams(password string, params Argon2Params) ([]byte, error) {
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, params.KeyLen)

	result := fmt.Sprintf("%sv=%d$t=%d,m=%d,p=%d$%s$%s",
		argon2Prefix,
		argon2.Version,
		params.Time, params.Memory, params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)

	return []byte(result), nil
}

// VerifyPassword checks password against an argon2id hash, or against a
// bcrypt hash carried over from the legacy user store.
func VerifyPassword(password string, encodedHash []byte) (bool, error) {
	if isBcrypt(encodedHash) {
		err := bcrypt.CompareHashAndPassword(encodedHash, []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
		}
		return true, nil
	}

	params, salt, hash, err := decodeArgon2(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, params.KeyLen)

	return subtle.ConstantTimeCompare(hash, computed) == 1, nil
}

// NeedsRehash reports whether the stored hash should be replaced by one made with the current parameters.
func NeedsRehash(encodedHash []byte) bool {
	if isBcrypt(encodedHash) {
		return true
	}
	params, _, _, err := decodeArgon2(encodedHash)
	if err != nil {
		return true
	}
	return params.Time != defaultParams.Time ||
		params.Memory != defaultParams.Memory ||
		params.Threads != defaultParams.Threads
}

func decodeArgon2(encodedHash []byte) (Argon2Params, []byte, []byte, error) {
	// "", "argon2id", "v=19", "t=3,m=65536,p=2", salt, hash
	parts := strings.Split(string(encodedHash), "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Argon2Params{}, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Argon2Params{}, nil, nil, fmt.Errorf("%w: unsupported version", ErrMalformedHash)
	}

	var params Argon2Params
	if _, err := fmt.Sscanf(parts[3], "t=%d,m=%d,p=%d", &params.Time, &params.Memory, &params.Threads); err != nil {
		return Argon2Params{}, nil, nil, fmt.Errorf("%w: parameters: %v", ErrMalformedHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Argon2Params{}, nil, nil, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Argon2Params{}, nil, nil, fmt.Errorf("%w: hash: %v", ErrMalformedHash, err)
	}

	// argon2 panics on zero rounds or lanes, and an empty key matches any password
	if len(hash) == 0 || params.Time == 0 || params.Threads == 0 {
		return Argon2Params{}, nil, nil, fmt.Errorf("%w: degenerate parameters", ErrMalformedHash)
	}

	params.KeyLen = uint32(len(hash))
	params.SaltLen = uint32(len(salt))
	return params, salt, hash, nil
}

func isBcrypt(encodedHash []byte) bool {
	return bytes.HasPrefix(encodedHash, []byte("$2a$")) ||
		bytes.HasPrefix(encodedHash, []byte("$2b$")) ||
		bytes.HasPrefix(encodedHash, []byte("$2y$"))
}
