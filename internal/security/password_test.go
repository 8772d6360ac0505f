package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// cheap parameters keep the suite fast
var testParams = Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 16, SaltLen: 8}

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPasswordWithParams("secret1!", testParams)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(hash), "$argon2id$v=19$t=1,m=1024,p=1$"))
	assert.NotContains(t, string(hash), "secret1!")

	ok, err := VerifyPassword("secret1!", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashIsSalted(t *testing.T) {
	first, err := HashPasswordWithParams("same", testParams)
	require.NoError(t, err)
	second, err := HashPasswordWithParams("same", testParams)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestVerifyLegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("secret1!"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := VerifyPassword("secret1!", legacy)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("nope", legacy)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, NeedsRehash(legacy))
}

func TestVerifyMalformed(t *testing.T) {
	_, err := VerifyPassword("x", []byte("plaintext"))
	assert.ErrorIs(t, err, ErrMalformedHash)

	_, err = VerifyPassword("x", []byte("$argon2id$v=19$t=1,m=1024,p=1$!!!$abc"))
	assert.ErrorIs(t, err, ErrMalformedHash)
}

func TestVerifyRejectsDegenerateArgon2(t *testing.T) {
	tests := map[string]string{
		"empty key":   "$argon2id$v=19$t=1,m=1024,p=1$c2FsdHNhbHQ$",
		"zero lanes":  "$argon2id$v=19$t=1,m=1024,p=0$c2FsdHNhbHQ$AAAAAAAAAAAAAAAAAAAAAA",
		"zero rounds": "$argon2id$v=19$t=0,m=1024,p=1$c2FsdHNhbHQ$AAAAAAAAAAAAAAAAAAAAAA",
	}

	for name, encoded := range tests {
		t.Run(name, func(t *testing.T) {
			for _, password := range []string{"", "anything"} {
				var (
					ok  bool
					err error
				)
				require.NotPanics(t, func() { ok, err = VerifyPassword(password, []byte(encoded)) })
				assert.ErrorIs(t, err, ErrMalformedHash)
				assert.False(t, ok)
			}
			assert.True(t, NeedsRehash([]byte(encoded)))
		})
	}
}

func TestNeedsRehash(t *testing.T) {
	weak, err := HashPasswordWithParams("pw", testParams)
	require.NoError(t, err)
	assert.True(t, NeedsRehash(weak))

	current, err := HashPassword("pw")
	require.NoError(t, err)
	assert.False(t, NeedsRehash(current))
}
