package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobboard/internal/security"
)

func TestBcryptPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := security.NewBcryptPasswordHasher(4) // テストは低コストで十分
	verifier := security.NewBcryptPasswordVerifier()

	digest, err := hasher.Hash("Str0ng!Pass")
	assert.NoError(t, err)
	assert.NotEmpty(t, digest)
	assert.NotEqual(t, "Str0ng!Pass", digest)

	assert.True(t, verifier.Verify("Str0ng!Pass", digest))
	assert.False(t, verifier.Verify("wrongpass", digest))
}

func TestBcryptPasswordHasher_SaltIsRandom(t *testing.T) {
	hasher := security.NewBcryptPasswordHasher(4)

	d1, err := hasher.Hash("Str0ng!Pass")
	assert.NoError(t, err)
	d2, err := hasher.Hash("Str0ng!Pass")
	assert.NoError(t, err)

	// saltが毎回変わるので同じ平文でもdigestは別
	assert.NotEqual(t, d1, d2)

	verifier := security.NewBcryptPasswordVerifier()
	assert.True(t, verifier.Verify("Str0ng!Pass", d1))
	assert.True(t, verifier.Verify("Str0ng!Pass", d2))
}

func TestBcryptPasswordVerifier_MismatchDoesNotPanic(t *testing.T) {
	verifier := security.NewBcryptPasswordVerifier()

	// digestとして壊れた文字列でもfalseを返すだけ
	assert.False(t, verifier.Verify("whatever", "not-a-bcrypt-digest"))
}
