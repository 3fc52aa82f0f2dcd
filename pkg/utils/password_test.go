package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifySecret(t *testing.T) {
	hash, err := HashSecret("moonlight")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=2$"))

	ok, err := VerifySecret("moonlight", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifySecret("sunlight", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := HashSecret("moonlight")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

func TestVerifySecret_BadFormat(t *testing.T) {
	for _, h := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA", "$argon2id$v=19$m=x$c2FsdA$aGFzaA"} {
		_, err := VerifySecret("x", h)
		assert.ErrorIs(t, err, ErrInvalidHash, h)
	}
}

func TestValidateDisplayName(t *testing.T) {
	assert.NoError(t, ValidateDisplayName("루나"))
	assert.Error(t, ValidateDisplayName("  "))
	assert.Error(t, ValidateDisplayName(strings.Repeat("a", 51)))
	assert.Error(t, ValidateDisplayName("bad\x00name"))

	var verr *ValidationError
	err := ValidateText("text", "")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "text", verr.Field)
	assert.NoError(t, ValidateText("text", "hello"))
}
