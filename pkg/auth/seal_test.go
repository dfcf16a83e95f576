package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealRoundTrip(t *testing.T) {
	sealer, err := NewCookieSealer(GenerateSealKey())
	require.NoError(t, err)

	sealed, err := sealer.Seal("the-access-token")
	require.NoError(t, err)
	assert.NotEqual(t, "the-access-token", sealed)

	opened, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "the-access-token", opened)
}

func TestOpenWithWrongKeyFails(t *testing.T) {
	sealer, err := NewCookieSealer(GenerateSealKey())
	require.NoError(t, err)
	other, err := NewCookieSealer(GenerateSealKey())
	require.NoError(t, err)

	sealed, err := sealer.Seal("secret")
	require.NoError(t, err)

	_, err = other.Open(sealed)
	assert.Error(t, err)
}

func TestNewCookieSealerRejectsBadKeys(t *testing.T) {
	_, err := NewCookieSealer("not base64 !!!")
	assert.Error(t, err)

	_, err = NewCookieSealer("c2hvcnQ=") // "short"
	assert.Error(t, err)
}
