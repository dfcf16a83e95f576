package oauth2

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateState(t *testing.T) {
	state := GenerateState()

	raw, err := hex.DecodeString(state)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	assert.NotEqual(t, state, GenerateState())
}

func TestGenerateCodeVerifier(t *testing.T) {
	verifier := GenerateCodeVerifier()

	raw, err := base64.RawURLEncoding.DecodeString(verifier)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	// must be URL-safe without padding
	assert.NotContains(t, verifier, "+")
	assert.NotContains(t, verifier, "/")
	assert.NotContains(t, verifier, "=")
}

func TestS256ChallengeFromVerifier(t *testing.T) {
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	challenge := S256ChallengeFromVerifier(verifier)

	hash := sha256.Sum256([]byte(verifier))
	expected := base64.RawURLEncoding.EncodeToString(hash[:])
	assert.Equal(t, expected, challenge)

	assert.False(t, strings.ContainsAny(challenge, "+/="))
}

func TestErrorString(t *testing.T) {
	err := &Error{Code: "invalid_request", Description: "missing code"}
	assert.Equal(t, "invalid_request: missing code", err.Error())
}
