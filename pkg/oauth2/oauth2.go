package oauth2

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
)

type CodeChallengeMethod string

const (
	CodeChallengeMethodS256 CodeChallengeMethod = "S256"
)

// TokenResponse is the JSON body returned by the token endpoint
// on a successful authorization code exchange.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Error is the standard OAuth2 error object, used both for
// parsing provider errors and rendering our own.
type Error struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// GenerateState returns a random state token with 256 bits of entropy,
// hex-encoded so it is safe in URLs and cookie values.
func GenerateState() string {
	buf := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		// if random does not work, we have a big problem
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// GenerateCodeVerifier returns a random PKCE code verifier
// per RFC 7636 section 4.1.
func GenerateCodeVerifier() string {
	buf := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// S256ChallengeFromVerifier derives the S256 code challenge
// per RFC 7636 section 4.2.
func S256ChallengeFromVerifier(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
