package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwe"
)

// CookieSealer encrypts token cookie values so the browser only ever
// holds an opaque JWE blob. Sealing is optional; without a configured
// key the provider tokens are stored as-is, which is safe as long as
// they are opaque to the client anyway.
type CookieSealer struct {
	key []byte
}

func NewCookieSealer(base64Key string) (*CookieSealer, error) {
	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("decoding cookie seal key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("cookie seal key must be 32 bytes, got %d", len(key))
	}
	return &CookieSealer{key: key}, nil
}

func (s *CookieSealer) Seal(value string) (string, error) {
	sealed, err := jwe.Encrypt([]byte(value),
		jwe.WithKey(jwa.DIRECT, s.key),
		jwe.WithContentEncryption(jwa.A256GCM))
	if err != nil {
		return "", fmt.Errorf("sealing cookie value: %w", err)
	}
	return string(sealed), nil
}

func (s *CookieSealer) Open(value string) (string, error) {
	opened, err := jwe.Decrypt([]byte(value),
		jwe.WithKey(jwa.DIRECT, s.key))
	if err != nil {
		return "", fmt.Errorf("opening cookie value: %w", err)
	}
	return string(opened), nil
}

// GenerateSealKey returns a fresh base64-encoded 256-bit key suitable
// for COOKIE_SEAL_KEY.
func GenerateSealKey() string {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		// if random does not work, we have a big problem
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(key)
}
