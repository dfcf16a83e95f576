package util

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ParseDataURI decodes the base64 payload of a data URI such as
// "data:image/png;base64,iVBORw0...". The media type prefix is not
// interpreted; only the payload after the first comma matters.
func ParseDataURI(s string) ([]byte, error) {
	_, payload, found := strings.Cut(s, ",")
	if !found || payload == "" {
		return nil, fmt.Errorf("missing base64 payload in data URI")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 payload: %w", err)
	}

	return data, nil
}

// PNGDataURI encodes raw PNG bytes as a data URI.
func PNGDataURI(data []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}
