package token

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
)

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Peek decodes the payload segment of raw without checking its signature.
// It returns false for anything that is not a dotted token with a base64 JSON object payload,
// and never panics.
func Peek(raw string) (*Claims, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ".")
	if len(parts) < 2 || parts[1] == "" {
		return nil, false
	}

	// Accept standard alphabet payloads as well as URL safe ones.
	segment := strings.NewReplacer("+", "-", "/", "_").Replace(parts[1])
	payload, err := segmentParser.DecodeSegment(segment)
	if err != nil {
		return nil, false
	}
	payload = bytes.TrimSpace(payload)
	if !utf8.Valid(payload) || len(payload) == 0 || payload[0] != '{' {
		return nil, false
	}

	claims := &Claims{}
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil, false
	}
	return claims, true
}
