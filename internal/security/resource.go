package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// SignResource binds a bill id to its stored object key. The preview
// endpoint refuses to hand out a receipt URL whose signature no longer
// matches the row.
func SignResource(secret string, parts ...string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	payload := strings.Join(parts, ":")
	mac.Write([]byte(payload))
	sum := mac.Sum(nil)
	return []byte(base64.RawURLEncoding.EncodeToString(sum))
}

func VerifyResource(secret string, signature []byte, parts ...string) bool {
	expected := SignResource(secret, parts...)
	return hmac.Equal(signature, expected)
}
