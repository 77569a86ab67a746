package gateway

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"
)

// HMACSHA512Hex computes the keyed hash of the exact raw bytes received.
// The body must not be re-serialized before hashing: a decoded/re-encoded
// form is not guaranteed byte-identical to what the provider signed.
func HMACSHA512Hex(rawBody []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}

// CheckHMACSHA512 compares in constant time. The caller rejects on false
// without reporting which part mismatched.
func CheckHMACSHA512(rawBody []byte, signatureHeader, secret string) bool {
	sig := strings.ToLower(strings.TrimSpace(signatureHeader))
	if sig == "" {
		return false
	}
	want, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(rawBody)
	return hmac.Equal(mac.Sum(nil), want)
}
