package gateway

import (
	"strings"
	"testing"
)

func TestCheckHMACSHA512(t *testing.T) {
	secret := "sk_test_secret"
	body := []byte(`{"event":"charge.success","data":{"reference":"PSK-123"}}`)
	sig := HMACSHA512Hex(body, secret)

	if !CheckHMACSHA512(body, sig, secret) {
		t.Fatal("valid signature rejected")
	}
	if !CheckHMACSHA512(body, strings.ToUpper(sig), secret) {
		t.Fatal("uppercase hex should still match")
	}
}

func TestCheckHMACSHA512Rejects(t *testing.T) {
	secret := "sk_test_secret"
	body := []byte(`{"event":"charge.success","data":{"reference":"PSK-123"}}`)
	sig := HMACSHA512Hex(body, secret)

	tampered := []byte(`{"event":"charge.success","data":{"reference":"PSK-999"}}`)
	if CheckHMACSHA512(tampered, sig, secret) {
		t.Fatal("tampered body accepted")
	}
	if CheckHMACSHA512(body, sig, "wrong_secret") {
		t.Fatal("wrong secret accepted")
	}
	if CheckHMACSHA512(body, "", secret) {
		t.Fatal("empty signature accepted")
	}
	if CheckHMACSHA512(body, "not-hex!!", secret) {
		t.Fatal("non-hex signature accepted")
	}
}
