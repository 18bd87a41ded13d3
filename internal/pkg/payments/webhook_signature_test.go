package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"testing"
)

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"event":"charge.success","data":{"reference":"ref_1"}}`)
	secret := "whsec_test"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	validSHA256 := hex.EncodeToString(mac.Sum(nil))

	if !VerifyWebhookSignature(payload, validSHA256, secret) {
		t.Fatalf("expected sha256 signature to validate")
	}

	macSHA512 := hmac.New(sha512.New, []byte(secret))
	macSHA512.Write(payload)
	validSHA512 := hex.EncodeToString(macSHA512.Sum(nil))
	if !VerifyWebhookSignature(payload, validSHA512, secret) {
		t.Fatalf("expected sha512 fallback signature to validate")
	}

	if VerifyWebhookSignature(payload, "deadbeef", secret) {
		t.Fatalf("expected invalid signature to fail")
	}
	if VerifyWebhookSignature(payload, validSHA256, "other-secret") {
		t.Fatalf("expected wrong secret to fail")
	}
	if VerifyWebhookSignature(payload, "", secret) {
		t.Fatalf("expected missing signature to fail")
	}
	if VerifyWebhookSignature(payload, validSHA256, "") {
		t.Fatalf("expected missing secret to fail closed")
	}
	if VerifyWebhookSignature(payload, "not-hex!", secret) {
		t.Fatalf("expected undecodable signature to fail")
	}
}

func TestVerifyWebhookSignature_TamperedPayload(t *testing.T) {
	payload := []byte(`{"amount":100}`)
	secret := "whsec_test"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	sig := hex.EncodeToString(mac.Sum(nil))

	tampered := []byte(`{"amount":999}`)
	if VerifyWebhookSignature(tampered, sig, secret) {
		t.Fatalf("expected signature over different payload to fail")
	}
}
