// Package signature verifies HMAC-SHA256 signatures over raw webhook bodies.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/popeskul/webhook-inbox/internal/models"
)

// Verifier checks presented signature tokens against a shared secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify computes HMAC-SHA256 over body and compares it to the hex token
// using constant-time comparison. An empty or undecodable token fails the
// same way as a mismatch; callers must not parse the body on failure.
func (v *Verifier) Verify(body []byte, token string) error {
	if token == "" {
		return models.ErrInvalidSignature
	}

	presented, err := hex.DecodeString(token)
	if err != nil {
		return models.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	expected := mac.Sum(nil)

	if subtle.ConstantTimeCompare(expected, presented) != 1 {
		return models.ErrInvalidSignature
	}

	return nil
}

// Sign returns the hex HMAC-SHA256 of body. Used by tests and tooling to
// build valid X-Signature headers.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
