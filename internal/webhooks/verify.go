package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Verifier checks identity-provider webhook signatures. The scheme is the
// svix one: HMAC-SHA256 over "{id}.{timestamp}.{payload}" with a base64
// secret, carried in three headers:
//
//	svix-id, svix-timestamp, svix-signature
//
// The signature header holds space-delimited "v1,<base64 mac>" entries; any
// one matching entry passes.
type Verifier struct {
	secret    []byte
	tolerance time.Duration
	clock     func() time.Time
}

var (
	ErrMissingHeaders   = errors.New("webhooks: missing signature headers")
	ErrStaleTimestamp   = errors.New("webhooks: timestamp outside tolerance")
	ErrInvalidSignature = errors.New("webhooks: signature mismatch")
)

const secretPrefix = "whsec_"

// NewVerifier decodes the shared secret. Secrets are distributed with a
// "whsec_" prefix; the base64 part after it is the actual key.
func NewVerifier(secret string, tolerance time.Duration) (*Verifier, error) {
	raw := strings.TrimPrefix(secret, secretPrefix)
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("webhooks: bad secret encoding: %w", err)
	}
	if len(key) == 0 {
		return nil, errors.New("webhooks: empty secret")
	}
	if tolerance <= 0 {
		tolerance = 5 * time.Minute
	}
	return &Verifier{secret: key, tolerance: tolerance, clock: time.Now}, nil
}

// Verify checks the three signature headers against the raw request body.
func (v *Verifier) Verify(msgID, timestamp, signatures string, payload []byte) error {
	if msgID == "" || timestamp == "" || signatures == "" {
		return ErrMissingHeaders
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp %q", ErrMissingHeaders, timestamp)
	}
	now := v.clock()
	age := now.Sub(time.Unix(ts, 0))
	if age > v.tolerance || age < -v.tolerance {
		return ErrStaleTimestamp
	}

	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "%s.%s.", msgID, timestamp)
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, entry := range strings.Fields(signatures) {
		version, sig, ok := strings.Cut(entry, ",")
		if !ok || version != "v1" {
			continue
		}
		got, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(got, expected) {
			return nil
		}
	}
	return ErrInvalidSignature
}
