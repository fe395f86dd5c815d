// Package signature authenticates webhook deliveries using the provider's
// signature triple (id, timestamp, signature headers) and a shared secret.
package signature

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

const (
	// secretPrefix is stripped from the configured secret before base64
	// decoding, matching the provider's webhook secret format.
	secretPrefix = "whsec_"

	// defaultTolerance bounds how far a delivery timestamp may drift from
	// the verifier's clock in either direction.
	defaultTolerance = 5 * time.Minute
)

var (
	// ErrMissingHeaders means one or more of the three signature headers was
	// absent while a secret is configured.
	ErrMissingHeaders = errors.New("missing signature headers")

	// ErrInvalidSignature means the headers were present but verification
	// failed. Both errors surface externally as a generic 401; the
	// distinction exists for logging only.
	ErrInvalidSignature = errors.New("invalid signature")
)

// Verifier validates that a raw webhook body genuinely originated from the
// provider. A Verifier with no secret accepts everything, which lets
// operators run without webhook auth in development.
type Verifier struct {
	key       []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewVerifier creates a Verifier for the given shared secret. An empty
// secret disables verification. The secret may carry the provider's
// "whsec_" prefix; the remainder must be base64.
func NewVerifier(secret string) (*Verifier, error) {
	v := &Verifier{
		tolerance: defaultTolerance,
		now:       time.Now,
	}
	if secret == "" {
		return v, nil
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, secretPrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to decode webhook secret: %w", err)
	}
	v.key = key
	return v, nil
}

// Enabled reports whether a secret is configured.
func (v *Verifier) Enabled() bool {
	return len(v.key) > 0
}

// Verify checks the signature triple against the raw request body.
// It returns nil when verification is disabled or the signature is valid,
// ErrMissingHeaders when any header is empty, and ErrInvalidSignature for
// every other failure.
func (v *Verifier) Verify(body []byte, id, timestamp, sigHeader string) error {
	if !v.Enabled() {
		return nil
	}
	if id == "" || timestamp == "" || sigHeader == "" {
		return ErrMissingHeaders
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	drift := v.now().Sub(time.Unix(ts, 0))
	if drift > v.tolerance || drift < -v.tolerance {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, v.key)
	fmt.Fprintf(mac, "%s.%s.", id, timestamp)
	mac.Write(body)
	expected := mac.Sum(nil)

	// The header may carry several space-separated versioned signatures;
	// any matching v1 entry authenticates the delivery.
	for _, entry := range strings.Fields(sigHeader) {
		version, encoded, found := strings.Cut(entry, ",")
		if !found || version != "v1" {
			continue
		}
		candidate, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			continue
		}
		if hmac.Equal(expected, candidate) {
			return nil
		}
	}

	return ErrInvalidSignature
}
