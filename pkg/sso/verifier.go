package sso

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

// DefaultReplayWindow is the maximum clock skew tolerated on a signed request.
const DefaultReplayWindow = 5 * time.Minute

// Verifier validates signed requests from the external identity source.
//
// The signature scheme is a wire-compatibility contract with the external
// signer: the sign field and empty values are excluded, remaining keys are
// sorted ascending, joined as "key=value&", suffixed with "key=<secret>", and
// digested with MD5 uppercase hex. MD5 is kept because the counterpart signer
// uses it, not as a security choice.
type Verifier struct {
	secret string
	window time.Duration
}

// NewVerifier creates a verifier for the given shared secret and replay window.
func NewVerifier(secret string, window time.Duration) *Verifier {
	if window <= 0 {
		window = DefaultReplayWindow
	}
	return &Verifier{secret: secret, window: window}
}

// Sign computes the signature for params. Used by the verifier itself and by
// tests acting as the counterpart signer.
func (v *Verifier) Sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key, value := range params {
		if key == "sign" || value == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(params[key])
		b.WriteByte('&')
	}
	b.WriteString("key=")
	b.WriteString(v.secret)

	sum := md5.Sum([]byte(b.String()))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Verify reports whether providedSign matches the signature computed over
// params. The comparison is case-insensitive on the provided value; the
// counterpart signer emits uppercase hex.
func (v *Verifier) Verify(params map[string]string, providedSign string) bool {
	if providedSign == "" {
		return false
	}
	return v.Sign(params) == strings.ToUpper(providedSign)
}

// Fresh reports whether a client-supplied millisecond timestamp is within the
// replay window of the current server time.
func (v *Verifier) Fresh(timestampMillis int64) bool {
	return v.FreshAt(timestampMillis, time.Now())
}

// FreshAt reports whether timestampMillis is within the replay window of now.
func (v *Verifier) FreshAt(timestampMillis int64, now time.Time) bool {
	skew := now.UnixMilli() - timestampMillis
	if skew < 0 {
		skew = -skew
	}
	return skew <= v.window.Milliseconds()
}
