// Package totp implements the time-based one-time-password algorithm used by
// providers of the google-authenticator family: RFC 4226 HMAC-SHA1 codes over
// RFC 6238 time-step counters.
//
// The verifier is deliberately low level: it reports which time step matched
// so the caller can persist it and reject replays, and it collapses "wrong
// code" and "expired code" into a single negative result.
package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// DefaultSecretLength is the secret entropy in bytes. RFC 4226
	// recommends 160 bits for HMAC-SHA1, independent of the digit count.
	DefaultSecretLength = 20
	// DefaultDigits is the number of digits of a code.
	DefaultDigits = 6
	// DefaultStepSeconds is the width of a time step.
	DefaultStepSeconds = 30
	// DefaultSkewSteps is the clock drift tolerance, in time steps, applied
	// on both sides of the current step.
	DefaultSkewSteps = 1

	// minSecretLength is the shortest secret the engine accepts. Anything
	// below this indicates corrupted storage or a programming error.
	minSecretLength = 16
)

// ErrInvalidSecret is returned when a secret has the wrong length to drive
// the HMAC. It indicates a broken precondition, not a failed verification.
var ErrInvalidSecret = fmt.Errorf("invalid totp secret")

// GenerateSecret returns cryptographically secure random bytes for a new
// enrollment. A non-positive length selects DefaultSecretLength.
func GenerateSecret(length int) ([]byte, error) {
	if length <= 0 {
		length = DefaultSecretLength
	}
	if length < minSecretLength {
		return nil, ErrInvalidSecret
	}
	secret := make([]byte, length)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("cannot generate totp secret: %w", err)
	}
	return secret, nil
}

// StepAt returns the RFC 6238 counter for the given instant, derived as
// floor(unixTime / stepSeconds).
func StepAt(at time.Time, stepSeconds int) uint64 {
	if stepSeconds <= 0 {
		stepSeconds = DefaultStepSeconds
	}
	return uint64(at.Unix()) / uint64(stepSeconds)
}

// Code computes the code for the given time step as a fixed-width decimal
// string of exactly `digits` characters, left-padded with zeros.
func Code(secret []byte, step uint64, digits int) (string, error) {
	if len(secret) < minSecretLength {
		return "", ErrInvalidSecret
	}
	if digits <= 0 {
		digits = DefaultDigits
	}
	// HOTP(K, C) per RFC 4226
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, step)
	mac := hmac.New(sha1.New, secret)
	mac.Write(buf)
	sum := mac.Sum(nil)
	// dynamic truncation
	offset := sum[len(sum)-1] & 0x0f
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff
	code := value % uint32(math.Pow10(digits))
	return fmt.Sprintf("%0*d", digits, code), nil
}

// Verify checks a submitted code against the secret at the given instant,
// accepting a match at the current step or within `skew` steps before or
// after it to tolerate clock drift. It returns whether the code matched and
// the step it matched at, so the caller can record the step and reject a
// resubmission for it. The whole window is always scanned and each candidate
// is compared in constant time.
func Verify(secret []byte, code string, at time.Time, stepSeconds, digits, skew int) (bool, uint64, error) {
	if len(secret) < minSecretLength {
		return false, 0, ErrInvalidSecret
	}
	if digits <= 0 {
		digits = DefaultDigits
	}
	if skew < 0 {
		skew = DefaultSkewSteps
	}
	current := StepAt(at, stepSeconds)
	matched := 0
	matchedStep := uint64(0)
	for offset := -skew; offset <= skew; offset++ {
		step := current
		if offset < 0 {
			if uint64(-offset) > step {
				continue
			}
			step -= uint64(-offset)
		} else {
			step += uint64(offset)
		}
		expected, err := Code(secret, step, digits)
		if err != nil {
			return false, 0, err
		}
		if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) == 1 {
			matched = 1
			matchedStep = step
		}
	}
	return matched == 1, matchedStep, nil
}

// b32 is the unpadded base32 encoding used by authenticator applications.
var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// EncodeSecret returns the base32 representation of a secret, the format
// stored with an enrollment and typed manually into authenticator apps.
func EncodeSecret(secret []byte) string {
	return b32.EncodeToString(secret)
}

// DecodeSecret parses a stored base32 secret back into its raw bytes.
func DecodeSecret(encoded string) ([]byte, error) {
	secret, err := b32.DecodeString(strings.ToUpper(strings.TrimSpace(encoded)))
	if err != nil {
		return nil, ErrInvalidSecret
	}
	return secret, nil
}

// KeyURL builds the otpauth:// provisioning URL displayed to the user at
// enrollment, scannable by any authenticator application.
func KeyURL(secret []byte, issuer, account string, digits, stepSeconds int) (string, error) {
	if len(secret) < minSecretLength {
		return "", ErrInvalidSecret
	}
	if digits <= 0 {
		digits = DefaultDigits
	}
	if stepSeconds <= 0 {
		stepSeconds = DefaultStepSeconds
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Secret:      secret,
		Period:      uint(stepSeconds),
		Digits:      otp.Digits(digits),
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("cannot build provisioning key: %w", err)
	}
	return key.URL(), nil
}
