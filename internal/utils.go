// Package internal provides some utilities for the rest of the packages.
package internal

import (
	"crypto/rand"
	"fmt"
	"regexp"
)

// ProviderNameRegexTemplate matches the names accepted for an MFA provider:
// alphanumeric, at most 255 characters.
const ProviderNameRegexTemplate = `^[A-Za-z0-9]{1,255}$`

var providerNameRegex = regexp.MustCompile(ProviderNameRegexTemplate)

// ValidProviderName helper function allows to validate an MFA provider name.
func ValidProviderName(name string) bool {
	return providerNameRegex.MatchString(name)
}

// RandomBytes helper function allows to generate a random byte slice of n bytes.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// RandomHex helper function allows to generate a random hex string of n bytes.
func RandomHex(n int) string {
	return fmt.Sprintf("%x", RandomBytes(n))
}
