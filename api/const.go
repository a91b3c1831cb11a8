package api

const (
	// ping route
	pingEndpoint = "/ping"

	// MFA provider routes
	// GET and POST /mfa-providers
	mfaProvidersEndpoint = "/mfa-providers"
	// GET and DELETE /mfa-providers/{providerId}
	mfaProviderEndpoint = "/mfa-providers/{providerId}"
	// POST /mfa-providers/{providerId}/enrollment
	mfaEnrollmentEndpoint = "/mfa-providers/{providerId}/enrollment"
	// POST /mfa-providers/{providerId}/verification
	mfaVerificationEndpoint = "/mfa-providers/{providerId}/verification"
)
