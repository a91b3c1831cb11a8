package apicommon

import (
	"encoding/json"

	"github.com/zoneid/mfa-backend/db"
)

// MfaProviderRequest is the payload to create an MFA provider. Config is kept
// raw so the type registry can validate it against the schema of the declared
// type.
type MfaProviderRequest struct {
	Name   string             `json:"name"`
	Type   db.MfaProviderType `json:"type"`
	Config json.RawMessage    `json:"config"`
}

// MfaProvidersResponse wraps the provider list of a zone.
type MfaProvidersResponse struct {
	Providers []db.MfaProvider `json:"providers"`
}

// EnrollmentRequest starts a TOTP enrollment for a user.
type EnrollmentRequest struct {
	UserID string `json:"userId"`
}

// VerificationRequest submits a TOTP code for a user.
type VerificationRequest struct {
	UserID string `json:"userId"`
	Code   string `json:"code"`
}

// VerificationResponse reports whether a submitted code was accepted. Wrong,
// expired and replayed codes all come back as not valid.
type VerificationResponse struct {
	Valid bool `json:"valid"`
}
