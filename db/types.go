package db

import (
	"time"
)

// MfaProviderType identifies which MFA technology a provider enables. The set
// is closed: validation logic is registered per type and unknown types are
// rejected.
type MfaProviderType string

// MfaProviderConfig is the typed configuration of a provider in the TOTP
// family. Issuer, Digits and StepSeconds receive defaults at validation time;
// ProviderDescription is free text with no default.
type MfaProviderConfig struct {
	ProviderDescription string `json:"providerDescription,omitempty" bson:"providerDescription,omitempty"`
	Issuer              string `json:"issuer" bson:"issuer"`
	Digits              int    `json:"digits" bson:"digits"`
	StepSeconds         int    `json:"stepSeconds" bson:"stepSeconds"`
}

// MfaProvider is a named, typed MFA configuration owned by a single identity
// zone. ID, Created, LastModified and IdentityZoneID are assigned by the
// system, never taken from client input.
type MfaProvider struct {
	ID             string            `json:"id" bson:"_id"`
	Name           string            `json:"name" bson:"name"`
	Type           MfaProviderType   `json:"type" bson:"type"`
	Config         MfaProviderConfig `json:"config" bson:"config"`
	IdentityZoneID string            `json:"identityZoneId" bson:"identityZoneId"`
	Created        time.Time         `json:"created" bson:"created"`
	LastModified   time.Time         `json:"last_modified" bson:"lastModified"`
}

// ZoneMfaConfig is the per-zone MFA policy. While Enabled is true, the
// provider referenced by ProviderName is active for the zone and cannot be
// deleted.
type ZoneMfaConfig struct {
	Enabled      bool   `json:"enabled" bson:"enabled"`
	ProviderName string `json:"providerName,omitempty" bson:"providerName,omitempty"`
}

// IdentityZone is a tenant boundary. Name is the human display name used as
// the default TOTP issuer for providers of the zone.
type IdentityZone struct {
	ID        string        `json:"id" bson:"_id"`
	Name      string        `json:"name" bson:"name"`
	Subdomain string        `json:"subdomain" bson:"subdomain"`
	Active    bool          `json:"active" bson:"active"`
	MfaConfig ZoneMfaConfig `json:"mfaConfig" bson:"mfaConfig"`
	Created   time.Time     `json:"created" bson:"created"`
}

// MfaCredential is the per-user enrollment state for one provider: the shared
// TOTP secret (base32) and the last time step at which a code was accepted,
// kept for replay rejection.
type MfaCredential struct {
	UserID        string    `json:"userId" bson:"userId"`
	MfaProviderID string    `json:"mfaProviderId" bson:"mfaProviderId"`
	ZoneID        string    `json:"zoneId" bson:"zoneId"`
	SecretKey     string    `json:"-" bson:"secretKey"`
	LastUsedStep  uint64    `json:"-" bson:"lastUsedStep"`
	Created       time.Time `json:"created" bson:"created"`
}
