package mfa

import (
	"bytes"
	"encoding/json"

	"github.com/zoneid/mfa-backend/db"
	"github.com/zoneid/mfa-backend/errors"
)

// typeValidator validates a raw config payload for one provider type and
// returns the typed config with defaults applied for the given zone.
type typeValidator func(rawConfig json.RawMessage, zone *db.IdentityZone) (*db.MfaProviderConfig, error)

// Registry maps each provider type tag to its config validation and
// defaulting logic. The type set is closed: payloads with an unregistered
// type are rejected.
type Registry struct {
	validators map[db.MfaProviderType]typeValidator
}

// NewRegistry returns a registry with every supported provider type
// registered.
func NewRegistry() *Registry {
	return &Registry{
		validators: map[db.MfaProviderType]typeValidator{
			db.TypeGoogleAuthenticator: validateTotpConfig,
		},
	}
}

// Validate checks a raw config payload against the schema implied by the
// provider type and returns the typed config with defaults applied. Unknown
// fields and unknown types are rejected, never silently dropped. The zone is
// required because the issuer default is resolved from it.
func (r *Registry) Validate(
	providerType db.MfaProviderType,
	rawConfig json.RawMessage,
	zone *db.IdentityZone,
) (*db.MfaProviderConfig, error) {
	validate, ok := r.validators[providerType]
	if !ok {
		return nil, errors.ErrUnsupportedProviderType.Withf("%q", providerType)
	}
	return validate(rawConfig, zone)
}

// DefaultsFor returns the config a provider of the given type receives when
// created with an empty payload.
func (r *Registry) DefaultsFor(providerType db.MfaProviderType, zone *db.IdentityZone) (*db.MfaProviderConfig, error) {
	return r.Validate(providerType, nil, zone)
}

// defaultIssuer resolves the issuer displayed on authenticator devices: the
// zone display name, falling back to the zone id for zones without one.
func defaultIssuer(zone *db.IdentityZone) string {
	if zone.Name != "" {
		return zone.Name
	}
	return zone.ID
}

// validateTotpConfig is the validator of the google-authenticator family.
func validateTotpConfig(rawConfig json.RawMessage, zone *db.IdentityZone) (*db.MfaProviderConfig, error) {
	config := &db.MfaProviderConfig{}
	if len(rawConfig) > 0 {
		// reject unknown fields to prevent silent misconfiguration
		decoder := json.NewDecoder(bytes.NewReader(rawConfig))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(config); err != nil {
			return nil, errors.ErrInvalidProviderConfig.WithErr(err)
		}
	}
	if config.Issuer == "" {
		config.Issuer = defaultIssuer(zone)
	}
	switch config.Digits {
	case 0:
		config.Digits = 6
	case 6, 8:
	default:
		return nil, errors.ErrInvalidProviderConfig.Withf("digits must be 6 or 8, got %d", config.Digits)
	}
	if config.StepSeconds == 0 {
		config.StepSeconds = 30
	}
	if config.StepSeconds < 15 || config.StepSeconds > 300 {
		return nil, errors.ErrInvalidProviderConfig.Withf(
			"step width must be between 15 and 300 seconds, got %d", config.StepSeconds)
	}
	return config, nil
}
