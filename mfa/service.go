// Package mfa implements the multi-factor authentication core: the per-zone
// provider registry with its lifecycle rules, the zone authorization gate and
// the TOTP enrollment and verification flows.
package mfa

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.vocdoni.io/dvote/log"

	"github.com/zoneid/mfa-backend/db"
	"github.com/zoneid/mfa-backend/errors"
	"github.com/zoneid/mfa-backend/internal"
	"github.com/zoneid/mfa-backend/totp"
)

// Store is the keyed storage the service runs on. *db.MongoStorage implements
// it; tests may substitute an in-memory fake.
type Store interface {
	CreateMfaProvider(provider *db.MfaProvider) error
	MfaProvider(zoneID, id string) (*db.MfaProvider, error)
	MfaProviderByName(zoneID, name string) (*db.MfaProvider, error)
	MfaProviders(zoneID string) ([]db.MfaProvider, error)
	DelMfaProvider(zoneID, id string) error
	IdentityZone(id string) (*db.IdentityZone, error)
	SetMfaCredential(credential *db.MfaCredential) error
	MfaCredential(userID, providerID string) (*db.MfaCredential, error)
	ConsumeMfaCredentialStep(userID, providerID string, step uint64) error
}

// PolicyLookup reports whether any MFA policy currently references the
// provider as active, which blocks its deletion.
type PolicyLookup interface {
	IsActiveMfaProvider(zoneID, providerID string) (bool, error)
}

// Enrollment is the material handed to a user starting TOTP enrollment: the
// shared secret in base32 form, the issuer shown on the device and the
// otpauth:// URL for QR provisioning. It is returned once and never part of
// any provider record.
type Enrollment struct {
	SecretKey   string `json:"secretKey"`
	Issuer      string `json:"issuer"`
	KeyURL      string `json:"keyUrl"`
	Digits      int    `json:"digits"`
	StepSeconds int    `json:"stepSeconds"`
}

// Service orchestrates the provider lifecycle and the enrollment and
// verification flows on top of the store, the type registry and the zone
// authorization gate.
type Service struct {
	store    Store
	registry *Registry
	policy   PolicyLookup
}

// NewService returns a service over the given store. If policy is nil, the
// zone MFA policy stored with each identity zone is consulted instead.
func NewService(store Store, policy PolicyLookup) *Service {
	s := &Service{
		store:    store,
		registry: NewRegistry(),
	}
	if policy == nil {
		policy = &zoneMfaPolicy{store: store}
	}
	s.policy = policy
	return s
}

// CreateProvider validates and persists a new provider in the target zone.
// The id, the timestamps and the owning zone are assigned here and cannot be
// supplied by the caller. A name collision within the zone is reported as a
// conflict; the collision check is backed by the store's conditional insert,
// so concurrent creators cannot overwrite each other.
func (s *Service) CreateProvider(
	zone *db.IdentityZone,
	scopes []string,
	name string,
	providerType db.MfaProviderType,
	rawConfig json.RawMessage,
) (*db.MfaProvider, error) {
	if err := Authorize(scopes, OperationCreate, zone.ID); err != nil {
		return nil, err
	}
	if !internal.ValidProviderName(name) {
		return nil, errors.ErrInvalidProviderName
	}
	config, err := s.registry.Validate(providerType, rawConfig, zone)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	provider := &db.MfaProvider{
		ID:             uuid.New().String(),
		Name:           name,
		Type:           providerType,
		Config:         *config,
		IdentityZoneID: zone.ID,
		Created:        now,
		LastModified:   now,
	}
	if err := s.store.CreateMfaProvider(provider); err != nil {
		if err == db.ErrAlreadyExists {
			return nil, errors.ErrDuplicateProviderName
		}
		return nil, errors.ErrGenericInternalServerError.WithErr(err)
	}
	log.Infow("mfa provider created",
		"id", provider.ID, "name", provider.Name, "zone", zone.ID)
	return provider, nil
}

// Provider returns one provider of the target zone. A provider of another
// zone is reported as not found, exactly like a missing one.
func (s *Service) Provider(zone *db.IdentityZone, scopes []string, id string) (*db.MfaProvider, error) {
	if err := Authorize(scopes, OperationRead, zone.ID); err != nil {
		return nil, err
	}
	provider, err := s.store.MfaProvider(zone.ID, id)
	if err != nil {
		if err == db.ErrNotFound {
			return nil, errors.ErrMfaProviderNotFound
		}
		return nil, errors.ErrGenericInternalServerError.WithErr(err)
	}
	return provider, nil
}

// Providers lists the providers of the target zone.
func (s *Service) Providers(zone *db.IdentityZone, scopes []string) ([]db.MfaProvider, error) {
	if err := Authorize(scopes, OperationRead, zone.ID); err != nil {
		return nil, err
	}
	providers, err := s.store.MfaProviders(zone.ID)
	if err != nil {
		return nil, errors.ErrGenericInternalServerError.WithErr(err)
	}
	return providers, nil
}

// DeleteProvider removes a provider from the target zone and returns the
// deleted record. A provider referenced as active by the MFA policy cannot be
// deleted; the caller must first point the policy elsewhere. The policy is
// consulted at decision time, never from a cached read.
func (s *Service) DeleteProvider(zone *db.IdentityZone, scopes []string, id string) (*db.MfaProvider, error) {
	if err := Authorize(scopes, OperationDelete, zone.ID); err != nil {
		return nil, err
	}
	provider, err := s.store.MfaProvider(zone.ID, id)
	if err != nil {
		if err == db.ErrNotFound {
			return nil, errors.ErrMfaProviderNotFound
		}
		return nil, errors.ErrGenericInternalServerError.WithErr(err)
	}
	active, err := s.policy.IsActiveMfaProvider(zone.ID, provider.ID)
	if err != nil {
		return nil, errors.ErrGenericInternalServerError.WithErr(err)
	}
	if active {
		return nil, errors.ErrMfaProviderInUse
	}
	if err := s.store.DelMfaProvider(zone.ID, id); err != nil {
		if err == db.ErrNotFound {
			return nil, errors.ErrMfaProviderNotFound
		}
		return nil, errors.ErrGenericInternalServerError.WithErr(err)
	}
	log.Infow("mfa provider deleted",
		"id", provider.ID, "name", provider.Name, "zone", zone.ID)
	return provider, nil
}

// BeginEnrollment generates a fresh TOTP secret for a user against a provider
// of the zone and stores it as the user's credential, replacing any previous
// enrollment. The returned material is shown to the user exactly once.
func (s *Service) BeginEnrollment(zone *db.IdentityZone, providerID, userID string) (*Enrollment, error) {
	if userID == "" {
		return nil, errors.ErrInvalidVerificationRequest.With("missing user id")
	}
	provider, err := s.store.MfaProvider(zone.ID, providerID)
	if err != nil {
		if err == db.ErrNotFound {
			return nil, errors.ErrMfaProviderNotFound
		}
		return nil, errors.ErrGenericInternalServerError.WithErr(err)
	}
	secret, err := totp.GenerateSecret(totp.DefaultSecretLength)
	if err != nil {
		return nil, errors.ErrGenericInternalServerError.WithErr(err)
	}
	keyURL, err := totp.KeyURL(secret, provider.Config.Issuer, userID,
		provider.Config.Digits, provider.Config.StepSeconds)
	if err != nil {
		return nil, errors.ErrGenericInternalServerError.WithErr(err)
	}
	if err := s.store.SetMfaCredential(&db.MfaCredential{
		UserID:        userID,
		MfaProviderID: provider.ID,
		ZoneID:        zone.ID,
		SecretKey:     totp.EncodeSecret(secret),
		Created:       time.Now(),
	}); err != nil {
		return nil, errors.ErrGenericInternalServerError.WithErr(err)
	}
	log.Infow("mfa enrollment started",
		"provider", provider.ID, "zone", zone.ID, "user", userID)
	return &Enrollment{
		SecretKey:   totp.EncodeSecret(secret),
		Issuer:      provider.Config.Issuer,
		KeyURL:      keyURL,
		Digits:      provider.Config.Digits,
		StepSeconds: provider.Config.StepSeconds,
	}, nil
}

// VerifyCode checks a submitted code against the user's enrollment with the
// default clock skew tolerance, and consumes the matched time step so that
// resubmitting the same code is rejected. Wrong, expired and replayed codes
// are all reported the same way: not accepted.
func (s *Service) VerifyCode(zone *db.IdentityZone, providerID, userID, code string) (bool, error) {
	if userID == "" || code == "" {
		return false, errors.ErrInvalidVerificationRequest
	}
	provider, err := s.store.MfaProvider(zone.ID, providerID)
	if err != nil {
		if err == db.ErrNotFound {
			return false, errors.ErrMfaProviderNotFound
		}
		return false, errors.ErrGenericInternalServerError.WithErr(err)
	}
	credential, err := s.store.MfaCredential(userID, providerID)
	if err != nil {
		if err == db.ErrNotFound {
			return false, errors.ErrUserNotEnrolled
		}
		return false, errors.ErrGenericInternalServerError.WithErr(err)
	}
	secret, err := totp.DecodeSecret(credential.SecretKey)
	if err != nil {
		return false, errors.ErrInvalidStoredSecret.WithErr(err)
	}
	accepted, step, err := totp.Verify(secret, code, time.Now(),
		provider.Config.StepSeconds, provider.Config.Digits, totp.DefaultSkewSteps)
	if err != nil {
		return false, errors.ErrInvalidStoredSecret.WithErr(err)
	}
	if !accepted {
		return false, nil
	}
	// consume the matched step; a code for an already consumed step is a
	// replay and collapses into the same negative signal as a wrong code
	if err := s.store.ConsumeMfaCredentialStep(userID, providerID, step); err != nil {
		if err == db.ErrAlreadyExists {
			log.Warnw("totp code replay rejected",
				"provider", providerID, "zone", zone.ID, "user", userID)
			return false, nil
		}
		return false, errors.ErrGenericInternalServerError.WithErr(err)
	}
	return true, nil
}

// zoneMfaPolicy consults the MFA policy stored with the identity zone: the
// provider referenced by an enabled policy is active.
type zoneMfaPolicy struct {
	store Store
}

func (p *zoneMfaPolicy) IsActiveMfaProvider(zoneID, providerID string) (bool, error) {
	zone, err := p.store.IdentityZone(zoneID)
	if err != nil {
		if err == db.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	if !zone.MfaConfig.Enabled || zone.MfaConfig.ProviderName == "" {
		return false, nil
	}
	provider, err := p.store.MfaProvider(zoneID, providerID)
	if err != nil {
		if err == db.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return provider.Name == zone.MfaConfig.ProviderName, nil
}
