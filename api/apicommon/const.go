// Package apicommon provides common types, constants, and helper functions for the API.
package apicommon

// MetadataKey is a type to define the key for the metadata stored in the
// context.
type MetadataKey string

const (
	// ZoneMetadataKey is the key used to store the resolved identity zone in
	// the context.
	ZoneMetadataKey MetadataKey = "identityZone"
	// ScopesMetadataKey is the key used to store the caller scopes in the
	// context.
	ScopesMetadataKey MetadataKey = "scopes"
)

const (
	// IdentityZoneIDHeader switches the request to the zone with the given id.
	IdentityZoneIDHeader = "X-Identity-Zone-Id"
	// IdentityZoneSubdomainHeader switches the request to the zone with the
	// given subdomain.
	IdentityZoneSubdomainHeader = "X-Identity-Zone-Subdomain"
)
