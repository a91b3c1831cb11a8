package db

const (
	// provider types
	TypeGoogleAuthenticator MfaProviderType = "google-authenticator"

	// DefaultZoneID is the identifier of the zone resolved when no subdomain
	// or zone switch header is present in a request.
	DefaultZoneID = "uaa"
)

// validMfaProviderTypes is a map that contains the valid provider types
var validMfaProviderTypes = map[MfaProviderType]bool{
	TypeGoogleAuthenticator: true,
}

// MfaProviderTypeNames is a map that contains the provider type display names
var MfaProviderTypeNames = map[MfaProviderType]string{
	TypeGoogleAuthenticator: "Google Authenticator",
}

// IsMfaProviderTypeValid function checks if the provider type is valid
func IsMfaProviderTypeValid(t string) bool {
	_, valid := validMfaProviderTypes[MfaProviderType(t)]
	return valid
}
