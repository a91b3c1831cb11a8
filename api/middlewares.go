package api

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/zoneid/mfa-backend/api/apicommon"
	"github.com/zoneid/mfa-backend/db"
	"github.com/zoneid/mfa-backend/errors"
)

// authenticator is a middleware that validates the JWT bearer token and
// extracts the caller scopes from its `scope` claim. The scopes are added to
// the request context for the authorization gate; the scope set may be empty,
// since whether it suffices depends on the target zone and is not decided
// here.
func (a *API) authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			errors.ErrUnauthorized.Write(w)
			return
		}
		if token == nil || jwt.Validate(token) != nil {
			errors.ErrUnauthorized.Withf("invalid JWT token").Write(w)
			return
		}
		// add the scopes from the token claims to the context
		ctx := context.WithValue(r.Context(), apicommon.ScopesMetadataKey, scopesFromClaims(claims))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// scopesFromClaims reads the `scope` claim, accepting both the JSON array and
// the space separated string form.
func scopesFromClaims(claims map[string]any) []string {
	switch claim := claims["scope"].(type) {
	case []any:
		scopes := make([]string, 0, len(claim))
		for _, entry := range claim {
			if scope, ok := entry.(string); ok {
				scopes = append(scopes, scope)
			}
		}
		return scopes
	case []string:
		return claim
	case string:
		return strings.Fields(claim)
	}
	return nil
}

// zoneResolver is a middleware that resolves the identity zone targeted by
// the request and adds it to the context. The `X-Identity-Zone-Id` header
// wins over `X-Identity-Zone-Subdomain`, which wins over the subdomain of the
// request host; without any of them the request targets the default zone. A
// zone named explicitly by a header must exist and be active.
func (a *API) zoneResolver(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zone, err := a.resolveZone(r)
		if err != nil {
			errors.ErrIdentityZoneNotFound.Write(w)
			return
		}
		if !zone.Active {
			errors.ErrIdentityZoneNotFound.With("zone is inactive").Write(w)
			return
		}
		ctx := context.WithValue(r.Context(), apicommon.ZoneMetadataKey, *zone)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *API) resolveZone(r *http.Request) (*db.IdentityZone, error) {
	if zoneID := r.Header.Get(apicommon.IdentityZoneIDHeader); zoneID != "" {
		return a.db.IdentityZone(zoneID)
	}
	if subdomain := r.Header.Get(apicommon.IdentityZoneSubdomainHeader); subdomain != "" {
		return a.db.IdentityZoneBySubdomain(subdomain)
	}
	// the first label of the host selects a zone by subdomain, when one
	// matches; any other host lands on the default zone
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if label, rest, found := strings.Cut(host, "."); found && rest != "" {
		if zone, err := a.db.IdentityZoneBySubdomain(label); err == nil {
			return zone, nil
		}
	}
	return a.db.IdentityZone(db.DefaultZoneID)
}

// makeToken creates a JWT bearer token carrying the given scopes.
// The token is signed with the API secret, following the JWT specification.
// The token is valid for the period specified on jwtExpiration constant.
func (a *API) makeToken(scopes []string) (string, error) {
	j := jwt.New()
	if err := j.Set("scope", scopes); err != nil {
		return "", err
	}
	if err := j.Set(jwt.ExpirationKey, time.Now().Add(jwtExpiration)); err != nil {
		return "", err
	}
	jmap, err := j.AsMap(context.Background())
	if err != nil {
		return "", err
	}
	_, token, err := a.auth.Encode(jmap)
	return token, err
}
