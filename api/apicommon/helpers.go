package apicommon

import (
	"context"
	"encoding/json"
	"net/http"

	"go.vocdoni.io/dvote/log"

	"github.com/zoneid/mfa-backend/db"
)

// ZoneFromContext retrieves the identity zone resolved by the zone middleware
// from the request context.
func ZoneFromContext(ctx context.Context) (*db.IdentityZone, bool) {
	zone, ok := ctx.Value(ZoneMetadataKey).(db.IdentityZone)
	if ok {
		return &zone, ok
	}
	return nil, false
}

// ScopesFromContext retrieves the caller scopes extracted by the
// authenticator middleware from the request context.
func ScopesFromContext(ctx context.Context) []string {
	scopes, ok := ctx.Value(ScopesMetadataKey).([]string)
	if !ok {
		return nil
	}
	return scopes
}

// HTTPWriteJSON helper function allows to write a JSON response.
func HTTPWriteJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// HTTPWriteOK helper function allows to write an OK response.
func HTTPWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}
