package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zoneid/mfa-backend/api/apicommon"
	"github.com/zoneid/mfa-backend/errors"
)

// writeServiceError writes a service error as its catalog entry, or as a
// generic internal error when it isn't one.
func writeServiceError(w http.ResponseWriter, err error) {
	var apiErr errors.Error
	if stderrors.As(err, &apiErr) {
		apiErr.Write(w)
		return
	}
	errors.ErrGenericInternalServerError.WithErr(err).Write(w)
}

// createMfaProviderHandler handles POST /mfa-providers. It creates a provider
// in the zone the request resolved to and returns the stored record,
// including the system assigned id and timestamps.
func (a *API) createMfaProviderHandler(w http.ResponseWriter, r *http.Request) {
	zone, ok := apicommon.ZoneFromContext(r.Context())
	if !ok {
		errors.ErrGenericInternalServerError.Write(w)
		return
	}
	req := &apicommon.MfaProviderRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	provider, err := a.mfa.CreateProvider(zone,
		apicommon.ScopesFromContext(r.Context()), req.Name, req.Type, req.Config)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(provider); err != nil {
		errors.ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
	}
}

// mfaProvidersHandler handles GET /mfa-providers. It lists the providers of
// the zone the request resolved to, sorted by name.
func (a *API) mfaProvidersHandler(w http.ResponseWriter, r *http.Request) {
	zone, ok := apicommon.ZoneFromContext(r.Context())
	if !ok {
		errors.ErrGenericInternalServerError.Write(w)
		return
	}
	providers, err := a.mfa.Providers(zone, apicommon.ScopesFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.MfaProvidersResponse{Providers: providers})
}

// mfaProviderInfoHandler handles GET /mfa-providers/{providerId}.
func (a *API) mfaProviderInfoHandler(w http.ResponseWriter, r *http.Request) {
	zone, ok := apicommon.ZoneFromContext(r.Context())
	if !ok {
		errors.ErrGenericInternalServerError.Write(w)
		return
	}
	providerID := chi.URLParam(r, "providerId")
	if providerID == "" {
		errors.ErrMalformedURLParam.Write(w)
		return
	}
	provider, err := a.mfa.Provider(zone, apicommon.ScopesFromContext(r.Context()), providerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	apicommon.HTTPWriteJSON(w, provider)
}

// deleteMfaProviderHandler handles DELETE /mfa-providers/{providerId}. The
// deleted record is returned; user enrollments against the provider are
// removed with it.
func (a *API) deleteMfaProviderHandler(w http.ResponseWriter, r *http.Request) {
	zone, ok := apicommon.ZoneFromContext(r.Context())
	if !ok {
		errors.ErrGenericInternalServerError.Write(w)
		return
	}
	providerID := chi.URLParam(r, "providerId")
	if providerID == "" {
		errors.ErrMalformedURLParam.Write(w)
		return
	}
	provider, err := a.mfa.DeleteProvider(zone, apicommon.ScopesFromContext(r.Context()), providerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	apicommon.HTTPWriteJSON(w, provider)
}
