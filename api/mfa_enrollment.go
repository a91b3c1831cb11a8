package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zoneid/mfa-backend/api/apicommon"
	"github.com/zoneid/mfa-backend/errors"
)

// beginEnrollmentHandler handles POST /mfa-providers/{providerId}/enrollment.
// It generates a fresh TOTP secret for the user and returns the provisioning
// material. The secret is shown here once; it never appears in any provider
// or credential response afterwards.
func (a *API) beginEnrollmentHandler(w http.ResponseWriter, r *http.Request) {
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
	req := &apicommon.EnrollmentRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	enrollment, err := a.mfa.BeginEnrollment(zone, providerID, req.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	apicommon.HTTPWriteJSON(w, enrollment)
}

// verifyCodeHandler handles POST /mfa-providers/{providerId}/verification. It
// checks the submitted code against the user's enrollment and consumes its
// time step, so the same code cannot be accepted twice.
func (a *API) verifyCodeHandler(w http.ResponseWriter, r *http.Request) {
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
	req := &apicommon.VerificationRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	valid, err := a.mfa.VerifyCode(zone, providerID, req.UserID, req.Code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.VerificationResponse{Valid: valid})
}
