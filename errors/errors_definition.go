// Package errors provides custom error types and definitions for the application.
//
//nolint:lll
package errors

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400, 401, 403, 404 or 409, whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after the current last 4XXX or 5XXX.
// If you notice there's a gap, that code was used in the past for some error (not anymore) and shouldn't be reused.
var (
	// Authentication errors (401)
	ErrUnauthorized = Error{Code: 40001, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("authentication required"), LogLevel: "info"}

	// Authorization errors (403). The forbidden reply carries no detail about
	// why the caller was rejected beyond "forbidden".
	ErrZoneOperationForbidden = Error{Code: 40002, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("insufficient scope for requested zone"), LogLevel: "info"}

	// Validation errors (400)
	ErrMalformedBody              = Error{Code: 40003, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid JSON request body")}
	ErrMalformedURLParam          = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid URL parameter")}
	ErrInvalidProviderName        = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("provider name must be alphanumeric")}
	ErrInvalidProviderConfig      = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid provider configuration")}
	ErrUnsupportedProviderType    = Error{Code: 40007, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("unsupported provider type")}
	ErrInvalidVerificationRequest = Error{Code: 40008, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid verification request")}

	// Not found errors (404). A record that belongs to another zone is
	// reported exactly like a record that doesn't exist.
	ErrMfaProviderNotFound  = Error{Code: 40009, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("mfa provider not found")}
	ErrIdentityZoneNotFound = Error{Code: 40010, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("identity zone not found")}
	ErrUserNotEnrolled      = Error{Code: 40011, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("user is not enrolled with this provider")}

	// Conflict errors (409)
	ErrDuplicateProviderName = Error{Code: 40901, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("an mfa provider with this name already exists in the zone")}
	ErrMfaProviderInUse      = Error{Code: 40902, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("mfa provider is the active provider of a zone")}

	// Server errors (500) - These should be used sparingly and only for true internal errors
	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: failed to process response"), LogLevel: "error"}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: operation failed"), LogLevel: "error"}
	ErrInvalidStoredSecret        = Error{Code: 50003, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: stored mfa secret is not usable"), LogLevel: "error"}
)
