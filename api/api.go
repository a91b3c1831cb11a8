// Package api provides the HTTP API of the MFA provider backend: per-zone
// administration of MFA providers plus the TOTP enrollment and verification
// endpoints, with JWT bearer authentication and zone switching via headers or
// subdomain.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"go.vocdoni.io/dvote/log"

	"github.com/zoneid/mfa-backend/db"
	"github.com/zoneid/mfa-backend/mfa"
)

const jwtExpiration = 360 * time.Hour // 15 days

// Store is the storage surface the API runs on, the provider service needs
// plus zone resolution by subdomain. *db.MongoStorage implements it.
type Store interface {
	mfa.Store
	IdentityZoneBySubdomain(subdomain string) (*db.IdentityZone, error)
}

type Config struct {
	Host   string
	Port   int
	Secret string
	DB     Store
}

// API type represents the API HTTP server with JWT authentication capabilities.
type API struct {
	db     Store
	mfa    *mfa.Service
	auth   *jwtauth.JWTAuth
	host   string
	port   int
	router *chi.Mux
}

// New creates a new API HTTP server. It does not start the server. Use Start() for that.
func New(conf *Config) *API {
	if conf == nil {
		return nil
	}
	return &API{
		db:   conf.DB,
		mfa:  mfa.NewService(conf.DB, nil),
		auth: jwtauth.New("HS256", []byte(conf.Secret), nil),
		host: conf.Host,
		port: conf.Port,
	}
}

// Start starts the API HTTP server (non blocking).
func (a *API) Start() {
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", a.host, a.port), a.initRouter()); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() http.Handler {
	// Create the router with a basic middleware stack
	r := chi.NewRouter()
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type",
			"X-Identity-Zone-Id", "X-Identity-Zone-Subdomain",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Throttle(100))
	r.Use(middleware.Timeout(45 * time.Second))

	// protected routes
	r.Group(func(r chi.Router) {
		// seek, verify and validate JWT tokens
		r.Use(jwtauth.Verifier(a.auth))
		// handle valid JWT tokens
		r.Use(a.authenticator)
		// resolve the target identity zone
		r.Use(a.zoneResolver)
		// create an MFA provider
		log.Infow("new route", "method", "POST", "path", mfaProvidersEndpoint)
		r.Post(mfaProvidersEndpoint, a.createMfaProviderHandler)
		// list the MFA providers of the zone
		log.Infow("new route", "method", "GET", "path", mfaProvidersEndpoint)
		r.Get(mfaProvidersEndpoint, a.mfaProvidersHandler)
		// get an MFA provider
		log.Infow("new route", "method", "GET", "path", mfaProviderEndpoint)
		r.Get(mfaProviderEndpoint, a.mfaProviderInfoHandler)
		// delete an MFA provider
		log.Infow("new route", "method", "DELETE", "path", mfaProviderEndpoint)
		r.Delete(mfaProviderEndpoint, a.deleteMfaProviderHandler)
		// start a TOTP enrollment for a user
		log.Infow("new route", "method", "POST", "path", mfaEnrollmentEndpoint)
		r.Post(mfaEnrollmentEndpoint, a.beginEnrollmentHandler)
		// verify a TOTP code for a user
		log.Infow("new route", "method", "POST", "path", mfaVerificationEndpoint)
		r.Post(mfaVerificationEndpoint, a.verifyCodeHandler)
	})

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get(pingEndpoint, func(w http.ResponseWriter, _ *http.Request) {
			if _, err := w.Write([]byte(".")); err != nil {
				log.Warnw("failed to write ping response", "error", err)
			}
		})
	})
	a.router = r
	return r
}
