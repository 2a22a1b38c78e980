// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package gate

import (
	"net/http"

	"github.com/taibuivan/ritmus/internal/platform/constants"
	"github.com/taibuivan/ritmus/internal/platform/ctxutil"
)

// SessionResolver produces the session facts for an inbound request.
//
// The auth domain implements this against its session store; tests use a
// stub. A resolver error means the session could not be verified, and the
// gate treats the request as unauthenticated. It never fails open.
type SessionResolver interface {
	ResolveSession(request *http.Request) (Session, error)
}

// DefaultConfig returns the route classification used by the Ritmus app.
func DefaultConfig() Config {
	return Config{
		Protected:      []string{constants.DashboardPath, constants.OnboardingPath, "/settings"},
		AdminOnly:      []string{"/admin"},
		AuthOnly:       []string{constants.SignInPath},
		SignInPath:     constants.SignInPath,
		DashboardPath:  constants.DashboardPath,
		OnboardingPath: constants.OnboardingPath,
		APIPrefix:      constants.APIPrefix,
		AssetPrefix:    constants.AssetPrefix,
	}
}

// Middleware returns the chi middleware that gates page requests.
//
// Allowed requests pass through untouched. Everything else becomes a
// 303 redirect so a gated POST never gets replayed against the target.
func Middleware(cfg Config, resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			path := request.URL.Path

			// Bypassed paths skip session resolution entirely. The session
			// lookup is the only expensive step, so don't pay it for assets.
			if cfg.isBypassed(path) {
				next.ServeHTTP(writer, request)
				return
			}

			session, err := resolver.ResolveSession(request)
			if err != nil {
				// Fail closed. An unreachable session store must never
				// grant access to an admin route.
				ctxutil.GetLogger(request.Context()).Warn("session resolution failed, treating as unauthenticated",
					"path", path, "error", err)
				session = Session{}
			}

			decision := Evaluate(cfg, path, session)
			if decision.Allow {
				next.ServeHTTP(writer, request)
				return
			}

			http.Redirect(writer, request, decision.Location, http.StatusSeeOther)
		})
	}
}
