// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package gate implements the per-request access gate for the Ritmus web app.

Every page request passes through the gate before rendering. The gate
inspects only the request path and the session facts and produces a routing
decision: let the request through, or redirect it (to sign-in, to the
dashboard, or into onboarding).

Architecture:

  - Evaluate: a pure decision function over (Config, path, Session). No
    I/O, no side effects, trivially testable.
  - Middleware: the chi middleware wrapping Evaluate, which resolves the
    session from the request via a [SessionResolver].

The rule order in Evaluate is significant. Admin gating dominates generic
protected-route gating, and the onboarding rules form a closed loop: an
authenticated user without a username cannot reach the dashboard, and a
user with a username cannot re-enter onboarding.
*/
package gate

import (
	"net/url"
	"strings"

	"github.com/taibuivan/ritmus/internal/platform/sec"
)

// Session holds the per-request session facts the gate decides on.
// The zero value means "no session".
type Session struct {
	// Authenticated reports whether a valid session exists.
	Authenticated bool
	// HasUsername reports whether the account has completed onboarding.
	HasUsername bool
	// Role is the account's authorization role.
	Role sec.UserRole
}

// Config is the static route classification. It is built once at startup
// and never mutated afterwards.
type Config struct {
	// Protected prefixes require authentication.
	Protected []string
	// AdminOnly prefixes require authentication and the admin role.
	AdminOnly []string
	// AuthOnly prefixes redirect away when already authenticated (sign-in pages).
	AuthOnly []string

	// SignInPath is where unauthenticated users are sent.
	SignInPath string
	// DashboardPath is the post-login landing page.
	DashboardPath string
	// OnboardingPath is where users without a username are sent.
	OnboardingPath string

	// APIPrefix marks request paths the gate never touches.
	APIPrefix string
	// AssetPrefix marks framework-internal static asset paths.
	AssetPrefix string
}

// Decision is the gate's output for a single request.
type Decision struct {
	// Allow is true when the request may proceed.
	Allow bool
	// Location is the redirect target when Allow is false.
	Location string
}

func allow() Decision {
	return Decision{Allow: true}
}

func redirect(location string) Decision {
	return Decision{Location: location}
}

// withCallback appends the original path as a callbackUrl query parameter
// so the sign-in flow can return the user afterwards.
func withCallback(target, originalPath string) string {
	query := url.Values{}
	query.Set("callbackUrl", originalPath)
	return target + "?" + query.Encode()
}

func matchesAny(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// isBypassed reports whether the path is exempt from gating entirely.
// API endpoints and static assets are never gated.
func (cfg Config) isBypassed(path string) bool {
	if strings.HasPrefix(path, cfg.APIPrefix) {
		return true
	}
	if cfg.AssetPrefix != "" && strings.HasPrefix(path, cfg.AssetPrefix) {
		return true
	}
	if strings.HasPrefix(path, "/favicon") {
		return true
	}
	// Paths with a file extension are static files.
	return strings.Contains(path, ".")
}

/*
Evaluate produces the routing decision for a request path.

Rules are evaluated in fixed order; the first applicable rule wins:

 1. API and static asset paths are always allowed.
 2. Admin paths require authentication (redirect to sign-in with a
    callbackUrl) and the admin role (redirect to the dashboard with
    error=unauthorized otherwise).
 3. Protected paths require authentication (redirect to sign-in with a
    callbackUrl).
 4. Sign-in pages redirect authenticated users to the dashboard, or into
    onboarding when the profile has no username yet.
 5. The onboarding page redirects users who already have a username back
    to the dashboard.
 6. Dashboard paths redirect users without a username into onboarding.
 7. Everything else is allowed.

Evaluate is pure: it performs no I/O and has no side effects.
*/
func Evaluate(cfg Config, path string, session Session) Decision {

	// 1. Bypass
	if cfg.isBypassed(path) {
		return allow()
	}

	// 2. Admin gating dominates protected gating.
	if matchesAny(path, cfg.AdminOnly) {
		if !session.Authenticated {
			return redirect(withCallback(cfg.SignInPath, path))
		}
		if !session.Role.AtLeast(sec.RoleAdmin) {
			return redirect(cfg.DashboardPath + "?error=unauthorized")
		}
		return allow()
	}

	// 3. Protected routes need a session.
	if matchesAny(path, cfg.Protected) && !session.Authenticated {
		return redirect(withCallback(cfg.SignInPath, path))
	}

	// 4. Authenticated users have no business on sign-in pages.
	if matchesAny(path, cfg.AuthOnly) && session.Authenticated {
		if session.HasUsername {
			return redirect(cfg.DashboardPath)
		}
		return redirect(cfg.OnboardingPath)
	}

	// 5. Onboarding is closed once the username is claimed.
	if path == cfg.OnboardingPath && session.Authenticated && session.HasUsername {
		return redirect(cfg.DashboardPath)
	}

	// 6. The dashboard is closed until the username is claimed.
	if strings.HasPrefix(path, cfg.DashboardPath) && session.Authenticated && !session.HasUsername {
		return redirect(cfg.OnboardingPath)
	}

	// 7. Default
	return allow()
}
