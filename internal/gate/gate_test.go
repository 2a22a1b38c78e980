// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package gate

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/ritmus/internal/platform/sec"
)

func testConfig() Config {
	return Config{
		Protected:      []string{"/dashboard", "/welcome", "/settings"},
		AdminOnly:      []string{"/admin"},
		AuthOnly:       []string{"/auth/sign-in"},
		SignInPath:     "/auth/sign-in",
		DashboardPath:  "/dashboard",
		OnboardingPath: "/welcome",
		APIPrefix:      "/api/",
		AssetPrefix:    "/assets/",
	}
}

var (
	anonymous     = Session{}
	member        = Session{Authenticated: true, HasUsername: true, Role: sec.RoleUser}
	freshMember   = Session{Authenticated: true, HasUsername: false, Role: sec.RoleUser}
	administrator = Session{Authenticated: true, HasUsername: true, Role: sec.RoleAdmin}
)

func TestEvaluate(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name         string
		path         string
		session      Session
		wantAllow    bool
		wantLocation string
	}{
		// Bypass rules
		{"api paths bypass the gate", "/api/v1/products", anonymous, true, ""},
		{"framework assets bypass the gate", "/assets/app.js", anonymous, true, ""},
		{"favicon bypasses the gate", "/favicon.ico", anonymous, true, ""},
		{"file extensions bypass the gate", "/og-image.png", anonymous, true, ""},
		{"admin api paths bypass too", "/api/v1/admin/products/sync", anonymous, true, ""},

		// Admin gating
		{"anonymous on admin path goes to sign-in with callback", "/admin/products", anonymous,
			false, "/auth/sign-in?callbackUrl=%2Fadmin%2Fproducts"},
		{"non-admin on admin path bounces to dashboard with error", "/admin/products", member,
			false, "/dashboard?error=unauthorized"},
		{"non-admin without username still bounces to dashboard", "/admin", freshMember,
			false, "/dashboard?error=unauthorized"},
		{"admin passes admin paths", "/admin/products", administrator, true, ""},

		// Protected gating
		{"anonymous on protected path goes to sign-in with callback", "/dashboard/library", anonymous,
			false, "/auth/sign-in?callbackUrl=%2Fdashboard%2Flibrary"},
		{"anonymous on settings goes to sign-in", "/settings", anonymous,
			false, "/auth/sign-in?callbackUrl=%2Fsettings"},
		{"member passes protected paths", "/settings", member, true, ""},

		// Sign-in page loop
		{"member on sign-in page bounces to dashboard", "/auth/sign-in", member, false, "/dashboard"},
		{"fresh member on sign-in page bounces to onboarding", "/auth/sign-in", freshMember, false, "/welcome"},
		{"anonymous may view the sign-in page", "/auth/sign-in", anonymous, true, ""},

		// Onboarding closure
		{"member cannot re-enter onboarding", "/welcome", member, false, "/dashboard"},
		{"fresh member stays in onboarding", "/welcome", freshMember, true, ""},
		{"fresh member cannot reach the dashboard", "/dashboard", freshMember, false, "/welcome"},
		{"fresh member cannot reach dashboard subpaths", "/dashboard/billing", freshMember, false, "/welcome"},
		{"member passes the dashboard", "/dashboard", member, true, ""},

		// Default allow
		{"public pages pass for anyone", "/pricing", anonymous, true, ""},
		{"root passes for anyone", "/", member, true, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			decision := Evaluate(cfg, test.path, test.session)
			assert.Equal(t, test.wantAllow, decision.Allow)
			assert.Equal(t, test.wantLocation, decision.Location)
		})
	}
}

// stubResolver returns a fixed session or error for every request.
type stubResolver struct {
	session Session
	err     error
	calls   int
}

func (resolver *stubResolver) ResolveSession(*http.Request) (Session, error) {
	resolver.calls++
	return resolver.session, resolver.err
}

func gatedHandler(resolver SessionResolver) http.Handler {
	next := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
	return Middleware(testConfig(), resolver)(next)
}

func TestMiddlewareRedirectsWith303(t *testing.T) {
	handler := gatedHandler(&stubResolver{session: anonymous})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/admin/products", nil))

	require.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/auth/sign-in?callbackUrl=%2Fadmin%2Fproducts", recorder.Header().Get("Location"))
}

func TestMiddlewareAllowsThrough(t *testing.T) {
	handler := gatedHandler(&stubResolver{session: member})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestMiddlewareFailsClosed(t *testing.T) {
	// A broken session store must be indistinguishable from "no session".
	resolver := &stubResolver{
		session: administrator,
		err:     errors.New("session store unreachable"),
	}
	handler := gatedHandler(resolver)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/admin/products", nil))

	require.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/auth/sign-in?callbackUrl=%2Fadmin%2Fproducts", recorder.Header().Get("Location"))
}

func TestMiddlewareSkipsResolutionForBypassedPaths(t *testing.T) {
	resolver := &stubResolver{session: anonymous}
	handler := gatedHandler(resolver)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Zero(t, resolver.calls)
}
