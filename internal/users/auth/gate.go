// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/taibuivan/ritmus/internal/gate"
	"github.com/taibuivan/ritmus/internal/platform/constants"
)

// GateResolver derives the access gate's session facts from the refresh
// token cookie. It implements [gate.SessionResolver].
type GateResolver struct {
	service *Service
}

// NewGateResolver creates the resolver used by the page gate.
func NewGateResolver(service *Service) *GateResolver {
	return &GateResolver{service: service}
}

// ResolveSession implements [gate.SessionResolver].
//
// A missing cookie is a plain anonymous visit, not an error. An invalid or
// revoked token resolves to no session either; the gate then redirects as
// it would for any anonymous request.
func (resolver *GateResolver) ResolveSession(request *http.Request) (gate.Session, error) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		return gate.Session{}, nil
	}

	user, err := resolver.service.SessionUser(request.Context(), cookie.Value)
	if err != nil {
		return gate.Session{}, nil
	}

	return gate.Session{
		Authenticated: true,
		HasUsername:   user.Username != nil,
		Role:          user.Role,
	}, nil
}
