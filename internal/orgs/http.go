// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package orgs provides the HTTP delivery layer for team workspaces.

# Security

All endpoints require an active authentication session provided by the
RequireAuth middleware. Per-organization authorization (membership, invite
permissions) happens in the service layer.
*/
package orgs

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/ritmus/internal/platform/middleware"
	requestutil "github.com/taibuivan/ritmus/internal/platform/request"
	"github.com/taibuivan/ritmus/internal/platform/respond"
)

// Handler implements the HTTP layer for organization management.
type Handler struct {
	orgService *Service
}

// NewHandler constructs a new orgs [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{orgService: service}
}

// Routes returns a [chi.Router] configured with the orgs domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	// Organization Management
	router.Post("/", handler.createOrganization)
	router.Get("/", handler.listOrganizations)
	router.Get("/{id}", handler.getOrganization)

	// Membership
	router.Get("/{id}/members", handler.listMembers)

	// Invitations
	router.Post("/{id}/invitations", handler.invite)
	router.Post("/invitations/accept", handler.acceptInvitation)

	return router
}

// # Organization Endpoints

// createOrganizationRequest defines the expected JSON payload for workspace creation.
type createOrganizationRequest struct {
	Name string `json:"name"`
}

/*
POST /api/v1/orgs.

Description: Provisions a new team workspace owned by the authenticated user.

Request:
  - body: createOrganizationRequest

Response:
  - 201: Organization: The created workspace
  - 400: Validation: Invalid name
  - 401: ErrUnauthorized: Authentication required
  - 409: ErrConflict: Slug already in use
*/
func (handler *Handler) createOrganization(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createOrganizationRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	org, err := handler.orgService.CreateOrganization(request.Context(), userID, input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, org)
}

/*
GET /api/v1/orgs.

Description: Lists every workspace the authenticated user belongs to.

Response:
  - 200: []Organization: The user's workspaces
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) listOrganizations(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	orgs, err := handler.orgService.ListOrganizations(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, orgs)
}

/*
GET /api/v1/orgs/{id}.

Description: Retrieves a workspace the authenticated user is a member of.

Response:
  - 200: Organization: Hydrated workspace
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: Not a member
  - 404: ErrNotFound: Unknown organization
*/
func (handler *Handler) getOrganization(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	org, err := handler.orgService.GetOrganization(request.Context(), chi.URLParam(request, "id"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, org)
}

// # Membership Endpoints

/*
GET /api/v1/orgs/{id}/members.

Description: Lists every member of a workspace the requester belongs to.

Response:
  - 200: []Member: All memberships
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: Not a member
*/
func (handler *Handler) listMembers(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	members, err := handler.orgService.ListMembers(request.Context(), chi.URLParam(request, "id"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, members)
}

// # Invitation Endpoints

// inviteRequest defines the expected JSON payload for member invitations.
type inviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

/*
POST /api/v1/orgs/{id}/invitations.

Description: Invites an email address to join the workspace. Only owners and
admins may invite.

Request:
  - body: inviteRequest

Response:
  - 201: Invitation: The pending invitation
  - 400: Validation: Invalid email or role
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: Insufficient membership tier
*/
func (handler *Handler) invite(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input inviteRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	invitation, err := handler.orgService.Invite(
		request.Context(), chi.URLParam(request, "id"), userID, input.Email, MemberRole(input.Role))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, invitation)
}

// acceptInvitationRequest defines the expected JSON payload for redemption.
type acceptInvitationRequest struct {
	Token string `json:"token"`
}

/*
POST /api/v1/orgs/invitations/accept.

Description: Redeems an invitation token and joins the workspace.

Request:
  - body: acceptInvitationRequest

Response:
  - 200: Member: The new membership
  - 401: ErrUnauthorized: Authentication required
  - 404: ErrNotFound: Unknown or mistyped token
  - 409: ErrConflict: Token already used or already a member
  - 422: ErrUnprocessable: Invitation expired
*/
func (handler *Handler) acceptInvitation(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input acceptInvitationRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	member, err := handler.orgService.AcceptInvitation(request.Context(), userID, input.Token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, member)
}
