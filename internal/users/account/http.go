// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account provides the HTTP delivery layer for profile and onboarding management.

# Security

Private endpoints require an active authentication session provided by the
RequireAuth middleware. Public profile discovery is unauthenticated, and the
account listing is restricted to administrators.
*/
package account

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/ritmus/internal/platform/apperr"
	"github.com/taibuivan/ritmus/internal/platform/middleware"
	requestutil "github.com/taibuivan/ritmus/internal/platform/request"
	"github.com/taibuivan/ritmus/internal/platform/respond"
	"github.com/taibuivan/ritmus/internal/platform/sec"
	"github.com/taibuivan/ritmus/internal/platform/validate"
	"github.com/taibuivan/ritmus/pkg/pagination"
	"github.com/taibuivan/ritmus/pkg/slice"
)

// Handler implements the HTTP layer for user account management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Account Management
	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireAuth)
		router.Get("/me", handler.getMe)
		router.Patch("/me", handler.updateMe)
		router.Post("/me/username", handler.claimUsername)
	})

	// Public Profile discovery
	router.Get("/users/{username}", handler.getPublicProfile)

	// Administration
	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireRole(sec.RoleAdmin))
		router.Get("/users", handler.listAccounts)
	})

	return router
}

// # Account Endpoints

/*
GET /api/v1/me.

Description: Retrieves the full private profile of the authenticated user.

Response:
  - 200: Account: Fully hydrated account
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.Me(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

// updateMeRequest defines the expected JSON payload for profile updates.
type updateMeRequest struct {
	DisplayName *string `json:"display_name"`
	Subscribe   *bool   `json:"subscribe"`
}

/*
PATCH /api/v1/me.

Description: Applies partial updates to the authenticated user's profile.

Request:
  - body: updateMeRequest (Partial JSON)

Response:
  - 200: Account: The updated account
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateMeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	if input.DisplayName != nil {
		v.MinLen("display_name", *input.DisplayName, 2).MaxLen("display_name", *input.DisplayName, 50)
	}
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		DisplayName: input.DisplayName,
		Subscribe:   input.Subscribe,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

// claimUsernameRequest defines the expected JSON payload for onboarding completion.
type claimUsernameRequest struct {
	Username string `json:"username"`
}

/*
POST /api/v1/me/username.

Description: Claims a permanent username, completing onboarding.

Request:
  - body: claimUsernameRequest

Response:
  - 200: Account: The account with the claimed username
  - 400: Validation: Username violates the handle rules
  - 401: ErrUnauthorized: Authentication required
  - 409: ErrConflict: Username taken or already claimed
*/
func (handler *Handler) claimUsername(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input claimUsernameRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.ClaimUsername(request.Context(), userID, input.Username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

// # Public Profile Endpoints

/*
GET /api/v1/users/{username}.

Description: Retrieves public profile information for a claimed username.

Response:
  - 200: PublicProfile: Filtered public data
  - 404: ErrNotFound: No account with this username
*/
func (handler *Handler) getPublicProfile(writer http.ResponseWriter, request *http.Request) {
	username := chi.URLParam(request, "username")
	if username == "" {
		respond.Error(writer, request, apperr.NotFound("Profile"))
		return
	}

	profile, err := handler.accountService.PublicProfile(request.Context(), username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

// # Administration Endpoints

// adminAccountSummary is the compact row shape for the admin account listing.
type adminAccountSummary struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	Role           string    `json:"role"`
	SubscriptionID string    `json:"subscription_id"`
	CreatedAt      time.Time `json:"created_at"`
}

/*
GET /api/v1/users.

Description: Lists all accounts with pagination for administrative review.

Request:
  - page, limit: Query parameters

Response:
  - 200: []adminAccountSummary: Page of accounts with pagination metadata
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: Admin role required
*/
func (handler *Handler) listAccounts(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	accounts, total, err := handler.accountService.ListAccounts(
		request.Context(), paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	summaries := slice.Map(accounts, func(account *Account) adminAccountSummary {
		return adminAccountSummary{
			ID:             account.ID,
			Username:       account.UsernameOrEmpty(),
			Email:          account.Email,
			DisplayName:    account.DisplayName,
			Role:           string(account.Role),
			SubscriptionID: account.SubscriptionID,
			CreatedAt:      account.CreatedAt,
		}
	})

	respond.Paginated(writer, summaries, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}
