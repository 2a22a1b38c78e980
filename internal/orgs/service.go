// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package orgs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/ritmus/internal/platform/apperr"
	"github.com/taibuivan/ritmus/internal/platform/mail"
	"github.com/taibuivan/ritmus/internal/platform/sec"
	"github.com/taibuivan/ritmus/internal/platform/validate"
	"github.com/taibuivan/ritmus/pkg/slug"
	"github.com/taibuivan/ritmus/pkg/uuidv7"
)

// defaultSubscriptionID is the plan every new organization starts on.
const defaultSubscriptionID = "starter"

// inviteTokenLength is the byte length of raw invitation tokens.
const inviteTokenLength = 32

// # Service Layer

// Service orchestrates business logic for organizations, memberships, and
// invitations.
type Service struct {
	organizationRepository OrganizationRepository
	memberRepository       MemberRepository
	invitationRepository   InvitationRepository
	mailer                 mail.Mailer
	appBaseURL             string
	logger                 *slog.Logger
	now                    func() time.Time
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	organizationRepo OrganizationRepository,
	memberRepo MemberRepository,
	invitationRepo InvitationRepository,
	mailer mail.Mailer,
	appBaseURL string,
	logger *slog.Logger,
) *Service {
	return &Service{
		organizationRepository: organizationRepo,
		memberRepository:       memberRepo,
		invitationRepository:   invitationRepo,
		mailer:                 mailer,
		appBaseURL:             appBaseURL,
		logger:                 logger,
		now:                    time.Now,
	}
}

// # Organization Management

/*
CreateOrganization provisions a new team workspace.

Description: Derives a URL slug from the name and persists the organization on
the starter plan. The creator is recorded as the owner and immediately added
as the first member.

Parameters:
  - context: context.Context
  - ownerID: string (Account of the creator)
  - name: string

Returns:
  - *Organization: The created workspace
  - error: Validation, apperr.Conflict on a slug collision, or storage failures
*/
func (service *Service) CreateOrganization(context context.Context, ownerID, name string) (*Organization, error) {
	v := &validate.Validator{}
	v.Required("name", name).MinLen("name", name, 2).MaxLen("name", name, 100)
	if err := v.Err(); err != nil {
		return nil, err
	}

	orgSlug := slug.From(name)
	if orgSlug == "" {
		return nil, apperr.ValidationError("Organization name must contain letters or digits",
			apperr.FieldError{Field: "name", Message: "Cannot derive a slug from this name"})
	}

	now := service.now()
	org := &Organization{
		ID:             uuidv7.Must(),
		Name:           name,
		Slug:           orgSlug,
		OwnerID:        ownerID,
		SubscriptionID: defaultSubscriptionID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := service.organizationRepository.Create(context, org); err != nil {
		return nil, err
	}

	// The creator is the first member, at the owner tier.
	member := &Member{
		ID:             uuidv7.Must(),
		OrganizationID: org.ID,
		AccountID:      ownerID,
		Role:           RoleOwner,
		CreatedAt:      now,
	}
	if err := service.memberRepository.Add(context, member); err != nil {
		return nil, fmt.Errorf("orgs_service_add_owner_failed: %w", err)
	}

	service.logger.Info("organization_created",
		slog.String("organization_id", org.ID),
		slog.String("slug", org.Slug),
		slog.String("owner_id", ownerID),
	)

	return org, nil
}

/*
GetOrganization retrieves a workspace the requester belongs to.

Parameters:
  - context: context.Context
  - organizationID: string
  - requesterID: string

Returns:
  - *Organization: Hydrated workspace
  - error: apperr.Forbidden for non-members, apperr.NotFound, or storage failures
*/
func (service *Service) GetOrganization(context context.Context, organizationID, requesterID string) (*Organization, error) {
	if _, err := service.requireMembership(context, organizationID, requesterID); err != nil {
		return nil, err
	}
	return service.organizationRepository.FindByID(context, organizationID)
}

/*
ListOrganizations returns every workspace the account is a member of.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - []*Organization: Memberships resolved to organizations
  - error: Retrieval failures
*/
func (service *Service) ListOrganizations(context context.Context, accountID string) ([]*Organization, error) {
	orgs, err := service.organizationRepository.ListByAccount(context, accountID)
	if err != nil {
		return nil, fmt.Errorf("orgs_service_list_failed: %w", err)
	}
	return orgs, nil
}

// # Membership

/*
ListMembers returns every member of an organization the requester belongs to.

Parameters:
  - context: context.Context
  - organizationID: string
  - requesterID: string

Returns:
  - []*Member: All memberships, oldest first
  - error: apperr.Forbidden for non-members, or retrieval failures
*/
func (service *Service) ListMembers(context context.Context, organizationID, requesterID string) ([]*Member, error) {
	if _, err := service.requireMembership(context, organizationID, requesterID); err != nil {
		return nil, err
	}

	members, err := service.memberRepository.ListByOrganization(context, organizationID)
	if err != nil {
		return nil, fmt.Errorf("orgs_service_list_members_failed: %w", err)
	}
	return members, nil
}

// requireMembership resolves the requester's membership or fails with Forbidden.
func (service *Service) requireMembership(context context.Context, organizationID, requesterID string) (*Member, error) {
	member, err := service.memberRepository.Find(context, organizationID, requesterID)
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, apperr.Forbidden("You are not a member of this organization")
		}
		return nil, fmt.Errorf("orgs_service_membership_lookup_failed: %w", err)
	}
	return member, nil
}

// # Invitations

/*
Invite creates a pending invitation and emails the join link.

Description: Only owners and admins may invite. The raw token goes into the
email link; only its hash is persisted. A delivery failure is logged but does
not void the invitation, since the token can be re-sent.

Parameters:
  - context: context.Context
  - organizationID: string
  - inviterID: string
  - email: string
  - role: MemberRole (admin or member)

Returns:
  - *Invitation: The persisted invitation
  - error: Validation, apperr.Forbidden, or storage failures
*/
func (service *Service) Invite(context context.Context, organizationID, inviterID, email string, role MemberRole) (*Invitation, error) {
	v := &validate.Validator{}
	v.Required("email", email).
		Email("email", email).
		OneOf("role", string(role), string(RoleAdmin), string(RoleMember))
	if err := v.Err(); err != nil {
		return nil, err
	}

	inviter, err := service.requireMembership(context, organizationID, inviterID)
	if err != nil {
		return nil, err
	}
	if !inviter.Role.CanInvite() {
		return nil, apperr.Forbidden("Only owners and admins can invite members")
	}

	org, err := service.organizationRepository.FindByID(context, organizationID)
	if err != nil {
		return nil, err
	}

	rawToken, err := sec.GenerateSecureToken(inviteTokenLength)
	if err != nil {
		return nil, fmt.Errorf("orgs_service_invite_token_failed: %w", err)
	}

	now := service.now()
	invitation := &Invitation{
		ID:             uuidv7.Must(),
		OrganizationID: organizationID,
		Email:          email,
		Role:           role,
		TokenHash:      sec.HashToken(rawToken),
		InvitedByID:    inviterID,
		ExpiresAt:      now.Add(InvitationTTL),
		CreatedAt:      now,
	}

	if err := service.invitationRepository.Create(context, invitation); err != nil {
		return nil, fmt.Errorf("orgs_service_invite_create_failed: %w", err)
	}

	inviteURL := service.appBaseURL + "/orgs/accept-invite?token=" + rawToken
	if err := service.mailer.SendTeamInvite(context, email, org.Name, inviteURL); err != nil {
		service.logger.Warn("invite_email_failed",
			slog.String("organization_id", organizationID),
			slog.String("email", email),
			slog.Any("error", err),
		)
	}

	service.logger.Info("member_invited",
		slog.String("organization_id", organizationID),
		slog.String("email", email),
		slog.String("role", string(role)),
	)

	return invitation, nil
}

/*
AcceptInvitation redeems an invitation token and joins the organization.

Description: The token must resolve to a pending, unexpired invitation. On
success the account is added with the invited role and the invitation is
stamped accepted, making the token single-use.

Parameters:
  - context: context.Context
  - accountID: string
  - rawToken: string

Returns:
  - *Member: The new membership
  - error: apperr.NotFound, apperr.Conflict, apperr.Unprocessable, or storage failures
*/
func (service *Service) AcceptInvitation(context context.Context, accountID, rawToken string) (*Member, error) {
	if rawToken == "" {
		return nil, apperr.NotFound("Invitation")
	}

	invitation, err := service.invitationRepository.FindByTokenHash(context, sec.HashToken(rawToken))
	if err != nil {
		return nil, err
	}

	if invitation.Status() == StatusAccepted {
		return nil, apperr.Conflict("Invitation has already been used")
	}

	now := service.now()
	if invitation.Expired(now) {
		return nil, apperr.Unprocessable("Invitation has expired")
	}

	member := &Member{
		ID:             uuidv7.Must(),
		OrganizationID: invitation.OrganizationID,
		AccountID:      accountID,
		Role:           invitation.Role,
		CreatedAt:      now,
	}
	if err := service.memberRepository.Add(context, member); err != nil {
		return nil, err
	}

	if err := service.invitationRepository.MarkAccepted(context, invitation.ID, now); err != nil {
		return nil, fmt.Errorf("orgs_service_accept_mark_failed: %w", err)
	}

	service.logger.Info("invitation_accepted",
		slog.String("organization_id", invitation.OrganizationID),
		slog.String("account_id", accountID),
	)

	return member, nil
}
