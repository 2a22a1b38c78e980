// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package orgs handles team workspaces: organizations, memberships, and invitations.

An organization owns a shared credit pool and subscription. Members join either
at creation time (the creator becomes the owner) or by accepting an emailed
invitation.

# Architecture

  - Entities: Organization, Member, Invitation.
  - Invitations: Single-use tokens, stored hashed, with a fixed expiry window.
  - Authorization: Membership checks happen in the service layer.
*/
package orgs

import (
	"context"
	"time"
)

// # Domain Entities

// MemberRole defines the permission tier of a member inside an organization.
type MemberRole string

const (
	// RoleOwner is the creator tier. Owners manage billing and membership.
	RoleOwner MemberRole = "owner"
	// RoleAdmin may invite and remove members.
	RoleAdmin MemberRole = "admin"
	// RoleMember is the default collaboration tier.
	RoleMember MemberRole = "member"
)

// CanInvite reports whether this role may send invitations.
func (role MemberRole) CanInvite() bool {
	return role == RoleOwner || role == RoleAdmin
}

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus string

const (
	// StatusPending marks an invitation that has not been redeemed.
	StatusPending InvitationStatus = "pending"
	// StatusAccepted marks a redeemed invitation.
	StatusAccepted InvitationStatus = "accepted"
)

// InvitationTTL is how long an invitation stays redeemable.
const InvitationTTL = 7 * 24 * time.Hour

// Organization represents a team workspace with a shared billing identity.
type Organization struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Logo           *string   `json:"logo,omitempty"`
	OwnerID        string    `json:"owner_id"`
	SubscriptionID string    `json:"subscription_id"`
	Credits        int       `json:"credits"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Member links an account to an organization with a permission tier.
type Member struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	AccountID      string     `json:"account_id"`
	Role           MemberRole `json:"role"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Invitation is a pending offer to join an organization.
//
// The raw token is emailed to the invitee and never stored; only its hash
// is persisted, the same way refresh tokens are handled.
type Invitation struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	Email          string     `json:"email"`
	Role           MemberRole `json:"role"`
	TokenHash      string     `json:"-"`
	InvitedByID    string     `json:"invited_by_id"`
	ExpiresAt      time.Time  `json:"expires_at"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Status derives the lifecycle state from the acceptance timestamp.
func (invitation *Invitation) Status() InvitationStatus {
	if invitation.AcceptedAt != nil {
		return StatusAccepted
	}
	return StatusPending
}

// Expired reports whether the invitation can no longer be redeemed.
func (invitation *Invitation) Expired(now time.Time) bool {
	return now.After(invitation.ExpiresAt)
}

// # Repository Contracts

// OrganizationRepository defines the persistence contract for organizations.
type OrganizationRepository interface {
	/*
		Create persists a new organization.

		Parameters:
		  - context: context.Context
		  - org: *Organization

		Returns:
		  - error: apperr.Conflict on a slug collision, or storage failures
	*/
	Create(context context.Context, org *Organization) error

	/*
		FindByID retrieves an organization by its unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *Organization: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Organization, error)

	/*
		ListByAccount returns the organizations an account belongs to.

		Parameters:
		  - context: context.Context
		  - accountID: string

		Returns:
		  - []*Organization: Memberships resolved to organizations
		  - error: Retrieval failures
	*/
	ListByAccount(context context.Context, accountID string) ([]*Organization, error)
}

// MemberRepository defines the persistence contract for memberships.
type MemberRepository interface {
	/*
		Add persists a new membership.

		Parameters:
		  - context: context.Context
		  - member: *Member

		Returns:
		  - error: apperr.Conflict when already a member, or storage failures
	*/
	Add(context context.Context, member *Member) error

	/*
		Find retrieves the membership of an account in an organization.

		Parameters:
		  - context: context.Context
		  - organizationID: string
		  - accountID: string

		Returns:
		  - *Member: Hydrated membership
		  - error: apperr.NotFound when not a member
	*/
	Find(context context.Context, organizationID, accountID string) (*Member, error)

	/*
		ListByOrganization returns every member of an organization.

		Parameters:
		  - context: context.Context
		  - organizationID: string

		Returns:
		  - []*Member: All memberships, oldest first
		  - error: Retrieval failures
	*/
	ListByOrganization(context context.Context, organizationID string) ([]*Member, error)
}

// InvitationRepository defines the persistence contract for invitations.
type InvitationRepository interface {
	/*
		Create persists a new invitation.

		Parameters:
		  - context: context.Context
		  - invitation: *Invitation

		Returns:
		  - error: Storage failures
	*/
	Create(context context.Context, invitation *Invitation) error

	/*
		FindByTokenHash retrieves an invitation by the hash of its raw token.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - *Invitation: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByTokenHash(context context.Context, tokenHash string) (*Invitation, error)

	/*
		MarkAccepted stamps the acceptance time onto a pending invitation.

		Parameters:
		  - context: context.Context
		  - id: string
		  - at: time.Time

		Returns:
		  - error: Storage failures
	*/
	MarkAccepted(context context.Context, id string, at time.Time) error
}
