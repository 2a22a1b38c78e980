// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package orgs (Postgres) implements the storage layer for team workspaces.

# Schema Table Mapping
  - orgs.organization: Workspace identity and billing state.
  - orgs.member: Account memberships per workspace.
  - orgs.invitation: Pending and redeemed invitations.
*/
package orgs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/ritmus/internal/platform/apperr"
	"github.com/taibuivan/ritmus/internal/platform/database/schema"
	"github.com/taibuivan/ritmus/internal/platform/dberr"
)

// PostgresOrganizationRepository implements [OrganizationRepository] using pgx.
type PostgresOrganizationRepository struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepository creates a new Postgres implementation for organizations.
func NewOrganizationRepository(pool *pgxpool.Pool) *PostgresOrganizationRepository {
	return &PostgresOrganizationRepository{pool: pool}
}

// PostgresMemberRepository implements [MemberRepository] using pgx.
type PostgresMemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository creates a new Postgres implementation for memberships.
func NewMemberRepository(pool *pgxpool.Pool) *PostgresMemberRepository {
	return &PostgresMemberRepository{pool: pool}
}

// PostgresInvitationRepository implements [InvitationRepository] using pgx.
type PostgresInvitationRepository struct {
	pool *pgxpool.Pool
}

// NewInvitationRepository creates a new Postgres implementation for invitations.
func NewInvitationRepository(pool *pgxpool.Pool) *PostgresInvitationRepository {
	return &PostgresInvitationRepository{pool: pool}
}

// # OrganizationRepository Methods

func organizationColumns() string {
	t := schema.OrgsOrganization
	return strings.Join([]string{
		t.ID, t.Name, t.Slug, t.Logo, t.OwnerID, t.SubscriptionID,
		t.Credits, t.CreatedAt, t.UpdatedAt,
	}, ", ")
}

func scanOrganization(row pgx.Row) (*Organization, error) {
	org := &Organization{}
	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.Slug,
		&org.Logo,
		&org.OwnerID,
		&org.SubscriptionID,
		&org.Credits,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return org, nil
}

/*
Create persists a new organization row.

Description: The unique index on the slug column turns a concurrent creation
of the same slug into an apperr.Conflict.

Parameters:
  - context: context.Context
  - org: *Organization

Returns:
  - error: apperr.Conflict or execution failures
*/
func (repository *PostgresOrganizationRepository) Create(context context.Context, org *Organization) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		schema.OrgsOrganization.Table, organizationColumns(),
	)

	_, err := repository.pool.Exec(context, query,
		org.ID,
		org.Name,
		org.Slug,
		org.Logo,
		org.OwnerID,
		org.SubscriptionID,
		org.Credits,
		org.CreatedAt,
		org.UpdatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("An organization with this name already exists")
		}
		return dberr.Wrap(err, "create_organization")
	}

	return nil
}

/*
FindByID retrieves an organization by its unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *Organization: Hydrated entity
  - error: apperr.NotFound or execution failures
*/
func (repository *PostgresOrganizationRepository) FindByID(context context.Context, id string) (*Organization, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		organizationColumns(),
		schema.OrgsOrganization.Table,
		schema.OrgsOrganization.ID,
	)

	org, err := scanOrganization(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_organization_by_id")
	}

	return org, nil
}

/*
ListByAccount returns the organizations an account is a member of.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - []*Organization: Joined through orgs.member, oldest membership first
  - error: Retrieval failures
*/
func (repository *PostgresOrganizationRepository) ListByAccount(context context.Context, accountID string) ([]*Organization, error) {
	org := schema.OrgsOrganization
	member := schema.OrgsMember

	query := fmt.Sprintf(`
		SELECT o.%s, o.%s, o.%s, o.%s, o.%s, o.%s, o.%s, o.%s, o.%s
		FROM %s o
		JOIN %s m ON m.%s = o.%s
		WHERE m.%s = $1
		ORDER BY m.%s ASC`,
		org.ID, org.Name, org.Slug, org.Logo, org.OwnerID, org.SubscriptionID,
		org.Credits, org.CreatedAt, org.UpdatedAt,
		org.Table,
		member.Table, member.OrganizationID, org.ID,
		member.AccountID,
		member.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, accountID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_organizations_by_account")
	}
	defer rows.Close()

	var organizations []*Organization
	for rows.Next() {
		organization, err := scanOrganization(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_organization")
		}
		organizations = append(organizations, organization)
	}

	return organizations, nil
}

// # MemberRepository Methods

func memberColumns() string {
	t := schema.OrgsMember
	return strings.Join([]string{t.ID, t.OrganizationID, t.AccountID, t.Role, t.CreatedAt}, ", ")
}

func scanMember(row pgx.Row) (*Member, error) {
	member := &Member{}
	err := row.Scan(
		&member.ID,
		&member.OrganizationID,
		&member.AccountID,
		&member.Role,
		&member.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return member, nil
}

/*
Add persists a new membership row.

Description: The unique index on (organizationid, accountid) rejects duplicate
memberships with an apperr.Conflict.

Parameters:
  - context: context.Context
  - member: *Member

Returns:
  - error: apperr.Conflict or execution failures
*/
func (repository *PostgresMemberRepository) Add(context context.Context, member *Member) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5)`,
		schema.OrgsMember.Table, memberColumns(),
	)

	_, err := repository.pool.Exec(context, query,
		member.ID,
		member.OrganizationID,
		member.AccountID,
		member.Role,
		member.CreatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Account is already a member of this organization")
		}
		return dberr.Wrap(err, "add_member")
	}

	return nil
}

/*
Find retrieves the membership of an account in an organization.

Parameters:
  - context: context.Context
  - organizationID: string
  - accountID: string

Returns:
  - *Member: Hydrated membership
  - error: apperr.NotFound or execution failures
*/
func (repository *PostgresMemberRepository) Find(context context.Context, organizationID, accountID string) (*Member, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s = $2`,
		memberColumns(),
		schema.OrgsMember.Table,
		schema.OrgsMember.OrganizationID, schema.OrgsMember.AccountID,
	)

	member, err := scanMember(repository.pool.QueryRow(context, query, organizationID, accountID))
	if err != nil {
		return nil, dberr.Wrap(err, "find_member")
	}

	return member, nil
}

/*
ListByOrganization returns every member of an organization, oldest first.

Parameters:
  - context: context.Context
  - organizationID: string

Returns:
  - []*Member: All memberships
  - error: Retrieval failures
*/
func (repository *PostgresMemberRepository) ListByOrganization(context context.Context, organizationID string) ([]*Member, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC`,
		memberColumns(),
		schema.OrgsMember.Table,
		schema.OrgsMember.OrganizationID,
		schema.OrgsMember.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, organizationID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_members")
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_member")
		}
		members = append(members, member)
	}

	return members, nil
}

// # InvitationRepository Methods

func invitationColumns() string {
	t := schema.OrgsInvitation
	return strings.Join([]string{
		t.ID, t.OrganizationID, t.Email, t.Role, t.TokenHash,
		t.InvitedByID, t.ExpiresAt, t.AcceptedAt, t.CreatedAt,
	}, ", ")
}

func scanInvitation(row pgx.Row) (*Invitation, error) {
	invitation := &Invitation{}
	err := row.Scan(
		&invitation.ID,
		&invitation.OrganizationID,
		&invitation.Email,
		&invitation.Role,
		&invitation.TokenHash,
		&invitation.InvitedByID,
		&invitation.ExpiresAt,
		&invitation.AcceptedAt,
		&invitation.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return invitation, nil
}

/*
Create persists a new invitation row.

Parameters:
  - context: context.Context
  - invitation: *Invitation

Returns:
  - error: Execution failures
*/
func (repository *PostgresInvitationRepository) Create(context context.Context, invitation *Invitation) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		schema.OrgsInvitation.Table, invitationColumns(),
	)

	_, err := repository.pool.Exec(context, query,
		invitation.ID,
		invitation.OrganizationID,
		invitation.Email,
		invitation.Role,
		invitation.TokenHash,
		invitation.InvitedByID,
		invitation.ExpiresAt,
		invitation.AcceptedAt,
		invitation.CreatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "create_invitation")
	}

	return nil
}

/*
FindByTokenHash retrieves an invitation by the hash of its raw token.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - *Invitation: Hydrated entity
  - error: apperr.NotFound or execution failures
*/
func (repository *PostgresInvitationRepository) FindByTokenHash(context context.Context, tokenHash string) (*Invitation, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		invitationColumns(),
		schema.OrgsInvitation.Table,
		schema.OrgsInvitation.TokenHash,
	)

	invitation, err := scanInvitation(repository.pool.QueryRow(context, query, tokenHash))
	if err != nil {
		return nil, dberr.Wrap(err, "find_invitation_by_token")
	}

	return invitation, nil
}

/*
MarkAccepted stamps the acceptance time onto a pending invitation.

Parameters:
  - context: context.Context
  - id: string
  - at: time.Time

Returns:
  - error: apperr.NotFound or execution failures
*/
func (repository *PostgresInvitationRepository) MarkAccepted(context context.Context, id string, at time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2
		WHERE %s = $1 AND %s IS NULL`,
		schema.OrgsInvitation.Table,
		schema.OrgsInvitation.AcceptedAt,
		schema.OrgsInvitation.ID, schema.OrgsInvitation.AcceptedAt,
	)

	tag, err := repository.pool.Exec(context, query, id, at)
	if err != nil {
		return dberr.Wrap(err, "mark_invitation_accepted")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Invitation")
	}

	return nil
}
