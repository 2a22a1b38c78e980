// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package orgs

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/ritmus/internal/platform/apperr"
	"github.com/taibuivan/ritmus/internal/platform/sec"
)

// # Fakes

type memoryOrgRepository struct {
	orgs map[string]*Organization
}

func (repo *memoryOrgRepository) Create(_ context.Context, org *Organization) error {
	for _, existing := range repo.orgs {
		if existing.Slug == org.Slug {
			return apperr.Conflict("An organization with this name already exists")
		}
	}
	clone := *org
	repo.orgs[org.ID] = &clone
	return nil
}

func (repo *memoryOrgRepository) FindByID(_ context.Context, id string) (*Organization, error) {
	org, ok := repo.orgs[id]
	if !ok {
		return nil, apperr.NotFound("Organization")
	}
	clone := *org
	return &clone, nil
}

func (repo *memoryOrgRepository) ListByAccount(_ context.Context, _ string) ([]*Organization, error) {
	return nil, nil
}

type memoryMemberRepository struct {
	members []*Member
}

func (repo *memoryMemberRepository) Add(_ context.Context, member *Member) error {
	for _, existing := range repo.members {
		if existing.OrganizationID == member.OrganizationID && existing.AccountID == member.AccountID {
			return apperr.Conflict("Account is already a member of this organization")
		}
	}
	clone := *member
	repo.members = append(repo.members, &clone)
	return nil
}

func (repo *memoryMemberRepository) Find(_ context.Context, organizationID, accountID string) (*Member, error) {
	for _, member := range repo.members {
		if member.OrganizationID == organizationID && member.AccountID == accountID {
			clone := *member
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Member")
}

func (repo *memoryMemberRepository) ListByOrganization(_ context.Context, organizationID string) ([]*Member, error) {
	var members []*Member
	for _, member := range repo.members {
		if member.OrganizationID == organizationID {
			clone := *member
			members = append(members, &clone)
		}
	}
	return members, nil
}

type memoryInvitationRepository struct {
	invitations map[string]*Invitation
}

func (repo *memoryInvitationRepository) Create(_ context.Context, invitation *Invitation) error {
	clone := *invitation
	repo.invitations[invitation.ID] = &clone
	return nil
}

func (repo *memoryInvitationRepository) FindByTokenHash(_ context.Context, tokenHash string) (*Invitation, error) {
	for _, invitation := range repo.invitations {
		if invitation.TokenHash == tokenHash {
			clone := *invitation
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Invitation")
}

func (repo *memoryInvitationRepository) MarkAccepted(_ context.Context, id string, at time.Time) error {
	invitation, ok := repo.invitations[id]
	if !ok {
		return apperr.NotFound("Invitation")
	}
	invitation.AcceptedAt = &at
	return nil
}

// capturingMailer records team invite sends for assertions.
type capturingMailer struct {
	invites []capturedInvite
	sendErr error
}

type capturedInvite struct {
	toEmail   string
	orgName   string
	inviteURL string
}

func (mailer *capturingMailer) SendVerification(_ context.Context, _, _, _ string) error { return nil }

func (mailer *capturingMailer) SendPasswordReset(_ context.Context, _, _, _ string) error {
	return nil
}

func (mailer *capturingMailer) SendTeamInvite(_ context.Context, toEmail, orgName, inviteURL string) error {
	mailer.invites = append(mailer.invites, capturedInvite{toEmail, orgName, inviteURL})
	return mailer.sendErr
}

type testEnv struct {
	service     *Service
	orgs        *memoryOrgRepository
	members     *memoryMemberRepository
	invitations *memoryInvitationRepository
	mailer      *capturingMailer
}

func newTestEnv() *testEnv {
	env := &testEnv{
		orgs:        &memoryOrgRepository{orgs: make(map[string]*Organization)},
		members:     &memoryMemberRepository{},
		invitations: &memoryInvitationRepository{invitations: make(map[string]*Invitation)},
		mailer:      &capturingMailer{},
	}
	env.service = NewService(env.orgs, env.members, env.invitations, env.mailer,
		"https://ritmus.app", slog.Default())
	return env
}

// inviteToken extracts the raw token from the emailed join link.
func inviteToken(t *testing.T, inviteURL string) string {
	t.Helper()
	parsed, err := url.Parse(inviteURL)
	require.NoError(t, err)
	token := parsed.Query().Get("token")
	require.NotEmpty(t, token)
	return token
}

// # Tests

func TestCreateOrganization(t *testing.T) {
	env := newTestEnv()

	org, err := env.service.CreateOrganization(context.Background(), "owner-1", "Beat Collective")
	require.NoError(t, err)

	assert.Equal(t, "beat-collective", org.Slug)
	assert.Equal(t, "owner-1", org.OwnerID)
	assert.Equal(t, defaultSubscriptionID, org.SubscriptionID)
	assert.Zero(t, org.Credits)

	// The creator is the first member, at the owner tier.
	member, err := env.members.Find(context.Background(), org.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, RoleOwner, member.Role)
}

func TestCreateOrganizationSlugConflict(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.CreateOrganization(context.Background(), "owner-1", "Beat Collective")
	require.NoError(t, err)

	_, err = env.service.CreateOrganization(context.Background(), "owner-2", "Beat  Collective!")
	require.Error(t, err)
	assert.Equal(t, 409, apperr.As(err).HTTPStatus)
}

func TestCreateOrganizationRejectsUnusableName(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.CreateOrganization(context.Background(), "owner-1", "!!!")
	require.Error(t, err)
	assert.Equal(t, 400, apperr.As(err).HTTPStatus)
}

func TestInviteSendsEmailWithTokenLink(t *testing.T) {
	env := newTestEnv()
	org, err := env.service.CreateOrganization(context.Background(), "owner-1", "Beat Collective")
	require.NoError(t, err)

	invitation, err := env.service.Invite(context.Background(), org.ID, "owner-1", "new@example.com", RoleMember)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, invitation.Status())
	assert.Equal(t, RoleMember, invitation.Role)

	require.Len(t, env.mailer.invites, 1)
	sent := env.mailer.invites[0]
	assert.Equal(t, "new@example.com", sent.toEmail)
	assert.Equal(t, "Beat Collective", sent.orgName)
	assert.True(t, strings.HasPrefix(sent.inviteURL, "https://ritmus.app/orgs/accept-invite?token="))

	// Only the hash of the emailed token is stored.
	raw := inviteToken(t, sent.inviteURL)
	assert.NotEqual(t, raw, invitation.TokenHash)
	assert.Equal(t, sec.HashToken(raw), invitation.TokenHash)
}

func TestInviteRequiresInvitePermission(t *testing.T) {
	env := newTestEnv()
	org, err := env.service.CreateOrganization(context.Background(), "owner-1", "Beat Collective")
	require.NoError(t, err)

	require.NoError(t, env.members.Add(context.Background(), &Member{
		ID: "m-2", OrganizationID: org.ID, AccountID: "member-1", Role: RoleMember,
	}))

	_, err = env.service.Invite(context.Background(), org.ID, "member-1", "new@example.com", RoleMember)
	require.Error(t, err)
	assert.Equal(t, 403, apperr.As(err).HTTPStatus)

	_, err = env.service.Invite(context.Background(), org.ID, "outsider", "new@example.com", RoleMember)
	require.Error(t, err)
	assert.Equal(t, 403, apperr.As(err).HTTPStatus)

	assert.Empty(t, env.mailer.invites)
}

func TestInviteRejectsOwnerRole(t *testing.T) {
	env := newTestEnv()
	org, err := env.service.CreateOrganization(context.Background(), "owner-1", "Beat Collective")
	require.NoError(t, err)

	_, err = env.service.Invite(context.Background(), org.ID, "owner-1", "new@example.com", RoleOwner)
	require.Error(t, err)
	assert.Equal(t, 400, apperr.As(err).HTTPStatus)
}

func TestInviteSurvivesEmailFailure(t *testing.T) {
	env := newTestEnv()
	env.mailer.sendErr = errors.New("sendgrid down")

	org, err := env.service.CreateOrganization(context.Background(), "owner-1", "Beat Collective")
	require.NoError(t, err)

	invitation, err := env.service.Invite(context.Background(), org.ID, "owner-1", "new@example.com", RoleMember)
	require.NoError(t, err, "a delivery failure must not void the invitation")
	assert.Contains(t, env.invitations.invitations, invitation.ID)
}

func TestAcceptInvitation(t *testing.T) {
	env := newTestEnv()
	org, err := env.service.CreateOrganization(context.Background(), "owner-1", "Beat Collective")
	require.NoError(t, err)

	_, err = env.service.Invite(context.Background(), org.ID, "owner-1", "new@example.com", RoleAdmin)
	require.NoError(t, err)
	raw := inviteToken(t, env.mailer.invites[0].inviteURL)

	member, err := env.service.AcceptInvitation(context.Background(), "invitee-1", raw)
	require.NoError(t, err)
	assert.Equal(t, org.ID, member.OrganizationID)
	assert.Equal(t, "invitee-1", member.AccountID)
	assert.Equal(t, RoleAdmin, member.Role)

	// The token is single-use.
	_, err = env.service.AcceptInvitation(context.Background(), "invitee-2", raw)
	require.Error(t, err)
	assert.Equal(t, 409, apperr.As(err).HTTPStatus)
}

func TestAcceptInvitationExpired(t *testing.T) {
	env := newTestEnv()
	org, err := env.service.CreateOrganization(context.Background(), "owner-1", "Beat Collective")
	require.NoError(t, err)

	_, err = env.service.Invite(context.Background(), org.ID, "owner-1", "new@example.com", RoleMember)
	require.NoError(t, err)
	raw := inviteToken(t, env.mailer.invites[0].inviteURL)

	env.service.now = func() time.Time { return time.Now().Add(InvitationTTL + time.Hour) }

	_, err = env.service.AcceptInvitation(context.Background(), "invitee-1", raw)
	require.Error(t, err)
	assert.Equal(t, 422, apperr.As(err).HTTPStatus)
}

func TestAcceptInvitationUnknownToken(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.AcceptInvitation(context.Background(), "invitee-1", "not-a-token")
	require.Error(t, err)
	assert.Equal(t, 404, apperr.As(err).HTTPStatus)

	_, err = env.service.AcceptInvitation(context.Background(), "invitee-1", "")
	require.Error(t, err)
	assert.Equal(t, 404, apperr.As(err).HTTPStatus)
}

func TestListMembersRequiresMembership(t *testing.T) {
	env := newTestEnv()
	org, err := env.service.CreateOrganization(context.Background(), "owner-1", "Beat Collective")
	require.NoError(t, err)

	members, err := env.service.ListMembers(context.Background(), org.ID, "owner-1")
	require.NoError(t, err)
	assert.Len(t, members, 1)

	_, err = env.service.ListMembers(context.Background(), org.ID, "outsider")
	require.Error(t, err)
	assert.Equal(t, 403, apperr.As(err).HTTPStatus)
}
