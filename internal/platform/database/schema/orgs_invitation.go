package schema

// OrgsInvitationTable represents the 'orgs.invitation' table
type OrgsInvitationTable struct {
	Table          string
	ID             string
	OrganizationID string
	Email          string
	Role           string
	TokenHash      string
	InvitedByID    string
	ExpiresAt      string
	AcceptedAt     string
	CreatedAt      string
}

// OrgsInvitation is the schema definition for orgs.invitation
var OrgsInvitation = OrgsInvitationTable{
	Table:          "orgs.invitation",
	ID:             "id",
	OrganizationID: "organizationid",
	Email:          "email",
	Role:           "role",
	TokenHash:      "tokenhash",
	InvitedByID:    "invitedbyid",
	ExpiresAt:      "expiresat",
	AcceptedAt:     "acceptedat",
	CreatedAt:      "createdat",
}

func (t OrgsInvitationTable) Columns() []string {
	return []string{
		t.ID, t.OrganizationID, t.Email, t.Role, t.TokenHash,
		t.InvitedByID, t.ExpiresAt, t.AcceptedAt, t.CreatedAt,
	}
}
