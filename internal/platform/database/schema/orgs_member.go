package schema

// OrgsMemberTable represents the 'orgs.member' table
type OrgsMemberTable struct {
	Table          string
	ID             string
	OrganizationID string
	AccountID      string
	Role           string
	CreatedAt      string
}

// OrgsMember is the schema definition for orgs.member
var OrgsMember = OrgsMemberTable{
	Table:          "orgs.member",
	ID:             "id",
	OrganizationID: "organizationid",
	AccountID:      "accountid",
	Role:           "role",
	CreatedAt:      "createdat",
}

func (t OrgsMemberTable) Columns() []string {
	return []string{t.ID, t.OrganizationID, t.AccountID, t.Role, t.CreatedAt}
}
