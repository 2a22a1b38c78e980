package schema

// OrgsOrganizationTable represents the 'orgs.organization' table
type OrgsOrganizationTable struct {
	Table          string
	ID             string
	Name           string
	Slug           string
	Logo           string
	OwnerID        string
	SubscriptionID string
	Credits        string
	CreatedAt      string
	UpdatedAt      string
}

// OrgsOrganization is the schema definition for orgs.organization
var OrgsOrganization = OrgsOrganizationTable{
	Table:          "orgs.organization",
	ID:             "id",
	Name:           "name",
	Slug:           "slug",
	Logo:           "logo",
	OwnerID:        "ownerid",
	SubscriptionID: "subscriptionid",
	Credits:        "credits",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
}

func (t OrgsOrganizationTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Slug, t.Logo, t.OwnerID, t.SubscriptionID,
		t.Credits, t.CreatedAt, t.UpdatedAt,
	}
}
