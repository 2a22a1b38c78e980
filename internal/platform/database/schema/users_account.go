package schema

// UsersAccountTable represents the 'users.account' table
type UsersAccountTable struct {
	Table          string
	ID             string
	Username       string
	Email          string
	Password       string
	DisplayName    string
	Role           string
	IsVerified     string
	Subscribe      string
	SubscriptionID string
	CustomerID     string
	BasicCredits   string
	ProCredits     string
	PremiumCredits string
	CreatedAt      string
	UpdatedAt      string
	DeletedAt      string
}

// UsersAccount is the schema definition for users.account
var UsersAccount = UsersAccountTable{
	Table:          "users.account",
	ID:             "id",
	Username:       "username",
	Email:          "email",
	Password:       "passwordhash",
	DisplayName:    "displayname",
	Role:           "role",
	IsVerified:     "isverified",
	Subscribe:      "subscribe",
	SubscriptionID: "subscriptionid",
	CustomerID:     "customerid",
	BasicCredits:   "basiccredits",
	ProCredits:     "procredits",
	PremiumCredits: "premiumcredits",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
	DeletedAt:      "deletedat",
}

// Columns returns all standard column names
func (t UsersAccountTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.Password, t.DisplayName, t.Role,
		t.IsVerified, t.Subscribe, t.SubscriptionID, t.CustomerID,
		t.BasicCredits, t.ProCredits, t.PremiumCredits,
		t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
