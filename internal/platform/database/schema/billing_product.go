package schema

// BillingProductTable represents the 'billing.product' table
type BillingProductTable struct {
	Table                      string
	ID                         string
	DodoProductID              string
	Name                       string
	Description                string
	Image                      string
	Type                       string
	Status                     string
	Price                      string
	Currency                   string
	Discount                   string
	TaxInclusive               string
	PaymentFrequencyCount      string
	PaymentFrequencyInterval   string
	SubscriptionPeriodCount    string
	SubscriptionPeriodInterval string
	TrialPeriodDays            string
	FixedPrice                 string
	LicenseKeyEnabled          string
	LicenseKeyActivationsLimit string
	Metadata                   string
	CreatedAt                  string
	UpdatedAt                  string
	DodoCreatedAt              string
	DodoUpdatedAt              string
	LastSyncedAt               string
}

// BillingProduct is the schema definition for billing.product
var BillingProduct = BillingProductTable{
	Table:                      "billing.product",
	ID:                         "id",
	DodoProductID:              "dodoproductid",
	Name:                       "name",
	Description:                "description",
	Image:                      "image",
	Type:                       "type",
	Status:                     "status",
	Price:                      "price",
	Currency:                   "currency",
	Discount:                   "discount",
	TaxInclusive:               "taxinclusive",
	PaymentFrequencyCount:      "paymentfrequencycount",
	PaymentFrequencyInterval:   "paymentfrequencyinterval",
	SubscriptionPeriodCount:    "subscriptionperiodcount",
	SubscriptionPeriodInterval: "subscriptionperiodinterval",
	TrialPeriodDays:            "trialperioddays",
	FixedPrice:                 "fixedprice",
	LicenseKeyEnabled:          "licensekeyenabled",
	LicenseKeyActivationsLimit: "licensekeyactivationslimit",
	Metadata:                   "metadata",
	CreatedAt:                  "createdat",
	UpdatedAt:                  "updatedat",
	DodoCreatedAt:              "dodocreatedat",
	DodoUpdatedAt:              "dodoupdatedat",
	LastSyncedAt:               "lastsyncedat",
}

func (t BillingProductTable) Columns() []string {
	return []string{
		t.ID, t.DodoProductID, t.Name, t.Description, t.Image, t.Type, t.Status,
		t.Price, t.Currency, t.Discount, t.TaxInclusive,
		t.PaymentFrequencyCount, t.PaymentFrequencyInterval,
		t.SubscriptionPeriodCount, t.SubscriptionPeriodInterval,
		t.TrialPeriodDays, t.FixedPrice,
		t.LicenseKeyEnabled, t.LicenseKeyActivationsLimit, t.Metadata,
		t.CreatedAt, t.UpdatedAt, t.DodoCreatedAt, t.DodoUpdatedAt, t.LastSyncedAt,
	}
}
