package domain

// Lifecycle states for a vehicle record. Ingestion writes approved or
// on_hold; rejected is applied later by moderation.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusOnHold   = "on_hold"
	StatusRejected = "rejected"
)

type Partner struct {
	ID             string `db:"id"`
	Code           string `db:"code"`
	Name           string `db:"name"`
	Email          string `db:"email"`
	Phone          string `db:"phone"`
	City           string `db:"city"`
	State          string `db:"state"`
	APIKeyHash     string `db:"api_key_hash"`
	Active         bool   `db:"active"`
	MonthlyUploads int    `db:"monthly_uploads"`
	MonthlyLimit   int    `db:"monthly_limit"`
	QuotaResetsAt  string `db:"quota_resets_at"` // RFC3339
	CreatedAt      string `db:"created_at"`
	UpdatedAt      string `db:"updated_at"`
}

type VehicleRecord struct {
	ID              string   `db:"id"`
	PartnerID       string   `db:"partner_id"`
	VIN             string   `db:"vin"` // normalized
	Make            string   `db:"make"`
	Model           string   `db:"model"`
	Year            int      `db:"year"`
	Price           float64  `db:"price"`
	Mileage         int      `db:"mileage"`
	Condition       string   `db:"condition"`
	FuelType        string   `db:"fuel_type"`
	Transmission    string   `db:"transmission"`
	Color           string   `db:"color"`
	BodyStyle       string   `db:"body_style"`
	City            string   `db:"city"`
	State           string   `db:"state"`
	SellerName      string   `db:"seller_name"`
	SellerPhone     string   `db:"seller_phone"`
	Description     string   `db:"description"`
	PrimaryImage    string   `db:"primary_image"`     // relative media path
	ExtraImagesJSON string   `db:"extra_images_json"` // []string, ordered
	Slug            string   `db:"slug"`
	Status          string   `db:"status"`
	ErrorsJSON      string   `db:"errors_json"`
	WarningsJSON    string   `db:"warnings_json"`
	PriceOutlier    bool     `db:"price_outlier"`
	MedianPrice     *float64 `db:"median_price"` // nil when <3 comparables existed
	Duplicate       bool     `db:"duplicate"`
	DuplicateOfVIN  string   `db:"duplicate_of_vin"`
	CreatedAt       string   `db:"created_at"`
	UpdatedAt       string   `db:"updated_at"`
}

// ValidationReport is written once per persisted submission; immutable.
// Served verbatim on the report endpoint, hence the json tags.
type ValidationReport struct {
	ID             string `db:"id" json:"id"`
	VehicleID      string `db:"vehicle_id" json:"vehicle_id"`
	PartnerID      string `db:"partner_id" json:"partner_id"`
	Checked        int    `db:"checked" json:"checked"`
	Passed         int    `db:"passed" json:"passed"`
	Failed         int    `db:"failed" json:"failed"`
	Warned         int    `db:"warned" json:"warned"`
	DetailJSON     string `db:"detail_json" json:"detail"`
	ReviewRequired bool   `db:"review_required" json:"review_required"`
	CreatedAt      string `db:"created_at" json:"created_at"`
}
