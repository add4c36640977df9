package domain

// FeedEntry is the fixed syndication schema consumed by the advertising
// channel. Field names and literal values ("in stock", "km", "IN") are
// compatibility requirements, not choices.
type FeedEntry struct {
	ID                          string       `json:"id"`
	Title                       string       `json:"title"` // "{year} {make} {model}"
	Link                        string       `json:"link"`
	Price                       string       `json:"price"` // "{price} INR"
	ImageLink                   string       `json:"image_link"`
	Condition                   string       `json:"condition"`
	Availability                string       `json:"availability"` // always "in stock"
	VehicleIdentificationNumber string       `json:"vehicle_identification_number"`
	Make                        string       `json:"make"`
	Model                       string       `json:"model"`
	Year                        int          `json:"year"`
	Mileage                     FeedMileage  `json:"mileage"`
	FuelType                    string       `json:"fuel_type"`
	Transmission                string       `json:"transmission"`
	Color                       string       `json:"color"`
	BodyStyle                   string       `json:"body_style"`
	AdditionalImageLinks        []string     `json:"additional_image_links"`
	SellerName                  string       `json:"seller_name"`
	SellerPhone                 string       `json:"seller_phone"`
	Location                    FeedLocation `json:"location"`
}

type FeedMileage struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"` // always "km"
}

type FeedLocation struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"` // always "IN"
}

// FeedError explains why a vehicle is excluded from syndication.
type FeedError struct {
	VehicleID string  `json:"vehicle_id"`
	VIN       string  `json:"vin"`
	State     string  `json:"state"`
	Errors    []Issue `json:"errors"`
	Warnings  []Issue `json:"warnings"`
}
