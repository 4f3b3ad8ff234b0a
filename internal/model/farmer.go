package model

// Farmer is a normalized farmer row from the admin farmers endpoint.
type Farmer struct {
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	Location    string  `json:"location"`
	LatestYield string  `json:"latest_yield"`
	Status      string  `json:"status"`
	Active      bool    `json:"active"`
	LastUpdated string  `json:"last_updated"`
	YieldValue  float64 `json:"yield_value"` // yield, average_yield or predicted_yield; 0 if none
}

// FarmerPage is one page of the farmers listing.
type FarmerPage struct {
	Farmers    []RawRecord `json:"farmers"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
}
