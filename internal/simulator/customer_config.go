package simulator

// CustomerConfig describes one persona in a customer distribution file.
type CustomerConfig struct {
	RepresentationPercent float64 `json:"representation_percent"`
	CustomerType          string  `json:"customer_type"`
	HumanizedLabel        string  `json:"humanized_label"`

	// Authenticated and IsGuest are derived from CustomerType.
	Authenticated      bool   `json:"-"`
	IsGuest            bool   `json:"-"`
	SignsIn            bool   `json:"signs_in"`
	FirstName          string `json:"first_name"`
	HasDefaultShipping bool   `json:"has_default_shipping"`
	BrowsesAddressBook bool   `json:"browses_address_book"`

	CartSize        int  `json:"cart_size"`
	VirtualCart     bool `json:"virtual_cart"`
	OutOfStockLines int  `json:"out_of_stock_lines"`

	ViewportWidthPx int `json:"viewport_width_px"`
	InitialLoadMs   int `json:"initial_load_ms"`
	MaxThinkTimeMs  int `json:"max_think_time_ms"`

	PaymentDeclineProbabilityPct float64 `json:"payment_decline_probability_pct"`
	OrderFailureProbabilityPct   float64 `json:"order_failure_probability_pct"`
	MaxSubmissionAttempts        int     `json:"max_submission_attempts"`
}
