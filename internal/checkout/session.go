package checkout

const (
	// Viewports at or below this width (px) render the narrow layout.
	NarrowViewportMaxWidth = 960
)

// ActiveContent selects which panel owns the page while the flow is rendered.
type ActiveContent string

const (
	ContentCheckout    ActiveContent = "checkout"
	ContentAddressBook ActiveContent = "addressBook"
)

type CartItem struct {
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	IsVirtual  bool   `json:"is_virtual"`
	OutOfStock bool   `json:"out_of_stock"`
}

type Customer struct {
	FirstName          string `json:"first_name"`
	HasDefaultShipping bool   `json:"has_default_shipping"`
}

// SubmissionError is a failure reported by a stage-completion or place-order
// operation. ID identifies the occurrence: two errors with the same message
// are still distinct occurrences when their IDs differ.
type SubmissionError struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (e *SubmissionError) Error() string {
	if e == nil || e.Message == "" {
		return defaultSubmissionErrorMessage
	}
	return e.Message
}

// Session is a snapshot of checkout state. It is owned by the session layer;
// the controller only ever reads it.
type Session struct {
	ID string `json:"id"`
	// Incremented by the session layer on every saved mutation.
	Revision int64 `json:"revision"`

	// Furthest stage the customer has reached.
	CurrentStage  Stage `json:"current_stage"`
	IsVirtualCart bool  `json:"is_virtual_cart"`

	IsGuest         bool      `json:"is_guest"`
	IsSignedIn      bool      `json:"is_signed_in"`
	SignInRequested bool      `json:"sign_in_requested"`
	Customer        *Customer `json:"customer,omitempty"`

	CartItems []CartItem `json:"cart_items"`

	IsLoading           bool `json:"is_loading"`
	IsBusy              bool `json:"is_busy"`
	PlaceOrderInFlight  bool `json:"place_order_in_flight"`
	OrderDetailsLoading bool `json:"order_details_loading"`
	ReviewRequested     bool `json:"review_requested"`

	LastError *SubmissionError `json:"last_error,omitempty"`

	// Non-empty once an order is confirmed; the session is terminal from then on.
	OrderNumber  string            `json:"order_number,omitempty"`
	OrderDetails map[string]string `json:"order_details,omitempty"`

	ViewportIsNarrow bool          `json:"viewport_is_narrow"`
	ActiveContent    ActiveContent `json:"active_content,omitempty"`
}

func (s Session) ItemCount() int {
	return len(s.CartItems)
}

func (s Session) IsCartEmpty() bool {
	return s.ItemCount() == 0
}

func (s Session) IsTerminal() bool {
	return s.OrderNumber != ""
}

func (s Session) HasOutOfStockItems() bool {
	for _, item := range s.CartItems {
		if item.OutOfStock {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no mutable state with s.
func (s Session) Clone() Session {
	c := s
	if s.CartItems != nil {
		c.CartItems = make([]CartItem, len(s.CartItems))
		copy(c.CartItems, s.CartItems)
	}
	if s.Customer != nil {
		customer := *s.Customer
		c.Customer = &customer
	}
	c.LastError = copyError(s.LastError)
	c.OrderDetails = copyDetails(s.OrderDetails)
	return c
}

func copyError(e *SubmissionError) *SubmissionError {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

func copyDetails(details map[string]string) map[string]string {
	if details == nil {
		return nil
	}
	c := make(map[string]string, len(details))
	for k, v := range details {
		c[k] = v
	}
	return c
}

// Returns true when no line requires physical shipment. An empty cart is not virtual.
func IsVirtualCart(items []CartItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !item.IsVirtual {
			return false
		}
	}
	return true
}

func IsNarrowViewport(widthPx int) bool {
	return widthPx <= NarrowViewportMaxWidth
}
