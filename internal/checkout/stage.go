package checkout

// Checkout progression state machine.

// Stage is one discrete step of the checkout flow. Stages are totally ordered and
// gating rules compare them ("is at least this far along"), so callers should use
// AtLeast/Before rather than the underlying integers.
//
// shippingAddress ---> shippingMethod ---> payment ---> review
//                                            ^
//                                            |
// (virtual cart) -----------------------------
//
type Stage int

const (
	ShippingAddress Stage = iota
	ShippingMethod
	Payment
	Review
)

var stageNames = [...]string{"shipping_address", "shipping_method", "payment", "review"}

// Stages returns every stage in flow order.
func Stages() []Stage {
	return []Stage{ShippingAddress, ShippingMethod, Payment, Review}
}

func (s Stage) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return stageNames[s]
}

func (s Stage) Valid() bool {
	return s >= ShippingAddress && s <= Review
}

// Returns true if s is the same as or further along than other.
func (s Stage) AtLeast(other Stage) bool {
	return s >= other
}

// Returns true if s comes strictly before other.
func (s Stage) Before(other Stage) bool {
	return s < other
}

// ParseStage maps a stage name back to its Stage.
func ParseStage(name string) (Stage, bool) {
	for i, n := range stageNames {
		if n == name {
			return Stage(i), true
		}
	}
	return ShippingAddress, false
}

// clampStage pins out-of-range values so malformed snapshots still project.
func clampStage(s Stage) Stage {
	switch {
	case s < ShippingAddress:
		return ShippingAddress
	case s > Review:
		return Review
	}
	return s
}
