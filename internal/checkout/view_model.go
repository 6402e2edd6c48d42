package checkout

// ViewKind is the top-level page the controller selected.
type ViewKind int

const (
	OrderConfirmationView ViewKind = iota
	LoadingView
	EmptyCartView
	CheckoutFlowView
)

var viewKindNames = [...]string{"order_confirmation", "loading", "empty_cart", "checkout_flow"}

func (k ViewKind) String() string {
	if k < 0 || int(k) >= len(viewKindNames) {
		return "unknown"
	}
	return viewKindNames[k]
}

// SectionState describes how a stage section renders relative to the effective stage.
type SectionState int

const (
	// Full content, already completed (summary form).
	SectionCompleted SectionState = iota
	// Full content, currently being filled in.
	SectionActive
	// Heading only.
	SectionPlaceholder
)

var sectionStateNames = [...]string{"completed", "active", "placeholder"}

func (s SectionState) String() string {
	if s < 0 || int(s) >= len(sectionStateNames) {
		return "unknown"
	}
	return sectionStateNames[s]
}

type Section struct {
	Stage   Stage
	State   SectionState
	Heading string

	// Payment only: tells the payment stage to validate and submit.
	ShouldSubmit bool
	// Payment only: the error the payment stage should show inline.
	CheckoutError *SubmissionError
}

// Action identifies a user affordance the host can dispatch.
type Action int

const (
	ActionReviewOrder Action = iota
	ActionPlaceOrder
	ActionSignIn
	ActionToggleAddressBook
)

var actionNames = [...]string{"review_order", "place_order", "sign_in", "toggle_address_book"}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

type Button struct {
	Action  Action
	Label   string
	Enabled bool
}

type StockAdvisory struct {
	Message   string
	LinkLabel string
	LinkPath  string
}

type OrderConfirmation struct {
	OrderNumber string
	Details     map[string]string
}

type EmptyCartNotice struct {
	Heading string
	Message string
}

type AddressBookPanel struct {
	Active bool
}

// FlowView is the interactive checkout flow.
type FlowView struct {
	EffectiveStage Stage
	Heading        string

	// True while the address book owns the page.
	ContentHidden bool

	SignIn        *Button
	StockAdvisory *StockAdvisory

	// Sections in layout order. Virtual carts carry no shipping sections and
	// Review is present only once reached.
	Sections []Section

	PriceAdjustments bool
	ReviewOrder      *Button
	ItemsReview      bool
	OrderSummary     bool
	PlaceOrder       *Button
}

// Returns the section rendered for stage, if any.
func (f *FlowView) Section(stage Stage) (Section, bool) {
	for _, s := range f.Sections {
		if s.Stage == stage {
			return s, true
		}
	}
	return Section{}, false
}

// ActiveStage returns the single section rendered as active.
func (f *FlowView) ActiveStage() Stage {
	return f.EffectiveStage
}

// CompletedStages returns the sections rendered as completed headers.
func (f *FlowView) CompletedStages() []Stage {
	completed := make([]Stage, 0, len(f.Sections))
	for _, s := range f.Sections {
		if s.State == SectionCompleted {
			completed = append(completed, s.Stage)
		}
	}
	return completed
}

// ViewModel is the controller's full output for one snapshot. Exactly one of
// Confirmation, EmptyCart and Flow is set, matching Kind (none for LoadingView).
type ViewModel struct {
	Kind      ViewKind
	PageTitle string
	// Revision of the snapshot this view was projected from.
	Revision int64

	Confirmation *OrderConfirmation
	EmptyCart    *EmptyCartNotice
	Flow         *FlowView
	AddressBook  *AddressBookPanel
}

// Buttons returns every button currently rendered.
func (vm ViewModel) Buttons() []Button {
	if vm.Flow == nil {
		return nil
	}
	buttons := make([]Button, 0, 4)
	for _, b := range []*Button{vm.Flow.SignIn, vm.Flow.ReviewOrder, vm.Flow.PlaceOrder} {
		if b != nil {
			buttons = append(buttons, *b)
		}
	}
	if vm.AddressBook != nil {
		buttons = append(buttons, Button{Action: ActionToggleAddressBook, Label: toggleAddressBookLabel, Enabled: true})
	}
	return buttons
}

// Returns the rendered button for action and whether it is rendered at all.
func (vm ViewModel) Button(action Action) (Button, bool) {
	for _, b := range vm.Buttons() {
		if b.Action == action {
			return b, true
		}
	}
	return Button{}, false
}
