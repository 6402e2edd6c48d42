package checkout

import (
	"fmt"
	"strings"
)

// Controller projects session snapshots into view models. The zero value is
// usable and titles pages with DefaultStoreName.
type Controller struct {
	StoreName string
}

// Project is Controller{}.Project.
func Project(s Session) ViewModel {
	return Controller{}.Project(s)
}

// Project decides what the checkout page shows for s. It is a pure function of
// the snapshot: no I/O, no retained state.
func (c Controller) Project(s Session) ViewModel {
	vm := ViewModel{PageTitle: c.pageTitle(), Revision: s.Revision}

	// Precedence: confirmed order, then loading, then empty cart.
	switch {
	case s.IsTerminal():
		vm.Kind = OrderConfirmationView
		vm.Confirmation = &OrderConfirmation{OrderNumber: s.OrderNumber, Details: copyDetails(s.OrderDetails)}
		return vm
	case s.IsLoading:
		vm.Kind = LoadingView
		return vm
	case s.IsCartEmpty():
		vm.Kind = EmptyCartView
		vm.EmptyCart = &EmptyCartNotice{Heading: emptyCartHeadingFor(s), Message: emptyCartMessage}
		return vm
	}

	vm.Kind = CheckoutFlowView
	vm.Flow = projectFlow(s)
	if !s.IsGuest {
		vm.AddressBook = &AddressBookPanel{Active: s.ActiveContent == ContentAddressBook}
	}
	return vm
}

func (c Controller) pageTitle() string {
	name := c.StoreName
	if name == "" {
		name = DefaultStoreName
	}
	return fmt.Sprintf(pageTitleFormat, name)
}

// EffectiveStage applies the virtual-cart clamp. All rendering decisions use it
// instead of CurrentStage.
func EffectiveStage(s Session) Stage {
	stage := clampStage(s.CurrentStage)
	if s.IsVirtualCart && stage.Before(Payment) {
		return Payment
	}
	return stage
}

func projectFlow(s Session) *FlowView {
	effective := EffectiveStage(s)
	f := &FlowView{
		EffectiveStage: effective,
		Heading:        Heading(s),
		ContentHidden:  s.ActiveContent == ContentAddressBook,
		Sections:       projectSections(s, effective),
	}

	if s.IsGuest && !s.IsSignedIn {
		f.SignIn = &Button{Action: ActionSignIn, Label: signInLabel, Enabled: !s.SignInRequested && !s.IsBusy}
	}
	if s.HasOutOfStockItems() {
		f.StockAdvisory = &StockAdvisory{Message: outOfStockMessage, LinkLabel: returnToCartLabel, LinkPath: cartPath}
	}

	switch effective {
	case Payment:
		f.PriceAdjustments = true
		f.ReviewOrder = &Button{
			Action:  ActionReviewOrder,
			Label:   reviewOrderLabel,
			Enabled: !s.ReviewRequested && !s.IsBusy,
		}
	case Review:
		f.ItemsReview = true
		f.PlaceOrder = &Button{
			Action:  ActionPlaceOrder,
			Label:   placeOrderLabel,
			Enabled: !s.IsBusy && !s.PlaceOrderInFlight && !s.OrderDetailsLoading,
		}
	}

	// Narrow viewports defer the price summary until review.
	f.OrderSummary = !(s.ViewportIsNarrow && effective.Before(Review))
	return f
}

func projectSections(s Session, effective Stage) []Section {
	stages := Stages()
	sections := make([]Section, 0, len(stages))
	for _, stage := range stages {
		if s.IsVirtualCart && stage.Before(Payment) {
			continue
		}
		if stage == Review && effective != Review {
			continue
		}
		section := Section{Stage: stage, Heading: sectionHeadings[stage]}
		switch {
		case stage.Before(effective):
			section.State = SectionCompleted
		case stage == effective:
			section.State = SectionActive
		default:
			section.State = SectionPlaceholder
		}
		if stage == Payment && section.State != SectionPlaceholder {
			section.ShouldSubmit = s.ReviewRequested
			section.CheckoutError = copyError(s.LastError)
		}
		sections = append(sections, section)
	}
	return sections
}

// Heading picks the flow heading: guests first, then customers with a saved
// default shipping address, then a personal welcome.
func Heading(s Session) string {
	if s.IsGuest {
		return guestCheckoutHeading
	}
	if s.Customer != nil && s.Customer.HasDefaultShipping {
		return reviewAndPlaceHeading
	}
	return fmt.Sprintf(welcomeHeadingFormat, greetingName(s.Customer))
}

func greetingName(customer *Customer) string {
	if customer == nil {
		return fallbackGreetingName
	}
	if name := strings.TrimSpace(customer.FirstName); name != "" {
		return name
	}
	return fallbackGreetingName
}

func emptyCartHeadingFor(s Session) string {
	if s.IsGuest {
		return emptyCartGuestHeading
	}
	return emptyCartHeading
}
