package checkout

const (
	DefaultStoreName = "Storefront"

	guestCheckoutHeading   = "Guest Checkout"
	reviewAndPlaceHeading  = "Review and Place Order"
	welcomeHeadingFormat   = "Welcome %s!"
	fallbackGreetingName   = "Shopper"
	emptyCartGuestHeading  = "Guest Checkout"
	emptyCartHeading       = "Checkout"
	emptyCartMessage       = "There are no items in your cart."
	pageTitleFormat        = "Checkout - %s"
	signInLabel            = "Login and Checkout Faster"
	reviewOrderLabel       = "Review Order"
	placeOrderLabel        = "Place Order"
	toggleAddressBookLabel = "Address Book"

	shippingAddressHeading = "1. Shipping Information"
	shippingMethodHeading  = "2. Shipping Method"
	paymentHeading         = "3. Payment Information"
	reviewHeading          = "4. Review"

	outOfStockMessage = "An item in your cart is currently out-of-stock and must be removed in order to Checkout. " +
		"Please return to your cart to remove the item."
	returnToCartLabel = "Return to Cart"
	cartPath          = "/cart"

	defaultSubmissionErrorMessage = "Oops! An error occurred while submitting. Please try again."
)

var sectionHeadings = map[Stage]string{
	ShippingAddress: shippingAddressHeading,
	ShippingMethod:  shippingMethodHeading,
	Payment:         paymentHeading,
	Review:          reviewHeading,
}
