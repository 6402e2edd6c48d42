package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStage_Order(t *testing.T) {
	assert.True(t, ShippingAddress.Before(ShippingMethod))
	assert.True(t, ShippingMethod.Before(Payment))
	assert.True(t, Payment.Before(Review))
	assert.True(t, Review.AtLeast(Payment))
	assert.True(t, Payment.AtLeast(Payment))
	assert.False(t, ShippingMethod.AtLeast(Payment))
}

func TestStage_StringRoundTrip(t *testing.T) {
	for _, stage := range Stages() {
		t.Run(stage.String(), func(t *testing.T) {
			parsed, ok := ParseStage(stage.String())
			assert.True(t, ok)
			assert.Equal(t, stage, parsed)
		})
	}

	_, ok := ParseStage("billing")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Stage(42).String())
	assert.False(t, Stage(-1).Valid())
}

func TestEffectiveStage_VirtualCartClamp(t *testing.T) {
	tests := []struct {
		current  Stage
		virtual  bool
		expected Stage
	}{
		{ShippingAddress, false, ShippingAddress},
		{ShippingMethod, false, ShippingMethod},
		{ShippingAddress, true, Payment},
		{ShippingMethod, true, Payment},
		{Payment, true, Payment},
		{Review, true, Review},
		{Stage(-3), false, ShippingAddress},
		{Stage(9), false, Review},
	}

	for _, tt := range tests {
		t.Run(tt.current.String(), func(t *testing.T) {
			s := Session{CurrentStage: tt.current, IsVirtualCart: tt.virtual}
			assert.Equal(t, tt.expected, EffectiveStage(s))
			assert.Equal(t, tt.current, s.CurrentStage)
		})
	}
}

func TestIsVirtualCart(t *testing.T) {
	assert.False(t, IsVirtualCart(nil))
	assert.True(t, IsVirtualCart([]CartItem{{SKU: "gift-card", IsVirtual: true}}))
	assert.False(t, IsVirtualCart([]CartItem{{SKU: "gift-card", IsVirtual: true}, {SKU: "mug"}}))
}

func TestIsNarrowViewport(t *testing.T) {
	assert.True(t, IsNarrowViewport(375))
	assert.True(t, IsNarrowViewport(960))
	assert.False(t, IsNarrowViewport(961))
}

func TestStages_ReturnsFreshSlice(t *testing.T) {
	stages := Stages()
	stages[0] = Review

	assert.Equal(t, []Stage{ShippingAddress, ShippingMethod, Payment, Review}, Stages())
	vm := Project(flowSession(ShippingAddress))
	assert.Equal(t, ShippingAddress, vm.Flow.Sections[0].Stage)
}
