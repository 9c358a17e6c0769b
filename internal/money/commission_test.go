package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommission(t *testing.T) {
	// 200 EGP at 7% with no discount.
	assert.Equal(t, FromPounds(14), Commission(FromPounds(200), Zero(), 7))

	// Discount shrinks the base before the rate applies.
	assert.Equal(t, FromPounds(10.50), Commission(FromPounds(200), FromPounds(50), 7))

	// A discount larger than the subtotal clamps the base to zero.
	assert.True(t, Commission(FromPounds(50), FromPounds(80), 7).IsZero())

	// Zero rate.
	assert.True(t, Commission(FromPounds(200), Zero(), 0).IsZero())
}

func TestCommissionNeverNegative(t *testing.T) {
	rates := []float64{0, 2.5, 7, 15, 100}
	for _, rate := range rates {
		c := Commission(FromPounds(120), FromPounds(500), rate)
		assert.False(t, c.IsNegative(), "rate %v", rate)
	}
}

func TestRefundCommissionReduction(t *testing.T) {
	// Half the order refunded claws back half the commission.
	got := RefundCommissionReduction(FromPounds(100), FromPounds(200), FromPounds(14))
	assert.Equal(t, FromPounds(7), got)

	// Full refund claws back the full commission.
	got = RefundCommissionReduction(FromPounds(200), FromPounds(200), FromPounds(14))
	assert.Equal(t, FromPounds(14), got)

	// Zero order base yields zero instead of an error.
	assert.True(t, RefundCommissionReduction(FromPounds(50), Zero(), FromPounds(14)).IsZero())
}

func TestNetBalance(t *testing.T) {
	// Platform collected 300 online for the provider, provider holds 100 of
	// platform commission from cash orders.
	net := NetBalance(FromPounds(300), FromPounds(100))
	assert.Equal(t, FromPounds(200), net)

	net = NetBalance(FromPounds(50), FromPounds(120))
	assert.Equal(t, FromPounds(-70), net)
}

func TestSettlementDirectionDeadband(t *testing.T) {
	tests := []struct {
		name string
		net  Money
		want Direction
	}{
		{"clearly positive", FromPounds(120), DirectionPlatformPaysProvider},
		{"clearly negative", FromPounds(-85), DirectionProviderPaysPlatform},
		{"zero", Zero(), DirectionBalanced},
		{"just inside band", FromPounds(0.49), DirectionBalanced},
		{"band edge", FromPounds(0.50), DirectionBalanced},
		{"just outside band", FromPounds(0.51), DirectionPlatformPaysProvider},
		{"negative inside band", FromPounds(-0.49), DirectionBalanced},
		{"negative band edge", FromPounds(-0.50), DirectionBalanced},
		{"negative outside band", FromPounds(-0.51), DirectionProviderPaysPlatform},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SettlementDirection(tt.net))
		})
	}
}

func TestGracePeriodScenario(t *testing.T) {
	// A provider inside its grace period: commission is computed in full for
	// reporting but the charged amount is zero, and the difference is the
	// grace discount.
	theoretical := Commission(FromPounds(200), Zero(), 7)
	assert.Equal(t, FromPounds(14), theoretical)

	actual := Zero()
	graceDiscount := theoretical.Subtract(actual)
	assert.Equal(t, FromPounds(14), graceDiscount)
}
