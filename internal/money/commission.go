package money

// Direction says who owes whom after netting the two payment flows of a
// settlement period: commission the provider collected on cash orders against
// the payout the platform collected on online orders.
type Direction string

const (
	DirectionPlatformPaysProvider Direction = "platform_pays_provider"
	DirectionProviderPaysPlatform Direction = "provider_pays_platform"
	DirectionBalanced             Direction = "balanced"
)

// DirectionDeadband is the band around zero inside which a net balance is
// treated as balanced. Net amounts of a few piasters are rounding residue, not
// money anyone should move; generating a settlement action for them would be
// noise. The 0.50 EGP value is inherited from the production engine and must
// not be changed without product sign-off.
var DirectionDeadband = FromPounds(0.50)

// Commission computes the platform commission on an order: the rate applies to
// the subtotal after discount, and a discount larger than the subtotal clamps
// the base to zero rather than producing a negative commission.
func Commission(subtotal, discount Money, ratePercent float64) Money {
	base := subtotal.Subtract(discount).NonNegative()
	return base.Percent(ratePercent)
}

// RefundCommissionReduction returns how much of the original commission a
// refund claws back, proportional to the refunded share of the order base.
// A zero order base is a degenerate upstream condition, not an error, and
// yields zero. The ratio itself is computed in floating point; that is safe
// because the result re-enters fixed-point arithmetic immediately via
// Multiply, which rounds to a piaster.
//
// The formula assumes commission is strictly proportional to the order base;
// it does not model tiered or capped commission structures.
func RefundCommissionReduction(refundAmount, orderBase, originalCommission Money) Money {
	if orderBase.IsZero() {
		return Zero()
	}
	fraction := refundAmount.Pounds() / orderBase.Pounds()
	return originalCommission.Multiply(fraction)
}

// NetBalance nets the two independent payout obligations of a period.
// Positive means the platform owes the provider; negative means the provider
// owes the platform.
func NetBalance(onlinePayoutOwed, codCommissionOwed Money) Money {
	return onlinePayoutOwed.Subtract(codCommissionOwed)
}

// SettlementDirection classifies a net balance, applying DirectionDeadband so
// that residual rounding noise reads as balanced.
func SettlementDirection(netBalance Money) Direction {
	switch {
	case netBalance.GreaterThan(DirectionDeadband):
		return DirectionPlatformPaysProvider
	case netBalance.LessThan(DirectionDeadband.Negate()):
		return DirectionProviderPaysPlatform
	default:
		return DirectionBalanced
	}
}
