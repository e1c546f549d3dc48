package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// centPlaces is the rounding precision of every amount in a Breakdown.
const centPlaces int32 = 2

var cent = decimal.New(1, -centPlaces)

// Input carries the per-product values of a pricing run. Rates are percentages.
type Input struct {
	BaseCost      decimal.Decimal `json:"base_cost"`
	MarkupRate    decimal.Decimal `json:"markup_rate"`
	AffiliateRate decimal.Decimal `json:"affiliate_rate"`
}

// Validate rejects negative costs, negative markups and affiliate rates outside
// [0, 100]. Nothing is clamped.
func (in Input) Validate() error {
	if in.BaseCost.IsNegative() {
		return fmt.Errorf("%w: %s is negative", ErrInvalidBaseCost, in.BaseCost)
	}
	if in.MarkupRate.IsNegative() {
		return fmt.Errorf("%w: markup rate %s is negative", ErrInvalidRate, in.MarkupRate)
	}
	return checkPercent("affiliate rate", in.AffiliateRate)
}

// Breakdown is the decomposition of one customer-facing price. It is stored as
// a snapshot on the imported product so later policy changes never rewrite
// historical prices.
type Breakdown struct {
	BaseCost            decimal.Decimal `json:"base_cost"`
	SellerProfit        decimal.Decimal `json:"seller_profit"`
	SellerAsk           decimal.Decimal `json:"seller_ask"`
	AffiliateCommission decimal.Decimal `json:"affiliate_commission"`
	RecruiterCommission decimal.Decimal `json:"recruiter_commission"`
	PlatformFee         decimal.Decimal `json:"platform_fee"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	ProcessorFee        decimal.Decimal `json:"processor_fee"`
	FinalPrice          decimal.Decimal `json:"final_price"`
	Currency            string          `json:"currency"`
}

// ComputeBreakdown grosses up in.BaseCost into a final price that pays the
// seller, the affiliate, the recruiter and the platform in full after the
// processor's cut.
//
// The function is pure: identical inputs always give identical output.
func ComputeBreakdown(in Input, policy Policy) (Breakdown, error) {
	if err := policy.Validate(); err != nil {
		return Breakdown{}, err
	}
	if err := in.Validate(); err != nil {
		return Breakdown{}, err
	}

	profit := in.BaseCost.Mul(in.MarkupRate).Div(hundred)
	ask := in.BaseCost.Add(profit)
	affiliate := ask.Mul(in.AffiliateRate).Div(hundred)
	recruiter := ask.Mul(policy.RecruiterRate).Div(hundred)
	platform := ask.Mul(policy.PlatformRate).Div(hundred)

	b := Breakdown{
		BaseCost:            round(in.BaseCost),
		SellerProfit:        round(profit),
		AffiliateCommission: round(affiliate),
		RecruiterCommission: round(recruiter),
		PlatformFee:         round(platform),
		Currency:            policy.Currency,
	}
	b.SellerAsk = b.BaseCost.Add(b.SellerProfit)
	b.Subtotal = b.SellerAsk.Add(b.AffiliateCommission).Add(b.RecruiterCommission).Add(b.PlatformFee)

	// Gross up the rounded subtotal: final - (pct*final + fixed) = subtotal.
	retained := decimal.NewFromInt(1).Sub(policy.Processor.PercentageRate.Div(hundred))
	final := round(b.Subtotal.Add(policy.Processor.FixedFee).Div(retained))
	// The processor settles its cut in cents; never let that rounding eat
	// into what the payees are owed.
	for final.Sub(round(policy.Processor.Charge(final))).LessThan(b.Subtotal) {
		final = final.Add(cent)
	}
	b.FinalPrice = final
	b.ProcessorFee = b.FinalPrice.Sub(b.Subtotal)
	return b, nil
}

// NetAfterProcessor is what remains of FinalPrice once the processor line is
// deducted.
func (b Breakdown) NetAfterProcessor() decimal.Decimal {
	return b.FinalPrice.Sub(b.ProcessorFee)
}

// Check verifies that the components add up to FinalPrice.
func (b Breakdown) Check() error {
	sum := b.BaseCost.
		Add(b.SellerProfit).
		Add(b.AffiliateCommission).
		Add(b.RecruiterCommission).
		Add(b.PlatformFee).
		Add(b.ProcessorFee)
	if !sum.Equal(b.FinalPrice) {
		return fmt.Errorf("pricing: components sum to %s, final price is %s", sum, b.FinalPrice)
	}
	return nil
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(centPlaces)
}
