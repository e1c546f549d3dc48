package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidRate is returned for negative or out-of-range percentage rates.
	ErrInvalidRate = errors.New("pricing: invalid rate")
	// ErrInvalidBaseCost is returned for a negative base cost.
	ErrInvalidBaseCost = errors.New("pricing: invalid base cost")
	// ErrInvalidFee is returned for a negative processor fixed fee.
	ErrInvalidFee = errors.New("pricing: invalid processor fee")
)

var hundred = decimal.NewFromInt(100)

// FeeSchedule is a payment processor's per-transaction cut: a percentage of the
// charged amount plus a fixed component.
type FeeSchedule struct {
	PercentageRate decimal.Decimal `json:"percentage_rate"` // percent, e.g. 2.9
	FixedFee       decimal.Decimal `json:"fixed_fee"`
}

// Charge returns what the processor keeps when amount is charged.
func (f FeeSchedule) Charge(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(f.PercentageRate).Div(hundred).Add(f.FixedFee)
}

// Validate checks that the schedule can be grossed up.
func (f FeeSchedule) Validate() error {
	if f.PercentageRate.IsNegative() || f.PercentageRate.GreaterThanOrEqual(hundred) {
		return fmt.Errorf("%w: processor percentage %s must be in [0, 100)", ErrInvalidRate, f.PercentageRate)
	}
	if f.FixedFee.IsNegative() {
		return fmt.Errorf("%w: fixed fee %s is negative", ErrInvalidFee, f.FixedFee)
	}
	return nil
}

// Policy holds the marketplace-wide constants applied to every breakdown.
type Policy struct {
	RecruiterRate decimal.Decimal `json:"recruiter_rate"`
	PlatformRate  decimal.Decimal `json:"platform_rate"`
	Processor     FeeSchedule     `json:"processor"`
	Currency      string          `json:"currency"`
}

// DefaultPolicy returns the standard 5% recruiter, 10% platform and
// 2.9% + 0.30 processor policy in USD.
func DefaultPolicy() Policy {
	return Policy{
		RecruiterRate: decimal.NewFromInt(5),
		PlatformRate:  decimal.NewFromInt(10),
		Processor: FeeSchedule{
			PercentageRate: decimal.RequireFromString("2.9"),
			FixedFee:       decimal.RequireFromString("0.30"),
		},
		Currency: "USD",
	}
}

// Validate checks every policy rate.
func (p Policy) Validate() error {
	if err := checkPercent("recruiter rate", p.RecruiterRate); err != nil {
		return err
	}
	if err := checkPercent("platform rate", p.PlatformRate); err != nil {
		return err
	}
	return p.Processor.Validate()
}

func checkPercent(name string, rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return fmt.Errorf("%w: %s %s must be in [0, 100]", ErrInvalidRate, name, rate)
	}
	return nil
}
