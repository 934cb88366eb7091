// Package rentshare computes what a co-living tenant owes for one billing
// period: their percentage of the property's rent plus the shared utility
// charges.
package rentshare

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrInvalidArgument = errors.New("rentshare: invalid argument")

var hundred = decimal.NewFromInt(100)

// CommonCharges holds the shared utility charges. A nil field is an absent
// charge and counts as zero.
type CommonCharges struct {
	Internet    *decimal.Decimal `json:"internet,omitempty"`
	Electricity *decimal.Decimal `json:"electricity,omitempty"`
	Water       *decimal.Decimal `json:"water,omitempty"`
	Heating     *decimal.Decimal `json:"heating,omitempty"`
}

type namedCharge struct {
	name   string
	amount *decimal.Decimal
}

func (c CommonCharges) named() []namedCharge {
	return []namedCharge{
		{"internet", c.Internet},
		{"electricity", c.Electricity},
		{"water", c.Water},
		{"heating", c.Heating},
	}
}

// Total sums the present charges without validating them.
func (c CommonCharges) Total() decimal.Decimal {
	total := decimal.Zero
	for _, ch := range c.named() {
		if ch.amount != nil {
			total = total.Add(*ch.amount)
		}
	}
	return total
}

// Details is a tenant's share of a co-living property.
type Details struct {
	Percentage    decimal.Decimal `json:"percentage"`
	TotalRent     decimal.Decimal `json:"total_rent"`
	CommonCharges CommonCharges   `json:"common_charges"`
}

// Amount is ComputeShareAmount applied to d.
func (d Details) Amount() (decimal.Decimal, error) {
	return ComputeShareAmount(d.TotalRent, d.Percentage, d.CommonCharges)
}

// ComputeShareAmount returns totalRent*percentage/100 plus every present
// charge, rounded half away from zero to 2 decimal places.
func ComputeShareAmount(totalRent, percentage decimal.Decimal, charges CommonCharges) (decimal.Decimal, error) {
	if totalRent.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: total rent must not be negative", ErrInvalidArgument)
	}
	if percentage.IsNegative() || percentage.GreaterThan(hundred) {
		return decimal.Zero, fmt.Errorf("%w: percentage %s outside [0,100]", ErrInvalidArgument, percentage)
	}
	for _, ch := range charges.named() {
		if ch.amount != nil && ch.amount.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: %s charge must not be negative", ErrInvalidArgument, ch.name)
		}
	}

	share := totalRent.Mul(percentage).Div(hundred)
	return share.Add(charges.Total()).Round(2), nil
}
