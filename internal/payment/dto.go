package payment

import (
	"time"

	errors "github.com/frahmantamala/property-management/internal"
	"github.com/frahmantamala/property-management/internal/core/common/validation"
	"github.com/frahmantamala/property-management/internal/rentshare"
	"github.com/shopspring/decimal"
)

var (
	zero    = decimal.Zero
	hundred = decimal.NewFromInt(100)
)

type CommonChargesDTO struct {
	Internet    *decimal.Decimal `json:"internet,omitempty"`
	Electricity *decimal.Decimal `json:"electricity,omitempty"`
	Water       *decimal.Decimal `json:"water,omitempty"`
	Heating     *decimal.Decimal `json:"heating,omitempty"`
}

func (c CommonChargesDTO) overlay(base rentshare.CommonCharges) rentshare.CommonCharges {
	if c.Internet != nil {
		base.Internet = c.Internet
	}
	if c.Electricity != nil {
		base.Electricity = c.Electricity
	}
	if c.Water != nil {
		base.Water = c.Water
	}
	if c.Heating != nil {
		base.Heating = c.Heating
	}
	return base
}

// ShareDetailsDTO is the client's view of a co-living split. TotalRent and
// Percentage may be omitted and are then taken from the property's rent and
// the tenant's rent share.
type ShareDetailsDTO struct {
	Percentage    *decimal.Decimal `json:"percentage,omitempty"`
	TotalRent     *decimal.Decimal `json:"total_rent,omitempty"`
	CommonCharges CommonChargesDTO `json:"common_charges"`
}

func (d *ShareDetailsDTO) addRules(v *validation.ValidationBuilder) {
	v.Field("share_details.percentage", d.Percentage).Between(zero, hundred, errors.ErrCodeInvalidShare)
	v.Field("share_details.total_rent", d.TotalRent).NonNegative(errors.ErrCodeInvalidShare)
	v.Field("share_details.common_charges.internet", d.CommonCharges.Internet).NonNegative(errors.ErrCodeInvalidShare)
	v.Field("share_details.common_charges.electricity", d.CommonCharges.Electricity).NonNegative(errors.ErrCodeInvalidShare)
	v.Field("share_details.common_charges.water", d.CommonCharges.Water).NonNegative(errors.ErrCodeInvalidShare)
	v.Field("share_details.common_charges.heating", d.CommonCharges.Heating).NonNegative(errors.ErrCodeInvalidShare)
}

// resolve fills omitted values from the defaults and returns the stored form.
// Charges the patch omits keep their value in base.
func (d *ShareDetailsDTO) resolve(defaultRent decimal.Decimal, defaultPercentage *decimal.Decimal, base rentshare.CommonCharges) (*rentshare.Details, error) {
	details := &rentshare.Details{
		TotalRent:     defaultRent,
		CommonCharges: d.CommonCharges.overlay(base),
	}
	if d.TotalRent != nil {
		details.TotalRent = *d.TotalRent
	}

	switch {
	case d.Percentage != nil:
		details.Percentage = *d.Percentage
	case defaultPercentage != nil:
		details.Percentage = *defaultPercentage
	default:
		return nil, errors.NewValidationFieldError("share_details.percentage", "share_details.percentage is required when the tenant has no rent share", errors.ErrCodeInvalidShare)
	}

	return details, nil
}

type CreatePaymentDTO struct {
	TenantID        int64            `json:"tenant_id"`
	PropertyID      int64            `json:"property_id"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	DueDate         time.Time        `json:"due_date"`
	PaymentMethod   *string          `json:"payment_method,omitempty"`
	Reference       *string          `json:"reference,omitempty"`
	IsCoLivingShare bool             `json:"is_co_living_share"`
	ShareDetails    *ShareDetailsDTO `json:"share_details,omitempty"`
}

func (d *CreatePaymentDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("tenant_id", d.TenantID).Required()
	validator.Field("property_id", d.PropertyID).Required()
	validator.Field("due_date", d.DueDate).Required()
	validator.Field("payment_method", d.PaymentMethod).OneOf(PaymentMethods, errors.ErrCodeInvalidMethod)
	validator.Field("reference", d.Reference).MaxLength(255)

	if d.IsCoLivingShare {
		if d.ShareDetails == nil {
			validator.Field("share_details", nil).Required()
		} else {
			d.ShareDetails.addRules(validator)
		}
	} else {
		validator.Field("amount", d.Amount).Required().NonNegative(errors.ErrCodeInvalidAmount)
	}

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// UpdatePaymentDTO is a partial update; nil fields are left untouched.
type UpdatePaymentDTO struct {
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	PaymentMethod   *string          `json:"payment_method,omitempty"`
	Reference       *string          `json:"reference,omitempty"`
	IsCoLivingShare *bool            `json:"is_co_living_share,omitempty"`
	ShareDetails    *ShareDetailsDTO `json:"share_details,omitempty"`
}

func (d *UpdatePaymentDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("amount", d.Amount).NonNegative(errors.ErrCodeInvalidAmount)
	validator.Field("payment_method", d.PaymentMethod).OneOf(PaymentMethods, errors.ErrCodeInvalidMethod)
	validator.Field("reference", d.Reference).MaxLength(255)
	if d.ShareDetails != nil {
		d.ShareDetails.addRules(validator)
	}

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func (d *UpdatePaymentDTO) IsEmpty() bool {
	return d.Amount == nil && d.PaymentMethod == nil && d.Reference == nil &&
		d.IsCoLivingShare == nil && d.ShareDetails == nil
}

// ListFilter narrows an owner's payment listing. Zero values mean no filter.
type ListFilter struct {
	Status     string
	PropertyID int64
	TenantID   int64
	Limit      int
	Offset     int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

func (f *ListFilter) Validate() error {
	validator := validation.NewValidator()
	validator.Field("status", f.Status).OneOf(Statuses, errors.ErrCodeInvalidStatus)
	validator.Field("limit", f.Limit).Custom(func(v interface{}) *errors.AppError {
		if f.Limit < 0 || f.Limit > MaxListLimit {
			return errors.NewValidationFieldError("limit", "limit must be between 0 and 200", errors.ErrCodeValidationFailed)
		}
		return nil
	})
	validator.Field("offset", f.Offset).Custom(func(v interface{}) *errors.AppError {
		if f.Offset < 0 {
			return errors.NewValidationFieldError("offset", "offset must not be negative", errors.ErrCodeValidationFailed)
		}
		return nil
	})

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	if f.Limit == 0 {
		f.Limit = DefaultListLimit
	}
	return nil
}

// StatusSummary is the count and amount of an owner's payments in one status.
type StatusSummary struct {
	Status string          `json:"status"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type Stats struct {
	PropertyID  *int64          `json:"property_id,omitempty"`
	Total       int64           `json:"total"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Pending     StatusSummary   `json:"pending"`
	Paid        StatusSummary   `json:"paid"`
	Late        StatusSummary   `json:"late"`
	PaymentRate int             `json:"payment_rate"`
}
