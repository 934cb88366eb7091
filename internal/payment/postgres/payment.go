package postgres

import (
	"context"
	stderrors "errors"
	"time"

	errors "github.com/frahmantamala/property-management/internal"
	"github.com/frahmantamala/property-management/internal/core/datamodel/payment"
	paymentpkg "github.com/frahmantamala/property-management/internal/payment"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{
		db: db,
	}
}

var _ paymentpkg.Repository = (*PaymentRepository)(nil)

func historyOrder(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

func (r *PaymentRepository) Create(ctx context.Context, p *paymentpkg.Payment) error {
	m := paymentpkg.ToDataModel(p)
	if err := r.db.WithContext(ctx).Omit("Tenant", "Property", "History").Create(m).Error; err != nil {
		return err
	}
	p.ID = m.ID
	p.CreatedAt = m.CreatedAt
	p.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*paymentpkg.Payment, error) {
	var m payment.Payment
	err := r.db.WithContext(ctx).Preload("History", historyOrder).First(&m, id).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrPaymentNotFound
		}
		return nil, err
	}
	return paymentpkg.FromDataModel(&m), nil
}

func (r *PaymentRepository) GetView(ctx context.Context, id int64) (*paymentpkg.View, error) {
	var m payment.Payment
	err := r.db.WithContext(ctx).
		Preload("Tenant").
		Preload("Property").
		Preload("History", historyOrder).
		First(&m, id).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrPaymentNotFound
		}
		return nil, err
	}
	return paymentpkg.ViewFromDataModel(&m), nil
}

// List returns the owner's payments, newest due date first. A non-positive
// limit returns every match.
func (r *PaymentRepository) List(ctx context.Context, ownerID int64, filter paymentpkg.ListFilter) ([]*paymentpkg.View, error) {
	query := r.db.WithContext(ctx).
		Model(&payment.Payment{}).
		Select("payments.*").
		Joins("JOIN properties ON properties.id = payments.property_id").
		Where("properties.owner_id = ?", ownerID)

	if filter.Status != "" {
		query = query.Where("payments.status = ?", filter.Status)
	}
	if filter.PropertyID != 0 {
		query = query.Where("payments.property_id = ?", filter.PropertyID)
	}
	if filter.TenantID != 0 {
		query = query.Where("payments.tenant_id = ?", filter.TenantID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var rows []payment.Payment
	err := query.
		Preload("Tenant").
		Preload("Property").
		Preload("History", historyOrder).
		Order("payments.due_date DESC, payments.id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	views := make([]*paymentpkg.View, 0, len(rows))
	for i := range rows {
		views = append(views, paymentpkg.ViewFromDataModel(&rows[i]))
	}
	return views, nil
}

// Update writes the owner-editable columns. Status, dates and history are
// owned by MarkPaid and SweepLate.
func (r *PaymentRepository) Update(ctx context.Context, p *paymentpkg.Payment) error {
	m := paymentpkg.ToDataModel(p)
	updates := map[string]interface{}{
		"amount":             m.Amount,
		"payment_method":     m.PaymentMethod,
		"reference":          m.Reference,
		"is_co_living_share": m.IsCoLivingShare,
		"share_percentage":   m.SharePercentage,
		"share_total_rent":   m.ShareTotalRent,
		"charge_internet":    m.ChargeInternet,
		"charge_electricity": m.ChargeElectricity,
		"charge_water":       m.ChargeWater,
		"charge_heating":     m.ChargeHeating,
		"updated_at":         m.UpdatedAt,
	}

	res := r.db.WithContext(ctx).Model(&payment.Payment{}).Where("id = ?", p.ID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepository) MarkPaid(ctx context.Context, id int64, paidAt time.Time, entry paymentpkg.HistoryEntry) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&payment.Payment{}).
			Where("id = ? AND status <> ?", id, payment.StatusPaid).
			Updates(map[string]interface{}{
				"status":     payment.StatusPaid,
				"paid_date":  paidAt,
				"updated_at": paidAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true
		return tx.Create(paymentpkg.HistoryToDataModel(id, entry)).Error
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

func (r *PaymentRepository) AppendHistory(ctx context.Context, id int64, entry paymentpkg.HistoryEntry) error {
	return r.db.WithContext(ctx).Create(paymentpkg.HistoryToDataModel(id, entry)).Error
}

func (r *PaymentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("payment_id = ?", id).Delete(&payment.History{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&payment.Payment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.ErrPaymentNotFound
		}
		return nil
	})
}

func (r *PaymentRepository) SweepLate(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&payment.Payment{}).
		Where("status = ? AND due_date < ? AND paid_date IS NULL", payment.StatusPending, now).
		Updates(map[string]interface{}{
			"status":     payment.StatusLate,
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}

func (r *PaymentRepository) SummarizeByStatus(ctx context.Context, propertyIDs []int64) ([]paymentpkg.StatusSummary, error) {
	var rows []paymentpkg.StatusSummary
	err := r.db.WithContext(ctx).
		Model(&payment.Payment{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Where("property_id IN ?", propertyIDs).
		Group("status").
		Order("status").
		Scan(&rows).Error
	return rows, err
}
