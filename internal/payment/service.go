package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/property-management/internal"
	"github.com/frahmantamala/property-management/internal/metrics"
	"github.com/frahmantamala/property-management/internal/property"
	"github.com/frahmantamala/property-management/internal/rentshare"
	"github.com/frahmantamala/property-management/internal/stats"
	"github.com/frahmantamala/property-management/internal/tenant"
	"github.com/shopspring/decimal"
)

// Repository is the payment record store. GetByID and GetView return
// ErrPaymentNotFound for unknown ids.
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id int64) (*Payment, error)
	GetView(ctx context.Context, id int64) (*View, error)
	List(ctx context.Context, ownerID int64, filter ListFilter) ([]*View, error)
	Update(ctx context.Context, p *Payment) error
	// MarkPaid reports false when the payment was already paid and nothing changed.
	MarkPaid(ctx context.Context, id int64, paidAt time.Time, entry HistoryEntry) (bool, error)
	AppendHistory(ctx context.Context, id int64, entry HistoryEntry) error
	Delete(ctx context.Context, id int64) error
	SweepLate(ctx context.Context, now time.Time) (int64, error)
	SummarizeByStatus(ctx context.Context, propertyIDs []int64) ([]StatusSummary, error)
}

type PropertyResolver interface {
	ResolveOwnedProperty(ctx context.Context, ownerID, propertyID int64) (*property.Property, error)
	OwnedPropertyIDs(ctx context.Context, ownerID int64) ([]int64, error)
}

type TenantResolver interface {
	ResolveTenant(ctx context.Context, tenantID int64) (*tenant.Tenant, error)
}

type Notifier interface {
	SendPaymentConfirmation(ctx context.Context, email string, view *View) error
	SendPaymentReminder(ctx context.Context, email string, view *View) error
}

type ReceiptRenderer interface {
	RenderReceipt(view *View, owner OwnerView) ([]byte, error)
}

type OwnerDirectory interface {
	GetOwner(ctx context.Context, ownerID int64) (*OwnerView, error)
}

type Exporter interface {
	ExportPayments(views []*View) ([]byte, error)
}

type ServiceAPI interface {
	Create(ctx context.Context, ownerID int64, dto CreatePaymentDTO) (*View, error)
	Get(ctx context.Context, ownerID, id int64) (*View, error)
	List(ctx context.Context, ownerID int64, filter ListFilter) ([]*View, error)
	Update(ctx context.Context, ownerID, id int64, dto UpdatePaymentDTO) (*View, error)
	MarkAsPaid(ctx context.Context, ownerID, id int64) (*View, error)
	SendReminder(ctx context.Context, ownerID, id int64) (*View, error)
	Delete(ctx context.Context, ownerID, id int64) error
	Receipt(ctx context.Context, ownerID, id int64) (*Receipt, error)
	Stats(ctx context.Context, ownerID int64, propertyID *int64) (*Stats, error)
	Export(ctx context.Context, ownerID int64) (*Receipt, error)
}

type Deps struct {
	Repository Repository
	Properties PropertyResolver
	Tenants    TenantResolver
	Notifier   Notifier
	Receipts   ReceiptRenderer
	Owners     OwnerDirectory
	Exporter   Exporter
	Logger     *slog.Logger
	Clock      func() time.Time
}

// Service implements the payment lifecycle for property owners. Every
// operation checks that the owner owns the payment's property before it
// reads or writes anything.
type Service struct {
	repo       Repository
	properties PropertyResolver
	tenants    TenantResolver
	notifier   Notifier
	receipts   ReceiptRenderer
	owners     OwnerDirectory
	exporter   Exporter
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(deps Deps) *Service {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:       deps.Repository,
		properties: deps.Properties,
		tenants:    deps.Tenants,
		notifier:   deps.Notifier,
		receipts:   deps.Receipts,
		owners:     deps.Owners,
		exporter:   deps.Exporter,
		logger:     deps.Logger,
		now:        func() time.Time { return clock().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, ownerID int64, dto CreatePaymentDTO) (*View, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("payment validation failed", "error", err, "owner_id", ownerID)
		return nil, err
	}

	prop, err := s.properties.ResolveOwnedProperty(ctx, ownerID, dto.PropertyID)
	if err != nil {
		return nil, err
	}

	t, err := s.tenants.ResolveTenant(ctx, dto.TenantID)
	if err != nil {
		return nil, err
	}
	if !t.LivesIn(prop.ID) {
		s.logger.Warn("tenant does not belong to property", "tenant_id", t.ID, "property_id", prop.ID, "owner_id", ownerID)
		return nil, errors.NewValidationFieldError("tenant_id", "tenant does not belong to the property", errors.ErrCodeTenantMismatch)
	}

	now := s.now()
	p := &Payment{
		TenantID:        t.ID,
		PropertyID:      prop.ID,
		DueDate:         dto.DueDate.UTC(),
		Status:          StatusPending,
		PaymentMethod:   dto.PaymentMethod,
		Reference:       dto.Reference,
		IsCoLivingShare: dto.IsCoLivingShare,
		History:         []HistoryEntry{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if dto.Amount != nil {
		p.Amount = *dto.Amount
	}
	if dto.IsCoLivingShare {
		details, err := dto.ShareDetails.resolve(prop.Rent, t.RentShare, rentshare.CommonCharges{})
		if err != nil {
			return nil, err
		}
		p.ShareDetails = details
	}

	if err := p.DeriveAmount(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("failed to create payment", "error", err, "owner_id", ownerID, "property_id", prop.ID)
		return nil, errors.NewInternalError("failed to create payment", err)
	}
	metrics.PaymentTransitions.WithLabelValues(StatusPending).Inc()

	s.logger.Info("payment created",
		"payment_id", p.ID,
		"property_id", p.PropertyID,
		"tenant_id", p.TenantID,
		"amount", p.Amount.StringFixed(2),
		"co_living", p.IsCoLivingShare)

	return &View{
		Payment:  p,
		Tenant:   &TenantSummary{ID: t.ID, Name: t.Name, Email: t.Email},
		Property: &PropertySummary{ID: prop.ID, Name: prop.Name, Address: prop.Address},
	}, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id int64) (*View, error) {
	return s.loadOwnedView(ctx, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID int64, filter ListFilter) ([]*View, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	if filter.PropertyID != 0 {
		if _, err := s.properties.ResolveOwnedProperty(ctx, ownerID, filter.PropertyID); err != nil {
			return nil, err
		}
	}

	views, err := s.repo.List(ctx, ownerID, filter)
	if err != nil {
		s.logger.Error("failed to list payments", "error", err, "owner_id", ownerID)
		return nil, errors.NewInternalError("failed to list payments", err)
	}
	return views, nil
}

func (s *Service) Update(ctx context.Context, ownerID, id int64, dto UpdatePaymentDTO) (*View, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	view, err := s.loadOwnedView(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if dto.IsEmpty() {
		return view, nil
	}

	p := view.Payment
	if dto.Amount != nil {
		p.Amount = *dto.Amount
	}
	if dto.PaymentMethod != nil {
		p.PaymentMethod = dto.PaymentMethod
	}
	if dto.Reference != nil {
		p.Reference = dto.Reference
	}
	if dto.IsCoLivingShare != nil {
		p.IsCoLivingShare = *dto.IsCoLivingShare
	}
	if dto.ShareDetails != nil && !p.IsCoLivingShare {
		return nil, errors.NewValidationFieldError("share_details", "share_details requires a co-living share", errors.ErrCodeInvalidShare)
	}
	if dto.ShareDetails != nil {
		details, err := s.resolveShareUpdate(ctx, ownerID, p, dto.ShareDetails)
		if err != nil {
			return nil, err
		}
		p.ShareDetails = details
	}

	if err := p.DeriveAmount(); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.Error("failed to update payment", "error", err, "payment_id", id)
		return nil, errors.NewInternalError("failed to update payment", err)
	}

	s.logger.Info("payment updated", "payment_id", id, "owner_id", ownerID, "amount", p.Amount.StringFixed(2))
	return view, nil
}

// resolveShareUpdate merges a patched split with the stored one. Values the
// patch omits fall back to the stored split, then to the property's rent and
// the tenant's rent share.
func (s *Service) resolveShareUpdate(ctx context.Context, ownerID int64, p *Payment, patch *ShareDetailsDTO) (*rentshare.Details, error) {
	if current := p.ShareDetails; current != nil {
		percentage := current.Percentage
		return patch.resolve(current.TotalRent, &percentage, current.CommonCharges)
	}

	prop, err := s.properties.ResolveOwnedProperty(ctx, ownerID, p.PropertyID)
	if err != nil {
		return nil, err
	}
	var rentShare *decimal.Decimal
	if patch.Percentage == nil {
		t, err := s.tenants.ResolveTenant(ctx, p.TenantID)
		if err != nil {
			return nil, err
		}
		rentShare = t.RentShare
	}
	return patch.resolve(prop.Rent, rentShare, rentshare.CommonCharges{})
}

// MarkAsPaid moves a pending or late payment to paid. Marking an already
// paid payment is a no-op that keeps the original paid date and sends no
// second confirmation.
func (s *Service) MarkAsPaid(ctx context.Context, ownerID, id int64) (*View, error) {
	view, t, err := s.loadForTenantAction(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entry := HistoryEntry{
		Action:      ActionMarkedPaid,
		PerformedBy: ownerID,
		Timestamp:   now,
		Metadata:    map[string]interface{}{"previous_status": view.Status},
	}

	changed, err := s.repo.MarkPaid(ctx, id, now, entry)
	if err != nil {
		s.logger.Error("failed to mark payment as paid", "error", err, "payment_id", id)
		return nil, errors.NewInternalError("failed to mark payment as paid", err)
	}
	if !changed {
		s.logger.Info("payment already paid, nothing to do", "payment_id", id, "owner_id", ownerID)
		return s.reload(ctx, view)
	}
	metrics.PaymentTransitions.WithLabelValues(StatusPaid).Inc()

	view.Status = StatusPaid
	view.PaidDate = &now
	view.UpdatedAt = now
	view.History = append(view.History, entry)

	s.logger.Info("payment marked as paid", "payment_id", id, "owner_id", ownerID, "tenant_id", t.ID)

	if email, ok := t.ContactEmail(); ok {
		if err := s.notifier.SendPaymentConfirmation(ctx, email, view); err != nil {
			s.logger.Warn("payment confirmation not sent", "error", err, "payment_id", id)
		}
	}

	return view, nil
}

func (s *Service) SendReminder(ctx context.Context, ownerID, id int64) (*View, error) {
	view, t, err := s.loadForTenantAction(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if view.IsPaid() {
		return nil, errors.ErrAlreadyPaid
	}
	email, ok := t.ContactEmail()
	if !ok {
		s.logger.Warn("reminder refused, tenant has no email", "payment_id", id, "tenant_id", t.ID)
		return nil, errors.ErrTenantEmailMissing
	}

	entry := HistoryEntry{
		Action:      ActionReminderSent,
		PerformedBy: ownerID,
		Timestamp:   s.now(),
		Metadata:    map[string]interface{}{"email": email},
	}
	if err := s.repo.AppendHistory(ctx, id, entry); err != nil {
		s.logger.Error("failed to record reminder", "error", err, "payment_id", id)
		return nil, errors.NewInternalError("failed to record reminder", err)
	}
	view.History = append(view.History, entry)

	if err := s.notifier.SendPaymentReminder(ctx, email, view); err != nil {
		s.logger.Warn("payment reminder not sent", "error", err, "payment_id", id)
	}

	s.logger.Info("payment reminder recorded", "payment_id", id, "owner_id", ownerID)
	return view, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.storeError(err, "failed to load payment", id)
	}
	if _, err := s.properties.ResolveOwnedProperty(ctx, ownerID, p.PropertyID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storeError(err, "failed to delete payment", id)
	}

	s.logger.Info("payment deleted", "payment_id", id, "owner_id", ownerID)
	return nil
}

func (s *Service) Receipt(ctx context.Context, ownerID, id int64) (*Receipt, error) {
	view, err := s.loadOwnedView(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	owner, err := s.owners.GetOwner(ctx, ownerID)
	if err != nil {
		if _, ok := errors.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to load owner for receipt", "error", err, "owner_id", ownerID)
		return nil, errors.NewInternalError("failed to generate receipt", err)
	}

	content, err := s.receipts.RenderReceipt(view, *owner)
	if err != nil {
		s.logger.Error("failed to render receipt", "error", err, "payment_id", id)
		return nil, errors.NewInternalError("failed to generate receipt", err)
	}

	return &Receipt{FileName: fmt.Sprintf("receipt-%d.pdf", id), Content: content}, nil
}

// Stats summarizes the owner's payments, optionally for one property.
func (s *Service) Stats(ctx context.Context, ownerID int64, propertyID *int64) (*Stats, error) {
	var ids []int64
	if propertyID != nil {
		if _, err := s.properties.ResolveOwnedProperty(ctx, ownerID, *propertyID); err != nil {
			return nil, err
		}
		ids = []int64{*propertyID}
	} else {
		owned, err := s.properties.OwnedPropertyIDs(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		ids = owned
	}

	result := &Stats{
		PropertyID:  propertyID,
		TotalAmount: decimal.Zero,
		Pending:     StatusSummary{Status: StatusPending, Amount: decimal.Zero},
		Paid:        StatusSummary{Status: StatusPaid, Amount: decimal.Zero},
		Late:        StatusSummary{Status: StatusLate, Amount: decimal.Zero},
	}
	if len(ids) == 0 {
		return result, nil
	}

	summaries, err := s.repo.SummarizeByStatus(ctx, ids)
	if err != nil {
		s.logger.Error("failed to summarize payments", "error", err, "owner_id", ownerID)
		return nil, errors.NewInternalError("failed to compute payment statistics", err)
	}

	for _, summary := range summaries {
		switch summary.Status {
		case StatusPending:
			result.Pending = summary
		case StatusPaid:
			result.Paid = summary
		case StatusLate:
			result.Late = summary
		default:
			continue
		}
		result.Total += summary.Count
		result.TotalAmount = result.TotalAmount.Add(summary.Amount)
	}
	result.PaymentRate = stats.PaymentRate(result.Paid.Count, result.Total)

	return result, nil
}

// Export renders every payment of the owner as a spreadsheet.
func (s *Service) Export(ctx context.Context, ownerID int64) (*Receipt, error) {
	views, err := s.repo.List(ctx, ownerID, ListFilter{})
	if err != nil {
		s.logger.Error("failed to list payments for export", "error", err, "owner_id", ownerID)
		return nil, errors.NewInternalError("failed to export payments", err)
	}

	content, err := s.exporter.ExportPayments(views)
	if err != nil {
		s.logger.Error("failed to render payment export", "error", err, "owner_id", ownerID)
		return nil, errors.NewInternalError("failed to export payments", err)
	}

	s.logger.Info("payments exported", "owner_id", ownerID, "rows", len(views))
	return &Receipt{
		FileName: fmt.Sprintf("payments-%s.xlsx", s.now().Format("2006-01-02")),
		Content:  content,
	}, nil
}

func (s *Service) loadOwnedView(ctx context.Context, ownerID, id int64) (*View, error) {
	view, err := s.repo.GetView(ctx, id)
	if err != nil {
		return nil, s.storeError(err, "failed to load payment", id)
	}
	if _, err := s.properties.ResolveOwnedProperty(ctx, ownerID, view.PropertyID); err != nil {
		return nil, err
	}
	return view, nil
}

// loadForTenantAction loads an owned payment together with its tenant,
// which must live in the payment's property.
func (s *Service) loadForTenantAction(ctx context.Context, ownerID, id int64) (*View, *tenant.Tenant, error) {
	view, err := s.loadOwnedView(ctx, ownerID, id)
	if err != nil {
		return nil, nil, err
	}

	t, err := s.tenants.ResolveTenant(ctx, view.TenantID)
	if err != nil {
		return nil, nil, err
	}
	if !t.LivesIn(view.PropertyID) {
		s.logger.Warn("tenant no longer belongs to payment property", "payment_id", id, "tenant_id", t.ID, "property_id", view.PropertyID)
		return nil, nil, errors.ErrTenantMismatch
	}

	return view, t, nil
}

func (s *Service) reload(ctx context.Context, view *View) (*View, error) {
	fresh, err := s.repo.GetView(ctx, view.ID)
	if err != nil {
		s.logger.Warn("failed to reload payment", "error", err, "payment_id", view.ID)
		return view, nil
	}
	return fresh, nil
}

func (s *Service) storeError(err error, message string, id int64) error {
	if _, ok := errors.IsAppError(err); ok {
		return err
	}
	s.logger.Error(message, "error", err, "payment_id", id)
	return errors.NewInternalError(message, err)
}
