package payment_test

import (
	"context"
	stderrors "errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/property-management/internal"
	"github.com/frahmantamala/property-management/internal/payment"
	"github.com/frahmantamala/property-management/internal/property"
	"github.com/frahmantamala/property-management/internal/rentshare"
	"github.com/frahmantamala/property-management/internal/tenant"
	"github.com/frahmantamala/property-management/pkg/logger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

// fakeRepository is an in-memory payment store.
type fakeRepository struct {
	mu         sync.Mutex
	nextID     int64
	payments   map[int64]*payment.Payment
	properties *fakeProperties
	tenants    *fakeTenants

	failWith error
}

func newFakeRepository(properties *fakeProperties, tenants *fakeTenants) *fakeRepository {
	return &fakeRepository{
		nextID:     1,
		payments:   map[int64]*payment.Payment{},
		properties: properties,
		tenants:    tenants,
	}
}

func clonePayment(p *payment.Payment) *payment.Payment {
	c := *p
	c.History = append([]payment.HistoryEntry{}, p.History...)
	if p.ShareDetails != nil {
		d := *p.ShareDetails
		c.ShareDetails = &d
	}
	if p.PaidDate != nil {
		t := *p.PaidDate
		c.PaidDate = &t
	}
	return &c
}

func (r *fakeRepository) put(p *payment.Payment) *payment.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		p.ID = r.nextID
		r.nextID++
	}
	if p.History == nil {
		p.History = []payment.HistoryEntry{}
	}
	r.payments[p.ID] = clonePayment(p)
	return p
}

func (r *fakeRepository) stored(id int64) *payment.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.payments[id]; ok {
		return clonePayment(p)
	}
	return nil
}

func (r *fakeRepository) view(p *payment.Payment) *payment.View {
	v := &payment.View{Payment: clonePayment(p)}
	if t, ok := r.tenants.byID[p.TenantID]; ok {
		v.Tenant = &payment.TenantSummary{ID: t.ID, Name: t.Name, Email: t.Email}
	}
	if prop, ok := r.properties.byID[p.PropertyID]; ok {
		v.Property = &payment.PropertySummary{ID: prop.ID, Name: prop.Name, Address: prop.Address}
	}
	return v
}

func (r *fakeRepository) Create(ctx context.Context, p *payment.Payment) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.put(p)
	return nil
}

func (r *fakeRepository) GetByID(ctx context.Context, id int64) (*payment.Payment, error) {
	if p := r.stored(id); p != nil {
		return p, nil
	}
	return nil, errors.ErrPaymentNotFound
}

func (r *fakeRepository) GetView(ctx context.Context, id int64) (*payment.View, error) {
	p := r.stored(id)
	if p == nil {
		return nil, errors.ErrPaymentNotFound
	}
	return r.view(p), nil
}

func (r *fakeRepository) List(ctx context.Context, ownerID int64, filter payment.ListFilter) ([]*payment.View, error) {
	r.mu.Lock()
	var ids []int64
	for id, p := range r.payments {
		if prop, ok := r.properties.byID[p.PropertyID]; !ok || prop.OwnerID != ownerID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	views := make([]*payment.View, 0, len(ids))
	for _, id := range ids {
		views = append(views, r.view(r.stored(id)))
	}
	return views, nil
}

func (r *fakeRepository) Update(ctx context.Context, p *payment.Payment) error {
	if r.failWith != nil {
		return r.failWith
	}
	if r.stored(p.ID) == nil {
		return errors.ErrPaymentNotFound
	}
	r.put(p)
	return nil
}

func (r *fakeRepository) MarkPaid(ctx context.Context, id int64, paidAt time.Time, entry payment.HistoryEntry) (bool, error) {
	if r.failWith != nil {
		return false, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return false, errors.ErrPaymentNotFound
	}
	if p.Status == payment.StatusPaid {
		return false, nil
	}
	p.Status = payment.StatusPaid
	p.PaidDate = &paidAt
	p.History = append(p.History, entry)
	return true, nil
}

func (r *fakeRepository) AppendHistory(ctx context.Context, id int64, entry payment.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return errors.ErrPaymentNotFound
	}
	p.History = append(p.History, entry)
	return nil
}

func (r *fakeRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[id]; !ok {
		return errors.ErrPaymentNotFound
	}
	delete(r.payments, id)
	return nil
}

func (r *fakeRepository) SweepLate(ctx context.Context, now time.Time) (int64, error) {
	if r.failWith != nil {
		return 0, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, p := range r.payments {
		if p.IsOverdue(now) {
			p.Status = payment.StatusLate
			count++
		}
	}
	return count, nil
}

func (r *fakeRepository) SummarizeByStatus(ctx context.Context, propertyIDs []int64) ([]payment.StatusSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := map[int64]bool{}
	for _, id := range propertyIDs {
		wanted[id] = true
	}
	byStatus := map[string]*payment.StatusSummary{}
	for _, p := range r.payments {
		if !wanted[p.PropertyID] {
			continue
		}
		s, ok := byStatus[p.Status]
		if !ok {
			s = &payment.StatusSummary{Status: p.Status, Amount: decimal.Zero}
			byStatus[p.Status] = s
		}
		s.Count++
		s.Amount = s.Amount.Add(p.Amount)
	}
	var out []payment.StatusSummary
	for _, s := range byStatus {
		out = append(out, *s)
	}
	return out, nil
}

type fakeProperties struct {
	byID map[int64]*property.Property
}

func (f *fakeProperties) ResolveOwnedProperty(ctx context.Context, ownerID, propertyID int64) (*property.Property, error) {
	p, ok := f.byID[propertyID]
	if !ok {
		return nil, errors.ErrPropertyNotFound
	}
	if !p.OwnedBy(ownerID) {
		return nil, errors.ErrForbidden
	}
	return p, nil
}

func (f *fakeProperties) OwnedPropertyIDs(ctx context.Context, ownerID int64) ([]int64, error) {
	var ids []int64
	for id, p := range f.byID {
		if p.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type fakeTenants struct {
	byID map[int64]*tenant.Tenant
}

func (f *fakeTenants) ResolveTenant(ctx context.Context, tenantID int64) (*tenant.Tenant, error) {
	t, ok := f.byID[tenantID]
	if !ok {
		return nil, errors.ErrTenantNotFound
	}
	return t, nil
}

type sentNotice struct {
	Email     string
	PaymentID int64
	Status    string
}

type recordingNotifier struct {
	mu            sync.Mutex
	confirmations []sentNotice
	reminders     []sentNotice
	failWith      error
}

func (n *recordingNotifier) SendPaymentConfirmation(ctx context.Context, email string, view *payment.View) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations = append(n.confirmations, sentNotice{Email: email, PaymentID: view.ID, Status: view.Status})
	return n.failWith
}

func (n *recordingNotifier) SendPaymentReminder(ctx context.Context, email string, view *payment.View) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders = append(n.reminders, sentNotice{Email: email, PaymentID: view.ID, Status: view.Status})
	return n.failWith
}

type fakeReceipts struct {
	owner payment.OwnerView
}

func (f *fakeReceipts) RenderReceipt(view *payment.View, owner payment.OwnerView) ([]byte, error) {
	f.owner = owner
	return []byte("%PDF-fake"), nil
}

type fakeOwners struct {
	owners map[int64]*payment.OwnerView
}

func (f *fakeOwners) GetOwner(ctx context.Context, ownerID int64) (*payment.OwnerView, error) {
	if o, ok := f.owners[ownerID]; ok {
		return o, nil
	}
	return nil, errors.ErrUserNotFound
}

type fakeExporter struct {
	rows int
}

func (f *fakeExporter) ExportPayments(views []*payment.View) ([]byte, error) {
	f.rows = len(views)
	return []byte("xlsx"), nil
}

var errStoreDown = stderrors.New("store unavailable")

// fixture is one owner with a single-tenant flat and a co-living house, plus
// a second owner's property.
type fixture struct {
	properties *fakeProperties
	tenants    *fakeTenants
	repo       *fakeRepository
	notifier   *recordingNotifier
	receipts   *fakeReceipts
	exporter   *fakeExporter
	now        time.Time
}

const (
	ownerID      int64 = 1
	otherOwnerID int64 = 2

	flatID     int64 = 100
	houseID    int64 = 200
	foreignID  int64 = 300
	flatTenant int64 = 10
	ana        int64 = 20
	noEmail    int64 = 21
	foreigner  int64 = 30
)

func newFixture() *fixture {
	properties := &fakeProperties{byID: map[int64]*property.Property{
		flatID:    {ID: flatID, OwnerID: ownerID, Name: "Harbor Flat", Rent: dec("1200")},
		houseID:   {ID: houseID, OwnerID: ownerID, Name: "Maple House", Rent: dec("1500"), IsCoLiving: true},
		foreignID: {ID: foreignID, OwnerID: otherOwnerID, Name: "Elsewhere", Rent: dec("900")},
	}}
	tenants := &fakeTenants{byID: map[int64]*tenant.Tenant{
		flatTenant: {ID: flatTenant, PropertyID: flatID, Name: "Tom", Email: strPtr("tom@mail.com")},
		ana:        {ID: ana, PropertyID: houseID, Name: "Ana", Email: strPtr("ana@mail.com"), RentShare: decPtr("40")},
		noEmail:    {ID: noEmail, PropertyID: houseID, Name: "Cleo", Email: strPtr("  ")},
		foreigner:  {ID: foreigner, PropertyID: foreignID, Name: "Finn", Email: strPtr("finn@mail.com")},
	}}
	return &fixture{
		properties: properties,
		tenants:    tenants,
		repo:       newFakeRepository(properties, tenants),
		notifier:   &recordingNotifier{},
		receipts:   &fakeReceipts{},
		exporter:   &fakeExporter{},
		now:        time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) service() *payment.Service {
	return payment.NewService(payment.Deps{
		Repository: f.repo,
		Properties: f.properties,
		Tenants:    f.tenants,
		Notifier:   f.notifier,
		Receipts:   f.receipts,
		Owners: &fakeOwners{owners: map[int64]*payment.OwnerView{
			ownerID: {Name: "Olivia", Email: "olivia@mail.com"},
		}},
		Exporter: f.exporter,
		Logger:   logger.Discard(),
		Clock:    func() time.Time { return f.now },
	})
}

func (f *fixture) seedPending(tenantID, propertyID int64, amount string, due time.Time) *payment.Payment {
	return f.repo.put(&payment.Payment{
		TenantID:   tenantID,
		PropertyID: propertyID,
		Amount:     dec(amount),
		DueDate:    due,
		Status:     payment.StatusPending,
	})
}

func (f *fixture) seedCoLiving(details rentshare.Details) *payment.Payment {
	p := &payment.Payment{
		TenantID:        ana,
		PropertyID:      houseID,
		DueDate:         f.now.AddDate(0, 0, 10),
		Status:          payment.StatusPending,
		IsCoLivingShare: true,
		ShareDetails:    &details,
	}
	if err := p.DeriveAmount(); err != nil {
		panic(err)
	}
	return f.repo.put(p)
}
