package receipt

import (
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/property-management/internal/payment"
)

var _ = ginkgo.Describe("Receipt text encoding", func() {
	ginkgo.It("converts UTF-8 names to the core font encoding", func() {
		_, tr := newDocument()

		gomega.Expect(tr("José Müller")).To(gomega.Equal("Jos\xe9 M\xfcller"))
		gomega.Expect(tr("Maple House")).To(gomega.Equal("Maple House"))
	})

	ginkgo.It("renders receipts for accented tenant and property names", func() {
		view := &payment.View{
			Payment: &payment.Payment{
				ID:      7,
				Amount:  decimal.RequireFromString("800"),
				DueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
				Status:  payment.StatusPending,
			},
			Tenant:   &payment.TenantSummary{ID: 1, Name: "Zoë Ångström"},
			Property: &payment.PropertySummary{ID: 2, Name: "Café Résidence", Address: "Straße 5"},
		}

		pdf, err := NewRenderer("https://rent.example.com").RenderReceipt(view, payment.OwnerView{Name: "Renée", Email: "renee@mail.com"})

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(string(pdf[:4])).To(gomega.Equal("%PDF"))
	})
})
