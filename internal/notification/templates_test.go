package notification

import (
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/property-management/internal/core/events"
)

var _ = ginkgo.Describe("render", func() {
	var notice events.PaymentNotice

	ginkgo.BeforeEach(func() {
		paid := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
		notice = events.PaymentNotice{
			PaymentID:     7,
			TenantName:    "Ana",
			TenantEmail:   "ana@mail.com",
			PropertyName:  "Maple House",
			Amount:        "635.00",
			DueDate:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			PaidDate:      &paid,
			PaymentMethod: "bank_transfer",
			Status:        "paid",
		}
	})

	ginkgo.It("renders the confirmation with the payment details", func() {
		msg, err := render(KindConfirmation, notice)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(msg.To).To(gomega.Equal("ana@mail.com"))
		gomega.Expect(msg.Subject).To(gomega.Equal("Payment received for Maple House"))
		gomega.Expect(msg.Body).To(gomega.ContainSubstring("Hello Ana,"))
		gomega.Expect(msg.Body).To(gomega.ContainSubstring("Amount:    635.00"))
		gomega.Expect(msg.Body).To(gomega.ContainSubstring("Due date:  01 Mar 2026"))
		gomega.Expect(msg.Body).To(gomega.ContainSubstring("Paid on:   03 Mar 2026"))
		gomega.Expect(msg.Body).To(gomega.ContainSubstring("Method:    bank_transfer"))
		gomega.Expect(msg.Body).ToNot(gomega.ContainSubstring("Reference:"))
	})

	ginkgo.It("words a reminder for a late payment as overdue", func() {
		notice.Status = "late"
		notice.PaidDate = nil

		msg, err := render(KindReminder, notice)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(msg.Subject).To(gomega.Equal("Rent reminder for Maple House"))
		gomega.Expect(msg.Body).To(gomega.ContainSubstring("is overdue."))
	})

	ginkgo.It("words a reminder for a pending payment as due", func() {
		notice.Status = "pending"

		msg, err := render(KindReminder, notice)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(msg.Body).To(gomega.ContainSubstring("is due."))
	})

	ginkgo.It("rejects unknown kinds", func() {
		_, err := render("sms", notice)
		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("unknown notification kind")))
	})
})
