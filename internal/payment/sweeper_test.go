package payment_test

import (
	"context"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/property-management/internal/lock"
	"github.com/frahmantamala/property-management/internal/payment"
	"github.com/frahmantamala/property-management/pkg/logger"
)

var _ = ginkgo.Describe("Sweeper", func() {
	var (
		ctx     context.Context
		fx      *fixture
		locker  *lock.LocalLocker
		sweeper *payment.Sweeper
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		fx = newFixture()
		locker = lock.NewLocalLocker()
		sweeper = payment.NewSweeper(fx.repo, locker, time.Minute, logger.Discard())
	})

	ginkgo.Describe("SweepLatePayments", func() {
		ginkgo.It("marks overdue pending payments late exactly once", func() {
			// Given
			overdue := fx.seedPending(flatTenant, flatID, "1200", fx.now.AddDate(0, 0, -1))
			upcoming := fx.seedPending(ana, houseID, "600", fx.now.AddDate(0, 0, 1))

			// When
			first, err := sweeper.SweepLatePayments(ctx, fx.now)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			second, err := sweeper.SweepLatePayments(ctx, fx.now)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// Then
			gomega.Expect(first).To(gomega.Equal(int64(1)))
			gomega.Expect(second).To(gomega.BeZero())
			gomega.Expect(fx.repo.stored(overdue.ID).Status).To(gomega.Equal(payment.StatusLate))
			gomega.Expect(fx.repo.stored(upcoming.ID).Status).To(gomega.Equal(payment.StatusPending))
		})

		ginkgo.It("treats a payment due exactly now as not yet late", func() {
			dueNow := fx.seedPending(flatTenant, flatID, "1200", fx.now)

			count, err := sweeper.SweepLatePayments(ctx, fx.now)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(count).To(gomega.BeZero())
			gomega.Expect(fx.repo.stored(dueNow.ID).Status).To(gomega.Equal(payment.StatusPending))
		})

		ginkgo.It("never touches paid payments", func() {
			paidAt := fx.now.AddDate(0, 0, -5)
			paid := fx.repo.put(&payment.Payment{
				TenantID: flatTenant, PropertyID: flatID, Amount: dec("1200"),
				DueDate: fx.now.AddDate(0, 0, -10), Status: payment.StatusPaid, PaidDate: &paidAt,
			})

			count, err := sweeper.SweepLatePayments(ctx, fx.now)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(count).To(gomega.BeZero())
			gomega.Expect(fx.repo.stored(paid.ID).Status).To(gomega.Equal(payment.StatusPaid))
		})

		ginkgo.It("returns store failures", func() {
			fx.repo.failWith = errStoreDown

			_, err := sweeper.SweepLatePayments(ctx, fx.now)

			gomega.Expect(err).To(gomega.MatchError(errStoreDown))
		})
	})

	ginkgo.Describe("RunOnce", func() {
		ginkgo.It("sweeps when the lock is free and releases it afterwards", func() {
			overdue := fx.seedPending(flatTenant, flatID, "1200", time.Now().UTC().AddDate(0, 0, -1))

			sweeper.RunOnce(ctx)

			gomega.Expect(fx.repo.stored(overdue.ID).Status).To(gomega.Equal(payment.StatusLate))
			release, acquired, err := locker.TryLock(ctx, payment.SweepLockKey, time.Minute)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(acquired).To(gomega.BeTrue())
			gomega.Expect(release(ctx)).To(gomega.Succeed())
		})

		ginkgo.It("skips the run while another sweep holds the lock", func() {
			overdue := fx.seedPending(flatTenant, flatID, "1200", time.Now().UTC().AddDate(0, 0, -1))
			release, acquired, err := locker.TryLock(ctx, payment.SweepLockKey, time.Minute)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(acquired).To(gomega.BeTrue())
			defer release(ctx)

			sweeper.RunOnce(ctx)

			gomega.Expect(fx.repo.stored(overdue.ID).Status).To(gomega.Equal(payment.StatusPending))
		})

		ginkgo.It("swallows store failures", func() {
			fx.repo.failWith = errStoreDown

			gomega.Expect(func() { sweeper.RunOnce(ctx) }).ToNot(gomega.Panic())
		})
	})

	ginkgo.Describe("Run", func() {
		ginkgo.It("stops when the context is cancelled", func() {
			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan struct{})

			go func() {
				defer close(done)
				sweeper.Run(runCtx, 10*time.Millisecond)
			}()
			cancel()

			gomega.Eventually(done).Should(gomega.BeClosed())
		})
	})
})
