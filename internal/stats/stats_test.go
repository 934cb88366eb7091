package stats

import (
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = ginkgo.Describe("Dashboard math", func() {
	ginkgo.DescribeTable("CalculateTrend",
		func(current, previous float64, expected int) {
			gomega.Expect(CalculateTrend(current, previous)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("growth", 150.0, 100.0, 50),
		ginkgo.Entry("decline", 50.0, 100.0, -50),
		ginkgo.Entry("rounds half away from zero", 1.0, 8.0, -88),
		ginkgo.Entry("no previous value", 80.0, 0.0, 0),
		ginkgo.Entry("nothing in either month", 0.0, 0.0, 0),
	)

	ginkgo.DescribeTable("PaymentRate",
		func(paid, total int64, expected int) {
			gomega.Expect(PaymentRate(paid, total)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("one of three", int64(1), int64(3), 33),
		ginkgo.Entry("two of three", int64(2), int64(3), 67),
		ginkgo.Entry("all", int64(4), int64(4), 100),
		ginkgo.Entry("no payments", int64(0), int64(0), 0),
	)

	ginkgo.DescribeTable("OccupancyRate",
		func(occupied, properties int64, expected int) {
			gomega.Expect(OccupancyRate(occupied, properties)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("co-living can exceed one tenant per property", int64(4), int64(2), 200),
		ginkgo.Entry("half", int64(1), int64(2), 50),
		ginkgo.Entry("no properties", int64(3), int64(0), 0),
	)

	ginkgo.Describe("MonthWindows", func() {
		ginkgo.It("returns calendar months ending with the current one", func() {
			now := time.Date(2026, 2, 14, 23, 0, 0, 0, time.FixedZone("UTC+5", 5*3600))

			windows := MonthWindows(now, 3)

			gomega.Expect(windows).To(gomega.HaveLen(3))
			gomega.Expect(windows[0].Label).To(gomega.Equal("Dec 2025"))
			gomega.Expect(windows[2].Label).To(gomega.Equal("Feb 2026"))
			gomega.Expect(windows[2].Start).To(gomega.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))
			gomega.Expect(windows[2].End).To(gomega.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
			gomega.Expect(windows[1].End).To(gomega.Equal(windows[2].Start))
		})

		ginkgo.It("defaults to six months", func() {
			gomega.Expect(MonthWindows(time.Now(), 0)).To(gomega.HaveLen(DefaultMonths))
		})
	})

	ginkgo.Describe("BuildSnapshot", func() {
		ginkgo.It("summarizes the last month against the one before", func() {
			windows := MonthWindows(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), 2)
			figures := []MonthFigures{
				{
					Window:    windows[0],
					Payments:  PaymentTotals{Amount: decimal.NewFromInt(1000), Count: 2, Paid: 2},
					Tickets:   TicketTotals{Created: 4, Resolved: 4},
					Occupied:  2,
					Occupancy: 100,
				},
				{
					Window:    windows[1],
					Payments:  PaymentTotals{Amount: decimal.NewFromInt(1500), Count: 3, Paid: 1},
					Tickets:   TicketTotals{Created: 2, Resolved: 1},
					Occupied:  1,
					Occupancy: 50,
				},
			}

			snapshot := BuildSnapshot(figures, 2, windows[1].Start)

			gomega.Expect(snapshot.Period).To(gomega.Equal("Mar 2026"))
			gomega.Expect(snapshot.Summary.Payments.TotalAmount.String()).To(gomega.Equal("1500"))
			gomega.Expect(snapshot.Summary.Payments.PaymentRate).To(gomega.Equal(33))
			gomega.Expect(snapshot.Summary.Payments.Trend).To(gomega.Equal(50))
			gomega.Expect(snapshot.Summary.Tickets.Trend).To(gomega.Equal(-50))
			gomega.Expect(snapshot.Summary.Occupancy.Rate).To(gomega.Equal(50))
			gomega.Expect(snapshot.Summary.Occupancy.Trend).To(gomega.Equal(-50))
			gomega.Expect(snapshot.Charts.Payments).To(gomega.Equal([]ChartPoint{
				{Month: "Feb 2026", Value: 1000},
				{Month: "Mar 2026", Value: 1500},
			}))
			gomega.Expect(snapshot.Charts.Tickets[1].Value).To(gomega.Equal(2.0))
		})

		ginkgo.It("has zero trends for a single month", func() {
			windows := MonthWindows(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), 1)

			snapshot := BuildSnapshot([]MonthFigures{{Window: windows[0], Payments: PaymentTotals{Amount: decimal.NewFromInt(10), Count: 1}}}, 1, time.Now())

			gomega.Expect(snapshot.Summary.Payments.Trend).To(gomega.BeZero())
		})
	})
})
