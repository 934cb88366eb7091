// Package report builds spreadsheet exports of payment records.
package report

import (
	"bytes"
	"fmt"

	"github.com/frahmantamala/property-management/internal/payment"
	"github.com/xuri/excelize/v2"
)

const PaymentsSheet = "Payments"

var paymentHeaders = []string{
	"ID", "Property", "Tenant", "Due Date", "Status", "Amount", "Paid Date",
	"Method", "Reference", "Co-living", "Share %", "Total Rent",
}

type PaymentExporter struct{}

func NewPaymentExporter() *PaymentExporter {
	return &PaymentExporter{}
}

var _ payment.Exporter = (*PaymentExporter)(nil)

// ExportPayments writes one row per payment below a bold header row.
func (e *PaymentExporter) ExportPayments(views []*payment.View) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PaymentsSheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, header := range paymentHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(PaymentsSheet, cell, header); err != nil {
			return nil, err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(paymentHeaders), 1)
	if err := f.SetCellStyle(PaymentsSheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, err
	}

	for i, v := range views {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(PaymentsSheet, cell, &[]interface{}{
			v.ID,
			v.PropertyName(),
			v.TenantName(),
			v.DueDate.Format("2006-01-02"),
			v.Status,
			v.Amount.InexactFloat64(),
			formatDate(v),
			deref(v.PaymentMethod),
			deref(v.Reference),
			yesNo(v.IsCoLivingShare),
			sharePercentage(v),
			shareTotalRent(v),
		}); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func formatDate(v *payment.View) string {
	if v.PaidDate == nil {
		return ""
	}
	return v.PaidDate.Format("2006-01-02")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func sharePercentage(v *payment.View) interface{} {
	if v.ShareDetails == nil {
		return ""
	}
	return v.ShareDetails.Percentage.InexactFloat64()
}

func shareTotalRent(v *payment.View) interface{} {
	if v.ShareDetails == nil {
		return ""
	}
	return v.ShareDetails.TotalRent.InexactFloat64()
}
