// Package receipt renders payment receipts as single page PDFs.
package receipt

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/frahmantamala/property-management/internal/payment"
	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

var receiptNamespace = uuid.MustParse("6f1c9d0e-4b7a-5c2e-9a41-3d8f2b6e7c10")

// Number is stable for a payment: the same id and paid date always give the
// same receipt number.
func Number(view *payment.View) string {
	seed := fmt.Sprintf("payment:%d", view.ID)
	if view.PaidDate != nil {
		seed += ":" + view.PaidDate.UTC().Format("20060102T150405")
	}
	id := uuid.NewSHA1(receiptNamespace, []byte(seed))
	return "RCPT-" + strings.ToUpper(id.String()[:8])
}

type Renderer struct {
	baseURL string
}

func NewRenderer(baseURL string) *Renderer {
	return &Renderer{baseURL: strings.TrimRight(baseURL, "/")}
}

var _ payment.ReceiptRenderer = (*Renderer)(nil)

func (r *Renderer) verificationURL(view *payment.View) string {
	return fmt.Sprintf("%s/api/v1/payments/%d/receipt", r.baseURL, view.ID)
}

func (r *Renderer) RenderReceipt(view *payment.View, owner payment.OwnerView) ([]byte, error) {
	number := Number(view)

	pdf, tr := newDocument()
	section := func(title string) { writeSection(pdf, tr(title)) }
	row := func(label, value string) { writeRow(pdf, tr(label), tr(value)) }

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(180, 10, "Rent Payment Receipt", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(180, 6, fmt.Sprintf("Receipt No. %s", number), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFillColor(240, 240, 240)
	section("Landlord")
	row("Name", owner.Name)
	row("Email", owner.Email)
	if owner.Phone != "" {
		row("Phone", owner.Phone)
	}
	pdf.Ln(4)

	section("Tenant & Property")
	row("Tenant", view.TenantName())
	row("Property", view.PropertyName())
	if view.Property != nil && view.Property.Address != "" {
		row("Address", view.Property.Address)
	}
	pdf.Ln(4)

	section("Payment")
	row("Status", strings.ToUpper(view.Status))
	row("Due date", view.DueDate.Format("02 Jan 2006"))
	if view.PaidDate != nil {
		row("Paid on", view.PaidDate.Format("02 Jan 2006"))
	}
	if view.PaymentMethod != nil {
		row("Method", strings.ReplaceAll(*view.PaymentMethod, "_", " "))
	}
	if view.Reference != nil {
		row("Reference", *view.Reference)
	}

	if d := view.ShareDetails; view.IsCoLivingShare && d != nil {
		pdf.Ln(4)
		section("Co-living share")
		row("Total rent", d.TotalRent.StringFixed(2))
		row("Share", d.Percentage.String()+"%")
		for _, c := range []struct {
			label  string
			amount *decimal.Decimal
		}{
			{"Internet", d.CommonCharges.Internet},
			{"Electricity", d.CommonCharges.Electricity},
			{"Water", d.CommonCharges.Water},
			{"Heating", d.CommonCharges.Heating},
		} {
			if c.amount != nil {
				row(c.label, c.amount.StringFixed(2))
			}
		}
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 14)
	if view.IsPaid() {
		pdf.SetFillColor(200, 255, 200)
	} else {
		pdf.SetFillColor(255, 230, 200)
	}
	pdf.CellFormat(180, 12, fmt.Sprintf("Amount: %s", view.Amount.StringFixed(2)), "1", 1, "C", true, 0, "")

	png, err := qrcode.Encode(fmt.Sprintf("%s %s", number, r.verificationURL(view)), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode receipt qr code: %w", err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(number, opts, bytes.NewReader(png))
	pdf.Ln(6)
	pdf.ImageOptions(number, 155, pdf.GetY(), 40, 40, false, opts, 0, "")
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(135, 5, "Scan the code to verify this receipt.", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// newDocument returns an A4 page and the translator from UTF-8 to the
// cp1252 encoding of the core fonts.
func newDocument() (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	return pdf, pdf.UnicodeTranslatorFromDescriptor("")
}

func writeSection(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(180, 8, title, "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
}

func writeRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.CellFormat(50, 7, label, "LB", 0, "L", false, 0, "")
	pdf.CellFormat(130, 7, value, "RB", 1, "L", false, 0, "")
}
