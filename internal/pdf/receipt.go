// Package pdf renders payment receipts for download from the back office.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// ReceiptData carries everything a receipt prints.
type ReceiptData struct {
	PaymentID            uint64
	BookingID            uint64
	ClientName           string
	ClientEmail          string
	EventDate            time.Time
	Package              string
	Amount               float64
	PaymentMethod        string
	PaymentDate          time.Time
	TransactionReference string
}

// Receipt renders an A4 receipt PDF.  The transaction reference is embedded
// as a QR code so a printed copy can be checked against the ledger.
func Receipt(d ReceiptData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Baby Bliss Events", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Payment Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 10)
	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(50, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}
	row("Receipt no:", fmt.Sprintf("R-%06d", d.PaymentID))
	row("Booking:", fmt.Sprintf("#%d", d.BookingID))
	row("Client:", d.ClientName)
	row("Email:", d.ClientEmail)
	row("Event date:", d.EventDate.Format("2 January 2006"))
	row("Package:", d.Package)
	row("Payment method:", d.PaymentMethod)
	if !d.PaymentDate.IsZero() {
		row("Paid on:", d.PaymentDate.Format("2 January 2006 15:04"))
	}
	row("Reference:", d.TransactionReference)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("Amount: %.2f", d.Amount), "T", 1, "L", false, 0, "")

	if d.TransactionReference != "" {
		png, err := qrcode.Encode(d.TransactionReference, qrcode.Medium, 256)
		if err == nil {
			opts := gofpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader("ref-qr", opts, bytes.NewReader(png))
			pdf.ImageOptions("ref-qr", 150, 30, 40, 40, false, opts, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
