package pdf

import (
	"bytes"
	"testing"
	"time"
)

func TestReceipt(t *testing.T) {
	doc, err := Receipt(ReceiptData{
		PaymentID:            12,
		BookingID:            34,
		ClientName:           "Ana Cruz",
		ClientEmail:          "ana@example.com",
		EventDate:            time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		Package:              "Deluxe",
		Amount:               15000,
		PaymentMethod:        "gcash",
		PaymentDate:          time.Date(2026, 4, 20, 14, 30, 0, 0, time.UTC),
		TransactionReference: "PAY-34-1745159400",
	})
	if err != nil {
		t.Fatalf("Receipt: %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF")) {
		t.Errorf("output does not start with a PDF header: %q", doc[:min(8, len(doc))])
	}
	if len(doc) < 1000 {
		t.Errorf("suspiciously small PDF: %d bytes", len(doc))
	}
}

func TestReceiptWithoutPaymentDate(t *testing.T) {
	doc, err := Receipt(ReceiptData{PaymentID: 1, BookingID: 2, ClientName: "X", Amount: 1})
	if err != nil {
		t.Fatalf("Receipt: %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}
