package entity

import (
	"strconv"
	"strings"
	"time"
)

// Order is the caller supplied data printed on an invoice. Money amounts are
// whole currency units.
type Order struct {
	ID               string
	CustomerName     string
	CustomerAddress  string
	CustomerPhone    string
	CustomerEmail    string
	ProductType      string
	Quantity         int
	UnitPrice        int64
	Total            int64
	PaymentMethod    string
	InstallationDate string
}

// LineTotal is Total when supplied, otherwise Quantity * UnitPrice.
func (o Order) LineTotal() int64 {
	if o.Total > 0 {
		return o.Total
	}
	return int64(o.Quantity) * o.UnitPrice
}

// Number is the printed invoice number.
func (o Order) Number() string {
	return "INV-" + strings.ToUpper(o.ID)
}

// Filename is the download name of the rendered invoice.
func (o Order) Filename() string {
	return "invoice-" + o.ID + ".pdf"
}

// Company is the seller block printed in the header and footer.
type Company struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

// Money formats amounts with a currency symbol and a thousands separator.
type Money struct {
	Symbol    string
	Separator string
}

// Format renders amount, e.g. "Rp 1.250.000" for Money{"Rp", "."}.
func (m Money) Format(amount int64) string {
	sign := ""
	magnitude := uint64(amount)
	if amount < 0 {
		sign = "-"
		magnitude = uint64(-(amount + 1)) + 1
	}

	digits := strconv.FormatUint(magnitude, 10)
	sep := m.Separator
	if sep == "" {
		sep = ","
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}

	if m.Symbol == "" {
		return sign + b.String()
	}
	return sign + m.Symbol + " " + b.String()
}

// Document is a rendered invoice.
type Document struct {
	Number   string
	Filename string
	IssuedAt time.Time
	PDF      []byte
}
