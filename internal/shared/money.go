package shared

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Cents represents a money amount in integer minor units. All arithmetic on
// amounts happens on this type so debit/credit sums can never drift through
// rounding.
type Cents int64

// MulQty multiplies a unit amount by a quantity.
func (c Cents) MulQty(qty int64) Cents {
	return c * Cents(qty)
}

// Abs returns the absolute value.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

var idrPrinter = message.NewPrinter(language.Indonesian)

// FormatIDR renders an amount for receipts, e.g. "Rp 25.000".
func FormatIDR(c Cents) string {
	return idrPrinter.Sprintf("Rp %d", int64(c))
}
