// Package upi builds UPI payment deep links.
package upi

import (
	"net/url"
	"strings"
)

// DefaultCurrency is used when an entry does not name one.
const DefaultCurrency = "INR"

// Entry holds the payee details encoded into a link.
type Entry struct {
	UPIID     string
	PayerName string
	Amount    string
	Currency  string
}

// BuildURI returns upi://pay?pa=..&pn=..&am=..&cu=.. for e, or "" when e has no
// UPI ID. Parameters keep this order; empty name and amount are passed through
// empty and the amount is not validated.
func BuildURI(e Entry) string {
	if e.UPIID == "" {
		return ""
	}
	currency := e.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	var b strings.Builder
	b.WriteString("upi://pay?pa=")
	b.WriteString(url.QueryEscape(e.UPIID))
	b.WriteString("&pn=")
	b.WriteString(url.QueryEscape(e.PayerName))
	b.WriteString("&am=")
	b.WriteString(url.QueryEscape(e.Amount))
	b.WriteString("&cu=")
	b.WriteString(url.QueryEscape(currency))
	return b.String()
}
