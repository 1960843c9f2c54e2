// Package stats aggregates key counts and revenue estimates per product.
//
// Revenue figures here are business-reporting estimates derived from a static
// net-price table, never authoritative accounting.
package stats

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultNetPrices is the per-title net payout table. Titles are matched
// lowercase and trimmed. Overridable from config.
var DefaultNetPrices = map[string]float64{
	"sinki tdm":                     48.5,
	"cheatloop exclusive":           48.5,
	"cheatloop call of duty mobile": 31.0,
	"cheatloop esp":                 30.0,
	"sinki esp":                     30.0,
	"cheatloop normal":              42.75,
	"sinki gold":                    42.75,
}

// Titles containing "codm" without an explicit table entry settle at this
// net price; everything else falls back to a fraction of the listed price.
var (
	codmNetPrice         = decimal.NewFromFloat(31.0)
	defaultFallbackRatio = decimal.NewFromFloat(0.85)
)

// PriceBook resolves the estimated net price per unit for a product title.
type PriceBook struct {
	net           map[string]decimal.Decimal
	fallbackRatio decimal.Decimal
}

// NewPriceBook builds a price book from an explicit net-price table. A nil or
// empty table uses DefaultNetPrices.
func NewPriceBook(netPrices map[string]float64) *PriceBook {
	if len(netPrices) == 0 {
		netPrices = DefaultNetPrices
	}
	net := make(map[string]decimal.Decimal, len(netPrices))
	for title, price := range netPrices {
		net[normalizeTitle(title)] = decimal.NewFromFloat(price)
	}
	return &PriceBook{net: net, fallbackRatio: defaultFallbackRatio}
}

// SetFallbackRatio overrides the listed-price fraction used for titles with
// no explicit net price. Non-positive values keep the default.
func (b *PriceBook) SetFallbackRatio(ratio float64) {
	if ratio > 0 {
		b.fallbackRatio = decimal.NewFromFloat(ratio)
	}
}

// Net returns the estimated net revenue per unit sold for the given product
// title: the explicit table entry if present, the codm flat rate if the title
// contains "codm", otherwise listedPrice * 0.85.
func (b *PriceBook) Net(title string, listedPrice float64) decimal.Decimal {
	t := normalizeTitle(title)
	if p, ok := b.net[t]; ok {
		return p
	}
	if strings.Contains(t, "codm") {
		return codmNetPrice
	}
	return decimal.NewFromFloat(listedPrice).Mul(b.fallbackRatio)
}

func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
