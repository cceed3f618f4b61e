package report

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders money and minutes for one locale.
type Formatter struct {
	p *message.Printer
}

// NewFormatter returns a formatter for tag.
func NewFormatter(tag language.Tag) Formatter {
	return Formatter{p: message.NewPrinter(tag)}
}

// Default formats for American English.
var Default = NewFormatter(language.AmericanEnglish)

// Money formats whole amounts without cents and fractional ones with two places.
func (f Formatter) Money(d decimal.Decimal) string {
	if d.IsInteger() {
		return f.p.Sprintf("$%d", d.IntPart())
	}
	return f.p.Sprintf("$%.2f", d.InexactFloat64())
}

// Minutes formats a duration in whole minutes.
func (f Formatter) Minutes(m int) string {
	return f.p.Sprintf("%d min", m)
}

// Span formats a timeline span.
func (f Formatter) Span(start, end int) string {
	return f.p.Sprintf("%d-%d", start, end)
}
