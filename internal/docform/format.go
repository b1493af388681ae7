package docform

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders a monetary amount with grouped thousands and two
// decimal places for summaries and exports.
func FormatAmount(v float64) string {
	return amountPrinter.Sprintf("%.2f", v)
}
