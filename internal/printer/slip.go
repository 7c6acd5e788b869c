package printer

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/fuelpos/receiptd/internal/config"
	"github.com/fuelpos/receiptd/pkg/payload"
)

const slipTotalLabel = "รวมทั้งหมด"

// ComposeSlip builds the token-markup text form of a receipt for the
// printer's native text path: centered titles, one block per item with the
// configured volume and currency labels, a width-aligned total line, and
// the footer entries. The result feeds PrintText unchanged.
func ComposeSlip(rec *payload.Receipt, layout config.Layout, lineWidth int) string {
	if lineWidth < 1 {
		lineWidth = 32
	}

	var b strings.Builder

	if layout.HeaderTitle != "" {
		b.WriteString("<<C>>" + layout.HeaderTitle + "\n\n")
	}
	if layout.HeaderDescription != "" {
		b.WriteString("<<C>><<SM>>" + layout.HeaderDescription + "\n\n")
	}
	if layout.ReceiptTitle != "" {
		b.WriteString("<<C>>" + layout.ReceiptTitle + "\n\n")
	}

	if len(rec.HeaderInfo) > 0 {
		for _, e := range rec.HeaderInfo {
			b.WriteString(e.Key + ": " + e.Value + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("รายการ:\n")

	divider := strings.Repeat("-", lineWidth) + "\n"
	for _, it := range rec.Items {
		b.WriteString(it.Name + "\n")
		b.WriteString(slipAmount(it.Quantity) + " " + layout.VolumeUnit +
			" × " + slipAmount(it.Amount) + " " + layout.Currency + "\n")
		b.WriteString("= " + slipAmount(it.LineTotal()) + " " + layout.Currency + "\n")
		b.WriteString(divider)
	}

	b.WriteString(slipTotalLine(rec.Total, layout.Currency, lineWidth))

	for _, e := range rec.FooterInfo {
		b.WriteString(e.Key + ": " + e.Value + "\n")
	}

	if layout.FooterLabel != "" {
		b.WriteString("\n<<C>>" + layout.FooterLabel + "\n")
	}

	return b.String()
}

// slipTotalLine right-aligns the amount against the label across the full
// character width, with at least one space between them.
func slipTotalLine(total decimal.Decimal, currency string, lineWidth int) string {
	amount := slipAmount(total) + " " + currency

	spacing := lineWidth - utf8.RuneCountInString(slipTotalLabel) - utf8.RuneCountInString(amount)
	if spacing < 1 {
		spacing = 1
	}

	return slipTotalLabel + strings.Repeat(" ", spacing) + amount + "\n"
}

func slipAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// StripTokens removes the line formatting tokens, leaving the plain text
// for bitmap rendering of a slip.
func StripTokens(text string) string {
	lines := splitTextLines(text)
	out := make([]string, len(lines))
	for i, line := range lines {
		_, _, body := parseLineTokens(line)
		out[i] = body
	}
	return strings.Join(out, "\n")
}
