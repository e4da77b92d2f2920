package format

import (
	"math"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder is shown for numeric displays that have no value yet.
const Placeholder = "-"

// TruncateString cuts str to num bytes, ending in "..." when num leaves room for it.
func TruncateString(str string, num int) string {
	if len(str) <= num {
		return str
	}
	if num <= 3 {
		return str[:num]
	}
	return str[0:num-3] + "..."
}

// CanonicalAddress returns the EIP-55 checksummed form of a hex address, or the
// trimmed input when it is not one.
func CanonicalAddress(addr string) string {
	clean := strings.TrimSpace(addr)
	if common.IsHexAddress(clean) {
		return common.HexToAddress(clean).Hex()
	}
	return clean
}

// Address canonicalizes addr and shortens it to 0x1234...abcd for display.
func Address(addr string) string {
	clean := CanonicalAddress(addr)
	if len(clean) <= 10 {
		return clean
	}
	return clean[:6] + "..." + clean[len(clean)-4:]
}

// Formatter renders numbers with locale-specific digit grouping.
type Formatter struct {
	printer   *message.Printer
	countUnit string
}

// NewFormatter returns a formatter for the given BCP 47 locale. Unknown locales
// fall back to Traditional Chinese, the dashboard's default.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.TraditionalChinese
	}
	unit := " 次"
	if base, _ := tag.Base(); base.String() == "en" {
		unit = " txns"
	}
	return &Formatter{printer: message.NewPrinter(tag), countUnit: unit}
}

// Currency floors v to whole units and appends the currency code.
func (f *Formatter) Currency(v float64) string {
	return f.printer.Sprintf("%d USD", int64(math.Floor(v)))
}

// Count groups n and appends the transaction unit.
func (f *Formatter) Count(n int64) string {
	return f.printer.Sprintf("%d", n) + f.countUnit
}

// Decimal groups v with the given number of decimals.
func (f *Formatter) Decimal(v float64, decimals int) string {
	return f.printer.Sprintf("%.*f", decimals, v)
}

// Percent renders part as a percentage of total with one decimal.
func (f *Formatter) Percent(part, total float64) string {
	if total <= 0 {
		return f.printer.Sprintf("%.1f%%", 0.0)
	}
	return f.printer.Sprintf("%.1f%%", part*100/total)
}
