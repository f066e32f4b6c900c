package fee

import (
	"errors"
	"strconv"
	"strings"

	"github.com/divan/num2words"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	ErrInvalidAmount = errors.New("amount must be a number")

	printer = message.NewPrinter(language.English)
)

// FormatAmount formats an amount with thousands separators, e.g. 4500 -> "4,500".
// The digits are those of the input: nothing is rounded and fraction zeros are kept.
func FormatAmount(d decimal.Decimal) string {
	var scale int32
	if exp := d.Exponent(); exp < 0 {
		scale = -exp
	}
	whole, frac, _ := strings.Cut(d.Abs().StringFixed(scale), ".")
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		whole = printer.Sprintf("%d", n)
	} else {
		whole = groupDigits(whole)
	}

	s := whole
	if frac != "" {
		s += "." + frac
	}
	if d.IsNegative() {
		s = "-" + s
	}
	return s
}

// groupDigits is used for whole parts beyond int64.
func groupDigits(digits string) string {
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// AmountInWords spells the whole part of an amount, e.g. 4600 -> "Four thousand six hundred only".
func AmountInWords(d decimal.Decimal) string {
	words := num2words.Convert(int(d.IntPart()))
	if words == "" {
		return ""
	}
	return strings.ToUpper(words[:1]) + words[1:] + " only"
}

// ParseAmount reads a user-entered amount; thousands separators are allowed.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
