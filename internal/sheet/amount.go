package sheet

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount normalizes a dollar-notation cell such as "$1,234.56" or
// "(1,234.56)". Empty or non-numeric text yields an invalid NullDecimal;
// callers cannot tell a failed parse from a blank cell.
func ParseAmount(text string) decimal.NullDecimal {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(text)
	return parseSigned(removeSpace(cleaned))
}

// ParseForeignAmount normalizes a cell written with a leading currency code,
// e.g. "THB 1,500" or "(THB 250.00)". The code is matched case-insensitively.
func ParseForeignAmount(text, code string) decimal.NullDecimal {
	cleaned := strings.TrimSpace(text)

	negative := false
	if inner, ok := unwrapParens(cleaned); ok {
		negative = true
		cleaned = strings.TrimSpace(inner)
	}

	if len(cleaned) >= len(code) && strings.EqualFold(cleaned[:len(code)], code) {
		cleaned = cleaned[len(code):]
	}
	cleaned = removeSpace(strings.ReplaceAll(cleaned, ",", ""))

	if negative && cleaned != "" {
		cleaned = "-" + cleaned
	}
	return parseSigned(cleaned)
}

func parseSigned(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	if inner, ok := unwrapParens(s); ok {
		s = "-" + inner
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func unwrapParens(s string) (string, bool) {
	if len(s) >= 2 && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		return s[1 : len(s)-1], true
	}
	return "", false
}

func removeSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
