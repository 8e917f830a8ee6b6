package ledger

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxAmount bounds every amount and opening balance, in cents. It leaves room
// for millions of maximal entries before any sum could overflow int64.
const MaxAmount int64 = 1_000_000_000_000_00

var (
	hundred    = decimal.NewFromInt(100)
	maxDecimal = decimal.NewFromInt(MaxAmount)
)

// CheckAmount rejects magnitudes above MaxAmount.
func CheckAmount(cents int64) error {
	if cents > MaxAmount || cents < -MaxAmount {
		return fmt.Errorf("%w: exceeds %s", ErrInvalidAmount, FormatAmount(MaxAmount))
	}

	return nil
}

// addCents adds b to a, failing instead of wrapping around.
func addCents(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, ErrAmountOverflow
	}

	return sum, nil
}

// ParseAmount parses a decimal string into cents, rounding half away from zero.
// Both "1234.56" and "1234,56" are accepted; when both separators appear the last
// one is the decimal separator ("1.234,56" and "1,234.56" both give 123456).
// Negative values are allowed; callers that need a magnitude must check the sign.
func ParseAmount(s string) (int64, error) {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return 0, fmt.Errorf("parsing amount %q: empty", s)
	}

	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")

	switch {
	case lastComma > lastDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case lastDot > lastComma && lastComma >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}

	cents := d.Mul(hundred).Round(0)
	if cents.Abs().GreaterThan(maxDecimal) {
		return 0, fmt.Errorf("parsing amount %q: %w: exceeds %s", s, ErrInvalidAmount, FormatAmount(MaxAmount))
	}

	return cents.IntPart(), nil
}

// FormatAmount renders cents with exactly two fractional digits, e.g. -1050 -> "-10.50".
func FormatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// Slugify derives an identifier from a display name: "Saúde Mental" -> "saude-mental".
// Only a-z, 0-9 and single dashes survive.
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	plain, _, err := transform.String(t, name)
	if err != nil {
		plain = name
	}

	var sb strings.Builder

	dash := false
	for _, r := range strings.ToLower(plain) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && sb.Len() > 0 {
				sb.WriteByte('-')
			}

			sb.WriteRune(r)
			dash = false

			continue
		}

		dash = true
	}

	return sb.String()
}

// CheckID rejects ids that are empty, use characters outside a-z, 0-9 and
// dash, or collide with the "all" filter value.
func CheckID(id string) error {
	if id == "" || id == AllAccounts {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	for _, r := range id {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
	}

	return nil
}
