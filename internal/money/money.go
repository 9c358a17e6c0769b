// Package money implements the fixed-point monetary value used throughout the
// settlement engine. Amounts are stored as signed integer piasters
// (100 piasters = 1 EGP) so that aggregating thousands of orders never
// accumulates floating-point drift; every operation rounds to a whole piaster
// before its result is used anywhere else.
package money

import (
	"database/sql"
	"errors"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ErrDivisionByZero is returned by Divide. It is the only failure mode in this
// package; every other operation is total.
var ErrDivisionByZero = errors.New("money: division by zero")

// Locale selects the display language for formatting methods.
type Locale string

const (
	LocaleArabic  Locale = "ar"
	LocaleEnglish Locale = "en"
)

const (
	labelArabic  = "ج.م"
	labelEnglish = "EGP"
)

// Money is an immutable amount of Egyptian pounds held as integer piasters.
// The zero value is zero pounds and ready to use.
type Money struct {
	piasters int64
}

// FromPounds builds a Money from a major-unit amount, rounding to the nearest
// piaster. NaN and infinities coerce to zero: upstream rows occasionally carry
// garbage in optional monetary columns, and zero is the documented fail-soft
// policy for them.
func FromPounds(amount float64) Money {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}
	}
	return Money{piasters: roundHalfAway(amount * 100)}
}

// Parse builds a Money from a decimal string. Unparsable input coerces to
// zero, same policy as FromPounds.
func Parse(s string) Money {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Money{}
	}
	return FromPounds(v)
}

// FromPiasters builds a Money directly from minor units. Used when
// re-hydrating values that were already rounded once.
func FromPiasters(p int64) Money {
	return Money{piasters: p}
}

// FromDatabase converts a nullable decimal column into Money. NULL becomes
// zero so that null never leaks into arithmetic.
func FromDatabase(v sql.NullFloat64) Money {
	if !v.Valid {
		return Money{}
	}
	return FromPounds(v.Float64)
}

// Zero returns the zero amount.
func Zero() Money {
	return Money{}
}

// --- arithmetic ---

func (m Money) Add(other Money) Money {
	return Money{piasters: m.piasters + other.piasters}
}

func (m Money) Subtract(other Money) Money {
	return Money{piasters: m.piasters - other.piasters}
}

// Multiply scales by an arbitrary factor and rounds the result to the nearest
// piaster immediately, so rounding error cannot compound across operations.
func (m Money) Multiply(factor float64) Money {
	return Money{piasters: roundHalfAway(float64(m.piasters) * factor)}
}

// Divide splits by a divisor, rounding to the nearest piaster. A zero divisor
// returns ErrDivisionByZero.
func (m Money) Divide(divisor float64) (Money, error) {
	if divisor == 0 {
		return Money{}, ErrDivisionByZero
	}
	return Money{piasters: roundHalfAway(float64(m.piasters) / divisor)}, nil
}

// Percent applies a percentage, e.g. Percent(7) for a 7% commission.
func (m Money) Percent(p float64) Money {
	return m.Multiply(p / 100)
}

func (m Money) Abs() Money {
	if m.piasters < 0 {
		return Money{piasters: -m.piasters}
	}
	return m
}

func (m Money) Negate() Money {
	return Money{piasters: -m.piasters}
}

func (m Money) Max(other Money) Money {
	if m.piasters >= other.piasters {
		return m
	}
	return other
}

func (m Money) Min(other Money) Money {
	if m.piasters <= other.piasters {
		return m
	}
	return other
}

// NonNegative clamps negative amounts to zero.
func (m Money) NonNegative() Money {
	if m.piasters < 0 {
		return Money{}
	}
	return m
}

// --- comparisons ---

func (m Money) Equals(other Money) bool             { return m.piasters == other.piasters }
func (m Money) GreaterThan(other Money) bool        { return m.piasters > other.piasters }
func (m Money) GreaterThanOrEqual(other Money) bool { return m.piasters >= other.piasters }
func (m Money) LessThan(other Money) bool           { return m.piasters < other.piasters }
func (m Money) LessThanOrEqual(other Money) bool    { return m.piasters <= other.piasters }
func (m Money) IsZero() bool                        { return m.piasters == 0 }
func (m Money) IsPositive() bool                    { return m.piasters > 0 }
func (m Money) IsNegative() bool                    { return m.piasters < 0 }

// --- conversions ---

// Pounds returns the amount in major units. Display only: feeding this back
// into float arithmetic defeats the whole point of the type.
func (m Money) Pounds() float64 {
	return float64(m.piasters) / 100
}

// Piasters returns the raw minor-unit amount.
func (m Money) Piasters() int64 {
	return m.piasters
}

// ToFixed renders the amount with a fixed number of decimals.
func (m Money) ToFixed(decimals int) string {
	return strconv.FormatFloat(m.Pounds(), 'f', decimals, 64)
}

func (m Money) String() string {
	return m.ToFixed(2)
}

// MarshalJSON serializes as a plain 2-decimal number, matching how the
// upstream rows carry decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.ToFixed(2)), nil
}

// UnmarshalJSON accepts a JSON number or decimal string and rounds it to
// piasters, applying the same fail-soft policy as Parse.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		*m = Money{}
		return nil
	}
	*m = Parse(s)
	return nil
}

// --- formatting ---

// Format renders "<amount> <currency label>" for the locale. Arabic output
// uses Eastern Arabic numerals.
func (m Money) Format(locale Locale) string {
	amount := m.ToFixed(2)
	if locale == LocaleArabic {
		return easternArabicDigits(amount) + " " + labelArabic
	}
	return amount + " " + labelEnglish
}

// FormatWestern keeps Western numerals but localizes the currency label.
func (m Money) FormatWestern(locale Locale) string {
	amount := m.ToFixed(2)
	if locale == LocaleArabic {
		return amount + " " + labelArabic
	}
	return amount + " " + labelEnglish
}

var (
	arabicPrinter  = message.NewPrinter(language.MustParse("ar-EG"))
	englishPrinter = message.NewPrinter(language.MustParse("en-GB"))
)

// FormatWithSeparators renders the amount with locale-appropriate thousands
// grouping, e.g. "1,234,567.89 EGP".
func (m Money) FormatWithSeparators(locale Locale) string {
	d := number.Decimal(m.Pounds(),
		number.MinFractionDigits(2), number.MaxFractionDigits(2))
	if locale == LocaleArabic {
		return arabicPrinter.Sprint(d) + " " + labelArabic
	}
	return englishPrinter.Sprint(d) + " " + labelEnglish
}

// FormatShort abbreviates large amounts with K/M suffixes (ك/م in Arabic).
// Negative amounts are never abbreviated.
func (m Money) FormatShort(locale Locale) string {
	amount := m.Pounds()
	var formatted string
	switch {
	case amount >= 1_000_000:
		formatted = strconv.FormatFloat(amount/1_000_000, 'f', 1, 64)
		if locale == LocaleArabic {
			formatted += "م"
		} else {
			formatted += "M"
		}
	case amount >= 1_000:
		formatted = strconv.FormatFloat(amount/1_000, 'f', 1, 64)
		if locale == LocaleArabic {
			formatted += "ك"
		} else {
			formatted += "K"
		}
	default:
		formatted = m.ToFixed(2)
	}
	if locale == LocaleArabic {
		return formatted + " " + labelArabic
	}
	return formatted + " " + labelEnglish
}

// Sum adds a slice of amounts.
func Sum(amounts []Money) Money {
	total := Zero()
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// --- helpers ---

// roundHalfAway rounds to the nearest integer, halves away from zero.
func roundHalfAway(v float64) int64 {
	return int64(math.Round(v))
}

func easternArabicDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune('٠' + (r - '0'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
