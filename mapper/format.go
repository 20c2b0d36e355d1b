package mapper

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DateLayout is the human date format used in emails and notifications
const DateLayout = "Jan 2, 2006"

var (
	printer  = message.NewPrinter(language.English)
	validate = validator.New()

	localMobile = regexp.MustCompile(`^(09\d{9}|\+639\d{9})$`)
	e164        = regexp.MustCompile(`^\+[1-9]\d{9,14}$`)
	phoneNoise  = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
)

// FormatCurrency renders an amount with grouping and two decimals, e.g. ₱1,234.50
func FormatCurrency(amount float64, symbol string) string {
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	f, _ := d.Float64()
	return sign + symbol + printer.Sprint(number.Decimal(f, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// FormatDate renders a date as "Jan 2, 2006"
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// NormalizePhone strips separators users commonly type
func NormalizePhone(phone string) string {
	return phoneNoise.Replace(strings.TrimSpace(phone))
}

// ValidatePhone accepts local mobile numbers (09XXXXXXXXX, +639XXXXXXXXX) and E.164 numbers
func ValidatePhone(phone string) bool {
	p := NormalizePhone(phone)
	return localMobile.MatchString(p) || e164.MatchString(p)
}

// ValidateEmail reports whether s is a syntactically valid email address
func ValidateEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
