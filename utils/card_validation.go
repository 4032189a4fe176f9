package utils

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var paymentValidate = newPaymentValidator()

var paymentFieldMessages = map[string]string{
	"cardNumber":     "Please enter a valid card number",
	"expiryDate":     "Please enter a valid expiry date (MM/YY)",
	"cvv":            "CVV should be 3 or 4 digits",
	"cardholderName": "Please enter the cardholder name",
}

func newPaymentValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("card_number", func(fl validator.FieldLevel) bool {
		return ValidateCardNumber(fl.Field().String())
	})
	_ = v.RegisterValidation("card_expiry", func(fl validator.FieldLevel) bool {
		return ValidateExpiryDate(fl.Field().String(), time.Now())
	})
	_ = v.RegisterValidation("card_cvv", func(fl validator.FieldLevel) bool {
		return ValidateCVV(fl.Field().String())
	})
	_ = v.RegisterValidation("cardholder", func(fl validator.FieldLevel) bool {
		return ValidateCardholderName(fl.Field().String())
	})
	return v
}

// ValidatePaymentForm checks a struct tagged with the card_* validators and
// returns one message per invalid field, keyed by JSON name.
func ValidatePaymentForm(form any) (map[string]string, error) {
	err := paymentValidate.Struct(form)
	if err == nil {
		return nil, nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil, fmt.Errorf("validate payment form: %w", err)
	}

	fields := map[string]string{}
	for _, fe := range errs {
		msg, known := paymentFieldMessages[fe.Field()]
		if !known {
			msg = "is invalid"
		}
		fields[fe.Field()] = msg
	}
	return fields, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateCardNumber accepts 13 to 19 digits once separators are stripped.
func ValidateCardNumber(cardNumber string) bool {
	n := len(digitsOnly(cardNumber))
	return n >= 13 && n <= 19
}

// ValidateExpiryDate accepts MM/YY that is not before the month of now.
func ValidateExpiryDate(expiry string, now time.Time) bool {
	monthStr, yearStr, ok := strings.Cut(expiry, "/")
	if !ok || len(monthStr) != 2 || len(yearStr) != 2 {
		return false
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 0 {
		return false
	}
	year += 2000

	currentYear, currentMonth := now.Year(), int(now.Month())
	if year < currentYear || (year == currentYear && month < currentMonth) {
		return false
	}
	return true
}

func ValidateCVV(cvv string) bool {
	n := len(digitsOnly(cvv))
	return n >= 3 && n <= 4
}

func ValidateCardholderName(name string) bool {
	return len([]rune(strings.TrimSpace(name))) >= 3
}

// FormatCardNumber groups the digits in fours: "4111 1111 1111 1111".
func FormatCardNumber(cardNumber string) string {
	digits := digitsOnly(cardNumber)

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatExpiry turns typed digits into MM/YY, e.g. "1226" -> "12/26".
func FormatExpiry(input string) string {
	digits := digitsOnly(input)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) <= 2 {
		return digits
	}
	return digits[:2] + "/" + digits[2:]
}

// MaskCardNumber keeps only the last four digits.
func MaskCardNumber(cardNumber string) string {
	digits := digitsOnly(cardNumber)
	if len(digits) <= 4 {
		return digits
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}
