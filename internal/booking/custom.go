package booking

import (
	"strings"
	"unicode"
)

// FormSource says which surface collected a custom request.
type FormSource string

const (
	FormInline FormSource = "inline"
	FormModal  FormSource = "modal"
)

// CustomRequestForm is the raw input of the custom-request form or dialog.
type CustomRequestForm struct {
	Title       string
	Description string
	Budget      string
}

// Request returns the stored shape: trimmed text and a digits-only budget.
func (f CustomRequestForm) Request() CustomRequest {
	return CustomRequest{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Budget:      SanitizeBudget(f.Budget),
	}
}

// SanitizeBudget keeps only ASCII digits, so "R 1,500" becomes "1500".
func SanitizeBudget(in string) string {
	var b strings.Builder
	for _, r := range in {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatBudget prefixes a digits-only budget with the currency symbol. An
// empty budget stays empty; it is optional.
func FormatBudget(digits, symbol string) string {
	digits = SanitizeBudget(digits)
	if digits == "" {
		return ""
	}
	return symbol + digits
}
