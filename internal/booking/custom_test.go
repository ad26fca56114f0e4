package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeBudget(t *testing.T) {
	tests := map[string]string{
		"":        "",
		"1500":    "1500",
		"R 1,500": "1500",
		"abc":     "",
		"12.50":   "1250",
		"٣٤":      "",
		" 2 000 ": "2000",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeBudget(in), in)
	}
}

func TestFormatBudget(t *testing.T) {
	assert.Equal(t, "R1500", FormatBudget("1500", "R"))
	assert.Equal(t, "$20", FormatBudget("$20", "$"))
	assert.Empty(t, FormatBudget("", "R"), "budget is optional")
}

func TestCustomRequestForm_Request(t *testing.T) {
	got := CustomRequestForm{Title: "  Launch ", Description: "\tTeaser\n", Budget: "R3 000"}.Request()
	assert.Equal(t, CustomRequest{Title: "Launch", Description: "Teaser", Budget: "3000"}, got)
	assert.True(t, got.Complete())
	assert.False(t, CustomRequest{Title: "Launch"}.Complete())
}
