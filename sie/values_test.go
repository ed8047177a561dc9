package sie

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("20230315")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("2023-03-15")
	assert.Error(t, err)

	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "20231231", FormatDate(d))
}

func TestParseAmount(t *testing.T) {
	for _, tt := range []struct {
		input string
		want  string
	}{
		{"1000.00", "1000"},
		{"1000,50", "1000.5"},
		{"-4000.00", "-4000"},
		{"0", "0"},
	} {
		amount, err := ParseAmount(tt.input)
		assert.NoError(t, err)
		assert.True(t, amount.Equal(decimal.RequireFromString(tt.want)), "%s parsed as %s", tt.input, amount)
	}

	_, err := ParseAmount("abc")
	assert.Error(t, err)
}
