package qif

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	monthFirst := DateOptions{MonthBeforeDay: true}
	dayFirst := DateOptions{}

	tests := []struct {
		name     string
		input    string
		opts     DateOptions
		expected string
	}{
		{name: "four_digit_year_month_first", input: "12/31/1998", opts: monthFirst, expected: "1998-12-31"},
		{name: "four_digit_year_day_first", input: "31/12/1998", opts: dayFirst, expected: "1998-12-31"},
		{name: "citibank_style", input: "01/22/2002", opts: monthFirst, expected: "2002-01-22"},
		{name: "paypal_style", input: "3/2/2011", opts: monthFirst, expected: "2011-03-02"},
		{name: "space_padded", input: "7/ 9/98", opts: monthFirst, expected: "1998-07-09"},
		{name: "space_padded_day_first", input: "7/ 9/98", opts: dayFirst, expected: "1998-09-07"},
		{name: "leading_space", input: " 9/ 7/99", opts: monthFirst, expected: "1999-09-07"},
		{name: "two_digit_year", input: "10/10/99", opts: monthFirst, expected: "1999-10-10"},
		{name: "apostrophe_year", input: "10/10'01", opts: monthFirst, expected: "2001-10-10"},
		{name: "apostrophe_short_fields", input: "3/2'11", opts: monthFirst, expected: "2011-03-02"},
		{name: "apostrophe_four_digit_year", input: "12/25'2003", opts: monthFirst, expected: "2003-12-25"},
		{name: "apostrophe_four_digit_year_short_fields", input: "1/5'2003", opts: monthFirst, expected: "2003-01-05"},
		{name: "no_y2k_rule", input: "1/1/05", opts: monthFirst, expected: "1905-01-01"},
		{name: "y2k_rule_low_year", input: "1/1/05", opts: DateOptions{MonthBeforeDay: true, Y2KRule: true}, expected: "2005-01-01"},
		{name: "y2k_rule_high_year", input: "1/1/75", opts: DateOptions{MonthBeforeDay: true, Y2KRule: true}, expected: "1975-01-01"},
		{name: "trailing_carriage_return", input: "12/31/1998\r", opts: monthFirst, expected: "1998-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.Format("2006-01-02"))
		})
	}
}

func TestParseDateMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "letters", input: "ab/cd/efgh"},
		{name: "too_short", input: "1/1"},
		{name: "too_long", input: "01/01/19999"},
		{name: "wrong_separator", input: "01-01-1999"},
		{name: "month_out_of_range", input: "13/01/1999"},
		{name: "day_out_of_range", input: "02/30/1999"},
		{name: "sign_in_year", input: "01/01/-999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDate(tt.input, DateOptions{MonthBeforeDay: true})
			assert.ErrorIs(t, err, ErrMalformedDate)
		})
	}
}
