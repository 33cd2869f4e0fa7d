package influx

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var errNoNumber = errors.New("no numeric prefix")

// parseIntPrefix parses the longest prefix of s made of an optional sign and
// base 10 digits, ignoring leading white space.
func parseIntPrefix(s string) (int64, error) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}

	start := end
	for end < len(s) && isDigit(s[end]) {
		end++
	}

	if end == start {
		return 0, errNoNumber
	}

	return strconv.ParseInt(s[:end], 10, 64)
}

// parseFloatPrefix parses the longest prefix of s which is a decimal floating
// point number, ignoring leading white space. "Infinity" is accepted with an
// optional sign.
func parseFloatPrefix(s string) (float64, error) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")

	end := 0
	sign := 1.0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		if s[end] == '-' {
			sign = -1.0
		}
		end++
	}

	if strings.HasPrefix(s[end:], "Infinity") {
		return math.Inf(int(sign)), nil
	}

	nbDigits := 0
	for end < len(s) && isDigit(s[end]) {
		end++
		nbDigits++
	}

	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && isDigit(s[end]) {
			end++
			nbDigits++
		}
	}

	if nbDigits == 0 {
		return 0, errNoNumber
	}

	// The exponent is only part of the number if it contains at least one
	// digit.
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		expEnd := end + 1
		if expEnd < len(s) && (s[expEnd] == '+' || s[expEnd] == '-') {
			expEnd++
		}

		expDigitsStart := expEnd
		for expEnd < len(s) && isDigit(s[expEnd]) {
			expEnd++
		}

		if expEnd > expDigitsStart {
			end = expEnd
		}
	}

	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			// Overflows and underflows still yield a number, as ±Inf or 0.
			return f, nil
		}

		return 0, err
	}

	return f, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
