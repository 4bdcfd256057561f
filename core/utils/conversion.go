package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseNumber parses the text content of a game data field as a number.
// Surrounding whitespace is tolerated; anything non-numeric reports false.
func ParseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatNumber renders a numeric value the way the game files store them:
// plain decimal notation, no exponent, no trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatValue stringifies a configuration value for writing into a game
// data field, using explicit type switching.
func FormatValue(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		return FormatNumber(v)
	case float32:
		return FormatNumber(float64(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case bool:
		return strconv.FormatBool(v)
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// RoundInt rounds to the nearest whole number.
func RoundInt(v float64) int {
	return int(math.Round(v))
}
