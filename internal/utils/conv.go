package utils

import (
	"strconv"
	"strings"
)

// StringToUint parses a positive id, returning false for anything else
func StringToUint(s string) (uint, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// OptionalUint is StringToUint returning nil instead of false
func OptionalUint(s string) *uint {
	if v, ok := StringToUint(s); ok {
		return &v
	}
	return nil
}
