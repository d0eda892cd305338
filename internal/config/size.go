package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseSize parses a human-readable size string into bytes.
// Supports: 100, 100B, 100K, 100KB, 100KiB, and likewise M, G and T
// (case-insensitive). Uses powers of 1024.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	numStr := strings.ToUpper(s)
	// A byte suffix after a unit letter is decoration: 4KB, 4KiB.
	for _, suffix := range []string{"IB", "B"} {
		trimmed := strings.TrimSuffix(numStr, suffix)
		if trimmed != numStr && trimmed != "" && strings.ContainsAny(trimmed[len(trimmed)-1:], "KMGT") {
			numStr = trimmed
			break
		}
	}

	multiplier := int64(1)
	switch numStr[len(numStr)-1] {
	case 'B':
		numStr = numStr[:len(numStr)-1]
	case 'K':
		multiplier = 1024
		numStr = numStr[:len(numStr)-1]
	case 'M':
		multiplier = 1024 * 1024
		numStr = numStr[:len(numStr)-1]
	case 'G':
		multiplier = 1024 * 1024 * 1024
		numStr = numStr[:len(numStr)-1]
	case 'T':
		multiplier = 1024 * 1024 * 1024 * 1024
		numStr = numStr[:len(numStr)-1]
	default:
		// No suffix, try parsing as plain number.
	}

	if numStr == "" {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	// Try integer first, then float.
	if n, err := strconv.ParseInt(numStr, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative size: %q", s)
		}
		if n > math.MaxInt64/multiplier {
			return 0, fmt.Errorf("size too large: %q", s)
		}
		return n * multiplier, nil
	}

	f, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative size: %q", s)
	}

	// float64(MaxInt64) rounds up to 2^63, which itself does not fit.
	bytes := f * float64(multiplier)
	if bytes >= math.MaxInt64 {
		return 0, fmt.Errorf("size too large: %q", s)
	}
	return int64(bytes), nil
}
