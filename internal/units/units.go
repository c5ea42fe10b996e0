// Package units parses and formats human-readable byte sizes.
package units

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSize parses sizes like "64", "512KB" or "1.5GiB" into bytes.
// Decimal units (KB, MB, ...) are 1000-based; binary units (KiB, MiB, ...)
// and the single-letter forms K, M, G, T are 1024-based.
func ParseSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	// Bare numbers are bytes.
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, nil
	}

	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	value, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}

	mult := multiplier(strings.TrimSpace(s[i:]))
	if mult == 0 {
		return 0, fmt.Errorf("unknown unit in %q", s)
	}

	bytes := value * float64(mult)
	if bytes < 0 {
		return 0, fmt.Errorf("negative size %q", s)
	}
	return uint64(bytes), nil
}

// FormatSize renders bytes with binary units, one decimal place.
func FormatSize(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	units := []string{"KiB", "MiB", "GiB", "TiB", "PiB"}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit && exp < len(units)-1; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), units[exp])
}

func multiplier(unit string) uint64 {
	switch strings.ToUpper(unit) {
	case "B":
		return 1
	case "KB":
		return 1000
	case "MB":
		return 1000 * 1000
	case "GB":
		return 1000 * 1000 * 1000
	case "TB":
		return 1000 * 1000 * 1000 * 1000
	case "KIB", "K":
		return 1 << 10
	case "MIB", "M":
		return 1 << 20
	case "GIB", "G":
		return 1 << 30
	case "TIB", "T":
		return 1 << 40
	default:
		return 0
	}
}
