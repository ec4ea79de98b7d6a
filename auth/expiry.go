package auth

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reExpiry    = regexp.MustCompile(`(?i)^(\d+)\s*(ms|s|m|h|d|w|y)$`)
	expiryUnits = map[string]time.Duration{
		"ms": time.Millisecond,
		"s":  time.Second,
		"m":  time.Minute,
		"h":  time.Hour,
		"d":  24 * time.Hour,
		"w":  7 * 24 * time.Hour,
		"y":  365 * 24 * time.Hour,
	}
)

// ParseExpiry parses a session lifetime, which is either a count of seconds
// ("3600") or a count and unit of ms, s, m, h, d, w, or y ("14d", "12h").
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	var count, unit = s, "s"
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		var m = reExpiry.FindStringSubmatch(s)
		if m == nil {
			return 0, fmt.Errorf("invalid expiry %q (expected e.g. 3600, 90m, 12h, or 14d)", s)
		}
		count, unit = m[1], strings.ToLower(m[2])
	}

	var n, err = strconv.ParseInt(count, 10, 64)
	var d = expiryUnits[unit]

	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid expiry %q (expected a positive count)", s)
	} else if n > math.MaxInt64/int64(d) {
		return 0, fmt.Errorf("invalid expiry %q (exceeds %s)", s, time.Duration(math.MaxInt64))
	}
	return time.Duration(n) * d, nil
}
