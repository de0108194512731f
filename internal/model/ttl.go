package model

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ttlRegex matches TTL strings like "7d", "24h", "30m", "60s".
var ttlRegex = regexp.MustCompile(`^(\d+)([dhms])$`)

// ParseTTL parses a TTL string into a time.Duration.
func ParseTTL(s string) (time.Duration, error) {
	m := ttlRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid ttl %q (use e.g. 7d, 24h, 30m, 60s)", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("invalid ttl %q: %w", s, err)
	}
	switch m[2] {
	case "d":
		return time.Duration(n) * 24 * time.Hour, nil
	case "h":
		return time.Duration(n) * time.Hour, nil
	case "m":
		return time.Duration(n) * time.Minute, nil
	default:
		return time.Duration(n) * time.Second, nil
	}
}

// ExpiryAfter returns the expiry timestamp ttl after now.
func ExpiryAfter(now time.Time, ttl string) (string, error) {
	d, err := ParseTTL(ttl)
	if err != nil {
		return "", err
	}
	return Now(now.Add(d)), nil
}
