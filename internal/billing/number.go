// Package billing builds the immutable parts of a bill: the human bill
// number, the customer snapshot and the line items. Everything here is pure;
// persistence and locking live in the repository.
package billing

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// SequencePrefix returns the audited per-year prefix, e.g. "BIL-2025-".
func SequencePrefix(year int) string {
	return fmt.Sprintf("BIL-%d-", year)
}

// NextSequential allocates the next bill number in the per-year sequence:
// take the lexicographically greatest existing number under the year prefix,
// parse its numeric suffix, increment and zero-pad to four digits. With no
// existing numbers the sequence starts at 0001.
func NextSequential(existing []string, year int) (string, error) {
	prefix := SequencePrefix(year)

	greatest := ""
	for _, number := range existing {
		if !strings.HasPrefix(number, prefix) {
			continue
		}
		if number > greatest {
			greatest = number
		}
	}

	next := 1
	if greatest != "" {
		suffix := strings.TrimPrefix(greatest, prefix)
		parsed, err := strconv.Atoi(suffix)
		if err != nil {
			return "", fmt.Errorf("malformed bill number %q: %w", greatest, err)
		}
		next = parsed + 1
	}

	return fmt.Sprintf("%s%04d", prefix, next), nil
}

// SaleBillNumber returns a collision-resistant number for direct-sale bills.
// Sales bypass the audited per-year sequence on purpose; their numbers are a
// timestamp plus a random suffix.
func SaleBillNumber(at time.Time) string {
	return fmt.Sprintf("BIL-%d-%04d", at.UnixMilli(), rand.Intn(10000))
}
