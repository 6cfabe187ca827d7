package partitionid

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Partition ids for month-bucketed MergeTree tables use the YYYYMM
// format, e.g. 201901 for January 2019.

var (
	ErrBadFormat = errors.New("partition id is not YYYYMM")
	ErrBadMonth  = errors.New("partition id month out of range")
)

// FromTime formats the YYYYMM partition id containing t.
func FromTime(t time.Time) string {
	return t.Format("200601")
}

// Parse splits a YYYYMM partition id into year and month.
func Parse(id string) (int, time.Month, error) {
	if len(id) != 6 {
		return 0, 0, ErrBadFormat
	}
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0, 0, fmt.Errorf("error in strconv.Atoi: %w", ErrBadFormat)
	}
	year := n / 100
	month := n % 100
	if month < 1 || month > 12 {
		return 0, 0, ErrBadMonth
	}
	return year, time.Month(month), nil
}

// Before reports whether partition id is strictly older than cutoff.
// Both must be valid YYYYMM ids.
func Before(id, cutoff string) (bool, error) {
	if _, _, err := Parse(id); err != nil {
		return false, fmt.Errorf("error parsing id: %w", err)
	}
	if _, _, err := Parse(cutoff); err != nil {
		return false, fmt.Errorf("error parsing cutoff: %w", err)
	}
	// Zero-padded fixed-width ids compare correctly as strings
	return id < cutoff, nil
}

// CutoffMonths returns the oldest YYYYMM id still kept when retaining
// keepMonths months of data counting back from now (the month of now is
// month one).
func CutoffMonths(now time.Time, keepMonths int) string {
	// Anchor to the first of the month so AddDate can't skip a short month
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return FromTime(firstOfMonth.AddDate(0, -(keepMonths - 1), 0))
}
