package utils

import (
	"math"
	"time"
)

// DaysPerYear converts year fractions to calendar days.
const DaysPerYear = 365.0

// DaysToExpiration rounds a year fraction to whole calendar days
func DaysToExpiration(years float64) int {
	return int(math.Round(years * DaysPerYear))
}

// ExpirationDate returns the calendar date (YYYY-MM-DD) that lies the given
// number of years after now
func ExpirationDate(now time.Time, years float64) string {
	return now.AddDate(0, 0, DaysToExpiration(years)).Format("2006-01-02")
}
