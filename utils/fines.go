package utils

import "time"

// DaysLate returns how many whole days past due a loan is at time now.
// Returns 0 when the due date has not passed; otherwise at least 1, even
// within the first 24 hours.
func DaysLate(due, now time.Time) int {
	if !now.After(due) {
		return 0
	}
	days := int(now.Sub(due).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return days
}

// LateFee returns the fine for the given number of late days.
func LateFee(daysLate int, finePerDay float64) float64 {
	if daysLate <= 0 {
		return 0
	}
	return float64(daysLate) * finePerDay
}
