// Package cardx contains pure helpers for card number and expiry strings:
// digit cleaning, display formatting and the expiry-window predicates used
// by both filtering and creation-time validation.
package cardx

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var expiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)

// CleanNumber strips every non-digit character from raw.
func CleanNumber(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCardNumber strips non-digits and joins the remaining digits into
// groups of 4 separated by single spaces. No upper bound on length is
// enforced here; that is the job of form validation.
func FormatCardNumber(raw string) string {
	digits := CleanNumber(raw)
	groups := make([]string, 0, len(digits)/4+1)
	for i := 0; i < len(digits); i += 4 {
		end := i + 4
		if end > len(digits) {
			end = len(digits)
		}
		groups = append(groups, digits[i:end])
	}
	return strings.Join(groups, " ")
}

// MaskNumber renders a cleaned card number with all but the last 4 digits
// hidden, e.g. "•••• 4444". Numbers of 4 digits or fewer come back as-is.
func MaskNumber(numero string) string {
	digits := CleanNumber(numero)
	if len(digits) <= 4 {
		return digits
	}
	return "•••• " + digits[len(digits)-4:]
}

// FormatExpiryDate strips non-digits and renders an MM/YY string. Two or
// fewer digits are returned unchanged; anything past the fourth digit is
// silently dropped.
func FormatExpiryDate(raw string) string {
	digits := CleanNumber(raw)
	if len(digits) <= 2 {
		return digits
	}
	end := 4
	if len(digits) < 4 {
		end = len(digits)
	}
	return digits[:2] + "/" + digits[2:end]
}

// ValidExpiry reports whether s is exactly MM/YY with month 01–12.
func ValidExpiry(s string) bool {
	return expiryRe.MatchString(s)
}

// parseExpiry splits an MM/YY string into the first day of the denoted
// month (year 2000+YY). ok is false when either part is missing or not
// a number; the caller never sees an error.
func parseExpiry(expiry string, loc *time.Location) (time.Time, bool) {
	month, year, found := strings.Cut(expiry, "/")
	if !found || month == "" || year == "" {
		return time.Time{}, false
	}
	mm, err := strconv.Atoi(month)
	if err != nil {
		return time.Time{}, false
	}
	yy, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(2000+yy, time.Month(mm), 1, 0, 0, 0, 0, loc), true
}

// ExpiringSoon reports whether the MM/YY expiry falls inside the inclusive
// window [current month, now+3 calendar months]. A card expiring in the
// current month counts as expiring soon; a card whose month is already in
// the past does not. Malformed input yields false, never an error.
//
// Note this answers "expiring soon", not "still active"; combine with
// Expired when the distinction matters.
func ExpiringSoon(expiry string, now time.Time) bool {
	exp, ok := parseExpiry(expiry, now.Location())
	if !ok {
		return false
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	windowEnd := now.AddDate(0, 3, 0)
	return !exp.Before(monthStart) && !exp.After(windowEnd)
}

// ExpiresAfter reports whether the first day of the MM/YY expiry month is
// strictly after now. This is the creation-time rule: a card expiring in
// the current month is already unacceptable on a new card, even though
// Expired still reports false for it. Malformed input yields false.
func ExpiresAfter(expiry string, now time.Time) bool {
	exp, ok := parseExpiry(expiry, now.Location())
	if !ok {
		return false
	}
	return exp.After(now)
}

// Expired reports whether the MM/YY expiry denotes a month strictly before
// the current one. Malformed input yields false.
func Expired(expiry string, now time.Time) bool {
	exp, ok := parseExpiry(expiry, now.Location())
	if !ok {
		return false
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return exp.Before(monthStart)
}
