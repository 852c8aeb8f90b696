package models

import "time"

// RecentWindow is how far back a publication date still counts as recent.
const RecentWindow = 24 * time.Hour

// publishedRecently reports whether pub lies in [now-RecentWindow, now].
// Dates in the future are never recent.
func publishedRecently(pub, now time.Time) bool {
	if pub.After(now) {
		return false
	}
	return !pub.Before(now.Add(-RecentWindow))
}
