package service

import (
	"time"

	"github.com/itchan-dev/agenda/shared/domain"
)

// ValidInterval reports whether [start, end) is a non-empty interval within one day.
func ValidInterval(start, end domain.Clock) bool {
	return start.Valid() && end.Valid() && start < end
}

// FindOverlap returns the first activity in existing whose [Start, End) interval
// collides with [start, end), skipping the activity with id exclude.
// Touching intervals (a.End == start) do not collide.
func FindOverlap(start, end domain.Clock, existing []domain.Activity, exclude domain.ActivityId) *domain.Activity {
	for i := range existing {
		x := &existing[i]
		if exclude != "" && x.Id == exclude {
			continue
		}
		if (start >= x.Start && start < x.End) ||
			(end > x.Start && end <= x.End) ||
			(start <= x.Start && end >= x.End) {
			return x
		}
	}
	return nil
}

// sentHours sums the duration of enviado activities only.
func sentHours(activities []domain.Activity) float64 {
	var total time.Duration
	for _, a := range activities {
		if a.State == domain.StateSent {
			total += a.Duration()
		}
	}
	return total.Hours()
}
