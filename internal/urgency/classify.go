// Package urgency derives the display tier of a job from its due instant and status.
package urgency

import (
	"time"

	"github.com/SirClappington/signjobs/internal/domain"
	"github.com/SirClappington/signjobs/internal/shoptime"
)

type Tier string

const (
	Normal     Tier = "normal"
	DueSoon    Tier = "due_soon"
	Overdue    Tier = "overdue"
	InProgress Tier = "in_progress"
	Done       Tier = "done"
)

// DueSoonWindow is how close a due time must be to count as due soon.
const DueSoonWindow = 60 * time.Minute

type Result struct {
	Tier         Tier
	MinutesToDue float64
}

// Classify is total: exactly one tier is returned for any job and instant.
func Classify(j domain.Job, now time.Time) Result {
	left := j.DueTime.Sub(now)
	r := Result{MinutesToDue: left.Minutes()}
	switch {
	case j.Status == domain.Done:
		r.Tier = Done
	case j.Status == domain.InProgress:
		r.Tier = InProgress
	case left <= 0:
		r.Tier = Overdue
	case left <= DueSoonWindow:
		r.Tier = DueSoon
	default:
		r.Tier = Normal
	}
	return r
}

// IsToday reports whether an unfinished job is due on now's shop-local date.
func IsToday(j domain.Job, now time.Time, z shoptime.Zone) bool {
	return j.Status != domain.Done && sameDate(z, j.DueTime, now)
}

// IsTomorrow reports whether an unfinished job is due on the shop-local date after now's.
func IsTomorrow(j domain.Job, now time.Time, z shoptime.Zone) bool {
	if j.Status == domain.Done {
		return false
	}
	y, m, d := z.Date(now)
	next := time.Date(y, m, d+1, 12, 0, 0, 0, time.UTC)
	jy, jm, jd := z.Date(j.DueTime)
	ny, nm, nd := next.Date()
	return jy == ny && jm == nm && jd == nd
}

func sameDate(z shoptime.Zone, a, b time.Time) bool {
	ay, am, ad := z.Date(a)
	by, bm, bd := z.Date(b)
	return ay == by && am == bm && ad == bd
}
