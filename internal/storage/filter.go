package storage

import (
	"strings"

	"github.com/SirClappington/signjobs/internal/domain"
)

// Less reports whether x sorts before y under o in ascending terms.
func (o Order) Less(x, y domain.Job) bool {
	switch {
	case o.By == ByDue && !x.DueTime.Equal(y.DueTime):
		return x.DueTime.Before(y.DueTime)
	case o.By != ByDue && !x.CreatedAt.Equal(y.CreatedAt):
		return x.CreatedAt.Before(y.CreatedAt)
	}
	return x.ID < y.ID
}

// Matches reports whether j passes f, with the same meaning as the SQL
// buildSelect produces.
func (f Filter) Matches(j domain.Job) bool {
	if !f.IncludeDeleted && j.IsDeleted {
		return false
	}
	if f.Status != nil && j.Status != *f.Status {
		return false
	}
	if f.NotStatus != nil && j.Status == *f.NotStatus {
		return false
	}
	if f.Notified != nil && j.Notified != *f.Notified {
		return false
	}
	if f.DueFrom != nil && j.DueTime.Before(*f.DueFrom) {
		return false
	}
	if f.DueBefore != nil && !j.DueTime.Before(*f.DueBefore) {
		return false
	}
	if f.DueUntil != nil && j.DueTime.After(*f.DueUntil) {
		return false
	}
	if s := strings.TrimSpace(f.Search); s != "" && !strings.Contains(strings.ToLower(j.Customer), strings.ToLower(s)) {
		return false
	}
	return true
}
