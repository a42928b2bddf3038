// Package reminder runs the sweep that pushes one LINE message per job shortly
// before it is due.
//
// A sweep is not scheduled here. cmd/scheduler and the /api/check-reminder
// endpoint trigger it; the window below assumes they fire at least every five
// minutes. Overlapping sweeps can double-notify, so callers share a Locker.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/SirClappington/signjobs/internal/domain"
	"github.com/SirClappington/signjobs/internal/lock"
	"github.com/SirClappington/signjobs/internal/notify"
	"github.com/SirClappington/signjobs/internal/shoptime"
	"github.com/SirClappington/signjobs/internal/storage"
)

// Jobs due between WindowStart and WindowEnd minutes from now are reminded.
const (
	WindowStart = 55.0
	WindowEnd   = 60.0
)

// ErrSweepBusy is returned when another sweep holds the lock.
var ErrSweepBusy = errors.New("reminder sweep already running")

type Store interface {
	Query(ctx context.Context, f storage.Filter, o storage.Order) ([]domain.Job, error)
	Update(ctx context.Context, id string, p domain.JobPatch) error
}

type Locker interface {
	TryLock(ctx context.Context) (lock.Release, bool, error)
}

type Scanner struct {
	Store     Store
	Gateway   notify.Gateway
	Recipient string
	Zone      shoptime.Zone
	Lock      Locker // optional
	Log       *zap.Logger
}

// Due reports whether a job due at due should be reminded at now.
func Due(due, now time.Time) bool {
	m := due.Sub(now).Minutes()
	return m >= WindowStart && m <= WindowEnd
}

// Message is the reminder text for j.
func (s *Scanner) Message(j domain.Job) string {
	return fmt.Sprintf("🔔 เตือนงาน\nลูกค้า: %s\nประเภท: %s\nวันที่: %s", j.Customer, j.JobType, s.Zone.FormatThai(j.DueTime))
}

// Scan runs one sweep and returns the jobs marked notified by it.
// Delivery failures are logged and do not stop the job from being marked.
// A store failure aborts the sweep.
func (s *Scanner) Scan(ctx context.Context, now time.Time) ([]domain.Job, error) {
	log := s.logger()
	if s.Lock != nil {
		release, ok, lerr := s.Lock.TryLock(ctx)
		if lerr != nil {
			return nil, errors.Wrap(lerr, "sweep lock")
		}
		if !ok {
			return nil, ErrSweepBusy
		}
		defer func() {
			if rerr := release(context.WithoutCancel(ctx)); rerr != nil {
				log.Warn("release sweep lock", zap.Error(rerr))
			}
		}()
	}

	unnotified := false
	candidates, err := s.Store.Query(ctx, storage.Filter{Notified: &unnotified, IncludeDeleted: true}, storage.Order{})
	if err != nil {
		return nil, errors.Wrap(err, "list unnotified jobs")
	}

	var (
		marked      []domain.Job
		deliveryErr error
	)
	for _, j := range candidates {
		if !Due(j.DueTime, now) {
			continue
		}
		if serr := s.Gateway.SendText(ctx, s.Recipient, s.Message(j)); serr != nil {
			deliveryErr = multierr.Append(deliveryErr, serr)
			log.Warn("reminder delivery failed", zap.String("job_id", j.ID), zap.Error(serr))
		}
		var p domain.JobPatch
		p.SetNotified(true)
		if uerr := s.Store.Update(ctx, j.ID, p); uerr != nil {
			return marked, errors.Wrapf(uerr, "mark job %s notified", j.ID)
		}
		j.Notified = true
		marked = append(marked, j)
	}

	log.Info("reminder sweep done",
		zap.Int("candidates", len(candidates)),
		zap.Int("notified", len(marked)),
		zap.Int("delivery_failures", len(multierr.Errors(deliveryErr))))
	return marked, nil
}

func (s *Scanner) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
