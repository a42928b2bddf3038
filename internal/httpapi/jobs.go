package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SirClappington/signjobs/internal/domain"
	"github.com/SirClappington/signjobs/internal/storage"
	"github.com/SirClappington/signjobs/internal/urgency"
)

const blankItemRows = 3

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "index.html", indexPage{
		Shop:     s.ShopName,
		JobTypes: domain.JobTypes,
		Items:    itemRows(nil, blankItemRows),
	})
}

func (s *Server) handleAddJob(w http.ResponseWriter, r *http.Request) {
	const failMsg = "เกิดข้อผิดพลาด"
	f, err := parseJobForm(r)
	if err != nil {
		s.fail(w, r, err, failMsg)
		return
	}
	due, err := s.Zone.ToStoredInstant(f.DueTime)
	if err != nil {
		s.fail(w, r, err, failMsg)
		return
	}
	n := domain.NewJob{
		Customer: f.Customer,
		JobType:  f.JobType,
		Note:     f.Note,
		DueTime:  due,
		Price:    f.Price,
		Items:    f.Items,
	}
	n.Normalize()
	if err := n.Validate(); err != nil {
		s.fail(w, r, err, failMsg)
		return
	}
	id, err := s.Jobs.Insert(r.Context(), n)
	if err != nil {
		s.fail(w, r, err, failMsg)
		return
	}
	s.Log.Info("job created", zap.String("job_id", id), zap.Time("duetime", due))
	http.Redirect(w, r, "/jobs", http.StatusSeeOther)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	const failMsg = "อัปเดตไม่สำเร็จ"
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, failMsg)
		return
	}
	st, err := domain.ParseStatus(r.PostForm.Get("status"))
	if err != nil {
		s.fail(w, r, err, failMsg)
		return
	}
	var p domain.JobPatch
	p.SetStatus(st)
	p.Live = true
	if err := s.Jobs.Update(r.Context(), r.PostForm.Get("id"), p); err != nil {
		s.fail(w, r, err, failMsg)
		return
	}
	http.Redirect(w, r, "/jobs", http.StatusSeeOther)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	const failMsg = "ลบไม่สำเร็จ"
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, failMsg)
		return
	}
	id := r.PostForm.Get("id")
	if err := s.Jobs.Update(r.Context(), id, domain.SoftDelete()); err != nil {
		s.fail(w, r, err, failMsg)
		return
	}
	s.Log.Info("job deleted", zap.String("job_id", id))
	http.Redirect(w, r, "/jobs", http.StatusSeeOther)
}

// handleUpdateJob is a full edit. It always re-arms the reminder.
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	const failMsg = "แก้ไขไม่สำเร็จ"
	f, err := parseJobForm(r)
	if err != nil {
		s.fail(w, r, err, failMsg)
		return
	}
	due, err := s.Zone.ToStoredInstant(f.DueTime)
	if err != nil {
		s.fail(w, r, err, failMsg)
		return
	}

	p := domain.JobPatch{Customer: &f.Customer, JobType: &f.JobType, Note: &f.Note}
	p.SetDueTime(due)
	if len(f.Items) > 0 {
		p.SetItems(f.Items)
	} else {
		none := []domain.Item{}
		p.Items = &none
		p.Price = &f.Price
	}
	if err := p.Validate(); err != nil {
		s.fail(w, r, err, failMsg)
		return
	}
	if err := s.Jobs.Update(r.Context(), r.PostForm.Get("id"), p); err != nil {
		s.fail(w, r, err, failMsg)
		return
	}
	http.Redirect(w, r, "/jobs", http.StatusSeeOther)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	const failMsg = "ดึงข้อมูลไม่ได้"
	q := r.URL.Query()
	page := listPage{
		Shop:  s.ShopName,
		Query: strings.TrimSpace(q.Get("q")),
		Due:   q.Get("due"),
	}
	f := storage.Filter{Search: page.Query}
	order := storage.Order{}

	if raw := q.Get("status"); raw != "" {
		st, err := domain.ParseStatus(raw)
		if err != nil {
			s.fail(w, r, err, failMsg)
			return
		}
		f.Status = &st
		page.StatusCode = st.Code()
	}

	now := s.now()
	today := s.Zone.StartOfDay(now)
	switch page.Due {
	case "":
	case "today", "tomorrow":
		from := today
		if page.Due == "tomorrow" {
			from = today.AddDate(0, 0, 1)
		}
		until := from.AddDate(0, 0, 1)
		f.DueFrom, f.DueBefore = &from, &until
		order = storage.SoonestFirst
	case "overdue":
		// Same rule as urgency.Classify: pending and due at or before now.
		pending := domain.Pending
		if f.Status != nil && *f.Status != pending {
			s.render(w, r, "jobs.html", page)
			return
		}
		f.Status = &pending
		f.DueUntil = &now
		order = storage.SoonestFirst
	default:
		writeText(w, http.StatusBadRequest, "ตัวกรองไม่ถูกต้อง")
		return
	}

	jobs, err := s.Jobs.Query(r.Context(), f, order)
	if err != nil {
		s.fail(w, r, err, failMsg)
		return
	}
	page.Jobs = s.jobViews(jobs, now)
	s.render(w, r, "jobs.html", page)
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	j, err := s.Jobs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, "ไม่พบข้อมูล")
		return
	}
	if j.IsDeleted {
		writeText(w, http.StatusNotFound, "ไม่พบข้อมูล")
		return
	}
	s.render(w, r, "edit.html", editPage{
		Shop:     s.ShopName,
		Job:      j,
		LocalDue: s.Zone.ToLocalInputString(j.DueTime),
		JobTypes: domain.JobTypes,
		Items:    itemRows(j.Items, blankItemRows),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	today := s.Zone.StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	done := domain.Done

	var open, doneToday []domain.Job
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		open, err = s.Jobs.Query(ctx, storage.Filter{NotStatus: &done}, storage.SoonestFirst)
		return err
	})
	g.Go(func() error {
		var err error
		doneToday, err = s.Jobs.Query(ctx, storage.Filter{Status: &done, DueFrom: &today, DueBefore: &tomorrow}, storage.SoonestFirst)
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(w, r, err, "ดึงข้อมูลไม่ได้")
		return
	}

	page := dashboardPage{
		Shop: s.ShopName,
		Counts: map[string]int{
			string(urgency.Overdue):    0,
			string(urgency.DueSoon):    0,
			string(urgency.InProgress): 0,
			string(urgency.Normal):     0,
		},
		Open:      s.jobViews(open, now),
		DoneToday: s.jobViews(doneToday, now),
	}
	for i, j := range open {
		v := page.Open[i]
		page.Counts[string(v.Tier)]++
		switch {
		case urgency.IsToday(j, now, s.Zone):
			page.Today = append(page.Today, v)
		case urgency.IsTomorrow(j, now, s.Zone):
			page.Tomorrow = append(page.Tomorrow, v)
		}
	}
	s.render(w, r, "dashboard.html", page)
}
