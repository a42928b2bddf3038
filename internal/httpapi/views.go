package httpapi

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/SirClappington/signjobs/internal/domain"
	"github.com/SirClappington/signjobs/internal/urgency"
)

var thaiPrinter = message.NewPrinter(language.Thai)

// formatPrice renders a baht amount with grouping, e.g. 1,087.50.
func formatPrice(v float64) string {
	return thaiPrinter.Sprintf("%.2f", v)
}

type jobView struct {
	Job     domain.Job
	Tier    urgency.Tier
	Minutes float64
	Due     string
	Price   string
}

func (s *Server) view(j domain.Job, now time.Time) jobView {
	c := urgency.Classify(j, now)
	return jobView{
		Job:     j,
		Tier:    c.Tier,
		Minutes: c.MinutesToDue,
		Due:     s.Zone.FormatThai(j.DueTime),
		Price:   formatPrice(j.Price),
	}
}

func (s *Server) jobViews(jobs []domain.Job, now time.Time) []jobView {
	out := make([]jobView, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, s.view(j, now))
	}
	return out
}

type indexPage struct {
	Shop     string
	JobTypes []string
	Items    []domain.Item
}

type listPage struct {
	Shop       string
	Jobs       []jobView
	Query      string
	StatusCode string
	Due        string
}

type editPage struct {
	Shop     string
	Job      domain.Job
	LocalDue string
	JobTypes []string
	Items    []domain.Item
}

type dashboardPage struct {
	Shop      string
	Counts    map[string]int
	Open      []jobView
	Today     []jobView
	Tomorrow  []jobView
	DoneToday []jobView
}
