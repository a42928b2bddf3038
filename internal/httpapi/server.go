package httpapi

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/SirClappington/signjobs/internal/domain"
	"github.com/SirClappington/signjobs/internal/logging"
	"github.com/SirClappington/signjobs/internal/notify"
	"github.com/SirClappington/signjobs/internal/shoptime"
	"github.com/SirClappington/signjobs/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"index.html", "jobs.html", "edit.html", "dashboard.html"}

// JobStore is the repository the handlers read and write.
type JobStore interface {
	Insert(ctx context.Context, j domain.NewJob) (string, error)
	Update(ctx context.Context, id string, p domain.JobPatch) error
	Get(ctx context.Context, id string) (domain.Job, error)
	Query(ctx context.Context, f storage.Filter, o storage.Order) ([]domain.Job, error)
}

type Sweeper interface {
	Scan(ctx context.Context, now time.Time) ([]domain.Job, error)
}

type Server struct {
	Jobs      JobStore
	Reminders Sweeper
	Gateway   notify.Gateway
	Recipient string
	Zone      shoptime.Zone
	ShopName  string
	Log       *zap.Logger
	Now       func() time.Time

	views map[string]*template.Template
}

// New parses the embedded templates. Fields can still be set on the result
// before Router is called.
func New(jobs JobStore, reminders Sweeper, zone shoptime.Zone, log *zap.Logger) (*Server, error) {
	s := &Server{
		Jobs:      jobs,
		Reminders: reminders,
		Zone:      zone,
		Log:       log,
		Now:       time.Now,
		Gateway:   notify.Discard{Log: log},
	}
	s.views = make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		t, err := template.New("layout.html").Funcs(s.funcs()).
			ParseFS(templateFS, "templates/layout.html", "templates/partials.html", "templates/"+p)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", p)
		}
		s.views[p] = t
	}
	return s, nil
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Requests(s.Log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/", s.handleIndex)
	r.Post("/add-job", s.handleAddJob)
	r.Post("/update-status", s.handleUpdateStatus)
	r.Post("/delete-job", s.handleDeleteJob)
	r.Post("/update-job", s.handleUpdateJob)
	r.Get("/jobs", s.handleListJobs)
	r.Get("/edit/{id}", s.handleEditForm)
	r.Get("/dashboard", s.handleDashboard)

	r.Get("/api/check-reminder", s.handleCheckReminder)
	r.Get("/test", s.handleTestMessage)

	return r
}

func (s *Server) funcs() template.FuncMap {
	return template.FuncMap{
		"statuses": func() []domain.Status { return domain.Statuses },
	}
}

func (s *Server) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, data any) {
	t, ok := s.views[page]
	if !ok {
		s.fail(w, r, errors.Errorf("no view %s", page), "เกิดข้อผิดพลาด")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "layout.html", data); err != nil {
		s.Log.Error("render", zap.String("page", page), zap.Error(err))
	}
}

func writeText(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(msg))
}

// fail maps err to a status code and a Thai message. Store and unknown errors
// get the route's generic message; input errors say what was wrong.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, generic string) {
	var (
		ite *shoptime.InvalidTimeError
		ve  *domain.ValidationError
	)
	switch {
	case errors.As(err, &ite):
		writeText(w, http.StatusBadRequest, "วันเวลาไม่ถูกต้อง")
	case errors.As(err, &ve):
		writeText(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, domain.ErrUnknownStatus):
		writeText(w, http.StatusBadRequest, "สถานะไม่ถูกต้อง")
	case errors.Is(err, domain.ErrNotFound):
		writeText(w, http.StatusNotFound, "ไม่พบข้อมูล")
	default:
		s.Log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		writeText(w, http.StatusInternalServerError, generic)
	}
}
