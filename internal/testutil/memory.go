package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SirClappington/signjobs/internal/domain"
	"github.com/SirClappington/signjobs/internal/storage"
)

// Memory is an in-process job store with the same filter and order semantics
// as storage.Store. Handler and sweep tests run against it.
type Memory struct {
	mu   sync.Mutex
	jobs map[string]domain.Job
	now  func() time.Time

	// FailNext makes the next call of the named operation ("insert", "update",
	// "get", "query") return a StoreError.
	FailNext map[string]error
}

func NewMemory() *Memory {
	return &Memory{jobs: map[string]domain.Job{}, now: time.Now, FailNext: map[string]error{}}
}

func (m *Memory) fail(op string) error {
	if err, ok := m.FailNext[op]; ok {
		delete(m.FailNext, op)
		return &domain.StoreError{Op: op, Err: err}
	}
	return nil
}

func (m *Memory) Insert(_ context.Context, n domain.NewJob) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("insert"); err != nil {
		return "", err
	}
	id := uuid.NewString()
	m.jobs[id] = domain.Job{
		ID:        id,
		Customer:  n.Customer,
		JobType:   n.JobType,
		Note:      n.Note,
		DueTime:   n.DueTime.UTC(),
		Price:     n.Price,
		Items:     append([]domain.Item(nil), n.Items...),
		Status:    domain.Pending,
		CreatedAt: m.now().UTC(),
	}
	return id, nil
}

// Put stores j as is, for seeding tests.
func (m *Memory) Put(j domain.Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	m.jobs[j.ID] = clone(j)
}

func (m *Memory) Update(_ context.Context, id string, p domain.JobPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("update"); err != nil {
		return err
	}
	j, ok := m.jobs[id]
	if !ok || (p.Live && j.IsDeleted) {
		return domain.ErrNotFound
	}
	m.jobs[id] = j.Apply(p)
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("get"); err != nil {
		return domain.Job{}, err
	}
	j, ok := m.jobs[id]
	if !ok {
		return domain.Job{}, domain.ErrNotFound
	}
	return clone(j), nil
}

func (m *Memory) Query(_ context.Context, f storage.Filter, o storage.Order) ([]domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("query"); err != nil {
		return nil, err
	}
	var out []domain.Job
	for _, j := range m.jobs {
		if f.Matches(j) {
			out = append(out, clone(j))
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if o.Asc {
			return o.Less(out[a], out[b])
		}
		return o.Less(out[b], out[a])
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// clone copies the item slice so callers never share it with the map.
func clone(j domain.Job) domain.Job {
	if j.Items != nil {
		j.Items = append([]domain.Item(nil), j.Items...)
	}
	return j
}
