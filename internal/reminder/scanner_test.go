package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SirClappington/signjobs/internal/domain"
	"github.com/SirClappington/signjobs/internal/lock"
	"github.com/SirClappington/signjobs/internal/notify"
	"github.com/SirClappington/signjobs/internal/shoptime"
	"github.com/SirClappington/signjobs/internal/testutil"
)

type sent struct {
	to, text string
}

type fakeGateway struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (g *fakeGateway) SendText(_ context.Context, to, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sent{to, text})
	return g.err
}

type fakeLock struct {
	held     bool
	released int
}

func (l *fakeLock) TryLock(context.Context) (lock.Release, bool, error) {
	if l.held {
		return nil, false, nil
	}
	l.held = true
	return func(context.Context) error {
		l.held = false
		l.released++
		return nil
	}, true, nil
}

var _ notify.Gateway = (*fakeGateway)(nil)

var now = time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC) // 09:00 at +07:00

func newScanner(st Store, gw notify.Gateway) *Scanner {
	return &Scanner{
		Store:     st,
		Gateway:   gw,
		Recipient: "U-shop",
		Zone:      shoptime.NewZone(7 * time.Hour),
		Log:       zap.NewNop(),
	}
}

func seed(m *testutil.Memory, id string, dueIn time.Duration, mut ...func(*domain.Job)) {
	j := domain.Job{ID: id, Customer: "ลูกค้า " + id, JobType: "ไวนิล", DueTime: now.Add(dueIn)}
	for _, f := range mut {
		f(&j)
	}
	m.Put(j)
}

func TestDue_Window(t *testing.T) {
	assert.False(t, Due(now.Add(54*time.Minute+59*time.Second), now))
	assert.True(t, Due(now.Add(55*time.Minute), now))
	assert.True(t, Due(now.Add(57*time.Minute+30*time.Second), now))
	assert.True(t, Due(now.Add(60*time.Minute), now))
	assert.False(t, Due(now.Add(60*time.Minute+time.Second), now))
	assert.False(t, Due(now.Add(-56*time.Minute), now))
}

func TestScan_NotifiesJobsInWindow(t *testing.T) {
	m := testutil.NewMemory()
	seed(m, "in", 58*time.Minute)
	seed(m, "early", 2*time.Hour)
	seed(m, "late", 30*time.Minute)
	seed(m, "already", 57*time.Minute, func(j *domain.Job) { j.Notified = true })
	gw := &fakeGateway{}

	got, err := newScanner(m, gw).Scan(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "in", got[0].ID)
	assert.True(t, got[0].Notified)

	require.Len(t, gw.sent, 1)
	assert.Equal(t, "U-shop", gw.sent[0].to)
	assert.Equal(t, "🔔 เตือนงาน\nลูกค้า: ลูกค้า in\nประเภท: ไวนิล\nวันที่: 1 ม.ค. 2567 เวลา 09:58 น.", gw.sent[0].text)

	j, err := m.Get(context.Background(), "in")
	require.NoError(t, err)
	assert.True(t, j.Notified)
	for _, id := range []string{"early", "late"} {
		j, err := m.Get(context.Background(), id)
		require.NoError(t, err)
		assert.False(t, j.Notified, id)
	}
}

func TestScan_SecondSweepSendsNothing(t *testing.T) {
	m := testutil.NewMemory()
	seed(m, "a", 56*time.Minute)
	seed(m, "b", 59*time.Minute)
	gw := &fakeGateway{}
	s := newScanner(m, gw)

	first, err := s.Scan(context.Background(), now)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := s.Scan(context.Background(), now.Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Len(t, gw.sent, 2)
}

func TestScan_EditRearms(t *testing.T) {
	m := testutil.NewMemory()
	seed(m, "a", 58*time.Minute)
	gw := &fakeGateway{}
	s := newScanner(m, gw)
	ctx := context.Background()

	_, err := s.Scan(ctx, now)
	require.NoError(t, err)

	var p domain.JobPatch
	p.SetDueTime(now.Add(3 * time.Hour))
	require.NoError(t, m.Update(ctx, "a", p))

	later := now.Add(2*time.Hour + 3*time.Minute)
	got, err := s.Scan(ctx, later)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Len(t, gw.sent, 2)
}

func TestScan_GatewayFailureStillMarks(t *testing.T) {
	m := testutil.NewMemory()
	seed(m, "a", 58*time.Minute)
	gw := &fakeGateway{err: &notify.GatewayError{StatusCode: 500, Body: "down"}}

	got, err := newScanner(m, gw).Scan(context.Background(), now)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	j, err := m.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, j.Notified)
}

func TestScan_SoftDeletedNeverNotified(t *testing.T) {
	m := testutil.NewMemory()
	seed(m, "gone", 58*time.Minute)
	require.NoError(t, m.Update(context.Background(), "gone", domain.SoftDelete()))
	gw := &fakeGateway{}

	got, err := newScanner(m, gw).Scan(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, gw.sent)
}

func TestScan_StoreFailures(t *testing.T) {
	m := testutil.NewMemory()
	seed(m, "a", 58*time.Minute)
	m.FailNext["query"] = errors.New("connection refused")

	_, err := newScanner(m, &fakeGateway{}).Scan(context.Background(), now)
	var se *domain.StoreError
	require.True(t, errors.As(err, &se))

	m.FailNext["update"] = errors.New("timeout")
	gw := &fakeGateway{}
	got, err := newScanner(m, gw).Scan(context.Background(), now)
	require.Error(t, err)
	assert.Empty(t, got)
	assert.Len(t, gw.sent, 1)
}

func TestScan_Busy(t *testing.T) {
	m := testutil.NewMemory()
	seed(m, "a", 58*time.Minute)
	gw := &fakeGateway{}
	l := &fakeLock{held: true}
	s := newScanner(m, gw)
	s.Lock = l

	_, err := s.Scan(context.Background(), now)
	assert.True(t, errors.Is(err, ErrSweepBusy))
	assert.Empty(t, gw.sent)

	l.held = false
	got, err := s.Scan(context.Background(), now)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, l.released)
	assert.False(t, l.held)
}
