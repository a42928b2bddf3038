package domain

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceOf(t *testing.T) {
	assert.Equal(t, 600.0, PriceOf([]Item{{Width: 2, Height: 1, Qty: 3, Rate: 100}}))
	assert.Equal(t, 0.0, PriceOf(nil))
	assert.InDelta(t, 1087.5, PriceOf([]Item{
		{Width: 2, Height: 1, Qty: 3, Rate: 100},
		{Width: 1.5, Height: 0.5, Qty: 5, Rate: 130},
	}), 1e-9)
}

func TestNewJobNormalize_PriceFollowsItems(t *testing.T) {
	n := NewJob{
		Customer: "  ร้านกาแฟ  ",
		JobType:  "ไวนิล",
		DueTime:  time.Now(),
		Price:    99,
		Items:    []Item{{Width: 2, Height: 1, Qty: 3, Rate: 100}},
	}
	n.Normalize()
	assert.Equal(t, "ร้านกาแฟ", n.Customer)
	assert.Equal(t, 600.0, n.Price)
	require.NoError(t, n.Validate())
}

func TestNewJobNormalize_ExplicitPriceWithoutItems(t *testing.T) {
	n := NewJob{Customer: "a", JobType: "b", DueTime: time.Now(), Price: 250}
	n.Normalize()
	assert.Equal(t, 250.0, n.Price)
}

func TestNewJobValidate(t *testing.T) {
	base := NewJob{Customer: "a", JobType: "b", DueTime: time.Now()}

	cases := map[string]func(*NewJob){
		"customer": func(n *NewJob) { n.Customer = "" },
		"jobtype":  func(n *NewJob) { n.JobType = "" },
		"duetime":  func(n *NewJob) { n.DueTime = time.Time{} },
		"price":    func(n *NewJob) { n.Price = -1 },
		"items":    func(n *NewJob) { n.Items = []Item{{Width: -1, Height: 1, Qty: 1, Rate: 1}} },
	}
	for field, mutate := range cases {
		n := base
		mutate(&n)
		err := n.Validate()
		var ve *ValidationError
		require.True(t, errors.As(err, &ve), field)
		assert.Equal(t, field, ve.Field)
	}
}

func TestPatchSetDueTime_ResetsNotified(t *testing.T) {
	j := Job{ID: "1", Notified: true, DueTime: time.Unix(0, 0)}
	var p JobPatch
	due := time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC)
	p.SetDueTime(due)

	got := j.Apply(p)
	assert.False(t, got.Notified)
	assert.Equal(t, due, got.DueTime)
}

func TestPatchSetItems_DerivesPrice(t *testing.T) {
	var p JobPatch
	p.SetItems([]Item{{Width: 2, Height: 1, Qty: 3, Rate: 100}})
	require.NotNil(t, p.Price)
	assert.Equal(t, 600.0, *p.Price)

	got := Job{Price: 1}.Apply(p)
	assert.Equal(t, 600.0, got.Price)
	assert.Len(t, got.Items, 1)
}

func TestSoftDelete(t *testing.T) {
	got := Job{}.Apply(SoftDelete())
	assert.True(t, got.IsDeleted)
	assert.True(t, got.Notified)
}

func TestRearmRequiresLiveJob(t *testing.T) {
	var p JobPatch
	p.SetDueTime(time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC))
	assert.True(t, p.Live)

	var mark JobPatch
	mark.SetNotified(true)
	assert.False(t, mark.Live)
	assert.False(t, SoftDelete().Live)
}

func TestPatchEmptyAndValidate(t *testing.T) {
	assert.True(t, JobPatch{}.Empty())

	blank := "  "
	assert.Error(t, JobPatch{Customer: &blank}.Validate())

	var p JobPatch
	p.SetStatus(Done)
	assert.False(t, p.Empty())
	assert.NoError(t, p.Validate())
}

func TestStatusMapping(t *testing.T) {
	for _, s := range Statuses {
		byLabel, err := ParseStatus(s.Label())
		require.NoError(t, err)
		assert.Equal(t, s, byLabel)

		byCode, err := ParseStatus(s.Code())
		require.NoError(t, err)
		assert.Equal(t, s, byCode)
	}
	assert.Equal(t, "รอดำเนินการ", Pending.Label())
	assert.Equal(t, "in_progress", InProgress.Code())

	_, err := ParseStatus("เสร็จ")
	assert.True(t, errors.Is(err, ErrUnknownStatus))
	assert.False(t, Status(7).Valid())
}
