package domain

import (
	"strings"
	"time"
)

// JobTypes are the presets offered on the create form. Job type is free text,
// so anything else is accepted too.
var JobTypes = []string{
	"ไวนิล",
	"กล่องไฟ",
	"ตัวอักษร",
	"สแตนดี้",
	"สติ๊กเกอร์",
	"ติดตั้ง",
	"ฟิวเจอร์บอร์ด",
	"ตรายาง",
}

// Item is one priced line of a job, e.g. a vinyl banner of width x height metres.
type Item struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Qty    float64 `json:"qty"`
	Rate   float64 `json:"rate"`
}

// Total is width*height*qty*rate.
func (it Item) Total() float64 {
	return it.Width * it.Height * it.Qty * it.Rate
}

// PriceOf sums the item totals.
func PriceOf(items []Item) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Total()
	}
	return sum
}

type Job struct {
	ID        string
	Customer  string
	JobType   string
	Note      string
	DueTime   time.Time
	Price     float64
	Items     []Item
	Status    Status
	Notified  bool
	IsDeleted bool
	CreatedAt time.Time
}

// NewJob holds the fields a caller supplies on creation. The store assigns the
// id and created_at; status starts at Pending and both flags start false.
type NewJob struct {
	Customer string
	JobType  string
	Note     string
	DueTime  time.Time
	Price    float64
	Items    []Item
}

// Normalize trims text fields and derives price from items.
func (n *NewJob) Normalize() {
	n.Customer = strings.TrimSpace(n.Customer)
	n.JobType = strings.TrimSpace(n.JobType)
	n.Note = strings.TrimSpace(n.Note)
	if len(n.Items) > 0 {
		n.Price = PriceOf(n.Items)
	}
}

// Validate checks the invariants of a job about to be inserted.
func (n NewJob) Validate() error {
	if n.Customer == "" {
		return &ValidationError{Field: "customer", Message: "กรุณากรอกชื่อลูกค้า"}
	}
	if n.JobType == "" {
		return &ValidationError{Field: "jobtype", Message: "กรุณาเลือกประเภทงาน"}
	}
	if n.DueTime.IsZero() {
		return &ValidationError{Field: "duetime", Message: "กรุณาระบุวันเวลาส่งงาน"}
	}
	if err := validateItems(n.Items); err != nil {
		return err
	}
	if n.Price < 0 {
		return &ValidationError{Field: "price", Message: "ราคาต้องไม่ติดลบ"}
	}
	return nil
}

func validateItems(items []Item) error {
	for _, it := range items {
		if it.Width < 0 || it.Height < 0 || it.Qty < 0 || it.Rate < 0 {
			return &ValidationError{Field: "items", Message: "รายการต้องไม่มีค่าติดลบ"}
		}
	}
	return nil
}

// JobPatch is a partial update. Nil fields are left unchanged.
// Use the setters so the derived fields stay consistent.
type JobPatch struct {
	Customer  *string
	JobType   *string
	Note      *string
	DueTime   *time.Time
	Price     *float64
	Items     *[]Item
	Status    *Status
	Notified  *bool
	IsDeleted *bool

	// Live limits the update to jobs that are not soft-deleted. A deleted
	// job misses it and the store reports ErrNotFound.
	Live bool
}

// SetDueTime changes the due instant and re-arms the reminder.
func (p *JobPatch) SetDueTime(t time.Time) {
	p.DueTime = &t
	p.SetNotified(false)
}

// SetItems replaces the items and sets price to their sum.
func (p *JobPatch) SetItems(items []Item) {
	price := PriceOf(items)
	p.Items = &items
	p.Price = &price
}

func (p *JobPatch) SetStatus(s Status) { p.Status = &s }

// SetNotified sets the reminder flag. Clearing it re-arms the reminder, which
// is only allowed on live jobs.
func (p *JobPatch) SetNotified(v bool) {
	p.Notified = &v
	if !v {
		p.Live = true
	}
}

// Empty reports whether the patch changes nothing.
func (p JobPatch) Empty() bool {
	return p.Customer == nil && p.JobType == nil && p.Note == nil && p.DueTime == nil &&
		p.Price == nil && p.Items == nil && p.Status == nil && p.Notified == nil && p.IsDeleted == nil
}

// Validate rejects patches that would break job invariants.
func (p JobPatch) Validate() error {
	if p.Customer != nil && strings.TrimSpace(*p.Customer) == "" {
		return &ValidationError{Field: "customer", Message: "กรุณากรอกชื่อลูกค้า"}
	}
	if p.JobType != nil && strings.TrimSpace(*p.JobType) == "" {
		return &ValidationError{Field: "jobtype", Message: "กรุณาเลือกประเภทงาน"}
	}
	if p.Items != nil {
		if err := validateItems(*p.Items); err != nil {
			return err
		}
	}
	if p.Price != nil && *p.Price < 0 {
		return &ValidationError{Field: "price", Message: "ราคาต้องไม่ติดลบ"}
	}
	return nil
}

// SoftDelete hides a job from active views and suppresses any pending reminder.
func SoftDelete() JobPatch {
	deleted, notified := true, true
	return JobPatch{IsDeleted: &deleted, Notified: &notified}
}

// Apply returns j with p applied. Stores that keep jobs in memory use it;
// the SQL store applies the same fields column by column.
func (j Job) Apply(p JobPatch) Job {
	if p.Customer != nil {
		j.Customer = strings.TrimSpace(*p.Customer)
	}
	if p.JobType != nil {
		j.JobType = strings.TrimSpace(*p.JobType)
	}
	if p.Note != nil {
		j.Note = strings.TrimSpace(*p.Note)
	}
	if p.DueTime != nil {
		j.DueTime = *p.DueTime
	}
	if p.Items != nil {
		j.Items = append([]Item(nil), (*p.Items)...)
	}
	if p.Price != nil {
		j.Price = *p.Price
	}
	if p.Status != nil {
		j.Status = *p.Status
	}
	if p.Notified != nil {
		j.Notified = *p.Notified
	}
	if p.IsDeleted != nil {
		j.IsDeleted = *p.IsDeleted
	}
	return j
}
