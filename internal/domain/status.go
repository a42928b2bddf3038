package domain

import "strings"

// Status is the closed set of job states.
type Status int

const (
	Pending Status = iota
	InProgress
	Done
)

// Statuses lists every status in workflow order.
var Statuses = []Status{Pending, InProgress, Done}

var statusLabels = map[Status]string{
	Pending:    "รอดำเนินการ",
	InProgress: "กำลังทำ",
	Done:       "เสร็จแล้ว",
}

var statusCodes = map[Status]string{
	Pending:    "pending",
	InProgress: "in_progress",
	Done:       "done",
}

// Label is the shop-facing label. It is also the stored value.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return "unknown"
}

// Code is the machine name used in query strings and CSS.
func (s Status) Code() string {
	if c, ok := statusCodes[s]; ok {
		return c
	}
	return "unknown"
}

func (s Status) String() string { return s.Code() }

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// ParseStatus accepts either the label or the code.
func ParseStatus(v string) (Status, error) {
	v = strings.TrimSpace(v)
	for _, s := range Statuses {
		if v == statusLabels[s] || v == statusCodes[s] {
			return s, nil
		}
	}
	return 0, &UnknownStatusError{Value: v}
}
