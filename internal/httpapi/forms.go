package httpapi

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/SirClappington/signjobs/internal/domain"
)

// jobForm is the shared shape of the create and edit forms. The create form
// posts jobType and dueTime, the edit form jobtype and duetime.
type jobForm struct {
	Customer string
	JobType  string
	Note     string
	DueTime  string
	Price    float64
	Items    []domain.Item
}

func parseJobForm(r *http.Request) (jobForm, error) {
	if err := r.ParseForm(); err != nil {
		return jobForm{}, &domain.ValidationError{Field: "form", Message: "ข้อมูลไม่ถูกต้อง"}
	}
	f := jobForm{
		Customer: r.PostForm.Get("customer"),
		JobType:  firstOf(r, "jobType", "jobtype"),
		Note:     r.PostForm.Get("note"),
		DueTime:  firstOf(r, "dueTime", "duetime"),
	}
	price, err := parseNumber(r.PostForm.Get("price"), "price")
	if err != nil {
		return jobForm{}, err
	}
	f.Price = price
	if f.Items, err = parseItems(r); err != nil {
		return jobForm{}, err
	}
	return f, nil
}

func firstOf(r *http.Request, keys ...string) string {
	for _, k := range keys {
		if v := r.PostForm.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// parseItems reads the parallel item_* columns. Rows left entirely blank are skipped.
func parseItems(r *http.Request) ([]domain.Item, error) {
	cols := [4][]string{
		r.PostForm["item_width"],
		r.PostForm["item_height"],
		r.PostForm["item_qty"],
		r.PostForm["item_rate"],
	}
	rows := 0
	for _, c := range cols {
		rows = max(rows, len(c))
	}

	var items []domain.Item
	for i := 0; i < rows; i++ {
		var vals [4]float64
		blank := true
		for c := range cols {
			raw := ""
			if i < len(cols[c]) {
				raw = strings.TrimSpace(cols[c][i])
			}
			if raw == "" {
				continue
			}
			blank = false
			v, err := parseNumber(raw, "items")
			if err != nil {
				return nil, err
			}
			vals[c] = v
		}
		if blank {
			continue
		}
		items = append(items, domain.Item{Width: vals[0], Height: vals[1], Qty: vals[2], Rate: vals[3]})
	}
	return items, nil
}

func parseNumber(raw, field string) (float64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &domain.ValidationError{Field: field, Message: "ตัวเลขไม่ถูกต้อง"}
	}
	if v < 0 {
		return 0, &domain.ValidationError{Field: field, Message: "ตัวเลขต้องไม่ติดลบ"}
	}
	return v, nil
}

// itemRows pads items with blank rows for the form.
func itemRows(items []domain.Item, blank int) []domain.Item {
	out := make([]domain.Item, 0, len(items)+blank)
	out = append(out, items...)
	for i := 0; i < blank; i++ {
		out = append(out, domain.Item{})
	}
	return out
}
