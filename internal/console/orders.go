package console

import (
	"net/url"
	"sort"
	"strings"

	"github.com/spec-kit/admin-console/internal/domain"
)

// Order list sort keys.
const (
	SortNone = ""
	SortByID = "id"
	SortDate = "date"
)

// OrderQuery is the filter and sort state of the order list.
type OrderQuery struct {
	// DateContains matches against the date rendered as M/D/YYYY.
	DateContains string
	// State matches the order state case-insensitively; empty matches all.
	State   string
	SortKey string
	Desc    bool
}

// ParseOrderQuery reads date, state, sort and dir query parameters.
func ParseOrderQuery(values url.Values) OrderQuery {
	q := OrderQuery{
		DateContains: strings.TrimSpace(values.Get("date")),
		State:        strings.TrimSpace(values.Get("state")),
	}
	switch key := strings.ToLower(values.Get("sort")); key {
	case SortByID, SortDate:
		q.SortKey = key
	}
	q.Desc = strings.EqualFold(values.Get("dir"), "desc")
	return q
}

// Toggle selects key as the sort column. Selecting the current ascending
// column flips it to descending; anything else sorts ascending.
func (q *OrderQuery) Toggle(key string) {
	if q.SortKey == key && !q.Desc {
		q.Desc = true
		return
	}
	q.SortKey = key
	q.Desc = false
}

// Apply filters and sorts a copy of orders.
func (q OrderQuery) Apply(orders []domain.Order) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if q.DateContains != "" && !strings.Contains(o.Date.DisplayDate(), q.DateContains) {
			continue
		}
		if q.State != "" && !strings.EqualFold(string(o.State), q.State) {
			continue
		}
		out = append(out, o)
	}

	var less func(a, b domain.Order) bool
	switch q.SortKey {
	case SortByID:
		less = func(a, b domain.Order) bool { return a.ID < b.ID }
	case SortDate:
		less = func(a, b domain.Order) bool { return a.Date.Before(b.Date.Time) }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// FilterUsersByID keeps users whose id contains needle.
func FilterUsersByID(users []domain.User, needle string) []domain.User {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return users
	}
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if strings.Contains(itoa(u.ID), needle) {
			out = append(out, u)
		}
	}
	return out
}
