package export

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultPerPage is the upstream page size when the caller does not
	// pick one.
	DefaultPerPage = 200

	// MaxPerPage caps the upstream page size.
	MaxPerPage = 1000

	dateOnlyLayout = "2006-01-02"
)

// Query is the caller-supplied filter driving one export. Immutable for the
// duration of the request.
type Query struct {
	// From/To bound ordered_at; zero values mean unbounded.
	From time.Time
	To   time.Time

	// FromRaw/ToRaw are the original parameter strings, forwarded
	// upstream unchanged.
	FromRaw string
	ToRaw   string

	PerPage int

	// Filters are arbitrary pass-through parameters forwarded to the
	// upstream listing.
	Filters url.Values
}

// reserved parameters are consumed here rather than passed through.
var reservedParams = map[string]bool{
	"ordered_at_from": true,
	"ordered_at_to":   true,
	"per_page":        true,
}

// ParseQuery builds a Query from request parameters.
//
// ordered_at_from / ordered_at_to accept either YYYY-MM-DD, expanded to the
// UTC start respectively end of that day, or a full RFC 3339 timestamp
// passed through as-is. per_page is clamped to [1, MaxPerPage] with
// DefaultPerPage as the default.
func ParseQuery(values url.Values) (Query, error) {
	q := Query{
		PerPage: DefaultPerPage,
		Filters: url.Values{},
	}

	if raw := values.Get("ordered_at_from"); raw != "" {
		t, err := parseBound(raw, false)
		if err != nil {
			return Query{}, fmt.Errorf("ordered_at_from: %w", err)
		}
		q.From = t
		q.FromRaw = raw
	}

	if raw := values.Get("ordered_at_to"); raw != "" {
		t, err := parseBound(raw, true)
		if err != nil {
			return Query{}, fmt.Errorf("ordered_at_to: %w", err)
		}
		q.To = t
		q.ToRaw = raw
	}

	if raw := values.Get("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Query{}, fmt.Errorf("per_page: invalid number %q", raw)
		}
		q.PerPage = clamp(n, 1, MaxPerPage)
	}

	for key, vals := range values {
		if reservedParams[key] {
			continue
		}
		for _, v := range vals {
			q.Filters.Add(key, v)
		}
	}

	return q, nil
}

// parseBound parses one date-range bound. A bare date expands to the UTC
// day start, or day end for the upper bound.
func parseBound(raw string, upper bool) (time.Time, error) {
	if t, err := time.Parse(dateOnlyLayout, raw); err == nil {
		t = t.UTC()
		if upper {
			return t.Add(24*time.Hour - time.Nanosecond), nil
		}
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD or RFC 3339", raw)
}

// InRange applies the date safety filter to one order's ordered_at value.
// The upstream API receives the range as request parameters too, but its
// filtering is not trusted to be exact, so every record is re-checked here.
// Records whose timestamp cannot be parsed are excluded whenever a bound is
// set.
func (q Query) InRange(orderedAt string) bool {
	if q.From.IsZero() && q.To.IsZero() {
		return true
	}

	t, ok := parseOrderedAt(orderedAt)
	if !ok {
		return false
	}
	if !q.From.IsZero() && t.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && t.After(q.To) {
		return false
	}
	return true
}

var orderedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	dateOnlyLayout,
}

func parseOrderedAt(raw string) (time.Time, bool) {
	for _, layout := range orderedAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// upstreamParams builds the listing parameters for one page fetch. Cursor
// pagination switches to cursor/limit; everything else uses page/per_page.
func (q Query) upstreamParams(page int, cursor string) url.Values {
	params := url.Values{}
	for key, vals := range q.Filters {
		for _, v := range vals {
			params.Add(key, v)
		}
	}
	if q.FromRaw != "" {
		params.Set("ordered_at_from", q.FromRaw)
	}
	if q.ToRaw != "" {
		params.Set("ordered_at_to", q.ToRaw)
	}

	if cursor != "" {
		params.Set("cursor", cursor)
		params.Set("limit", strconv.Itoa(q.PerPage))
	} else {
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return params
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
