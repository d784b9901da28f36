package export

import "orderbridge/internal/lyra"

// Strategy tags how a response's pagination signals were interpreted. The
// upstream API's pagination shape is not stable across endpoints, so the
// strategy is resolved per response rather than fixed per export.
type Strategy int

const (
	// StrategyCursor: the response carried a cursor token to echo back.
	StrategyCursor Strategy = iota

	// StrategyNextLink: the response carried an explicit next-page flag.
	StrategyNextLink

	// StrategyTotalPages: the response declared a total page count.
	StrategyTotalPages

	// StrategyPageLength: no usable metadata; a page shorter than the
	// requested size means end of data.
	StrategyPageLength
)

func (s Strategy) String() string {
	switch s {
	case StrategyCursor:
		return "cursor"
	case StrategyNextLink:
		return "next-link"
	case StrategyTotalPages:
		return "total-pages"
	case StrategyPageLength:
		return "page-length"
	default:
		return "unknown"
	}
}

// Advance is the resolved decision for one fetched page: whether more data
// is expected and what state carries into the next request.
type Advance struct {
	Strategy Strategy
	More     bool

	// Cursor is set under StrategyCursor and replaces page numbering.
	Cursor string

	// NextPage is the page number for the next request under the
	// numbered strategies.
	NextPage int
}

// Resolve interprets one response's pagination signals, in priority order:
// cursor token, next-link flag, total page count, then the short-page
// heuristic.
func Resolve(page *lyra.OrdersPage, currentPage, requested int) Advance {
	if token := page.Meta.CursorToken(); token != "" {
		return Advance{Strategy: StrategyCursor, More: true, Cursor: token}
	}

	if page.Meta.Next != nil {
		return Advance{
			Strategy: StrategyNextLink,
			More:     *page.Meta.Next,
			NextPage: currentPage + 1,
		}
	}

	if total := page.Meta.PageCount(); total > 0 {
		current := page.Meta.CurrentPage
		if current <= 0 {
			current = currentPage
		}
		return Advance{
			Strategy: StrategyTotalPages,
			More:     current < total,
			NextPage: current + 1,
		}
	}

	return Advance{
		Strategy: StrategyPageLength,
		More:     len(page.Orders) >= requested,
		NextPage: currentPage + 1,
	}
}
