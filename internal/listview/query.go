package listview

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// AllCustomers is the customerId value that disables the customer filter.
const AllCustomers = "all"

// PageSizes are the selectable page sizes. Anything else falls back to the default.
var PageSizes = []int{10, 20, 50, 100, 200, 500, 1000}

const DefaultLimit = 10

// ViewState is the part of the dashboard carried in the URL, so a shared link
// rebuilds the same view. Edit state is never part of it.
type ViewState struct {
	CustomerID *int64
	Page       int
	Limit      int
	Search     string
}

func DefaultViewState() ViewState {
	return ViewState{Page: 1, Limit: DefaultLimit}
}

// ParseQuery reads view state from URL query values, normalizing anything invalid.
func ParseQuery(q url.Values) ViewState {
	v := DefaultViewState()

	if raw := strings.TrimSpace(q.Get("customerId")); raw != "" && raw != AllCustomers {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			v.CustomerID = &id
		}
	}
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		v.Page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil {
		v.Limit = normalizeLimit(l)
	}
	v.Search = strings.TrimSpace(q.Get("search"))
	return v
}

// Values encodes the state back into query values. Defaults are left out.
func (v ViewState) Values() url.Values {
	q := url.Values{}
	if v.CustomerID != nil {
		q.Set("customerId", strconv.FormatInt(*v.CustomerID, 10))
	}
	if v.Page > 1 {
		q.Set("page", strconv.Itoa(v.Page))
	}
	if v.Limit != DefaultLimit && v.Limit > 0 {
		q.Set("limit", strconv.Itoa(v.Limit))
	}
	if v.Search != "" {
		q.Set("search", v.Search)
	}
	return q
}

func (v ViewState) Encode() string {
	return v.Values().Encode()
}

// CustomerParam renders the customer filter as it appears in the URL.
func (v ViewState) CustomerParam() string {
	if v.CustomerID == nil {
		return AllCustomers
	}
	return strconv.FormatInt(*v.CustomerID, 10)
}

// WithCustomer changes the filter and goes back to page 1. raw "all" or "" clears it.
func (v ViewState) WithCustomer(raw string) (ViewState, error) {
	raw = strings.TrimSpace(raw)
	next := v
	next.Page = 1
	if raw == "" || raw == AllCustomers {
		next.CustomerID = nil
		return next, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return v, err
	}
	next.CustomerID = &id
	return next, nil
}

// WithLimit changes the page size and goes back to page 1.
func (v ViewState) WithLimit(limit int) ViewState {
	next := v
	next.Limit = normalizeLimit(limit)
	next.Page = 1
	return next
}

// WithSearch applies a promoted search term and goes back to page 1.
func (v ViewState) WithSearch(term string) ViewState {
	next := v
	next.Search = strings.TrimSpace(term)
	next.Page = 1
	return next
}

func (v ViewState) WithPage(page int) ViewState {
	next := v
	next.Page = max(page, 1)
	return next
}

func normalizeLimit(l int) int {
	if slices.Contains(PageSizes, l) {
		return l
	}
	return DefaultLimit
}
