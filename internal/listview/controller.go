package listview

// Controller keeps the query of one list screen between interactions. It is
// for stateful callers that hold a single user's screen across events, such
// as a terminal client. Stateless handlers receive the whole Query with each
// request and call Spec.Derive directly.
type Controller[T any] struct {
	spec  *Spec[T]
	query Query
}

// NewController starts on page 1 with the default sort and page size of spec.
func NewController[T any](spec *Spec[T]) *Controller[T] {
	return &Controller[T]{
		spec: spec,
		query: Query{
			Filters:  map[string]string{},
			SortKey:  spec.DefaultSort,
			SortDir:  spec.DefaultDir,
			Page:     1,
			PageSize: spec.DefaultPageSize,
		},
	}
}

// Query returns a copy of the current state.
func (c *Controller[T]) Query() Query {
	q := c.query
	q.Filters = make(map[string]string, len(c.query.Filters))
	for k, v := range c.query.Filters {
		q.Filters[k] = v
	}
	return q
}

// SetSearch changes the search text and returns to the first page.
func (c *Controller[T]) SetSearch(text string) {
	c.query.Search = text
	c.query.Page = 1
}

// SetFilter changes one filter and returns to the first page.
func (c *Controller[T]) SetFilter(key, value string) {
	c.query.Filters[key] = value
	c.query.Page = 1
}

// SortBy activates a column. Selecting the ascending active column again
// flips it to descending; anything else sorts ascending.
func (c *Controller[T]) SortBy(key string) {
	dir := Asc
	if c.query.SortKey == key && c.query.SortDir == Asc {
		dir = Desc
	}
	c.query.SortKey = key
	c.query.SortDir = dir
}

// SetPageSize switches between the supported page sizes.
func (c *Controller[T]) SetPageSize(n int) bool {
	if !ValidPageSize(n) {
		return false
	}
	c.query.PageSize = n
	c.query.Page = 1
	return true
}

// GoToPage moves to page if it exists for items; otherwise the page is unchanged.
func (c *Controller[T]) GoToPage(items []T, page int) bool {
	view := c.spec.Derive(items, c.query)
	if page < 1 || page > view.TotalPages {
		return false
	}
	c.query.Page = page
	return true
}

// View derives the visible page for items.
func (c *Controller[T]) View(items []T) View[T] {
	return c.spec.Derive(items, c.query)
}
