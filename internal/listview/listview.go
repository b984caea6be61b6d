// Package listview derives the visible page of a list from its items, search query, filters and sort.
// A Controller is not safe for concurrent use; the TUI and each web request own their own.
package listview

import (
	"sort"
	"strings"
)

// MaxPageButtons is the number of numbered page buttons shown before ellipses kick in
const MaxPageButtons = 5

// Filter narrows items by a named value. The empty value means the filter is off.
type Filter[T any] struct {
	Name   string
	Values []string // cycle order; include "" for "all"
	Match  func(item T, value string) bool
}

// Sort orders items. Less must be a strict ordering; ties keep source order.
type Sort[T any] struct {
	Key  string
	Less func(a, b T) bool
}

// Options configures a Controller
type Options[T any] struct {
	PageSize int
	Search   func(item T) []string
	Filters  []Filter[T]
	Sorts    []Sort[T]
}

// Controller holds list state and derives what is on screen
type Controller[T any] struct {
	opts    Options[T]
	items   []T
	query   string
	filters map[string]string
	sortKey string
	page    int
	gen     uint64
}

// New creates a controller on page 1 using the first sort, if any
func New[T any](opts Options[T]) *Controller[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	c := &Controller[T]{
		opts:    opts,
		filters: make(map[string]string),
		page:    1,
	}
	if len(opts.Sorts) > 0 {
		c.sortKey = opts.Sorts[0].Key
	}
	return c
}

// PageSize returns the configured page size
func (c *Controller[T]) PageSize() int { return c.opts.PageSize }

// Items returns all loaded items in source order
func (c *Controller[T]) Items() []T { return c.items }

// Len returns the number of loaded items
func (c *Controller[T]) Len() int { return len(c.items) }

// Query returns the search query
func (c *Controller[T]) Query() string { return c.query }

// SetSearch sets the search query and returns to page 1
func (c *Controller[T]) SetSearch(q string) {
	c.query = q
	c.page = 1
}

// Filter returns the active value of a filter, "" when off
func (c *Controller[T]) Filter(name string) string { return c.filters[name] }

// SetFilter sets a filter value and returns to page 1. Unknown filters are ignored.
func (c *Controller[T]) SetFilter(name, value string) {
	if c.filterByName(name) == nil {
		return
	}
	if value == "" {
		delete(c.filters, name)
	} else {
		c.filters[name] = value
	}
	c.page = 1
}

// CycleFilter advances a filter to its next value and returns it
func (c *Controller[T]) CycleFilter(name string) string {
	f := c.filterByName(name)
	if f == nil || len(f.Values) == 0 {
		return ""
	}
	next := f.Values[0]
	cur := c.filters[name]
	for i, v := range f.Values {
		if v == cur {
			next = f.Values[(i+1)%len(f.Values)]
			break
		}
	}
	c.SetFilter(name, next)
	return next
}

// ClearFilters turns every filter off and clears the search
func (c *Controller[T]) ClearFilters() {
	c.filters = make(map[string]string)
	c.query = ""
	c.page = 1
}

// Filters returns the configured filters
func (c *Controller[T]) Filters() []Filter[T] { return c.opts.Filters }

// SortKey returns the active sort
func (c *Controller[T]) SortKey() string { return c.sortKey }

// SetSort switches the sort and returns to page 1. It reports false for an unknown key.
func (c *Controller[T]) SetSort(key string) bool {
	if c.sortByKey(key) == nil {
		return false
	}
	c.sortKey = key
	c.page = 1
	return true
}

// CycleSort advances to the next configured sort and returns its key
func (c *Controller[T]) CycleSort() string {
	sorts := c.opts.Sorts
	if len(sorts) == 0 {
		return ""
	}
	for i, s := range sorts {
		if s.Key == c.sortKey {
			c.SetSort(sorts[(i+1)%len(sorts)].Key)
			return c.sortKey
		}
	}
	c.SetSort(sorts[0].Key)
	return c.sortKey
}

func (c *Controller[T]) filterByName(name string) *Filter[T] {
	for i := range c.opts.Filters {
		if c.opts.Filters[i].Name == name {
			return &c.opts.Filters[i]
		}
	}
	return nil
}

func (c *Controller[T]) sortByKey(key string) *Sort[T] {
	for i := range c.opts.Sorts {
		if c.opts.Sorts[i].Key == key {
			return &c.opts.Sorts[i]
		}
	}
	return nil
}

// Filtered returns search, filter and sort applied to the items, before pagination
func (c *Controller[T]) Filtered() []T {
	q := strings.ToLower(strings.TrimSpace(c.query))
	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if q != "" && !c.matchesSearch(item, q) {
			continue
		}
		if !c.matchesFilters(item) {
			continue
		}
		out = append(out, item)
	}

	if s := c.sortByKey(c.sortKey); s != nil {
		sort.SliceStable(out, func(i, j int) bool { return s.Less(out[i], out[j]) })
	}
	return out
}

func (c *Controller[T]) matchesSearch(item T, q string) bool {
	if c.opts.Search == nil {
		return true
	}
	for _, field := range c.opts.Search(item) {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (c *Controller[T]) matchesFilters(item T) bool {
	for _, f := range c.opts.Filters {
		if v := c.filters[f.Name]; v != "" && !f.Match(item, v) {
			return false
		}
	}
	return true
}

// Total returns the number of items after search and filters
func (c *Controller[T]) Total() int {
	return len(c.Filtered())
}

// Visible returns the items on the current page
func (c *Controller[T]) Visible() []T {
	filtered := c.Filtered()
	start := (c.page - 1) * c.opts.PageSize
	if start >= len(filtered) {
		return nil
	}
	end := min(start+c.opts.PageSize, len(filtered))
	return filtered[start:end]
}

// TotalPages is never less than 1
func (c *Controller[T]) TotalPages() int {
	return totalPages(c.Total(), c.opts.PageSize)
}

func totalPages(n, size int) int {
	return max(1, (n+size-1)/size)
}

// Page returns the 1-based current page
func (c *Controller[T]) Page() int { return c.page }

// SetPage moves to page n, clamped to [1, TotalPages]
func (c *Controller[T]) SetPage(n int) {
	c.page = min(max(n, 1), c.TotalPages())
}

// NextPage moves forward one page if possible
func (c *Controller[T]) NextPage() { c.SetPage(c.page + 1) }

// PrevPage moves back one page if possible
func (c *Controller[T]) PrevPage() { c.SetPage(c.page - 1) }

// FirstPage moves to page 1
func (c *Controller[T]) FirstPage() { c.SetPage(1) }

// LastPage moves to the last page
func (c *Controller[T]) LastPage() { c.SetPage(c.TotalPages()) }

// PageItem is one pagination control: a page number or an ellipsis
type PageItem struct {
	Number   int
	Ellipsis bool
	Current  bool
}

// PageNumbers returns the numbered buttons to show. With more than MaxPageButtons pages it keeps the
// first and last page plus a window around the current one, with ellipses for the gaps.
func (c *Controller[T]) PageNumbers() []PageItem {
	return pageNumbers(c.page, c.TotalPages())
}

func pageNumbers(cur, total int) []PageItem {
	item := func(n int) PageItem { return PageItem{Number: n, Current: n == cur} }

	if total <= MaxPageButtons {
		out := make([]PageItem, 0, total)
		for n := 1; n <= total; n++ {
			out = append(out, item(n))
		}
		return out
	}

	out := []PageItem{item(1)}
	if cur > 3 {
		out = append(out, PageItem{Ellipsis: true})
	}
	for n := max(2, cur-1); n <= min(total-1, cur+1); n++ {
		out = append(out, item(n))
	}
	if cur < total-2 {
		out = append(out, PageItem{Ellipsis: true})
	}
	return append(out, item(total))
}

// Nav reports which navigation controls are enabled
type Nav struct {
	First, Prev, Next, Last bool
}

// Nav returns the enabled state of first/prev/next/last
func (c *Controller[T]) Nav() Nav {
	total := c.TotalPages()
	back := c.page > 1 && total > 1
	fwd := c.page < total && total > 1
	return Nav{First: back, Prev: back, Next: fwd, Last: fwd}
}

// Range returns the 1-based positions of the first and last visible item and the filtered total.
// An empty list yields 0, 0, 0.
func (c *Controller[T]) Range() (start, end, total int) {
	total = c.Total()
	if total == 0 {
		return 0, 0, 0
	}
	start = (c.page-1)*c.opts.PageSize + 1
	end = min(c.page*c.opts.PageSize, total)
	return start, end, total
}

// BeginLoad starts a fetch and returns its generation. Only the latest generation may Replace items.
func (c *Controller[T]) BeginLoad() uint64 {
	c.gen++
	return c.gen
}

// Generation returns the latest generation handed out by BeginLoad
func (c *Controller[T]) Generation() uint64 { return c.gen }

// Replace swaps in freshly fetched items. A response from a superseded load is dropped and
// Replace returns false.
func (c *Controller[T]) Replace(gen uint64, items []T) bool {
	if gen != c.gen {
		return false
	}
	c.items = items
	c.settle()
	return true
}

// Update applies fn to every item matching match and returns how many changed
func (c *Controller[T]) Update(match func(T) bool, fn func(*T)) int {
	n := 0
	for i := range c.items {
		if match(c.items[i]) {
			fn(&c.items[i])
			n++
		}
	}
	if n > 0 {
		c.settle()
	}
	return n
}

// Remove deletes every item matching match and returns how many were removed
func (c *Controller[T]) Remove(match func(T) bool) int {
	kept := c.items[:0:0]
	for _, item := range c.items {
		if !match(item) {
			kept = append(kept, item)
		}
	}
	n := len(c.items) - len(kept)
	if n > 0 {
		c.items = kept
		c.settle()
	}
	return n
}

// Prepend adds a newly created item at the front
func (c *Controller[T]) Prepend(item T) {
	c.items = append([]T{item}, c.items...)
	c.settle()
}

// settle steps back a page when a mutation emptied the current one
func (c *Controller[T]) settle() {
	total := c.TotalPages()
	if c.page > total && c.page > 1 {
		c.page--
	}
	if c.page > total {
		c.page = total
	}
}
