package pager

// PageNavigator drives Previous/Next controls over a growing sequence.
// Pages are windows of PageSize items; moving past the loaded end asks the
// caller to fetch and completes once Settle sees the new items.
type PageNavigator struct {
	pageSize int
	page     int
	pending  bool
}

// NewPageNavigator creates a navigator showing pageSize items per page
func NewPageNavigator(pageSize int) *PageNavigator {
	if pageSize <= 0 {
		pageSize = 1
	}
	return &PageNavigator{pageSize: pageSize}
}

// Page returns the zero-based current page
func (n *PageNavigator) Page() int {
	return n.page
}

// Pending reports whether a Next is waiting on a fetch
func (n *PageNavigator) Pending() bool {
	return n.pending
}

// Window returns the [start, end) slice bounds of the current page
func (n *PageNavigator) Window(loaded int) (int, int) {
	start := n.page * n.pageSize
	if start > loaded {
		start = loaded
	}
	end := start + n.pageSize
	if end > loaded {
		end = loaded
	}
	return start, end
}

// HasPrev reports whether Previous is enabled
func (n *PageNavigator) HasPrev() bool {
	return n.page > 0
}

// HasNext reports whether Next is enabled
func (n *PageNavigator) HasNext(loaded int, s Status) bool {
	if n.pending {
		return false
	}
	if (n.page+1)*n.pageSize < loaded {
		return true
	}
	return s.CanLoadMore()
}

// Prev moves back one page
func (n *PageNavigator) Prev() bool {
	if !n.HasPrev() {
		return false
	}
	n.page--
	n.pending = false
	return true
}

// Next moves forward one page. It returns fetch=true when the next page is
// not loaded yet; the move then happens in Settle.
func (n *PageNavigator) Next(loaded int, s Status) (moved, fetch bool) {
	if !n.HasNext(loaded, s) {
		return false, false
	}
	if (n.page+1)*n.pageSize < loaded {
		n.page++
		return true, false
	}
	n.pending = true
	return false, true
}

// Settle finishes a pending Next after a fetch completed (or failed).
// It returns true when the page changed.
func (n *PageNavigator) Settle(loaded int) bool {
	if !n.pending {
		return false
	}
	n.pending = false
	if (n.page+1)*n.pageSize < loaded {
		n.page++
		return true
	}
	return false
}

// Reset returns to the first page
func (n *PageNavigator) Reset() {
	n.page = 0
	n.pending = false
}
