package resolver

import (
	"sort"
	"time"
)

// Limits caps how many items of each bucket are shown on a compact view.
// Zero or negative means unlimited.
type Limits struct {
	OnGoing   int
	Submitted int
	Graded    int
}

// DefaultLimits mirrors the student dashboard cards.
func DefaultLimits() Limits {
	return Limits{OnGoing: 3, Submitted: 3, Graded: 2}
}

// Board groups resolved assignments by bucket, each bucket already sorted.
type Board struct {
	OnGoing   []ResolvedAssignment
	Submitted []ResolvedAssignment
	Graded    []ResolvedAssignment
}

// Bucket returns the list for status.
func (b Board) Bucket(status Status) []ResolvedAssignment {
	switch status {
	case StatusOnGoing:
		return b.OnGoing
	case StatusSubmitted:
		return b.Submitted
	case StatusGraded:
		return b.Graded
	default:
		return nil
	}
}

// Filter returns a new slice with the items in status, preserving order.
func Filter(items []ResolvedAssignment, status Status) []ResolvedAssignment {
	filtered := make([]ResolvedAssignment, 0, len(items))
	for _, item := range items {
		if item.Status == status {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// SortByDeadline orders items ascending by deadline, missing deadlines last. Stable.
func SortByDeadline(items []ResolvedAssignment) {
	sort.SliceStable(items, func(i, j int) bool {
		return earlierNullsLast(items[i].Definition.Deadline, items[j].Definition.Deadline)
	})
}

// SortByRecency orders items descending by submission instant, missing instants last. Stable.
func SortByRecency(items []ResolvedAssignment) {
	sort.SliceStable(items, func(i, j int) bool {
		return laterNullsLast(items[i].SubmittedAt(), items[j].SubmittedAt())
	})
}

// Top returns a copy of at most n leading items. n <= 0 copies everything.
func Top(items []ResolvedAssignment, n int) []ResolvedAssignment {
	if n <= 0 || n > len(items) {
		n = len(items)
	}
	out := make([]ResolvedAssignment, n)
	copy(out, items[:n])
	return out
}

// Assemble splits items into sorted buckets and returns the full board alongside
// a truncated copy for compact views. items is not modified.
func Assemble(items []ResolvedAssignment, limits Limits) (Board, Board) {
	full := Board{
		OnGoing:   Filter(items, StatusOnGoing),
		Submitted: Filter(items, StatusSubmitted),
		Graded:    Filter(items, StatusGraded),
	}
	SortByDeadline(full.OnGoing)
	SortByRecency(full.Submitted)
	SortByRecency(full.Graded)

	display := Board{
		OnGoing:   Top(full.OnGoing, limits.OnGoing),
		Submitted: Top(full.Submitted, limits.Submitted),
		Graded:    Top(full.Graded, limits.Graded),
	}

	return full, display
}

func earlierNullsLast(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}

func laterNullsLast(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}
