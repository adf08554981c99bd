package recommendation

import (
	"bytes"
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ItemSet is the set of distinct book IDs a user has purchased
type ItemSet map[uuid.UUID]struct{}

// NewItemSet builds a set from ids, dropping duplicates
func NewItemSet(ids ...uuid.UUID) ItemSet {
	s := make(ItemSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s ItemSet) Add(id uuid.UUID) {
	s[id] = struct{}{}
}

func (s ItemSet) Contains(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

func (s ItemSet) Len() int {
	return len(s)
}

// IntersectionSize counts ids present in both sets
func (s ItemSet) IntersectionSize(other ItemSet) int {
	small, large := s, other
	if large.Len() < small.Len() {
		small, large = large, small
	}

	n := 0
	for id := range small {
		if large.Contains(id) {
			n++
		}
	}
	return n
}

// Difference returns the ids in s that are not in other
func (s ItemSet) Difference(other ItemSet) ItemSet {
	out := make(ItemSet)
	for id := range s {
		if !other.Contains(id) {
			out.Add(id)
		}
	}
	return out
}

// IDs returns the members in byte order so store queries are stable
func (s ItemSet) IDs() []uuid.UUID {
	ids := lo.Keys(map[uuid.UUID]struct{}(s))
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	return ids
}

// Jaccard returns |A ∩ B| / |A ∪ B|, or 0 when both sets are empty.
// The union is derived from the same integer counts for either argument order,
// so Jaccard(a, b) == Jaccard(b, a) exactly.
func Jaccard(a, b ItemSet) float64 {
	intersection := a.IntersectionSize(b)
	union := a.Len() + b.Len() - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}
