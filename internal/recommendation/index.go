package recommendation

import (
	"github.com/google/uuid"
)

// SimilarityIndex maps users to their purchase sets and remembers insertion order.
// It is built per request and never shared.
type SimilarityIndex struct {
	order []uuid.UUID
	sets  map[uuid.UUID]ItemSet
}

func NewSimilarityIndex() *SimilarityIndex {
	return &SimilarityIndex{
		sets: make(map[uuid.UUID]ItemSet),
	}
}

// Put stores a user's set. Empty sets are ignored so users without purchases
// never become candidates.
func (ix *SimilarityIndex) Put(userID uuid.UUID, set ItemSet) {
	if set.Len() == 0 {
		return
	}
	if _, exists := ix.sets[userID]; !exists {
		ix.order = append(ix.order, userID)
	}
	ix.sets[userID] = set
}

func (ix *SimilarityIndex) Get(userID uuid.UUID) (ItemSet, bool) {
	set, ok := ix.sets[userID]
	return set, ok
}

func (ix *SimilarityIndex) Len() int {
	return len(ix.order)
}

// UserIDs returns the indexed users in insertion order
func (ix *SimilarityIndex) UserIDs() []uuid.UUID {
	return append([]uuid.UUID(nil), ix.order...)
}

// Neighbor is the user selected as most similar to the target
type Neighbor struct {
	UserID     uuid.UUID
	Similarity float64
	Items      ItemSet
}

// SelectNearest scans the index in insertion order and returns the user with the
// strictly highest similarity to target. The running best starts at 0.0, so a
// candidate with zero overlap is never selected and ties keep the earlier user.
func SelectNearest(target ItemSet, index *SimilarityIndex) (Neighbor, bool) {
	var best Neighbor
	found := false

	if index == nil {
		return best, false
	}

	for _, userID := range index.order {
		set := index.sets[userID]
		similarity := Jaccard(target, set)
		if similarity > best.Similarity {
			best = Neighbor{
				UserID:     userID,
				Similarity: similarity,
				Items:      set,
			}
			found = true
		}
	}

	return best, found
}
