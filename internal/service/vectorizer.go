package service

import (
	"math"
	"sort"

	"github.com/hausmate/hausmate/internal/domain"
)

// Vocabulary is an immutable snapshot of the global interest registry with a
// fixed ordering. Vectors built from the same snapshot are index-aligned, so
// one snapshot must be used for every vector compared within a ranking pass.
type Vocabulary struct {
	interests []domain.Interest
	index     map[string]int
}

// NewVocabulary builds a snapshot from registry entries, ordered
// lexicographically by interest ID.
func NewVocabulary(interests []domain.Interest) *Vocabulary {
	sorted := make([]domain.Interest, len(interests))
	copy(sorted, interests)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	index := make(map[string]int, len(sorted))
	for i, interest := range sorted {
		index[interest.ID] = i
	}

	return &Vocabulary{interests: sorted, index: index}
}

// Len returns the vocabulary size, which is also the vector length.
func (v *Vocabulary) Len() int {
	return len(v.interests)
}

// Interests returns the snapshot entries in vector order.
func (v *Vocabulary) Interests() []domain.Interest {
	return v.interests
}

// Vectorize produces a binary vector the length of the vocabulary: 1 at
// index i iff the interest at position i is in interestIDs. IDs not present
// in the vocabulary are ignored.
func (v *Vocabulary) Vectorize(interestIDs []string) []float64 {
	vector := make([]float64, len(v.interests))
	for _, id := range interestIDs {
		if i, ok := v.index[id]; ok {
			vector[i] = 1
		}
	}
	return vector
}

// CosineSimilarity returns the cosine of the angle between two equal-length
// vectors, in [-1, 1]. A zero-magnitude vector has similarity 0.0 with
// everything: a profile with no interests matches nobody, it is not an error.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// scoredID pairs a candidate profile ID with its similarity to the requester.
type scoredID struct {
	ID    string
	Score float64
}

// rankBySimilarity orders candidates by descending similarity to the base
// vector. The sort is stable: equal scores keep their input order.
func rankBySimilarity(vocab *Vocabulary, base []float64, candidateIDs []string, interestsByID map[string][]string) []scoredID {
	ranked := make([]scoredID, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		vector := vocab.Vectorize(interestsByID[id])
		ranked = append(ranked, scoredID{
			ID:    id,
			Score: CosineSimilarity(base, vector),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
