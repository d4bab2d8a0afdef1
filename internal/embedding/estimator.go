// Package embedding holds the similarity collaborators used by the
// embedding-based relevance strategy.
package embedding

// Embedder returns a fixed-dimension normalized dense vector for a text.
type Embedder interface {
	Embed(text string) ([]float64, error)
}

// SentenceGrouper splits a text into ordered semantic sentence groups
// covering the input without reordering.
type SentenceGrouper interface {
	Group(text string) ([][]string, error)
}

// SimilarityEstimator scores arbitrary texts against one reference text
// embedded once at construction.
type SimilarityEstimator struct {
	embedder Embedder
	general  []float64
}

func NewSimilarityEstimator(embedder Embedder, referenceText string) (*SimilarityEstimator, error) {
	general, err := embedder.Embed(referenceText)
	if err != nil {
		return nil, err
	}
	return &SimilarityEstimator{embedder: embedder, general: general}, nil
}

// CalculateSimilarity is the dot product of the text's embedding with the
// reference embedding. Vectors are assumed normalized by the collaborator.
func (s *SimilarityEstimator) CalculateSimilarity(text string) (float64, error) {
	vec, err := s.embedder.Embed(text)
	if err != nil {
		return 0, err
	}
	return dot(vec, s.general), nil
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
