package embedding

import (
	"errors"
	"math"
	"testing"
)

type stubEmbedder struct {
	vectors map[string][]float64
	err     error
}

func (s *stubEmbedder) Embed(text string) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors[text], nil
}

func TestCalculateSimilarity(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float64{
		"reference": {1, 0},
		"same":      {1, 0},
		"opposite":  {0, 1},
		"halfway":   {math.Sqrt2 / 2, math.Sqrt2 / 2},
	}}
	est, err := NewSimilarityEstimator(emb, "reference")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		text string
		want float64
	}{
		{"same", 1},
		{"opposite", 0},
		{"halfway", math.Sqrt2 / 2},
	}
	for _, tt := range tests {
		got, err := est.CalculateSimilarity(tt.text)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("similarity(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestNewSimilarityEstimatorPropagatesError(t *testing.T) {
	wantErr := errors.New("embed backend down")
	if _, err := NewSimilarityEstimator(&stubEmbedder{err: wantErr}, "reference"); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
