package classifier

import (
	"testing"

	"lecture-insights-go/internal/types"
)

func scoredSeg(start, end float64, text string, score float64) *types.SpeechSegment {
	s := types.NewSpeechSegment(start, end, text)
	s.RelevanceScore = types.FloatPtr(score)
	return s
}

func TestAlignClustersAssignsEverySegment(t *testing.T) {
	segments := []*types.SpeechSegment{
		types.NewSpeechSegment(0, 5, " The sun is a star."),
		types.NewSpeechSegment(5, 10, " It is very hot."),
		types.NewSpeechSegment(10, 15, " Planets orbit the sun."),
	}
	clusters := []types.SemanticCluster{
		{ID: 0, Text: "The sun is a star. It is very hot.", RelevanceScore: 0.9},
		{ID: 1, Text: "Planets orbit the sun.", RelevanceScore: 0.4},
	}

	AlignClusters(segments, clusters)

	prev := -1
	for i, seg := range segments {
		if seg.ClusterID == nil {
			t.Fatalf("segment %d received no cluster id", i)
		}
		if *seg.ClusterID < prev {
			t.Errorf("cluster ids decrease at segment %d", i)
		}
		prev = *seg.ClusterID
	}
	if *segments[0].ClusterID != 0 || *segments[1].ClusterID != 0 || *segments[2].ClusterID != 1 {
		t.Errorf("cluster ids = [%d, %d, %d], want [0, 0, 1]",
			*segments[0].ClusterID, *segments[1].ClusterID, *segments[2].ClusterID)
	}
	if *segments[1].ClusterRelevanceScore != 0.9 {
		t.Errorf("segment 1 cluster score = %v, want 0.9", *segments[1].ClusterRelevanceScore)
	}
}

func TestAlignClustersSkipsGranularityMismatch(t *testing.T) {
	segments := []*types.SpeechSegment{
		types.NewSpeechSegment(0, 5, "unmatched words"),
		types.NewSpeechSegment(5, 10, "known sentence"),
	}
	clusters := []types.SemanticCluster{
		{ID: 0, Text: "something else entirely", RelevanceScore: 0.2},
		{ID: 1, Text: "prefix known sentence suffix", RelevanceScore: 0.8},
	}

	AlignClusters(segments, clusters)

	// The sweep never matched the first segment; it skipped clusters until
	// exhaustion, so the second segment stays unassigned too.
	if segments[0].ClusterID != nil {
		t.Errorf("segment 0 unexpectedly assigned cluster %d", *segments[0].ClusterID)
	}
}

func TestRegroupByCluster(t *testing.T) {
	segments := []*types.SpeechSegment{
		scoredSeg(0, 5, " first part ", 0.3),
		scoredSeg(5, 12, "second part", 0.8),
		scoredSeg(12, 20, "other theme", 0.1),
	}
	segments[0].ClusterID = types.IntPtr(0)
	segments[0].ClusterRelevanceScore = types.FloatPtr(0.6)
	segments[1].ClusterID = types.IntPtr(0)
	segments[1].ClusterRelevanceScore = types.FloatPtr(0.6)
	segments[2].ClusterID = types.IntPtr(1)
	segments[2].ClusterRelevanceScore = types.FloatPtr(0.2)

	out := RegroupByCluster(segments)

	if len(out) != 2 {
		t.Fatalf("got %d groups, want 2", len(out))
	}
	first := out[0]
	if first.StartTimeSec != 0 || first.EndTimeSec != 12 {
		t.Errorf("group span = [%v, %v], want [0, 12]", first.StartTimeSec, first.EndTimeSec)
	}
	if first.Text != "first part second part" {
		t.Errorf("group text = %q", first.Text)
	}
	if *first.RelevanceScore != 0.8 {
		t.Errorf("group relevance = %v, want max 0.8", *first.RelevanceScore)
	}
	if *first.ClusterRelevanceScore != 0.6 {
		t.Errorf("group cluster score = %v, want 0.6", *first.ClusterRelevanceScore)
	}
	if *out[1].ClusterID != 1 {
		t.Errorf("second group cluster id = %d, want 1", *out[1].ClusterID)
	}
}

func TestRegroupByClusterEmpty(t *testing.T) {
	if out := RegroupByCluster(nil); len(out) != 0 {
		t.Errorf("got %d groups from empty input", len(out))
	}
}
