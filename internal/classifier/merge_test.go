package classifier

import (
	"testing"

	"lecture-insights-go/internal/types"
)

func seg(start, end float64, relevant bool, text string) *types.SpeechSegment {
	s := types.NewSpeechSegment(start, end, text)
	s.IsRelevant = relevant
	return s
}

func TestMergeAgreementAcrossSmallGaps(t *testing.T) {
	input := []*types.SpeechSegment{
		seg(0, 20, true, "first"),
		seg(22, 40, true, "second"),
		seg(43, 60, false, "third"),
	}
	out := MergeSegments(input)

	if len(out) != 2 {
		t.Fatalf("got %d segments, want 2", len(out))
	}
	if !out[0].IsRelevant || out[1].IsRelevant {
		t.Errorf("relevance = [%v, %v], want [true, false]", out[0].IsRelevant, out[1].IsRelevant)
	}
	if out[0].StartTimeSec != 0 || out[0].EndTimeSec != 40 {
		t.Errorf("merged span = [%v, %v], want [0, 40]", out[0].StartTimeSec, out[0].EndTimeSec)
	}
	if out[0].Text != "first second" {
		t.Errorf("merged text = %q", out[0].Text)
	}
	if out[1].StartTimeSec != 43 || out[1].EndTimeSec != 60 {
		t.Errorf("trailing segment span = [%v, %v], want [43, 60]", out[1].StartTimeSec, out[1].EndTimeSec)
	}
}

func TestMergeShortSegmentAbsorbedByNeighbor(t *testing.T) {
	input := []*types.SpeechSegment{
		seg(0, 40, true, "long lecture block"),
		seg(42, 45, false, "brief interruption"),
	}
	out := MergeSegments(input)

	if len(out) != 1 {
		t.Fatalf("got %d segments, want 1", len(out))
	}
	if !out[0].IsRelevant {
		t.Error("absorbed segment should inherit the neighbor's relevance")
	}
	if out[0].StartTimeSec != 0 || out[0].EndTimeSec != 45 {
		t.Errorf("span = [%v, %v], want [0, 45]", out[0].StartTimeSec, out[0].EndTimeSec)
	}
}

func TestMergeShortPredecessorInheritsCurrentRelevance(t *testing.T) {
	input := []*types.SpeechSegment{
		seg(0, 5, false, "intro chatter"),
		seg(7, 50, true, "actual lesson"),
	}
	out := MergeSegments(input)

	if len(out) != 1 {
		t.Fatalf("got %d segments, want 1", len(out))
	}
	if !out[0].IsRelevant {
		t.Error("short predecessor should inherit the current segment's relevance")
	}
}

func TestMergeGapAtThresholdDoesNotMerge(t *testing.T) {
	input := []*types.SpeechSegment{
		seg(0, 20, true, "a"),
		seg(30, 55, true, "b"), // gap exactly 10s, threshold is exclusive
	}
	out := MergeSegments(input)
	if len(out) != 2 {
		t.Fatalf("got %d segments, want 2", len(out))
	}
}

func TestMergeIdempotent(t *testing.T) {
	input := []*types.SpeechSegment{
		seg(0, 20, true, "a"),
		seg(22, 41, true, "b"),
		seg(60, 75, false, "c"),
		seg(77, 80, true, "d"),
		seg(95, 120, true, "e"),
	}
	once := MergeSegments(input)
	twice := MergeSegments(once)

	if len(once) != len(twice) {
		t.Fatalf("fixed point not reached: %d then %d segments", len(once), len(twice))
	}
	for i := range once {
		if once[i].StartTimeSec != twice[i].StartTimeSec ||
			once[i].EndTimeSec != twice[i].EndTimeSec ||
			once[i].IsRelevant != twice[i].IsRelevant ||
			once[i].Text != twice[i].Text {
			t.Errorf("segment %d changed on the second run", i)
		}
	}
}

func TestMergePreservesTotalSpan(t *testing.T) {
	input := []*types.SpeechSegment{
		seg(3, 25, true, "a"),
		seg(26, 50, true, "b"),
		seg(52, 90, false, "c"),
	}
	out := MergeSegments(input)

	if len(out) == 0 {
		t.Fatal("empty output")
	}
	if out[0].StartTimeSec != 3 {
		t.Errorf("first start = %v, want 3", out[0].StartTimeSec)
	}
	if out[len(out)-1].EndTimeSec != 90 {
		t.Errorf("last end = %v, want 90", out[len(out)-1].EndTimeSec)
	}
}

func TestMergeTwoScores(t *testing.T) {
	a := seg(0, 20, true, "a")
	a.RelevanceScore = types.FloatPtr(0.8)
	a.ClusterRelevanceScore = types.FloatPtr(0.3)
	b := seg(21, 40, true, "b")
	b.ClusterRelevanceScore = types.FloatPtr(0.7)

	m := mergeTwo(a, b, true)
	if got := *m.RelevanceScore; got != 0.4 {
		t.Errorf("relevance score = %v, want 0.4 (mean, missing treated as 0)", got)
	}
	if got := *m.ClusterRelevanceScore; got != 0.7 {
		t.Errorf("cluster score = %v, want 0.7 (max)", got)
	}
	if a.Text != "a" || b.Text != "b" {
		t.Error("merge mutated its inputs")
	}
}
