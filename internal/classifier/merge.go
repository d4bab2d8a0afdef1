package classifier

import (
	"math"

	"lecture-insights-go/internal/types"
)

const (
	// SilenceThresholdSec is the largest gap two segments may span and still merge.
	SilenceThresholdSec = 10
	// MinDurationSec marks a segment as short enough to be absorbed by a neighbor.
	MinDurationSec = 10
)

// MergeSegments collapses the sequence to a fixed point under two rules,
// re-run until a full pass changes nothing:
//
//  1. agreement: adjacent segments with the same relevance verdict and a gap
//     below the silence threshold merge, keeping that verdict;
//  2. absorption: a segment shorter than the minimum duration merges across a
//     small gap into its neighbor, the short side inheriting the other's
//     verdict (current-short checked before predecessor-short).
//
// Each scan is greedy: the last accepted segment is popped and re-compared
// after every merge. Input segments are never mutated; merged segments are
// fresh instances.
func MergeSegments(segments []*types.SpeechSegment) []*types.SpeechSegment {
	out := segments
	for {
		madeChanges := false

		pass1 := make([]*types.SpeechSegment, 0, len(out))
		for _, s := range out {
			if len(pass1) == 0 {
				pass1 = append(pass1, s)
				continue
			}
			prev := pass1[len(pass1)-1]
			if prev.IsRelevant == s.IsRelevant && s.StartTimeSec-prev.EndTimeSec < SilenceThresholdSec {
				pass1[len(pass1)-1] = mergeTwo(prev, s, prev.IsRelevant)
				madeChanges = true
			} else {
				pass1 = append(pass1, s)
			}
		}

		pass2 := make([]*types.SpeechSegment, 0, len(pass1))
		for _, s := range pass1 {
			if len(pass2) == 0 {
				pass2 = append(pass2, s)
				continue
			}
			prev := pass2[len(pass2)-1]
			gap := s.StartTimeSec - prev.EndTimeSec
			switch {
			case s.DurationSec() < MinDurationSec && gap < SilenceThresholdSec:
				pass2[len(pass2)-1] = mergeTwo(prev, s, prev.IsRelevant)
				madeChanges = true
			case prev.DurationSec() < MinDurationSec && gap < SilenceThresholdSec:
				pass2[len(pass2)-1] = mergeTwo(prev, s, s.IsRelevant)
				madeChanges = true
			default:
				pass2 = append(pass2, s)
			}
		}

		out = pass2
		if !madeChanges {
			return out
		}
	}
}

// mergeTwo is the pairwise merge primitive shared by both rules.
func mergeTwo(a, b *types.SpeechSegment, isRelevant bool) *types.SpeechSegment {
	merged := &types.SpeechSegment{}
	merged.SetStartTime(a.StartTimeSec)
	merged.SetEndTime(b.EndTimeSec)
	merged.IsRelevant = isRelevant
	merged.RelevanceScore = types.FloatPtr((floatOrZero(a.RelevanceScore) + floatOrZero(b.RelevanceScore)) / 2)
	merged.ClusterRelevanceScore = types.FloatPtr(math.Max(
		floatOrZero(a.ClusterRelevanceScore), floatOrZero(b.ClusterRelevanceScore)))
	merged.SetText(a.Text + " " + b.Text)
	return merged
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
