package classifier

import (
	"strings"

	"lecture-insights-go/internal/types"
)

// AlignClusters assigns cluster ids and scores to segments with a two-pointer
// sweep. A cluster's text covers one or more segment texts; the sweep matches
// trimmed segment text by equality or containment and skips clusters whose
// text does not yet contain the current segment. Both pointers only move
// forward, so the alignment tolerates boundary normalization differences but
// assumes no reordering. Trailing unmatched segments keep no assignment.
func AlignClusters(segments []*types.SpeechSegment, clusters []types.SemanticCluster) {
	i, j := 0, 0
	for i < len(segments) && j < len(clusters) {
		segment := segments[i]
		cluster := clusters[j]

		segText := strings.TrimSpace(segment.Text)
		clusterText := strings.TrimSpace(cluster.Text)

		switch {
		case segText == clusterText:
			segment.ClusterID = types.IntPtr(cluster.ID)
			segment.ClusterRelevanceScore = types.FloatPtr(cluster.RelevanceScore)
			i++
			j++
		case strings.Contains(clusterText, segText):
			segment.ClusterID = types.IntPtr(cluster.ID)
			segment.ClusterRelevanceScore = types.FloatPtr(cluster.RelevanceScore)
			i++
		default:
			j++
		}
	}
}

// RegroupByCluster collapses consecutive runs sharing a cluster id into one
// segment per run: the run's time span, space-joined text, max relevance
// score and the shared cluster score.
func RegroupByCluster(segments []*types.SpeechSegment) []*types.SpeechSegment {
	if len(segments) == 0 {
		return nil
	}

	var runs [][]*types.SpeechSegment
	run := []*types.SpeechSegment{segments[0]}
	for _, seg := range segments[1:] {
		if !sameClusterID(run[0].ClusterID, seg.ClusterID) {
			runs = append(runs, run)
			run = nil
		}
		run = append(run, seg)
	}
	runs = append(runs, run)

	res := make([]*types.SpeechSegment, 0, len(runs))
	for _, run := range runs {
		merged := &types.SpeechSegment{}
		merged.SetStartTime(run[0].StartTimeSec)
		merged.SetEndTime(run[len(run)-1].EndTimeSec)
		merged.ClusterID = run[0].ClusterID
		merged.ClusterRelevanceScore = run[0].ClusterRelevanceScore

		parts := make([]string, 0, len(run))
		maxScore := 0.0
		for _, seg := range run {
			parts = append(parts, strings.TrimSpace(seg.Text))
			if score := floatOrZero(seg.RelevanceScore); score > maxScore {
				maxScore = score
			}
		}
		merged.SetText(strings.Join(parts, " "))
		merged.RelevanceScore = types.FloatPtr(maxScore)

		res = append(res, merged)
	}
	return res
}

func sameClusterID(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
