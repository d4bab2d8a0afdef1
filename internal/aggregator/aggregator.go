package aggregator

import "lecture-insights-go/internal/types"

// TimelineStats summarizes a classified segment timeline.
type TimelineStats struct {
	TotalSegments       int     `json:"total_segments"`
	RelevantSegments    int     `json:"relevant_segments"`
	OffTopicSegments    int     `json:"off_topic_segments"`
	RelevantDurationSec float64 `json:"relevant_duration_sec"`
	OffTopicDurationSec float64 `json:"off_topic_duration_sec"`
	TotalSpanSec        float64 `json:"total_span_sec"`
}

func Summarize(segments []*types.SpeechSegment) TimelineStats {
	stats := TimelineStats{TotalSegments: len(segments)}
	for _, seg := range segments {
		if seg.IsRelevant {
			stats.RelevantSegments++
			stats.RelevantDurationSec += seg.DurationSec()
		} else {
			stats.OffTopicSegments++
			stats.OffTopicDurationSec += seg.DurationSec()
		}
	}
	if len(segments) > 0 {
		stats.TotalSpanSec = segments[len(segments)-1].EndTimeSec - segments[0].StartTimeSec
	}
	return stats
}
