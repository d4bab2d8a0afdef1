package types

import (
	"fmt"
	"strings"
)

// SpeechSegment is a contiguous span of transcribed speech. It is created by
// the segmenter, annotated by the classifier and replaced (not mutated) by the
// merge engine. Timing and text fields must be written through the setters so
// the derived display strings and word count stay consistent.
type SpeechSegment struct {
	StartTimeSec    float64 `json:"start_time_sec"`
	StartTimeString string  `json:"start_time_string"`
	EndTimeSec      float64 `json:"end_time_sec"`
	EndTimeString   string  `json:"end_time_string"`
	Text            string  `json:"text"`
	WordsCount      int     `json:"words_count"`

	RelevanceScore        *float64 `json:"relevance_score,omitempty"`
	RelevanceScoreGPT     *float64 `json:"relevance_score_gpt,omitempty"`
	RelevanceScoreRAG     *float64 `json:"relevance_score_rag,omitempty"`
	ClusterID             *int     `json:"cluster_id,omitempty"`
	ClusterRelevanceScore *float64 `json:"cluster_relevance_score,omitempty"`
	OffTopicProbability   *float64 `json:"off_topic_probability,omitempty"`

	IsRelevant             bool   `json:"is_relevant"`
	SyllabusClassification string `json:"syllabus_classification,omitempty"`
}

// NewSpeechSegment builds a segment with timing and text set through the
// derived-field setters.
func NewSpeechSegment(startSec, endSec float64, text string) *SpeechSegment {
	s := &SpeechSegment{}
	s.SetStartTime(startSec)
	s.SetEndTime(endSec)
	s.SetText(text)
	return s
}

func (s *SpeechSegment) SetStartTime(secs float64) {
	s.StartTimeSec = secs
	s.StartTimeString = SecsToClock(secs)
}

func (s *SpeechSegment) SetEndTime(secs float64) {
	s.EndTimeSec = secs
	s.EndTimeString = SecsToClock(secs)
}

func (s *SpeechSegment) SetText(text string) {
	s.Text = text
	s.WordsCount = len(strings.Fields(text))
}

func (s *SpeechSegment) DurationSec() float64 {
	return s.EndTimeSec - s.StartTimeSec
}

// SecsToClock renders seconds as H:MM:SS.ss (hours not zero-padded).
func SecsToClock(secs float64) string {
	h := int(secs) / 3600
	m := (int(secs) % 3600) / 60
	rem := secs - float64(h*3600+m*60)
	return fmt.Sprintf("%d:%02d:%05.2f", h, m, rem)
}

// SemanticCluster is a coarser grouping of sentences produced by the external
// sentence-grouping collaborator. The core aligns clusters onto segments but
// never constructs them from scratch outside the embedding strategy.
type SemanticCluster struct {
	ID             int     `json:"id"`
	Text           string  `json:"text"`
	RelevanceScore float64 `json:"relevance_score"`
}

func FloatPtr(v float64) *float64 { return &v }

func IntPtr(v int) *int { return &v }
