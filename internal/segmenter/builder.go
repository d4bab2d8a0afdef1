// Package segmenter turns a word-timestamped whisper transcription into
// sentence-level speech segments.
package segmenter

import (
	"errors"
	"strings"

	"lecture-insights-go/internal/logger"
	"lecture-insights-go/internal/transcription"
	"lecture-insights-go/internal/types"
)

// NoSpeechProbThreshold marks a chunk as silence when exceeded.
const NoSpeechProbThreshold = 0.9

// sentenceTerminators are the ASCII punctuation characters that close a
// sentence. Comma and semicolon continue it.
const sentenceTerminators = "!\"#$%&'()*+-./:<=>?@[\\]^_`{|}~"

// ErrNoInput is returned when neither an in-memory transcription nor a JSON
// path is provided.
var ErrNoInput = errors.New("segmenter: either a transcription result or a json path is required")

// SegmentBuilder walks whisper chunks and emits one SpeechSegment per
// sentence-ish span of continuous speech.
type SegmentBuilder struct {
	result *transcription.Result
}

// NewSegmentBuilder accepts the transcription directly or loads it from
// jsonPath. Exactly one source must be present.
func NewSegmentBuilder(res *transcription.Result, jsonPath string) (*SegmentBuilder, error) {
	if res != nil {
		return &SegmentBuilder{result: res}, nil
	}
	if jsonPath == "" {
		return nil, ErrNoInput
	}
	loaded, err := transcription.LoadResult(jsonPath)
	if err != nil {
		return nil, err
	}
	return &SegmentBuilder{result: loaded}, nil
}

// Build produces the ordered segment sequence. A chunk above the no-speech
// threshold contributes no words and forces a segment boundary. Within a
// chunk, a new segment starts whenever the accumulated text ends in
// sentence-terminating punctuation. An entirely silent transcript yields an
// empty sequence.
func (b *SegmentBuilder) Build() []*types.SpeechSegment {
	log := logger.New().WithComponent("segmenter")

	var (
		res   []*types.SpeechSegment
		open  bool
		start float64
		end   float64
		text  string
	)

	for _, chunk := range b.result.Chunks {
		if chunk.NoSpeechProb > NoSpeechProbThreshold {
			if open {
				res = append(res, types.NewSpeechSegment(start, end, text))
				open = false
			}
			continue
		}
		for _, w := range chunk.Words {
			switch {
			case !open:
				open = true
				start, end, text = w.Start, w.End, w.Text
			case endsSentence(text):
				res = append(res, types.NewSpeechSegment(start, end, text))
				start, end, text = w.Start, w.End, w.Text
			default:
				end = w.End
				text += w.Text
			}
		}
	}
	if open {
		res = append(res, types.NewSpeechSegment(start, end, text))
	}

	log.WithField("segments", len(res)).Info("speech segments built")
	return res
}

// endsSentence reports whether the accumulated text is effectively empty or
// its last non-space character terminates a sentence.
func endsSentence(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	last := trimmed[len(trimmed)-1]
	return strings.IndexByte(sentenceTerminators, last) >= 0
}
