package classifier

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"lecture-insights-go/internal/types"
)

// IndexDesyncError reports a classifier response citing an ordinal index that
// does not exist in the local transcript. The external system desynchronized
// or hallucinated, so the whole classification call must be aborted.
type IndexDesyncError struct {
	Index int
}

func (e *IndexDesyncError) Error() string {
	return fmt.Sprintf("segment index %d not found in the transcript", e.Index)
}

// segmentIndex is the authoritative ordinal index over the original, pre-merge
// segment sequence. It is built once per classification call; external
// responses are reconciled against it and never against a merged sequence.
type segmentIndex struct {
	segments []*types.SpeechSegment
}

func newSegmentIndex(segments []*types.SpeechSegment) *segmentIndex {
	return &segmentIndex{segments: segments}
}

// lookup resolves an external index to the local segment. Unknown indices are
// a hard failure.
func (ix *segmentIndex) lookup(i int) (*types.SpeechSegment, error) {
	if i < 0 || i >= len(ix.segments) {
		return nil, &IndexDesyncError{Index: i}
	}
	return ix.segments[i], nil
}

// verifyText compares returned text against the local segment at a valid
// index. A mismatch is content drift: logged, non-fatal, local text wins.
func (ix *segmentIndex) verifyText(log *logrus.Entry, i int, returned string) {
	seg := ix.segments[i]
	if strings.TrimSpace(seg.Text) != strings.TrimSpace(returned) {
		log.WithFields(logrus.Fields{
			"index":         i,
			"returned_text": returned,
		}).Warn("returned sentence text drifted from the transcript, keeping local text")
	}
}

// numberedLines renders "index: text" lines the way the prompt tags segments.
func (ix *segmentIndex) numberedLines() string {
	var b strings.Builder
	for i, seg := range ix.segments {
		fmt.Fprintf(&b, "%d: %s\n", i, seg.Text)
	}
	return b.String()
}
