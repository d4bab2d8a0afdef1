package classifier

import (
	"errors"
	"strings"
	"testing"

	"lecture-insights-go/internal/logger"
	"lecture-insights-go/internal/types"
)

func TestSegmentIndexLookup(t *testing.T) {
	segments := []*types.SpeechSegment{
		types.NewSpeechSegment(0, 5, "zero"),
		types.NewSpeechSegment(5, 10, "one"),
	}
	ix := newSegmentIndex(segments)

	seg, err := ix.lookup(0)
	if err != nil {
		t.Fatalf("lookup(0): %v", err)
	}
	if seg.Text != "zero" {
		t.Errorf("lookup(0) text = %q", seg.Text)
	}

	for _, bad := range []int{-1, 2, 100} {
		_, err := ix.lookup(bad)
		var desync *IndexDesyncError
		if !errors.As(err, &desync) {
			t.Fatalf("lookup(%d): expected IndexDesyncError, got %v", bad, err)
		}
		if desync.Index != bad {
			t.Errorf("desync index = %d, want %d", desync.Index, bad)
		}
	}
}

func TestSegmentIndexVerifyTextKeepsLocalText(t *testing.T) {
	segments := []*types.SpeechSegment{
		types.NewSpeechSegment(0, 5, " local truth "),
	}
	ix := newSegmentIndex(segments)
	log := logger.New().WithComponent("test")

	// matching after trimming: no drift
	ix.verifyText(log, 0, "local truth")
	// drifting text is tolerated, local text wins
	ix.verifyText(log, 0, "rewritten by the model")

	if segments[0].Text != " local truth " {
		t.Errorf("local text changed to %q", segments[0].Text)
	}
}

func TestSegmentIndexNumberedLines(t *testing.T) {
	segments := []*types.SpeechSegment{
		types.NewSpeechSegment(0, 5, "alpha"),
		types.NewSpeechSegment(5, 10, "beta"),
	}
	got := newSegmentIndex(segments).numberedLines()
	want := "0: alpha\n1: beta\n"
	if got != want {
		t.Errorf("numberedLines = %q, want %q", got, want)
	}
	if !strings.HasSuffix(got, "\n") {
		t.Error("numberedLines should end with a newline")
	}
}
