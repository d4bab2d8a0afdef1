package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"lecture-insights-go/internal/types"
)

func TestOutputFilename(t *testing.T) {
	name := OutputFilename("offtopic", "6", "Social Science")
	pattern := `^offtopic_Social_Science_class6_\d{8}_\d{6}\.json$`
	if !regexp.MustCompile(pattern).MatchString(name) {
		t.Errorf("filename %q does not match %q", name, pattern)
	}
}

func TestResultWriterSaveWithoutDB(t *testing.T) {
	dir := t.TempDir()
	w := NewResultWriter(filepath.Join(dir, "output"), "session-1", nil)

	record := OffTopicRecord{
		ClassNumber: "6",
		SubjectName: "Mathematics",
		Segments: []SegmentAudit{
			{SegmentNumber: 0, Text: "hello", IsOffTopic: true, OffTopicProbability: 0.9},
		},
	}
	if err := w.Save(record, "offtopic_test.json"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "output", "offtopic_test.json"))
	if err != nil {
		t.Fatal(err)
	}
	var got OffTopicRecord
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.ClassNumber != "6" || len(got.Segments) != 1 || !got.Segments[0].IsOffTopic {
		t.Errorf("round-tripped record = %+v", got)
	}
}

func TestWriteSegmentsReport(t *testing.T) {
	a := types.NewSpeechSegment(0, 12.5, "on with the lesson")
	a.IsRelevant = true
	a.SyllabusClassification = "Mathematics - Fractions"
	b := types.NewSpeechSegment(15, 20, "now about my weekend")

	path := filepath.Join(t.TempDir(), "report", "segments.txt")
	if err := WriteSegmentsReport(path, []*types.SpeechSegment{a, b}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), lines)
	}
	if lines[0] != "0: RELEVANT | per syllabus: Mathematics - Fractions | start: 0:00:00.00 | end: 0:00:12.50 | text: on with the lesson" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "PAUSE: 2.50 seconds" {
		t.Errorf("line 1 = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "1: OFF-TOPIC | per syllabus: N/A |") {
		t.Errorf("line 2 = %q", lines[2])
	}
}
