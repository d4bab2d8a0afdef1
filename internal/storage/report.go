package storage

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"lecture-insights-go/internal/aggregator"
	"lecture-insights-go/internal/types"
)

// WriteTimelineReport exports the merged timeline to an xlsx workbook: one
// Timeline sheet with a row per segment and a Summary sheet with aggregate
// stats.
func WriteTimelineReport(path string, segments []*types.SpeechSegment) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Timeline"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []any{"#", "Verdict", "Syllabus", "Start", "End", "Duration (s)", "Words", "Text"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, seg := range segments {
		verdict := "OFF-TOPIC"
		if seg.IsRelevant {
			verdict = "RELEVANT"
		}
		syllabus := seg.SyllabusClassification
		if syllabus == "" {
			syllabus = "N/A"
		}
		row := []any{
			i,
			verdict,
			syllabus,
			seg.StartTimeString,
			seg.EndTimeString,
			seg.DurationSec(),
			seg.WordsCount,
			seg.Text,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	stats := aggregator.Summarize(segments)
	const summary = "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	summaryRows := [][]any{
		{"Total segments", stats.TotalSegments},
		{"Relevant segments", stats.RelevantSegments},
		{"Off-topic segments", stats.OffTopicSegments},
		{"Relevant duration (s)", stats.RelevantDurationSec},
		{"Off-topic duration (s)", stats.OffTopicDurationSec},
		{"Total span (s)", stats.TotalSpanSec},
	}
	for i, row := range summaryRows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report %s: %w", path, err)
	}
	return nil
}
