// Package storage persists classification results: JSON audit records, the
// human-readable timeline report, an xlsx export and sqlite run metadata.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lecture-insights-go/internal/logger"
	"lecture-insights-go/internal/types"
)

type SegmentAudit struct {
	SegmentNumber       int     `json:"segment_number"`
	Text                string  `json:"text"`
	IsOffTopic          bool    `json:"is_off_topic"`
	OffTopicProbability float64 `json:"off_topic_probability"`
}

// OffTopicRecord is the full audit of one off-topic classification call.
type OffTopicRecord struct {
	ClassNumber       string         `json:"class_number"`
	SubjectName       string         `json:"subject_name"`
	AnalysisTimestamp string         `json:"analysis_timestamp"`
	Segments          []SegmentAudit `json:"segments"`
}

type SyllabusGroupAudit struct {
	GroupNumber          int     `json:"group_number"`
	Text                 string  `json:"text"`
	Book                 string  `json:"book"`
	Chapter              string  `json:"chapter"`
	RelevanceProbability float64 `json:"relevance_probability"`
}

// SyllabusRecord is the audit of one syllabus classification call.
type SyllabusRecord struct {
	ClassNumber       string               `json:"class_number"`
	SubjectName       string               `json:"subject_name"`
	AnalysisTimestamp string               `json:"analysis_timestamp"`
	Groups            []SyllabusGroupAudit `json:"groups"`
}

// ErrorRecord is persisted when a best-effort classification call fails.
type ErrorRecord struct {
	Error     string            `json:"error"`
	Timestamp string            `json:"timestamp"`
	InputData map[string]string `json:"input_data"`
}

// OutputFilename builds prefix_subject_classN_timestamp.json.
func OutputFilename(prefix, classNumber, subjectName string) string {
	timestamp := time.Now().Format("20060102_150405")
	sanitized := strings.ReplaceAll(subjectName, " ", "_")
	return fmt.Sprintf("%s_%s_class%s_%s.json", prefix, sanitized, classNumber, timestamp)
}

// ResultWriter writes labeled records as JSON files under outputDir and
// mirrors each one into the metadata store when configured.
type ResultWriter struct {
	outputDir string
	sessionID string
	db        *MetadataDB
}

func NewResultWriter(outputDir, sessionID string, db *MetadataDB) *ResultWriter {
	return &ResultWriter{outputDir: outputDir, sessionID: sessionID, db: db}
}

// Save persists one record. File write failure is fatal to the caller.
func (w *ResultWriter) Save(record any, filename string) error {
	log := logger.New().WithComponent("storage").WithField("filename", filename)

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(w.outputDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.WithError(err).Error("writing record failed")
		return fmt.Errorf("write record %s: %w", path, err)
	}
	log.Info("record written")

	if w.db != nil {
		if err := w.db.SaveRun(w.sessionID, filename, data); err != nil {
			return fmt.Errorf("save run metadata: %w", err)
		}
	}
	return nil
}

// WriteSegmentsReport renders the classified timeline as text, with PAUSE
// lines marking the silence between consecutive segments.
func WriteSegmentsReport(path string, segments []*types.SpeechSegment) error {
	var b strings.Builder
	prevEnd := -1.0
	for i, seg := range segments {
		if prevEnd >= 0 {
			fmt.Fprintf(&b, "PAUSE: %.2f seconds\n", seg.StartTimeSec-prevEnd)
		}
		prevEnd = seg.EndTimeSec

		verdict := "OFF-TOPIC"
		if seg.IsRelevant {
			verdict = "RELEVANT"
		}
		syllabus := seg.SyllabusClassification
		if syllabus == "" {
			syllabus = "N/A"
		}
		fmt.Fprintf(&b, "%d: %s | per syllabus: %s | start: %s | end: %s | text: %s\n",
			i, verdict, syllabus, seg.StartTimeString, seg.EndTimeString, seg.Text)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
