// Package processor orchestrates one processing session: audio extraction,
// transcription, segmentation, classification, reporting and the final cut.
package processor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"lecture-insights-go/internal/classifier"
	"lecture-insights-go/internal/cutter"
	"lecture-insights-go/internal/embedding"
	"lecture-insights-go/internal/logger"
	"lecture-insights-go/internal/segmenter"
	"lecture-insights-go/internal/storage"
	"lecture-insights-go/internal/transcription"
	"lecture-insights-go/internal/types"
)

// Options configure a single session.
type Options struct {
	InputVideoPath          string
	ClassNumber             string
	Subject                 string
	UseGPT                  bool
	RegenerateAudio         bool
	RegenerateTranscription bool
	WriteFinalVideo         bool
}

// Deps are the external collaborators the pipeline calls, one at a time.
type Deps struct {
	Transcriber transcription.Transcriber
	Embedder    embedding.Embedder
	Grouper     embedding.SentenceGrouper
	Sink        classifier.AuditSink
}

type Service struct {
	opts Options
	deps Deps
}

func NewService(opts Options, deps Deps) *Service {
	return &Service{opts: opts, deps: deps}
}

// OutputDir is where a session's artifacts live, next to the input video.
func (s *Service) OutputDir() string {
	return filepath.Join(filepath.Dir(s.opts.InputVideoPath), "output")
}

// Process runs the whole pipeline and returns the merged timeline.
func (s *Service) Process(ctx context.Context) ([]*types.SpeechSegment, error) {
	log := logger.New().WithComponent("processor").WithField("input", s.opts.InputVideoPath)
	log.WithField("class_number", s.opts.ClassNumber).
		WithField("subject", s.opts.Subject).
		WithField("use_gpt", s.opts.UseGPT).
		Info("start processing video")

	outputDir := s.OutputDir()
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	log.Info("extract audio from video: started")
	audioPath, err := s.extractAudio(ctx, outputDir)
	if err != nil {
		return nil, err
	}
	log.Info("extract audio from video: done")

	log.Info("extract transcription from audio: started")
	result, err := s.transcribe(audioPath, outputDir)
	if err != nil {
		return nil, err
	}
	log.Info("extract transcription from audio: done")

	builder, err := segmenter.NewSegmentBuilder(result, "")
	if err != nil {
		return nil, err
	}
	segments := builder.Build()

	log.Info("classify speech segments: started")
	cls := classifier.New(s.opts.ClassNumber, s.opts.Subject, s.opts.UseGPT,
		classifier.NewGPTClassifier(s.deps.Sink), s.deps.Embedder, s.deps.Grouper)
	merged, err := cls.Classify(segments)
	if err != nil {
		return nil, fmt.Errorf("classify segments: %w", err)
	}
	log.Info("classify speech segments: done")

	reportPath := filepath.Join(outputDir, "classified_speech_segments.txt")
	if err := storage.WriteSegmentsReport(reportPath, merged); err != nil {
		return nil, err
	}
	xlsxPath := filepath.Join(outputDir, "timeline_report.xlsx")
	if err := storage.WriteTimelineReport(xlsxPath, merged); err != nil {
		return nil, err
	}

	if s.opts.WriteFinalVideo {
		log.Info("write final video: started")
		vc := cutter.New(s.opts.InputVideoPath, filepath.Join(outputDir, "output.mp4"), merged)
		if err := vc.Cut(ctx); err != nil {
			return nil, err
		}
		log.Info("write final video: done")
	} else {
		log.Info("write final video: skipped")
	}

	log.Info("process video: done")
	return merged, nil
}

// extractAudio pulls the audio track into an mp3 next to the other outputs,
// reusing an existing file unless regeneration is requested.
func (s *Service) extractAudio(ctx context.Context, outputDir string) (string, error) {
	log := logger.New().WithComponent("processor")

	base := strings.TrimSuffix(filepath.Base(s.opts.InputVideoPath), filepath.Ext(s.opts.InputVideoPath))
	audioPath := filepath.Join(outputDir, base+".mp3")

	if !s.opts.RegenerateAudio {
		if _, err := os.Stat(audioPath); err == nil {
			log.WithField("audio_path", audioPath).Debug("audio file already exists, skipping extraction")
			return audioPath, nil
		}
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-i", s.opts.InputVideoPath,
		"-vn", "-acodec", "libmp3lame",
		audioPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("extract audio: %w\noutput: %s", err, output)
	}
	return audioPath, nil
}

// transcribe runs whisper or loads the cached transcription JSON.
func (s *Service) transcribe(audioPath, outputDir string) (*transcription.Result, error) {
	log := logger.New().WithComponent("processor")

	jsonPath := filepath.Join(outputDir, "whisper_transcription.json")
	if !s.opts.RegenerateTranscription {
		if _, err := os.Stat(jsonPath); err == nil {
			log.WithField("json_path", jsonPath).Debug("transcription file already exists, loading it")
			return transcription.LoadResult(jsonPath)
		}
	}

	result, err := s.deps.Transcriber.Transcribe(audioPath)
	if err != nil {
		return nil, fmt.Errorf("transcribe audio: %w", err)
	}
	if err := result.Save(jsonPath); err != nil {
		return nil, err
	}
	return result, nil
}
