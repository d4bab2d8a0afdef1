package transcription

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"lecture-insights-go/internal/logger"
)

// Transcriber produces a word-timestamped transcription for an audio file.
type Transcriber interface {
	Transcribe(audioPath string) (*Result, error)
}

// WhisperTranscriber shells out to Python Whisper with word timestamps
// enabled. Whisper availability is verified on first transcription.
type WhisperTranscriber struct {
	model    string
	language string
}

func NewWhisperTranscriber(model, language string) *WhisperTranscriber {
	if model == "" {
		model = "base"
	}
	if language == "" {
		language = "en"
	}
	return &WhisperTranscriber{model: model, language: language}
}

// Transcribe runs whisper on the audio file and parses its JSON output.
func (wt *WhisperTranscriber) Transcribe(audioPath string) (*Result, error) {
	log := logger.New().WithComponent("transcription").WithField("audio_path", audioPath)

	tempDir, err := os.MkdirTemp("", "whisper_output")
	if err != nil {
		return nil, fmt.Errorf("create whisper temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	absAudioPath, err := filepath.Abs(audioPath)
	if err != nil {
		return nil, fmt.Errorf("resolve audio path: %w", err)
	}

	cmd := exec.Command("python", "-m", "whisper",
		absAudioPath,
		"--model", wt.model,
		"--language", wt.language,
		"--output_dir", tempDir,
		"--output_format", "json",
		"--word_timestamps", "True",
		"--temperature", "0.0",
		"--fp16", "False",
	)

	log.WithField("model", wt.model).Info("running whisper")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %w\noutput: %s", err, string(output))
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	res, err := LoadResult(filepath.Join(tempDir, baseName+".json"))
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	log.WithField("chunks", len(res.Chunks)).Info("transcription completed")
	return res, nil
}
