package transcription

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Word is a single transcribed word. Text usually carries the natural leading
// space whisper emits between words.
type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"word"`
}

// Chunk is one low-level whisper segment with its no-speech probability.
type Chunk struct {
	ID           int     `json:"id"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Text         string  `json:"text"`
	NoSpeechProb float64 `json:"no_speech_prob"`
	Words        []Word  `json:"words"`
}

// Result matches whisper's word-timestamped JSON output.
type Result struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Chunks   []Chunk `json:"segments"`
}

// LoadResult reads a previously saved transcription JSON.
func LoadResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcription %s: %w", path, err)
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parse transcription %s: %w", path, err)
	}
	return &res, nil
}

// Save writes the transcription JSON so later runs can skip whisper.
func (r *Result) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create transcription dir: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal transcription: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write transcription %s: %w", path, err)
	}
	return nil
}
