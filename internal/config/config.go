package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the service knobs loaded from config/config.yaml. Secrets and
// collaborator URLs stay in the environment (.env).
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`

	Whisper struct {
		Model    string `yaml:"model"`
		Language string `yaml:"language"`
	} `yaml:"whisper"`

	Storage struct {
		MediaDir string `yaml:"media_dir"`
		Database string `yaml:"database"`
	} `yaml:"storage"`

	Pipeline struct {
		UseGPT                  bool `yaml:"use_gpt"`
		RegenerateAudio         bool `yaml:"regenerate_audio"`
		RegenerateTranscription bool `yaml:"regenerate_transcription"`
		WriteFinalVideo         bool `yaml:"write_final_video"`
	} `yaml:"pipeline"`
}

// Load reads the yaml config; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Whisper.Model = "base"
	cfg.Whisper.Language = "en"
	cfg.Storage.MediaDir = "media"
	cfg.Storage.Database = "lecture_insights.db"
	cfg.Pipeline.UseGPT = true
	cfg.Pipeline.WriteFinalVideo = true
	return cfg
}
