package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"lecture-insights-go/internal/config"
	"lecture-insights-go/internal/embedding"
	"lecture-insights-go/internal/logger"
	"lecture-insights-go/internal/processor"
	"lecture-insights-go/internal/storage"
	"lecture-insights-go/internal/transcription"
)

type processRequest struct {
	FilePath         string `json:"file_path"`
	ClassNumber      string `json:"class_n"`
	Subject          string `json:"subject"`
	UseGPT           *bool  `json:"use_gpt"`
	RenderFinalVideo *bool  `json:"render_final_video"`
}

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "lecture-insights-go").Info("starting service")

	cfg, err := config.Load(envOr("CONFIG_PATH", "config/config.yaml"))
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	db, err := storage.NewMetadataDB(cfg.Storage.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to open metadata database")
	}
	defer db.Close()

	mux := http.NewServeMux()

	// health
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Info("health check")
		fmt.Fprint(w, "ok")
	})

	// process endpoint: launches a background session and returns its id
	mux.HandleFunc("/process", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "process")
		reqLog.Info("process request received")

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req processRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			reqLog.WithError(err).Warn("bad request body")
			http.Error(w, "bad request body", http.StatusBadRequest)
			return
		}
		if req.FilePath == "" || req.ClassNumber == "" || req.Subject == "" {
			reqLog.Warn("missing file_path, class_n or subject")
			http.Error(w, "file_path, class_n and subject are required", http.StatusBadRequest)
			return
		}

		useGPT := cfg.Pipeline.UseGPT
		if req.UseGPT != nil {
			useGPT = *req.UseGPT
		}
		writeVideo := cfg.Pipeline.WriteFinalVideo
		if req.RenderFinalVideo != nil {
			writeVideo = *req.RenderFinalVideo
		}

		// relative paths are resolved against the configured media dir
		inputPath := req.FilePath
		if !filepath.IsAbs(inputPath) {
			inputPath = filepath.Join(cfg.Storage.MediaDir, inputPath)
		}

		sessionID := uuid.New().String()
		opts := processor.Options{
			InputVideoPath:          inputPath,
			ClassNumber:             req.ClassNumber,
			Subject:                 req.Subject,
			UseGPT:                  useGPT,
			RegenerateAudio:         cfg.Pipeline.RegenerateAudio,
			RegenerateTranscription: cfg.Pipeline.RegenerateTranscription,
			WriteFinalVideo:         writeVideo,
		}

		go runSession(sessionID, opts, cfg, db)

		reqLog.WithField("session_id", sessionID).Info("session launched")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"session_id": sessionID})
	})

	// recent classification runs from the metadata store
	mux.HandleFunc("/runs", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "runs")
		runs, err := db.ListRuns(50)
		if err != nil {
			reqLog.WithError(err).Error("failed to list runs")
			http.Error(w, "failed to list runs", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(runs)
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

// runSession executes one processing session in the background.
func runSession(sessionID string, opts processor.Options, cfg *config.Config, db *storage.MetadataDB) {
	log := logger.New().WithSession(sessionID)

	outputDir := filepath.Join(filepath.Dir(opts.InputVideoPath), "output")
	deps := processor.Deps{
		Transcriber: transcription.NewWhisperTranscriber(cfg.Whisper.Model, cfg.Whisper.Language),
		Embedder:    &embedding.HTTPEmbedder{URL: os.Getenv("EMBEDDING_API_URL")},
		Grouper:     &embedding.HTTPSentenceGrouper{URL: os.Getenv("GROUPER_API_URL")},
		Sink:        storage.NewResultWriter(outputDir, sessionID, db),
	}
	svc := processor.NewService(opts, deps)

	start := time.Now()
	merged, err := svc.Process(context.Background())
	if err != nil {
		log.WithError(err).Error("session failed")
		return
	}
	log.WithField("segments", len(merged)).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		WithField("output_dir", outputDir).
		Info("session completed")
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
