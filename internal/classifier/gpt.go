package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"lecture-insights-go/internal/logger"
	"lecture-insights-go/internal/storage"
	"lecture-insights-go/internal/types"
)

const (
	llmHTTPTimeout  = 60 * time.Second
	llmMaxRetryTime = 120 * time.Second
)

const offTopicPromptTemplate = `You are an expert reviewer of recorded school lessons.

The lesson below was taught to class {@class_number} students, subject: {@subject_name}.
You receive the lesson transcript split into numbered sentences, one per line,
formatted as "number: text".

Identify every sentence that is OFF-TOPIC for this class and subject:
administrative remarks, technical interruptions, personal chatter, greetings,
homework bookkeeping, or any speech not teaching the subject material.

Rules:
- Judge each sentence in the context of the surrounding lesson.
- Copy the sentence text exactly as given.
- probability is your confidence (0..1) that the sentence is off-topic.
- Return ONLY valid JSON, no commentary, no markdown fences.

Return JSON in exactly this shape:
{"off_topic_sentences": [{"sentence_number": 0, "text": "...", "probability": 0.0}]}

If every sentence is on-topic, return {"off_topic_sentences": []}.

The numbered sentences follow:`

const syllabusPromptTemplate = `You are an expert on the CBSE curriculum.

The lesson below was taught to class {@class_number} students, subject: {@subject_name}.
You receive the lesson split into numbered speech groups, one per line,
formatted as "number: text".

For each group, name the CBSE book and the chapter it belongs to.

Rules:
- Use the official CBSE books and chapter titles for this class and subject.
- probability is your confidence (0..1) in the assignment.
- Return ONLY valid JSON, no commentary, no markdown fences.

Return JSON in exactly this shape:
{"groups": [{"group_number": 0, "book": "...", "chapter": "...", "probability": 0.0}]}

The numbered groups follow:`

// AuditSink receives classification audit records and a generated filename.
type AuditSink interface {
	Save(record any, filename string) error
}

// GPTClassifier classifies speech segments through an OpenAI-compatible chat
// completions gateway. Configured from env like the rest of the service:
// LLM_GATEWAY_URL, LLM_API_KEY, LLM_MODEL; USE_MOCK_LLM=true for offline runs.
type GPTClassifier struct {
	apiURL string
	apiKey string
	model  string
	mock   bool
	sink   AuditSink
}

func NewGPTClassifier(sink AuditSink) *GPTClassifier {
	return &GPTClassifier{
		apiURL: os.Getenv("LLM_GATEWAY_URL"),
		apiKey: os.Getenv("LLM_API_KEY"),
		model:  os.Getenv("LLM_MODEL"),
		mock:   os.Getenv("USE_MOCK_LLM") == "true",
		sink:   sink,
	}
}

type offTopicResponse struct {
	OffTopicSentences []struct {
		SentenceNumber int      `json:"sentence_number"`
		Text           string   `json:"text"`
		Probability    *float64 `json:"probability"`
	} `json:"off_topic_sentences"`
}

// ClassifyOffTopic sends every segment, tagged with its ordinal index, in one
// combined request and marks the returned indices off-topic. Unknown indices
// abort the call; text drift is logged and the local text wins. A full audit
// record is persisted on success.
func (g *GPTClassifier) ClassifyOffTopic(segments []*types.SpeechSegment, classNumber, subjectName string) error {
	log := logger.New().WithComponent("gpt-classifier")
	log.Info("generating off-topic prompt")

	idx := newSegmentIndex(segments)
	for _, seg := range segments {
		seg.RelevanceScoreGPT = types.FloatPtr(1)
	}

	prompt := interpolate(offTopicPromptTemplate, classNumber, subjectName)
	prompt += "\n\n" + idx.numberedLines()

	var parsed offTopicResponse
	if g.mock {
		log.Info("mock LLM mode ON - treating every sentence as on-topic")
	} else {
		log.Info("sending off-topic request to LLM")
		if err := g.runPrompt(prompt, &parsed); err != nil {
			return err
		}
		log.Info("LLM response received")
	}

	for _, s := range parsed.OffTopicSentences {
		seg, err := idx.lookup(s.SentenceNumber)
		if err != nil {
			log.WithError(err).Error("off-topic sentence not found in the transcript")
			return err
		}
		idx.verifyText(log, s.SentenceNumber, s.Text)

		prob := 1.0
		if s.Probability != nil {
			prob = *s.Probability
		}
		seg.RelevanceScoreGPT = types.FloatPtr(0)
		seg.OffTopicProbability = types.FloatPtr(prob)
	}

	record := storage.OffTopicRecord{
		ClassNumber:       classNumber,
		SubjectName:       subjectName,
		AnalysisTimestamp: time.Now().Format(time.RFC3339),
	}
	for i, seg := range segments {
		record.Segments = append(record.Segments, storage.SegmentAudit{
			SegmentNumber:       i,
			Text:                seg.Text,
			IsOffTopic:          floatOrZero(seg.RelevanceScoreGPT) == 0,
			OffTopicProbability: floatOrZero(seg.OffTopicProbability),
		})
	}
	return g.sink.Save(record, storage.OutputFilename("offtopic", classNumber, subjectName))
}

type syllabusResponse struct {
	Groups []struct {
		GroupNumber int      `json:"group_number"`
		Book        string   `json:"book"`
		Chapter     string   `json:"chapter"`
		Probability *float64 `json:"probability"`
	} `json:"groups"`
}

// ClassifySyllabus labels each (merged) segment with a CBSE book and chapter.
// Syllabus labeling is best-effort: every failure is converted into a
// persisted error record and returned for logging, never re-raised past the
// caller's pipeline.
func (g *GPTClassifier) ClassifySyllabus(segments []*types.SpeechSegment, classNumber, subjectName string) error {
	log := logger.New().WithComponent("gpt-classifier")
	log.Info("generating syllabus prompt, CBSE is supported only")

	idx := newSegmentIndex(segments)
	prompt := interpolate(syllabusPromptTemplate, classNumber, subjectName)
	prompt += "\n\n" + idx.numberedLines()

	var parsed syllabusResponse
	if g.mock {
		log.Info("mock LLM mode ON - skipping syllabus labels")
	} else {
		log.Info("sending syllabus request to LLM")
		if err := g.runPrompt(prompt, &parsed); err != nil {
			return g.syllabusFailure(err, classNumber, subjectName)
		}
		log.Info("LLM response received")
	}

	record := storage.SyllabusRecord{
		ClassNumber:       classNumber,
		SubjectName:       subjectName,
		AnalysisTimestamp: time.Now().Format(time.RFC3339),
	}
	for _, group := range parsed.Groups {
		seg, err := idx.lookup(group.GroupNumber)
		if err != nil {
			return g.syllabusFailure(err, classNumber, subjectName)
		}

		seg.SyllabusClassification = group.Book + " - " + group.Chapter
		prob := 1.0
		if group.Probability != nil {
			prob = *group.Probability
		}
		record.Groups = append(record.Groups, storage.SyllabusGroupAudit{
			GroupNumber:          group.GroupNumber,
			Text:                 seg.Text,
			Book:                 group.Book,
			Chapter:              group.Chapter,
			RelevanceProbability: prob,
		})
	}

	if err := g.sink.Save(record, storage.OutputFilename("cbse", classNumber, subjectName)); err != nil {
		return g.syllabusFailure(err, classNumber, subjectName)
	}
	return nil
}

// syllabusFailure persists an error record and hands the original error back.
func (g *GPTClassifier) syllabusFailure(cause error, classNumber, subjectName string) error {
	log := logger.New().WithComponent("gpt-classifier")
	log.WithError(cause).Error("syllabus classification failed")

	record := storage.ErrorRecord{
		Error:     cause.Error(),
		Timestamp: time.Now().Format(time.RFC3339),
		InputData: map[string]string{
			"class_number": classNumber,
			"subject_name": subjectName,
		},
	}
	if err := g.sink.Save(record, storage.OutputFilename("cbse_error", classNumber, subjectName)); err != nil {
		log.WithError(err).Error("writing syllabus error record failed")
	}
	return cause
}

func interpolate(template, classNumber, subjectName string) string {
	r := strings.NewReplacer(
		"{@class_number}", classNumber,
		"{@subject_name}", subjectName,
	)
	return r.Replace(template)
}

// runPrompt posts one chat completion and decodes the JSON object from the
// response into out, retrying transient failures with exponential backoff.
func (g *GPTClassifier) runPrompt(prompt string, out any) error {
	log := logger.New().WithComponent("gpt-classifier")

	if g.apiURL == "" || g.apiKey == "" {
		return fmt.Errorf("llm gateway not configured")
	}
	reqBody := map[string]any{
		"model":           g.model,
		"temperature":     0.0,
		"response_format": map[string]string{"type": "json_object"},
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	data, _ := json.Marshal(reqBody)

	var lastErr error
	op := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), llmHTTPTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, "POST", g.apiURL, bytes.NewReader(data))
		if err != nil {
			lastErr = err
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
		req.Header.Set("Content-Type", "application/json")

		client := &http.Client{Timeout: llmHTTPTimeout}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			log.WithError(err).Warn("llm request failed")
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)

		// Try choices[0].message.content (OpenAI-like)
		if inner := extractContentFromChoices(body); inner != "" {
			if err := json.Unmarshal([]byte(inner), out); err == nil {
				lastErr = nil
				return nil
			}
		}

		// Fallback: first balanced JSON object anywhere in the body
		if fallback := extractJSON(string(body)); fallback != "" {
			if err := json.Unmarshal([]byte(fallback), out); err == nil {
				lastErr = nil
				return nil
			}
		}

		lastErr = fmt.Errorf("no JSON found in LLM output (status %d)", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(lastErr)
		}
		return lastErr
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = llmMaxRetryTime
	if err := backoff.Retry(op, b); err != nil {
		return fmt.Errorf("llm call failed: %w", lastErr)
	}
	return nil
}

// extractContentFromChoices reads openai-style choices[0].message.content.
func extractContentFromChoices(body []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}

	choices, ok := obj["choices"].([]any)
	if !ok || len(choices) == 0 {
		return ""
	}
	c0, _ := choices[0].(map[string]any)
	if c0 == nil {
		return ""
	}
	msg, _ := c0["message"].(map[string]any)
	if msg == nil {
		return ""
	}
	content, _ := msg["content"].(string)
	return extractJSON(content)
}

// extractJSON finds the first balanced JSON object in a string, stripping
// common markdown fences first.
func extractJSON(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, fence := range []string{"```json", "```yaml", "```text", "```", "`json", "`"} {
		s = strings.ReplaceAll(s, fence, "")
	}

	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}
	return ""
}
