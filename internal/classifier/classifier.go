// Package classifier decides which speech segments are on-topic for a given
// class and subject, and collapses the annotated sequence into the final
// timeline.
package classifier

import (
	"fmt"
	"strings"

	"lecture-insights-go/internal/embedding"
	"lecture-insights-go/internal/logger"
	"lecture-insights-go/internal/types"
)

// RelevanceThreshold is the cutoff a relevance score must exceed for a
// segment to count as on-topic.
const RelevanceThreshold = 0.5

// Classifier runs one of two interchangeable relevance strategies over a
// segment sequence. The LLM strategy is preferred; when it is disabled or
// fails, the embedding-similarity strategy runs instead.
type Classifier struct {
	classNumber string
	subjectName string
	useGPT      bool
	gpt         *GPTClassifier
	embedder    embedding.Embedder
	grouper     embedding.SentenceGrouper
}

func New(classNumber, subjectName string, useGPT bool, gpt *GPTClassifier,
	embedder embedding.Embedder, grouper embedding.SentenceGrouper) *Classifier {
	return &Classifier{
		classNumber: classNumber,
		subjectName: subjectName,
		useGPT:      useGPT,
		gpt:         gpt,
		embedder:    embedder,
		grouper:     grouper,
	}
}

// Classify annotates every segment with a relevance verdict and returns the
// merged timeline. The input sequence is the authoritative pre-merge order;
// merged segments are new instances.
func (c *Classifier) Classify(segments []*types.SpeechSegment) ([]*types.SpeechSegment, error) {
	log := logger.New().WithComponent("classifier")
	log.WithField("use_gpt", c.useGPT).WithField("segments", len(segments)).Info("classifying speech segments")

	if c.useGPT {
		merged, err := c.classifyWithGPT(segments)
		if err == nil {
			return merged, nil
		}
		log.WithError(err).Error("gpt classification failed, falling back to embedding similarity")
	}
	return c.classifyWithEmbeddings(segments)
}

func (c *Classifier) classifyWithGPT(segments []*types.SpeechSegment) ([]*types.SpeechSegment, error) {
	if c.gpt == nil {
		return nil, fmt.Errorf("gpt classifier not configured")
	}
	if err := c.gpt.ClassifyOffTopic(segments, c.classNumber, c.subjectName); err != nil {
		return nil, err
	}
	for _, seg := range segments {
		seg.IsRelevant = floatOrZero(seg.RelevanceScoreGPT) > RelevanceThreshold
	}

	merged := MergeSegments(segments)

	// Best-effort: a failed syllabus pass leaves labels empty but keeps the
	// relevance timeline. The error record is already persisted.
	if err := c.gpt.ClassifySyllabus(merged, c.classNumber, c.subjectName); err != nil {
		logger.New().WithComponent("classifier").WithError(err).Warn("syllabus labels unavailable")
	}
	return merged, nil
}

func (c *Classifier) classifyWithEmbeddings(segments []*types.SpeechSegment) ([]*types.SpeechSegment, error) {
	full := fullText(segments)

	sim, err := embedding.NewSimilarityEstimator(c.embedder, full)
	if err != nil {
		return nil, fmt.Errorf("embed full text: %w", err)
	}

	for _, seg := range segments {
		score, err := sim.CalculateSimilarity(seg.Text)
		if err != nil {
			return nil, fmt.Errorf("segment similarity: %w", err)
		}
		seg.RelevanceScore = types.FloatPtr(score)
	}

	clusters, err := c.clusterFullText(sim, full)
	if err != nil {
		return nil, err
	}
	AlignClusters(segments, clusters)
	regrouped := RegroupByCluster(segments)

	// A weak segment is rescued by a strongly relevant cluster and vice versa.
	for _, seg := range regrouped {
		seg.IsRelevant = floatOrZero(seg.RelevanceScore) > RelevanceThreshold ||
			floatOrZero(seg.ClusterRelevanceScore) > RelevanceThreshold
	}

	return MergeSegments(regrouped), nil
}

// clusterFullText asks the grouping collaborator for semantic sentence groups
// and scores each one against the whole transcript.
func (c *Classifier) clusterFullText(sim *embedding.SimilarityEstimator, full string) ([]types.SemanticCluster, error) {
	groups, err := c.grouper.Group(full)
	if err != nil {
		return nil, fmt.Errorf("sentence grouping: %w", err)
	}

	var res []types.SemanticCluster
	for i, group := range groups {
		text := strings.Join(group, "")
		score, err := sim.CalculateSimilarity(text)
		if err != nil {
			return nil, fmt.Errorf("cluster similarity: %w", err)
		}
		res = append(res, types.SemanticCluster{ID: i, Text: text, RelevanceScore: score})
	}
	return res, nil
}

func fullText(segments []*types.SpeechSegment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, strings.TrimSpace(seg.Text))
	}
	return strings.Join(parts, " ")
}
