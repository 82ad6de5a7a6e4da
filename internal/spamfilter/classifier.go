// Package spamfilter scores messages for spam likelihood by combining a
// trainable Bayesian token model with fixed phrase patterns, sender
// reputation checks and structural heuristics. All scoring is pure CPU-bound
// computation over an in-memory message record; the only mutable state is the
// Bayesian model, which callers must protect when sharing a Classifier
// between goroutines.
package spamfilter

import (
	"fmt"
	"strings"

	"github.com/opensky-suite/openmail-backend/internal/models"
)

// DefaultThreshold is the score at or above which a message is considered
// spam unless the caller configures otherwise.
const DefaultThreshold = 50.0

// Signal weights and reason-disclosure cutoffs. The Bayesian signal is
// dampened because it is unreliable with small training sets; the other three
// signals contribute at full weight.
const (
	bayesWeight            = 0.6
	bayesReasonCutoff      = 70.0
	patternReasonCutoff    = 20
	reputationReasonCutoff = 30
	heuristicReasonCutoff  = 20
)

// Config holds the constructor-time classifier options. Signal toggles allow
// disabling individual signals without retraining; the heuristic signal is
// always active.
type Config struct {
	Threshold         float64
	BayesianEnabled   bool
	PatternsEnabled   bool
	ReputationEnabled bool
}

// DefaultConfig returns the standard classifier configuration with all
// signals enabled.
func DefaultConfig() Config {
	return Config{
		Threshold:         DefaultThreshold,
		BayesianEnabled:   true,
		PatternsEnabled:   true,
		ReputationEnabled: true,
	}
}

// Result is the outcome of scoring a single message. It is created fresh per
// call and never retained by the classifier.
type Result struct {
	Score   float64  `json:"score"`
	IsSpam  bool     `json:"is_spam"`
	Reasons []string `json:"reasons,omitempty"`
}

// Stats summarizes the trained model for monitoring.
type Stats struct {
	TotalTokens       int     `json:"total_tokens"`
	SpamEmailsTrained int     `json:"spam_emails_trained"`
	HamEmailsTrained  int     `json:"ham_emails_trained"`
	Threshold         float64 `json:"threshold"`
}

// Classifier combines the four spam signals over a shared Bayesian model.
// Not safe for concurrent use.
type Classifier struct {
	cfg   Config
	model *Model
}

// New creates a classifier with an empty model. A non-positive threshold
// falls back to DefaultThreshold.
func New(cfg Config) *Classifier {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	return &Classifier{cfg: cfg, model: NewModel()}
}

// Score computes the spam score for a message without side effects. The
// final score is the sum of all active signals, capped to [0, 100], and the
// verdict is score >= threshold.
func (c *Classifier) Score(msg *models.Message) Result {
	var result Result

	if c.cfg.BayesianEnabled && c.model.Trained() {
		bayes := c.model.Score(Tokenize(msg.Subject, msg.BodyText))
		result.Score += bayes * bayesWeight
		if bayes > bayesReasonCutoff {
			result.Reasons = append(result.Reasons,
				fmt.Sprintf("content resembles previously trained spam (%.0f%% probability)", bayes))
		}
	}

	if c.cfg.PatternsEnabled {
		text := strings.ToLower(msg.Subject + " " + msg.BodyText + " " + msg.BodyHTML)
		score, matches := patternScore(text)
		result.Score += float64(score)
		if score > patternReasonCutoff {
			result.Reasons = append(result.Reasons,
				fmt.Sprintf("contains %d known spam phrases", matches))
		}
	}

	if c.cfg.ReputationEnabled {
		score := reputationScore(msg.SenderEmail, msg.SenderName)
		result.Score += float64(score)
		if score > reputationReasonCutoff {
			result.Reasons = append(result.Reasons, "sender address has poor reputation markers")
		}
	}

	heuristics := heuristicScore(msg)
	result.Score += float64(heuristics)
	if heuristics > heuristicReasonCutoff {
		result.Reasons = append(result.Reasons, "message structure matches bulk mail heuristics")
	}

	if result.Score > 100 {
		result.Score = 100
	}
	if result.Score < 0 {
		result.Score = 0
	}
	result.IsSpam = result.Score >= c.cfg.Threshold
	return result
}

// TrainSpam records the message as a confirmed spam example.
func (c *Classifier) TrainSpam(msg *models.Message) {
	c.model.TrainSpam(Tokenize(msg.Subject, msg.BodyText))
}

// TrainHam records the message as a confirmed legitimate example.
func (c *Classifier) TrainHam(msg *models.Message) {
	c.model.TrainHam(Tokenize(msg.Subject, msg.BodyText))
}

// UntrainSpam reverses a prior TrainSpam for the message.
func (c *Classifier) UntrainSpam(msg *models.Message) {
	c.model.UntrainSpam(Tokenize(msg.Subject, msg.BodyText))
}

// UntrainHam reverses a prior TrainHam for the message.
func (c *Classifier) UntrainHam(msg *models.Message) {
	c.model.UntrainHam(Tokenize(msg.Subject, msg.BodyText))
}

// Export snapshots the trained model for persistence.
func (c *Classifier) Export() Snapshot {
	return c.model.Export()
}

// Import replaces the trained model with a previously exported snapshot.
func (c *Classifier) Import(snapshot Snapshot) {
	c.model.Import(snapshot)
}

// Stats reports the current model dimensions and configured threshold.
func (c *Classifier) Stats() Stats {
	return Stats{
		TotalTokens:       len(c.model.tokens),
		SpamEmailsTrained: c.model.spamTrained,
		HamEmailsTrained:  c.model.hamTrained,
		Threshold:         c.cfg.Threshold,
	}
}
