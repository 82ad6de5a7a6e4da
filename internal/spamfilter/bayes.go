package spamfilter

// TokenStat counts how many trained spam and ham messages contained a token
// at least once.
type TokenStat struct {
	SpamCount int `json:"spam_count"`
	HamCount  int `json:"ham_count"`
}

// Snapshot is the serializable form of a trained model, exchanged with the
// persistence layer via Export/Import.
type Snapshot struct {
	Tokens    map[string]TokenStat `json:"tokens"`
	SpamCount int                  `json:"spam_count"`
	HamCount  int                  `json:"ham_count"`
}

// Model holds the trainable Bayesian token statistics. It is not safe for
// concurrent use; callers must serialize access (see services.MailProcessor).
type Model struct {
	tokens      map[string]*TokenStat
	spamTrained int
	hamTrained  int
}

// NewModel returns an empty, untrained model.
func NewModel() *Model {
	return &Model{tokens: make(map[string]*TokenStat)}
}

// Trained reports whether the Bayesian signal is usable: at least one spam
// and one ham message must have been trained.
func (m *Model) Trained() bool {
	return m.spamTrained > 0 && m.hamTrained > 0
}

// TrainSpam records one spam message's distinct tokens.
func (m *Model) TrainSpam(tokens []string) {
	m.spamTrained++
	for _, token := range tokens {
		m.stat(token).SpamCount++
	}
}

// TrainHam records one legitimate message's distinct tokens.
func (m *Model) TrainHam(tokens []string) {
	m.hamTrained++
	for _, token := range tokens {
		m.stat(token).HamCount++
	}
}

// UntrainSpam reverses a prior TrainSpam. Counts floor at zero: untraining a
// message that was never trained silently absorbs the discrepancy.
func (m *Model) UntrainSpam(tokens []string) {
	if m.spamTrained > 0 {
		m.spamTrained--
	}
	for _, token := range tokens {
		stat, ok := m.tokens[token]
		if !ok {
			continue
		}
		if stat.SpamCount > 0 {
			stat.SpamCount--
		}
		if stat.SpamCount == 0 && stat.HamCount == 0 {
			delete(m.tokens, token)
		}
	}
}

// UntrainHam reverses a prior TrainHam with the same floor semantics as
// UntrainSpam.
func (m *Model) UntrainHam(tokens []string) {
	if m.hamTrained > 0 {
		m.hamTrained--
	}
	for _, token := range tokens {
		stat, ok := m.tokens[token]
		if !ok {
			continue
		}
		if stat.HamCount > 0 {
			stat.HamCount--
		}
		if stat.SpamCount == 0 && stat.HamCount == 0 {
			delete(m.tokens, token)
		}
	}
}

// Score combines the per-token spam probabilities of all known tokens into a
// single 0-100 score using a naive product rule: every per-token probability
// is clamped to [0.01, 0.99], then combined = Πp / (Πp + Π(1-p)). A message
// with no known tokens scores a neutral 50.
func (m *Model) Score(tokens []string) float64 {
	prodSpam := 1.0
	prodHam := 1.0
	known := 0

	for _, token := range tokens {
		stat, ok := m.tokens[token]
		if !ok {
			continue
		}
		p := float64(stat.SpamCount) / float64(m.spamTrained)
		q := float64(stat.HamCount) / float64(m.hamTrained)
		if p+q == 0 {
			continue
		}
		prob := clampProbability(p / (p + q))
		prodSpam *= prob
		prodHam *= 1 - prob
		known++
	}

	if known == 0 {
		return 50
	}
	return prodSpam / (prodSpam + prodHam) * 100
}

// Export returns a deep copy of the model state.
func (m *Model) Export() Snapshot {
	snapshot := Snapshot{
		Tokens:    make(map[string]TokenStat, len(m.tokens)),
		SpamCount: m.spamTrained,
		HamCount:  m.hamTrained,
	}
	for token, stat := range m.tokens {
		snapshot.Tokens[token] = *stat
	}
	return snapshot
}

// Import replaces the model state wholesale with the given snapshot. It is
// not a merge; any prior training is discarded.
func (m *Model) Import(snapshot Snapshot) {
	m.tokens = make(map[string]*TokenStat, len(snapshot.Tokens))
	for token, stat := range snapshot.Tokens {
		s := stat
		m.tokens[token] = &s
	}
	m.spamTrained = snapshot.SpamCount
	m.hamTrained = snapshot.HamCount
}

func (m *Model) stat(token string) *TokenStat {
	stat, ok := m.tokens[token]
	if !ok {
		stat = &TokenStat{}
		m.tokens[token] = stat
	}
	return stat
}

func clampProbability(p float64) float64 {
	if p < 0.01 {
		return 0.01
	}
	if p > 0.99 {
		return 0.99
	}
	return p
}
