package banking

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// DetectorConfig holds the tunables of the reversal detector and the
// candidate match scorer. Defaults match the documented policy; deployments
// override per company profile.
type DetectorConfig struct {
	// LookbackDays is how far back candidate originals are searched.
	LookbackDays int
	// MaxResults caps the number of ranked candidates returned.
	MaxResults int
	// DateScoreMax is the proximity score for a same-day candidate.
	DateScoreMax float64
	// DateScoreFloor is the proximity score at the look-back boundary.
	DateScoreFloor float64
	// ReferenceBonus is added on an exact reference-number match.
	ReferenceBonus float64
	// DescriptionBonusMax scales with description token overlap.
	DescriptionBonusMax float64
	// MinConfidence is the lowest pattern confidence treated as a detection.
	MinConfidence float64
}

// DefaultDetectorConfig returns the stock detection policy
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		LookbackDays:        90,
		MaxResults:          10,
		DateScoreMax:        60,
		DateScoreFloor:      20,
		ReferenceBonus:      25,
		DescriptionBonusMax: 15,
		MinConfidence:       0.5,
	}
}

// ReversalPattern is one row of the detection table: a lowercase substring
// looked for in the transaction description and the confidence it carries.
type ReversalPattern struct {
	Pattern    string
	Confidence float64
}

// reversalPatterns is the detection table, ordered by descending confidence.
// Matching is deterministic: the first (highest-confidence) matching row wins.
// Vocabulary covers the reversal wording Indian banks put on statements.
var reversalPatterns = []ReversalPattern{
	{Pattern: "neft return", Confidence: 0.95},
	{Pattern: "rtgs return", Confidence: 0.95},
	{Pattern: "imps return", Confidence: 0.95},
	{Pattern: "ecs return", Confidence: 0.95},
	{Pattern: "ach return", Confidence: 0.95},
	{Pattern: "insufficient funds", Confidence: 0.90},
	{Pattern: "chargeback", Confidence: 0.90},
	{Pattern: "reversal", Confidence: 0.90},
	{Pattern: "reversed", Confidence: 0.90},
	{Pattern: "cheque return", Confidence: 0.85},
	{Pattern: "chq return", Confidence: 0.85},
	{Pattern: "dishonour", Confidence: 0.85},
	{Pattern: "dishonor", Confidence: 0.85},
	{Pattern: "bounced", Confidence: 0.85},
	{Pattern: "bounce", Confidence: 0.80},
	{Pattern: "refund", Confidence: 0.80},
	{Pattern: "txn failed", Confidence: 0.80},
	{Pattern: "failed", Confidence: 0.70},
	{Pattern: "returned", Confidence: 0.65},
	{Pattern: "return", Confidence: 0.55},
}

// PatternTable returns a copy of the detection table for documentation and
// tests. Rows are ordered by descending confidence.
func PatternTable() []ReversalPattern {
	table := make([]ReversalPattern, len(reversalPatterns))
	copy(table, reversalPatterns)
	return table
}

// referencePatterns extract an embedded original-reference token from a
// description. Tried in order; the first capture wins.
var referencePatterns = []*regexp.Regexp{
	// Labelled references: "REF 12345", "UTR: AXISN12345", "TXN#987654"
	regexp.MustCompile(`(?i)\b(?:ref|utr|txn|rrn)[\s.:#-]*([A-Za-z0-9]{6,22})\b`),
	// Bare numeric tokens long enough to be bank references
	regexp.MustCompile(`\b(\d{8,18})\b`),
}

// DetectionResult is the outcome of running the classifier on a description
type DetectionResult struct {
	IsReversal bool    `json:"is_reversal"`
	Pattern    string  `json:"pattern,omitempty"`
	Confidence float64 `json:"confidence"`
	// ExtractedReference is any original-reference token found embedded in
	// the description, useful for ranking candidate originals.
	ExtractedReference string `json:"extracted_reference,omitempty"`
}

// ReversalDetector classifies transactions as probable reversals and ranks
// candidate originals. It is stateless and safe for concurrent use.
type ReversalDetector struct {
	cfg DetectorConfig
}

// NewReversalDetector creates a detector with the given configuration
func NewReversalDetector(cfg DetectorConfig) *ReversalDetector {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 90
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	return &ReversalDetector{cfg: cfg}
}

// Config returns the detector's effective configuration
func (d *ReversalDetector) Config() DetectorConfig {
	return d.cfg
}

// Detect runs the description-pattern classifier. Deterministic: identical
// descriptions always produce identical results.
func (d *ReversalDetector) Detect(description string) DetectionResult {
	normalized := strings.ToLower(description)

	for _, p := range reversalPatterns {
		if !strings.Contains(normalized, p.Pattern) {
			continue
		}
		if p.Confidence < d.cfg.MinConfidence {
			break
		}
		return DetectionResult{
			IsReversal:         true,
			Pattern:            p.Pattern,
			Confidence:         p.Confidence,
			ExtractedReference: ExtractReferenceToken(description),
		}
	}
	return DetectionResult{IsReversal: false, Confidence: 0}
}

// ExtractReferenceToken pulls a reference-like token out of a description,
// or returns "" when none is present.
func ExtractReferenceToken(description string) string {
	for _, re := range referencePatterns {
		if m := re.FindStringSubmatch(description); m != nil {
			return strings.ToUpper(m[1])
		}
	}
	return ""
}

// MatchCandidate is a ranked candidate original for a reversal transaction
type MatchCandidate struct {
	Transaction *BankTransaction `json:"transaction"`
	Score       float64          `json:"score"`
	Reason      string           `json:"reason"`
}

// ScoreCandidate scores a candidate original debit against the subject
// reversal credit, returning a score in [0,100] and the reasoning behind it.
//
// Policy: an exact amount match is mandatory for a nonzero score. The base
// score decays linearly with date distance from DateScoreMax at zero days to
// DateScoreFloor at the look-back boundary. An exact reference match adds
// ReferenceBonus; description token overlap adds up to DescriptionBonusMax.
func (d *ReversalDetector) ScoreCandidate(subject, candidate *BankTransaction) (float64, string) {
	if subject == nil || candidate == nil {
		return 0, "missing transaction"
	}
	if !subject.Amount.Equal(candidate.Amount) {
		return 0, "amount mismatch"
	}

	days := dateDistanceDays(subject.TransactionDate, candidate.TransactionDate)
	span := float64(d.cfg.LookbackDays)
	proximity := float64(days)
	if proximity > span {
		proximity = span
	}
	score := d.cfg.DateScoreMax - (d.cfg.DateScoreMax-d.cfg.DateScoreFloor)*(proximity/span)
	reasons := []string{fmt.Sprintf("exact amount match, %d day(s) apart", days)}

	if refBonus := d.referenceBonus(subject, candidate); refBonus > 0 {
		score += refBonus
		reasons = append(reasons, "reference number match")
	}

	if overlap := tokenOverlap(subject.Description, candidate.Description); overlap > 0 {
		score += overlap * d.cfg.DescriptionBonusMax
		reasons = append(reasons, fmt.Sprintf("description overlap %.0f%%", overlap*100))
	}

	if score > 100 {
		score = 100
	}
	return score, strings.Join(reasons, "; ")
}

// referenceBonus awards the fixed bonus when reference numbers tie the two
// transactions together, either directly or via a token embedded in the
// reversal's description.
func (d *ReversalDetector) referenceBonus(subject, candidate *BankTransaction) float64 {
	candidateRef := strings.ToUpper(strings.TrimSpace(candidate.ReferenceNumber))
	if candidateRef == "" {
		return 0
	}
	subjectRef := strings.ToUpper(strings.TrimSpace(subject.ReferenceNumber))
	if subjectRef != "" && subjectRef == candidateRef {
		return d.cfg.ReferenceBonus
	}
	if extracted := ExtractReferenceToken(subject.Description); extracted != "" && extracted == candidateRef {
		return d.cfg.ReferenceBonus
	}
	return 0
}

// RankCandidates scores every candidate and returns those with a positive
// score sorted by descending score, capped at MaxResults. Ties break on the
// more recent candidate date so ordering stays deterministic.
func (d *ReversalDetector) RankCandidates(subject *BankTransaction, candidates []*BankTransaction) []MatchCandidate {
	ranked := make([]MatchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || c.ID == subject.ID {
			continue
		}
		score, reason := d.ScoreCandidate(subject, c)
		if score <= 0 {
			continue
		}
		ranked = append(ranked, MatchCandidate{Transaction: c, Score: score, Reason: reason})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Transaction.TransactionDate.After(ranked[j].Transaction.TransactionDate)
	})

	if len(ranked) > d.cfg.MaxResults {
		ranked = ranked[:d.cfg.MaxResults]
	}
	return ranked
}

// LookbackWindow returns the [from, to] candidate search window for a
// reversal observed at the given date.
func (d *ReversalDetector) LookbackWindow(observedAt time.Time) (time.Time, time.Time) {
	return observedAt.AddDate(0, 0, -d.cfg.LookbackDays), observedAt
}

func dateDistanceDays(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	diff := da.Sub(db)
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours() / 24)
}

func tokenOverlap(a, b string) float64 {
	tokensA := normalizeTokens(a)
	tokensB := normalizeTokens(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(tokensA))
	for _, t := range tokensA {
		set[t] = struct{}{}
	}
	matches := 0
	for _, t := range tokensB {
		if _, ok := set[t]; ok {
			matches++
		}
	}

	denom := len(tokensB)
	if len(tokensA) > denom {
		denom = len(tokensA)
	}
	return float64(matches) / float64(denom)
}

var tokenSplitter = regexp.MustCompile(`[^a-z0-9]+`)

func normalizeTokens(s string) []string {
	raw := tokenSplitter.Split(strings.ToLower(s), -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		// Short tokens are connective noise ("to", "by", "of")
		if len(t) >= 3 {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
