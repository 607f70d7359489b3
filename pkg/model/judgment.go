package model // import "github.com/joincivil/civil-content-registry/pkg/model"

// Verdicts returned in a Credibility
const (
	VerdictCredible    = "credible"
	VerdictMixed       = "mixed"
	VerdictNotCredible = "not_credible"
	VerdictUnknown     = "unknown"
)

const (
	// CredibleThreshold is the lowest merged score considered credible
	CredibleThreshold = 70
	// NotCredibleThreshold is the merged score below which content is not credible
	NotCredibleThreshold = 40
)

// NewJudgment is a convenience function to init a new Judgment
func NewJudgment(score int, verdict string, summary string) *Judgment {
	return &Judgment{score: score, verdict: verdict, summary: summary}
}

// Judgment is the opaque assessment of a single credibility oracle
type Judgment struct {
	score   int
	verdict string
	summary string
}

// Score returns the credibility score from 0 to 100
func (j *Judgment) Score() int {
	return j.score
}

// Verdict returns the oracle's verdict label
func (j *Judgment) Verdict() string {
	return j.verdict
}

// Summary returns the oracle's free text summary
func (j *Judgment) Summary() string {
	return j.summary
}

// NewSourceJudgment returns the judgment of a named source. A nil judgment
// marks the source as unavailable.
func NewSourceJudgment(source string, judgment *Judgment, errMsg string) *SourceJudgment {
	return &SourceJudgment{source: source, judgment: judgment, errMsg: errMsg}
}

// SourceJudgment is a judgment attributed to the oracle that produced it
type SourceJudgment struct {
	source   string
	judgment *Judgment
	errMsg   string
}

// Source returns the oracle name
func (s *SourceJudgment) Source() string {
	return s.source
}

// Available returns true if the oracle produced a judgment
func (s *SourceJudgment) Available() bool {
	return s.judgment != nil
}

// Judgment returns the judgment or nil if unavailable
func (s *SourceJudgment) Judgment() *Judgment {
	return s.judgment
}

// Error returns the reason the oracle was unavailable
func (s *SourceJudgment) Error() string {
	return s.errMsg
}

// NewCredibility is a convenience function to init a new Credibility
func NewCredibility(score int, verdict string, sources []*SourceJudgment) *Credibility {
	return &Credibility{score: score, verdict: verdict, sources: sources}
}

// Credibility is the merged assessment of all configured oracles
type Credibility struct {
	score   int
	verdict string
	sources []*SourceJudgment
}

// Score returns the mean score of the available judgments
func (c *Credibility) Score() int {
	return c.score
}

// Verdict returns the merged verdict, VerdictUnknown when no oracle answered
func (c *Credibility) Verdict() string {
	return c.verdict
}

// Sources returns the per-oracle judgments
func (c *Credibility) Sources() []*SourceJudgment {
	return c.sources
}
