package oracle // import "github.com/joincivil/civil-content-registry/pkg/oracle"

import (
	"math"

	"github.com/joincivil/civil-content-registry/pkg/model"
)

// Merge combines per-oracle judgments into one credibility. The score is the
// rounded mean of the available judgments and the verdict follows from it.
// With no available judgment the verdict is unknown.
func Merge(judgments []*model.SourceJudgment) *model.Credibility {
	total := 0
	available := 0
	for _, sj := range judgments {
		if !sj.Available() {
			continue
		}
		total += sj.Judgment().Score()
		available++
	}
	if available == 0 {
		return model.NewCredibility(0, model.VerdictUnknown, judgments)
	}
	score := int(math.Round(float64(total) / float64(available)))
	return model.NewCredibility(score, verdictForScore(score), judgments)
}

func verdictForScore(score int) string {
	switch {
	case score >= model.CredibleThreshold:
		return model.VerdictCredible
	case score < model.NotCredibleThreshold:
		return model.VerdictNotCredible
	}
	return model.VerdictMixed
}
