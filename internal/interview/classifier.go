package interview

import (
	"strings"

	"github.com/mkravets/excel-interviewer/internal/domain"
)

// Indicator vocabularies for the initial skill classification. Checked in
// priority order: an advanced hit wins over intermediate, which wins over
// the beginner default.
var (
	advancedIndicators     = []string{"vba", "macro", "power query", "power pivot", "advanced", "complex"}
	intermediateIndicators = []string{"pivot table", "vlookup", "index match", "conditional formatting"}
)

// Classify infers a skill tier from the candidate's introduction. The
// classification happens exactly once per interview; later answers never
// change the tier.
func Classify(introduction string) domain.SkillTier {
	lower := strings.ToLower(introduction)

	for _, indicator := range advancedIndicators {
		if strings.Contains(lower, indicator) {
			return domain.TierAdvanced
		}
	}
	for _, indicator := range intermediateIndicators {
		if strings.Contains(lower, indicator) {
			return domain.TierIntermediate
		}
	}
	return domain.TierBeginner
}
