package interview

import (
	"testing"

	"github.com/mkravets/excel-interviewer/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		introduction string
		want         domain.SkillTier
	}{
		{"vba user", "I use VBA and macros daily to automate reporting", domain.TierAdvanced},
		{"power query", "Mostly Power Query for cleaning up exports", domain.TierAdvanced},
		{"pivot tables", "I build pivot tables for the monthly numbers", domain.TierIntermediate},
		{"vlookup", "Lots of VLOOKUP between sheets", domain.TierIntermediate},
		{"plain user", "I mostly type numbers into spreadsheets", domain.TierBeginner},
		{"empty", "", domain.TierBeginner},
		// Advanced indicators win even when intermediate ones also match.
		{"mixed", "Complex pivot table setups with conditional formatting", domain.TierAdvanced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.introduction); got != tt.want {
				t.Errorf("Expected tier %q, got %q", tt.want, got)
			}
		})
	}
}
