package interview

import (
	"github.com/mkravets/excel-interviewer/internal/domain"
)

// Skill categories questions are grouped by.
const (
	CategoryBasicFunctions   = "basic_functions"
	CategoryLookupFunctions  = "lookup_functions"
	CategoryDataAnalysis     = "data_analysis"
	CategoryAdvancedFeatures = "advanced_features"
	CategoryDataManagement   = "data_management"
	CategoryProblemSolving   = "problem_solving"
	CategoryGeneral          = "general"
)

// ReportCategories is the fixed category set the report aggregator
// analyzes, in presentation order.
var ReportCategories = []string{
	CategoryBasicFunctions,
	CategoryLookupFunctions,
	CategoryDataAnalysis,
	CategoryAdvancedFeatures,
	CategoryProblemSolving,
}

// categoryKeywords maps each category to the Excel features that identify
// it. The evaluator derives a question's skill category from these lists;
// order matters because the first matching category wins.
var categoryKeywords = []struct {
	name     string
	keywords []string
}{
	{CategoryBasicFunctions, []string{"SUM", "AVERAGE", "COUNT", "MAX", "MIN"}},
	{CategoryLookupFunctions, []string{"VLOOKUP", "HLOOKUP", "INDEX", "MATCH", "XLOOKUP"}},
	{CategoryDataAnalysis, []string{"Pivot Tables", "Charts", "Data Validation", "Conditional Formatting"}},
	{CategoryAdvancedFeatures, []string{"Macros", "VBA", "Array Formulas", "Power Query", "Power Pivot"}},
	{CategoryDataManagement, []string{"Sorting", "Filtering", "Subtotals", "Grouping", "Freeze Panes"}},
}

// questionBank holds the static interview prompts per category.
var questionBank = map[string][]string{
	"introduction": {
		"Hello! I'm your AI Excel interviewer. Can you tell me about your Excel experience and what you're most comfortable working with?",
		"Welcome! Let's start with a brief introduction. How long have you been using Excel, and what's your primary use case?",
	},
	CategoryBasicFunctions: {
		"Can you explain the difference between SUM and SUMIF functions? When would you use each?",
		"How would you calculate the average of values in a range while excluding zeros?",
		"Explain how COUNT, COUNTA, and COUNTBLANK functions work and give examples of when you'd use each.",
	},
	CategoryLookupFunctions: {
		"Walk me through how VLOOKUP works. What are its limitations and when might you choose INDEX/MATCH instead?",
		"How would you handle a lookup scenario where you need to find the second occurrence of a value?",
		"Explain the difference between VLOOKUP and XLOOKUP. What advantages does XLOOKUP offer?",
	},
	CategoryDataAnalysis: {
		"Describe how you would create a pivot table to analyze sales data by region and product category.",
		"How would you use conditional formatting to highlight cells that are above the average value in a column?",
		"Explain data validation in Excel and provide a practical example of when you'd use it.",
	},
	CategoryAdvancedFeatures: {
		"Have you worked with Excel macros? Describe a scenario where you'd use a macro to automate a task.",
		"How would you handle a situation where you need to analyze data from multiple worksheets efficiently?",
		"Explain the concept of array formulas and provide an example of when they're useful.",
	},
	CategoryProblemSolving: {
		"You have a dataset with duplicate entries. Walk me through your approach to identify and remove duplicates while preserving the original data.",
		"How would you create a dynamic report that automatically updates when new data is added to your source?",
		"Describe how you would handle a scenario where you need to combine data from multiple Excel files with different structures.",
	},
}

// defaultQuestion is returned when a category has no entries at all.
const defaultQuestion = "Tell me about your experience with Excel functions."

// NextCategory returns the question category for the given zero-based
// question index. The sequence is fixed; the fourth question swaps
// advanced features for more data analysis when the candidate classified
// as a beginner.
func NextCategory(asked int, tier domain.SkillTier) string {
	switch asked {
	case 0:
		return CategoryBasicFunctions
	case 1:
		return CategoryLookupFunctions
	case 2:
		return CategoryDataAnalysis
	case 3:
		if tier == domain.TierBeginner {
			return CategoryDataAnalysis
		}
		return CategoryAdvancedFeatures
	default:
		return CategoryProblemSolving
	}
}

// Question returns the prompt to ask for a category. Unknown categories
// fall back to basic functions. Selection within a category is round-robin
// by the number of questions already served from it, so a category visited
// twice in one interview does not repeat its first prompt.
func Question(category string, served int) string {
	questions, ok := questionBank[category]
	if !ok || len(questions) == 0 {
		questions = questionBank[CategoryBasicFunctions]
	}
	if len(questions) == 0 {
		return defaultQuestion
	}
	return questions[served%len(questions)]
}

// GreetingQuestion returns a canned introduction prompt.
func GreetingQuestion(n int) string {
	greetings := questionBank["introduction"]
	if len(greetings) == 0 {
		return defaultQuestion
	}
	return greetings[n%len(greetings)]
}
