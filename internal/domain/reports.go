package domain

import "fmt"

// SectionScores rates individual resume sections on a 1-10 scale.
type SectionScores struct {
	Skills        int `json:"skills"`
	Experience    int `json:"experience"`
	Education     int `json:"education"`
	OverallFormat int `json:"overall_format"`
}

// KeywordDensity summarizes keyword overlap between resume and job description.
type KeywordDensity struct {
	ResumeKeywordCount         int     `json:"resume_keyword_count"`
	JobDescriptionKeywordCount int     `json:"job_description_keyword_count"`
	MatchPercentage            float64 `json:"match_percentage"`
}

// ScoreReport is the ATS compatibility report for one resume against one job
// description. Produced fresh per scoring call and never persisted. A non-empty
// Error marks a degraded report synthesized after a generation failure.
type ScoreReport struct {
	ATSScore               int            `json:"ats_score"`
	MissingSkills          []string       `json:"missing_skills"`
	KeywordMatches         []string       `json:"keyword_matches"`
	ImprovementSuggestions []string       `json:"improvement_suggestions"`
	SectionScores          SectionScores  `json:"section_scores"`
	DetailedAnalysis       string         `json:"detailed_analysis"`
	KeywordDensity         KeywordDensity `json:"keyword_density"`
	Error                  string         `json:"error,omitempty"`
}

// Validate checks that every numeric score falls in the declared 1-10 range.
// A report parsed from a generation response that fails validation is treated
// as a generation error, not a partial read.
func (r *ScoreReport) Validate() error {
	if err := checkScore("ats_score", r.ATSScore); err != nil {
		return err
	}
	sections := []struct {
		name  string
		value int
	}{
		{"section_scores.skills", r.SectionScores.Skills},
		{"section_scores.experience", r.SectionScores.Experience},
		{"section_scores.education", r.SectionScores.Education},
		{"section_scores.overall_format", r.SectionScores.OverallFormat},
	}
	for _, s := range sections {
		if err := checkScore(s.name, s.value); err != nil {
			return err
		}
	}
	return nil
}

// Normalize replaces nil slices with empty ones so encoded reports always
// carry the declared fields.
func (r *ScoreReport) Normalize() {
	if r.MissingSkills == nil {
		r.MissingSkills = []string{}
	}
	if r.KeywordMatches == nil {
		r.KeywordMatches = []string{}
	}
	if r.ImprovementSuggestions == nil {
		r.ImprovementSuggestions = []string{}
	}
}

// ComparisonReport contrasts an original resume with its optimized version.
type ComparisonReport struct {
	OriginalScore       int      `json:"original_score"`
	OptimizedScore      int      `json:"optimized_score"`
	ScoreImprovement    int      `json:"score_improvement"`
	KeyImprovements     []string `json:"key_improvements"`
	AddedKeywords       []string `json:"added_keywords"`
	ReformattedSections []string `json:"reformatted_sections"`
	BeforeAfterAnalysis string   `json:"before_after_analysis"`
	Error               string   `json:"error,omitempty"`
}

// Validate checks the declared 1-10 score ranges.
func (r *ComparisonReport) Validate() error {
	if err := checkScore("original_score", r.OriginalScore); err != nil {
		return err
	}
	return checkScore("optimized_score", r.OptimizedScore)
}

// Normalize replaces nil slices with empty ones.
func (r *ComparisonReport) Normalize() {
	if r.KeyImprovements == nil {
		r.KeyImprovements = []string{}
	}
	if r.AddedKeywords == nil {
		r.AddedKeywords = []string{}
	}
	if r.ReformattedSections == nil {
		r.ReformattedSections = []string{}
	}
}

// EnhancementResult is the outcome of a retrieval-augmented resume rewrite.
type EnhancementResult struct {
	EnhancedResume      string `json:"enhanced_resume"`
	Explanation         string `json:"explanation"`
	SimilarResumesCount int    `json:"similar_resumes_count"`
}

// StructuredResume is the structured representation extracted from raw resume
// text. Experience and Education entries stay schemaless since generation
// output varies in shape between resumes.
type StructuredResume struct {
	Summary    string           `json:"summary"`
	Skills     []string         `json:"skills"`
	Experience []map[string]any `json:"experience"`
	Education  []map[string]any `json:"education"`
}

func checkScore(name string, v int) error {
	if v < 1 || v > 10 {
		return fmt.Errorf("%s must be between 1 and 10, got %d", name, v)
	}
	return nil
}
