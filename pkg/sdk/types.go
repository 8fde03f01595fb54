package resumeforge

import (
	"github.com/resumeforge/resumeforge/internal/domain"
	"github.com/resumeforge/resumeforge/internal/usecase/parse"
)

// Result types re-exported from the domain layer.
type (
	// SimilarityResult is a single retrieval hit; Score is squared L2 distance.
	SimilarityResult = domain.SimilarityResult
	// EnhancementResult is the outcome of a retrieval-augmented resume rewrite.
	EnhancementResult = domain.EnhancementResult
	// ScoreReport is the ATS compatibility report.
	ScoreReport = domain.ScoreReport
	// ComparisonReport contrasts an original resume with its optimized version.
	ComparisonReport = domain.ComparisonReport
	// StructuredResume is the structured representation of raw resume text.
	StructuredResume = domain.StructuredResume
	// ParseResult bundles extracted skills and the structured resume.
	ParseResult = parse.Result
	// JobPosting is one job search result.
	JobPosting = domain.JobPosting
)
