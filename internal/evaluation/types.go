// Package evaluation turns free-text interview answers into a structured set
// of labeled judgments with a weighted overall score.
package evaluation

// SkipSentinel marks an answer the candidate explicitly skipped.
const SkipSentinel = "[SKIPPED]"

// LabelJudgment is one judgment emitted by the model for a named label.
type LabelJudgment struct {
	Value         string `json:"value"`
	Justification string `json:"justification"`
	Category      string `json:"category,omitempty"`
}

// LabelScoreDetail records how one label contributed to the overall score.
type LabelScoreDetail struct {
	LabelValue    string  `json:"label_value"`
	Score         float64 `json:"score"`
	Weight        float64 `json:"weight"`
	WeightedScore float64 `json:"weighted_score"`
	Justification string  `json:"justification"`
	Category      string  `json:"category"`
}

// Result is the outcome of evaluating one answer. The evaluator never fails;
// when an upstream problem forces a default result, Degraded is set so the
// condition stays observable.
type Result struct {
	Labels          map[string]LabelJudgment    `json:"labels"`
	EvaluationScore float64                     `json:"evaluation_score"`
	DetailedScores  map[string]LabelScoreDetail `json:"detailed_scores,omitempty"`
	Skipped         bool                        `json:"skipped"`
	InterviewType   string                      `json:"interview_type,omitempty"`
	LabelCategories map[string][]string         `json:"label_categories,omitempty"`
	Degraded        bool                        `json:"degraded,omitempty"`
	DegradedReason  string                      `json:"degraded_reason,omitempty"`
}

// TraditionalFeedback is the secondary free-form assessment produced by a
// separate prompt, kept for compatibility with the older feedback flow.
type TraditionalFeedback struct {
	Rating               float64  `json:"rating"`
	Feedback             string   `json:"feedback"`
	Suggestions          []string `json:"suggestions"`
	TranscriptionQuality int      `json:"transcriptionQuality"`
	Language             string   `json:"language"`
	OverallAssessment    string   `json:"overallAssessment"`
}

// CombinedEvaluation merges the label evaluation with the traditional
// feedback and their combined score.
type CombinedEvaluation struct {
	Result
	TraditionalFeedback TraditionalFeedback `json:"traditional_feedback"`
	CombinedScore       float64             `json:"combined_score"`
	Timestamp           string              `json:"timestamp"`
	LabelTemplateUsed   []string            `json:"label_template_used"`
}
