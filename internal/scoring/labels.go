// Package scoring holds the static label vocabulary used to turn the
// qualitative judgments emitted by the evaluation model into numeric scores.
package scoring

import (
	"i-hire-go/internal/logger"
)

// DefaultScore is returned for label values not present in the table.
const DefaultScore = 5.0

// Scale is one ordered enumeration of standardized label values.
type Scale struct {
	Name   string
	Values []string
}

// Scales lists every standardized value enumeration, in the order they are
// presented to the model. Most scales map near-linearly onto [0,10]; the
// answer-length scale is intentionally non-monotonic ("Medium" peaks, both
// extremes score low).
var Scales = []Scale{
	{"Degree-based", []string{"None", "Minimal", "Low", "Moderate", "Considerable", "High", "Extensive"}},
	{"Quality-based", []string{"Very Poor", "Poor", "Below Average", "Average", "Above Average", "Strong", "Excellent", "Exceptional"}},
	{"Binary", []string{"Not Detected", "Partially Detected", "Detected", "Clearly Evident"}},
	{"Expression-based", []string{"Incoherent", "Confusing", "Verbose", "Wordy", "Adequately Expressed", "Clear", "Concise", "Highly Articulate"}},
	{"Structure", []string{"Unstructured", "Poorly Structured", "Partially Structured", "Mostly Structured", "Logically Structured", "Well-Organized"}},
	{"Relevance", []string{"Not Relevant", "Marginally Relevant", "Partially Relevant", "Generally Relevant", "Relevant", "Highly Relevant", "Directly Aligned"}},
	{"Technical Accuracy", []string{"Incorrect", "Mostly Incorrect", "Partially Correct", "Generally Correct", "Mostly Correct", "Fully Correct", "Technically Precise"}},
	{"Collaboration", []string{"Sole Contribution", "Minimal Collaboration", "Moderate Collaboration", "Effective Teamwork", "Highly Collaborative", "Seamless Integration"}},
	{"Impact", []string{"No Impact", "Negligible Impact", "Low Impact", "Moderate Impact", "Strong Impact", "High Impact", "Transformational Impact"}},
	{"Leadership", []string{"No Leadership", "Minimal Leadership", "Emerging Leader", "Effective Leader", "Strong Leader", "Exceptional Leader"}},
	{"Innovation", []string{"No Innovation", "Basic Innovation", "Moderate Innovation", "Good Innovation", "Strong Innovation", "Breakthrough Innovation"}},
	{"Adaptability", []string{"Rigid", "Somewhat Flexible", "Moderately Adaptable", "Adaptable", "Highly Adaptable", "Exceptionally Adaptable"}},
	{"Cultural Fit", []string{"Poor Fit", "Questionable Fit", "Adequate Fit", "Good Fit", "Strong Fit", "Perfect Fit"}},
	{"Stress Management", []string{"Poor Under Pressure", "Struggles Under Pressure", "Handles Pressure Adequately", "Good Under Pressure", "Thrives Under Pressure", "Exceptional Under Pressure"}},
	{"Learning Ability", []string{"Slow Learner", "Moderate Learner", "Good Learner", "Fast Learner", "Quick Learner", "Exceptional Learner"}},
	{"Problem Complexity", []string{"Simple Problems", "Basic Problems", "Moderate Problems", "Complex Problems", "Very Complex Problems", "Extremely Complex Problems"}},
	{"Communication Style", []string{"Unclear", "Somewhat Clear", "Generally Clear", "Clear", "Very Clear", "Exceptionally Clear"}},
	{"Professional Maturity", []string{"Immature", "Somewhat Mature", "Moderately Mature", "Mature", "Very Mature", "Exceptionally Mature"}},
	{"Team Dynamics", []string{"Disruptive", "Neutral", "Supportive", "Collaborative", "Enhancing", "Transformative"}},
	{"Answer Length", []string{"Extremely Short", "Very Short", "Short", "Medium", "Detailed", "Long", "Very Long", "Excessively Long"}},
	{"Answer Completeness", []string{"Not Complete", "Partially Complete", "Mostly Complete", "Complete", "Thoroughly Complete"}},
}

// labelScores maps every standardized value to a score in [0,10].
// "Clear" appears in two scales; 6 (communication style) is its value here.
var labelScores = map[string]float64{
	// Degree-based
	"None": 0, "Minimal": 1.7, "Low": 3.3, "Moderate": 5, "Considerable": 6.7, "High": 8.3, "Extensive": 10,

	// Quality-based
	"Very Poor": 0, "Poor": 2, "Below Average": 4, "Average": 5, "Above Average": 6, "Strong": 7.5, "Excellent": 9, "Exceptional": 10,

	// Binary
	"Not Detected": 0, "Partially Detected": 3.3, "Detected": 6.7, "Clearly Evident": 10,

	// Expression-based
	"Incoherent": 0, "Confusing": 2, "Verbose": 4, "Wordy": 5, "Adequately Expressed": 6, "Concise": 9, "Highly Articulate": 10,

	// Structure
	"Unstructured": 0, "Poorly Structured": 2, "Partially Structured": 4, "Mostly Structured": 6, "Logically Structured": 8, "Well-Organized": 10,

	// Relevance
	"Not Relevant": 0, "Marginally Relevant": 1.7, "Partially Relevant": 3.3, "Generally Relevant": 5, "Relevant": 6.7, "Highly Relevant": 8.3, "Directly Aligned": 10,

	// Technical accuracy
	"Incorrect": 0, "Mostly Incorrect": 1.7, "Partially Correct": 3.3, "Generally Correct": 5, "Mostly Correct": 6.7, "Fully Correct": 8.3, "Technically Precise": 10,

	// Collaboration
	"Sole Contribution": 2, "Minimal Collaboration": 4, "Moderate Collaboration": 6, "Effective Teamwork": 7.5, "Highly Collaborative": 9, "Seamless Integration": 10,

	// Impact
	"No Impact": 0, "Negligible Impact": 1.7, "Low Impact": 3.3, "Moderate Impact": 5, "Strong Impact": 6.7, "High Impact": 8.3, "Transformational Impact": 10,

	// Answer length, non-monotonic
	"Extremely Short": 1, "Very Short": 2.5, "Short": 5, "Medium": 10, "Detailed": 8, "Long": 6, "Very Long": 3, "Excessively Long": 1,

	// Answer completeness
	"Not Complete": 0, "Partially Complete": 3, "Mostly Complete": 6, "Complete": 8, "Thoroughly Complete": 10,

	// Leadership
	"No Leadership": 0, "Minimal Leadership": 2, "Emerging Leader": 4, "Effective Leader": 6, "Strong Leader": 8, "Exceptional Leader": 10,

	// Innovation
	"No Innovation": 0, "Basic Innovation": 2, "Moderate Innovation": 4, "Good Innovation": 6, "Strong Innovation": 8, "Breakthrough Innovation": 10,

	// Adaptability
	"Rigid": 0, "Somewhat Flexible": 2, "Moderately Adaptable": 4, "Adaptable": 6, "Highly Adaptable": 8, "Exceptionally Adaptable": 10,

	// Cultural fit
	"Poor Fit": 0, "Questionable Fit": 2, "Adequate Fit": 4, "Good Fit": 6, "Strong Fit": 8, "Perfect Fit": 10,

	// Stress management
	"Poor Under Pressure": 0, "Struggles Under Pressure": 2, "Handles Pressure Adequately": 4, "Good Under Pressure": 6, "Thrives Under Pressure": 8, "Exceptional Under Pressure": 10,

	// Learning ability
	"Slow Learner": 0, "Moderate Learner": 2, "Good Learner": 4, "Fast Learner": 6, "Quick Learner": 8, "Exceptional Learner": 10,

	// Problem complexity
	"Simple Problems": 0, "Basic Problems": 2, "Moderate Problems": 4, "Complex Problems": 6, "Very Complex Problems": 8, "Extremely Complex Problems": 10,

	// Communication style
	"Unclear": 0, "Somewhat Clear": 2, "Generally Clear": 4, "Clear": 6, "Very Clear": 8, "Exceptionally Clear": 10,

	// Professional maturity
	"Immature": 0, "Somewhat Mature": 2, "Moderately Mature": 4, "Mature": 6, "Very Mature": 8, "Exceptionally Mature": 10,

	// Team dynamics
	"Disruptive": 0, "Neutral": 2, "Supportive": 4, "Collaborative": 6, "Enhancing": 8, "Transformative": 10,
}

// Score returns the numeric score for a standardized label value.
func Score(value string) (float64, bool) {
	s, ok := labelScores[value]
	return s, ok
}

// ScoreOrDefault returns the score for a label value, falling back to
// DefaultScore for unrecognized values. Lookup never fails.
func ScoreOrDefault(label, value string) float64 {
	if s, ok := labelScores[value]; ok {
		return s
	}

	logger.Debug().
		Str("label", label).
		Str("value", value).
		Msg("unrecognized label value, using default score")
	return DefaultScore
}

// KnownValues returns a copy of every value present in the score table.
func KnownValues() []string {
	values := make([]string, 0, len(labelScores))
	for v := range labelScores {
		values = append(values, v)
	}
	return values
}
