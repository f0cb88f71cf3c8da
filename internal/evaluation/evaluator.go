package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"i-hire-go/internal/constants"
	"i-hire-go/internal/logger"
	"i-hire-go/internal/scoring"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"
)

// Evaluator scores interview answers with an LLM-backed label extraction
// step followed by local weighted scoring.
type Evaluator struct {
	llmModel model.ToolCallingChatModel
}

// NewEvaluator creates an evaluator backed by the given chat model.
func NewEvaluator(llmModel model.ToolCallingChatModel) *Evaluator {
	return &Evaluator{llmModel: llmModel}
}

// EvaluateAnswer evaluates one answer. It never returns an error: any
// upstream failure degrades into a default mid-scale result.
func (e *Evaluator) EvaluateAnswer(ctx context.Context, question, answer, interviewType string) *Result {
	if strings.TrimSpace(answer) == "" || answer == SkipSentinel {
		return &Result{
			Skipped:         true,
			EvaluationScore: 0,
			Labels:          map[string]LabelJudgment{},
		}
	}

	interviewType = normalizeInterviewType(interviewType)

	if e.llmModel == nil {
		return e.defaultResult(interviewType, "evaluation model is not configured")
	}

	prompt := buildEvaluationPrompt(question, answer, interviewType)
	messages := []*einoschema.Message{
		einoschema.SystemMessage("You are a helpful assistant."),
		einoschema.UserMessage(prompt),
	}

	response, err := e.llmModel.Generate(ctx, messages)
	if err != nil {
		return e.defaultResult(interviewType, fmt.Sprintf("model call failed: %v", err))
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return e.defaultResult(interviewType, "empty model response")
	}

	labels, err := parseLabelJudgments(response.Content)
	if err != nil {
		return e.defaultResult(interviewType, fmt.Sprintf("malformed model response: %v", err))
	}
	if len(labels) == 0 {
		return e.defaultResult(interviewType, "model response contained no labels")
	}

	return e.scoreLabels(labels, interviewType)
}

// scoreLabels folds parsed judgments into weighted scores and an overall
// evaluation score.
func (e *Evaluator) scoreLabels(labels map[string]LabelJudgment, interviewType string) *Result {
	detailed := make(map[string]LabelScoreDetail, len(labels))
	categories := map[string][]string{
		"core": {}, "technical": {}, "behavioral": {}, "leadership": {}, "general": {},
	}

	var totalScore, totalWeight float64
	for label, judgment := range labels {
		value := strings.TrimSpace(judgment.Value)
		score := scoring.ScoreOrDefault(label, value)
		weight := scoring.Weight(label, interviewType)
		weighted := score * weight

		category := judgment.Category
		if category == "" {
			category = "GENERAL"
		}

		detailed[label] = LabelScoreDetail{
			LabelValue:    value,
			Score:         score,
			Weight:        weight,
			WeightedScore: weighted,
			Justification: judgment.Justification,
			Category:      category,
		}

		bucket := strings.ToLower(category)
		if _, ok := categories[bucket]; ok {
			categories[bucket] = append(categories[bucket], label)
		} else {
			categories["general"] = append(categories["general"], label)
		}

		totalScore += weighted
		totalWeight += weight
	}

	overall := scoring.DefaultScore
	if totalWeight > 0 {
		overall = roundTo1(totalScore / totalWeight)
	}

	return &Result{
		Labels:          labels,
		EvaluationScore: overall,
		DetailedScores:  detailed,
		Skipped:         false,
		InterviewType:   interviewType,
		LabelCategories: categories,
	}
}

// defaultResult is the degraded-but-usable evaluation served when anything
// upstream fails.
func (e *Evaluator) defaultResult(interviewType, reason string) *Result {
	logger.Warn().
		Str("interview_type", interviewType).
		Str("reason", reason).
		Msg("serving default evaluation")

	return &Result{
		Skipped:         false,
		EvaluationScore: scoring.DefaultScore,
		Labels: map[string]LabelJudgment{
			"Default Evaluation": {
				Value:         "Average",
				Justification: "Default evaluation due to " + reason + ".",
			},
		},
		InterviewType:  interviewType,
		Degraded:       true,
		DegradedReason: reason,
	}
}

func normalizeInterviewType(interviewType string) string {
	switch strings.ToLower(strings.TrimSpace(interviewType)) {
	case constants.InterviewTypeTechnical:
		return constants.InterviewTypeTechnical
	case constants.InterviewTypeBehavioral:
		return constants.InterviewTypeBehavioral
	case constants.InterviewTypeLeadership:
		return constants.InterviewTypeLeadership
	default:
		return constants.InterviewTypeGeneral
	}
}

// buildEvaluationPrompt instructs the model to emit the ten labels of the
// interview type's template, each with a standardized value and a
// justification. Scoring happens locally, never in the model.
func buildEvaluationPrompt(question, answer, interviewType string) string {
	template := scoring.LabelTemplate(interviewType)

	var sb strings.Builder
	sb.WriteString(`Act like a senior AI evaluation architect and enterprise prompt engineer with 15+ years of experience designing human-in-the-loop assessment systems for technical and behavioral interviews. You specialize in deconstructing candidate responses into detailed, structured labels that support manual review, fairness, and consistent interpretation across large-scale hiring processes.

You are tasked with extracting granular evaluation **labels** from a candidate's answer to an interview question. These labels will be **manually scored** later by a human reviewer. Your job is to output **descriptive label values and justifications** with no scoring or opinions.

`)
	sb.WriteString("**Interview Type**: ")
	sb.WriteString(titleCase(interviewType))
	sb.WriteString(`

Output a **JSON object** in this format:
{
  "Label Name": {
    "value": "STANDARDIZED_LABEL_VALUE",
    "justification": "Brief explanation of why the label applies, based only on the candidate's answer.",
    "category": "CORE|TECHNICAL|BEHAVIORAL|LEADERSHIP|GENERAL"
  },
  ...
}

Use **only** these standardized value types across labels:

`)
	for _, scale := range scoring.Scales {
		sb.WriteString(scale.Name)
		sb.WriteString(":['")
		sb.WriteString(strings.Join(scale.Values, "', '"))
		sb.WriteString("']\n\n")
	}

	sb.WriteString("**IMPORTANT**: Analyze the response and provide these specific labels based on the content and interview type:\n\n")
	for i, label := range template {
		fmt.Fprintf(&sb, "%d. **%s** - %s\n", i+1, label, scoring.LabelDescription(label))
	}

	sb.WriteString("\nThe interview question is:\n")
	sb.WriteString(question)
	sb.WriteString("\n\nThe candidate's answer is:\n")
	sb.WriteString(answer)
	sb.WriteString("\n\nTake a deep breath and work on this problem step-by-step.")

	return sb.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// parseLabelJudgments extracts and decodes the label object from raw model
// output, attempting quote sanitization before giving up.
func parseLabelJudgments(content string) (map[string]LabelJudgment, error) {
	processed := strings.TrimPrefix(strings.TrimSpace(content), "\uFEFF")

	jsonStr := extractJSONObject(processed)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON object found in model output")
	}

	if !utf8.ValidString(jsonStr) {
		jsonStr = strings.ToValidUTF8(jsonStr, "")
	}

	var labels map[string]LabelJudgment
	if err := json.Unmarshal([]byte(jsonStr), &labels); err != nil {
		fixed := sanitizeJSON(jsonStr)
		if fixErr := json.Unmarshal([]byte(fixed), &labels); fixErr != nil {
			return nil, fmt.Errorf("unmarshal failed after sanitization: %w", err)
		}
	}

	return labels, nil
}

// extractJSONObject returns the first brace-balanced JSON object in text.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	level := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			level++
		case '}':
			level--
			if level == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// sanitizeJSON escapes double quotes that sit inside string literals without
// terminating them, so slightly malformed model output still unmarshals. A
// quote counts as a real string end only when the next non-space character is
// JSON syntax (:, ,, ], }).
func sanitizeJSON(src string) string {
	var b strings.Builder
	inStr := false
	escaped := false

	for i := 0; i < len(src); i++ {
		c := src[i]

		switch {
		case c == '"' && !escaped:
			if !inStr {
				inStr = true
				b.WriteByte(c)
			} else {
				j := i + 1
				for j < len(src) && (src[j] == ' ' || src[j] == '\t' || src[j] == '\n' || src[j] == '\r') {
					j++
				}
				if j < len(src) && (src[j] == ':' || src[j] == ',' || src[j] == ']' || src[j] == '}') {
					inStr = false
					b.WriteByte(c)
				} else {
					b.WriteString("\\\"")
				}
			}
			escaped = false

		case c == '\\' && !escaped:
			escaped = true
			b.WriteByte(c)

		default:
			b.WriteByte(c)
			escaped = false
		}
	}

	return b.String()
}

func roundTo1(x float64) float64 {
	return math.Round(x*10) / 10
}
