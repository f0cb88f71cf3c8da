package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"i-hire-go/internal/constants"
	"i-hire-go/internal/logger"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Default number of questions generated per mock interview.
const DefaultQuestionCount = 5

// InterviewQuestion is one generated question with its model answer.
type InterviewQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QuestionRequest describes the interview to generate questions for.
type QuestionRequest struct {
	JobPosition    string
	JobDescription string
	JobExperience  string
	Category       string // technical, behavioral, leadership, general
	QuestionCount  int
}

// QuestionGenerator produces interview question sets with an LLM.
type QuestionGenerator struct {
	llmModel model.ToolCallingChatModel
}

// NewQuestionGenerator creates a generator backed by the given model.
func NewQuestionGenerator(llmModel model.ToolCallingChatModel) *QuestionGenerator {
	return &QuestionGenerator{llmModel: llmModel}
}

// Generate produces the question list for a mock interview. The system role
// is tailored to the interview category so behavioral interviews avoid
// technical questions and vice versa.
func (g *QuestionGenerator) Generate(ctx context.Context, req *QuestionRequest) ([]InterviewQuestion, error) {
	if g.llmModel == nil {
		return nil, fmt.Errorf("question generator has no model configured")
	}
	if strings.TrimSpace(req.JobPosition) == "" {
		return nil, fmt.Errorf("job position is required")
	}

	count := req.QuestionCount
	if count <= 0 {
		count = DefaultQuestionCount
	}

	messages := []*schema.Message{
		schema.SystemMessage(questionSystemMessage(req)),
		schema.UserMessage(buildQuestionPrompt(req, count)),
	}

	response, err := g.llmModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generating interview questions: %w", err)
	}

	questions, err := parseQuestionResponse(response.Content)
	if err != nil {
		logger.Warn().Err(err).Str("job_position", req.JobPosition).Msg("failed to parse question generation response")
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("model returned no questions")
	}
	return questions, nil
}

// questionSystemMessage picks the interviewer persona for the category.
func questionSystemMessage(req *QuestionRequest) string {
	switch strings.ToLower(strings.TrimSpace(req.Category)) {
	case constants.InterviewTypeBehavioral:
		return `Act as a highly experienced senior hiring manager, organizational psychologist, and behavioral strategist with 20+ years in evaluating talent across industries. Your expertise lies in uncovering a candidate's mindset, emotional intelligence, interpersonal strengths, leadership potential, and cultural adaptability — without relying on technical questions.

You are responsible for designing a deeply personalized, non-repetitive, and behavior-focused interview that analyzes how the candidate:
- Thinks under pressure
- Navigates team dynamics
- Leads or follows when appropriate
- Aligns with organizational values and long-term vision

Craft questions that reveal real behavioral depth, decision-making rationale, adaptability, communication style, resilience, and self-awareness. Focus on:
- Practical experiences (past challenges, tough choices, growth moments)
- Values, motivations, and internal drivers
- How the candidate interacts with people and systems
- Emotional agility and learning mindset

Do not ask technical or skill-assessment questions — your goal is to understand the human behind the resume.

The interview must feel insightful, structured, and tailored — just as a world-class behavioral panel would conduct.`
	case constants.InterviewTypeTechnical:
		return fmt.Sprintf(`You are an advanced AI interviewer with deep expertise across %s. You dynamically adapt your knowledge to match the specific job title, responsibilities, and required skills. For each interview, you generate insightful, industry-relevant, and challenging questions tailored to the job position. Also generate questions based on the candidate's experience: %s and customize your questions accordingly. Ensure the questions reflect real-world scenarios, best practices, and the latest industry standards.`,
			req.JobPosition, req.JobExperience)
	case constants.InterviewTypeLeadership:
		return `You are a seasoned executive coach and leadership assessor. You design interview questions that probe strategic thinking, people leadership, decision-making under ambiguity, stakeholder management, and organizational impact. Tailor every question to the candidate's role and seniority.`
	default:
		return "You are a helpful AI assistant skilled at generating structured interview questions."
	}
}

func buildQuestionPrompt(req *QuestionRequest, count int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Job Position: %s\n", req.JobPosition)
	fmt.Fprintf(&sb, "Job Description: %s\n", req.JobDescription)
	fmt.Fprintf(&sb, "Years of Experience: %s\n\n", req.JobExperience)
	fmt.Fprintf(&sb, "Based on this information, generate %d interview questions with answers.\n", count)
	sb.WriteString(`Return ONLY a JSON array, with no surrounding text, in this exact format:
[{"question": "...", "answer": "..."}]
Each answer should be a concise model answer an interviewer would accept as strong.`)
	return sb.String()
}

func parseQuestionResponse(content string) ([]InterviewQuestion, error) {
	cleaned := stripCodeFences(content)

	raw := extractJSONArray(cleaned)
	if raw == "" {
		// Some models wrap the array in an object like {"questions": [...]}.
		if obj := extractJSONObject(cleaned); obj != "" {
			var wrapper map[string]json.RawMessage
			if err := json.Unmarshal([]byte(obj), &wrapper); err == nil {
				for _, v := range wrapper {
					if trimmed := strings.TrimSpace(string(v)); strings.HasPrefix(trimmed, "[") {
						raw = trimmed
						break
					}
				}
			}
		}
	}
	if raw == "" {
		return nil, fmt.Errorf("no JSON array in model response")
	}

	var questions []InterviewQuestion
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, fmt.Errorf("parsing question JSON: %w", err)
	}

	filtered := questions[:0]
	for _, q := range questions {
		if strings.TrimSpace(q.Question) != "" {
			filtered = append(filtered, q)
		}
	}
	return filtered, nil
}
