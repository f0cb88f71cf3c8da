package interview

import (
	"context"
	"fmt"
	"strings"

	"i-hire-go/internal/constants"
	"i-hire-go/internal/evaluation"
	"i-hire-go/internal/logger"
	"i-hire-go/internal/parser"
	"i-hire-go/internal/storage"
	"i-hire-go/internal/storage/models"

	"github.com/gofrs/uuid/v5"
)

// ErrInterviewNotFound mirrors the storage sentinel for handler convenience.
var ErrInterviewNotFound = storage.ErrInterviewNotFound

// CreateRequest describes a mock interview to set up.
type CreateRequest struct {
	JobPosition   string `json:"jobPosition"`
	JobDesc       string `json:"jobDesc"`
	JobExperience string `json:"jobExperience"`
	Category      string `json:"category"`
	QuestionCount int    `json:"questionCount"`
	CreatedBy     string `json:"createdBy"`
}

// AnswerRequest is one answered question submitted for evaluation.
type AnswerRequest struct {
	MockID        string `json:"mockId"`
	Question      string `json:"question"`
	CorrectAns    string `json:"correctAns"`
	UserAns       string `json:"userAns"`
	UserEmail     string `json:"userEmail"`
	InterviewType string `json:"interviewType"`
}

// Service manages mock interview lifecycle: generation, listing, hiding,
// deletion and answer evaluation.
type Service struct {
	pg        *storage.Postgres
	generator *parser.QuestionGenerator
	evaluator *evaluation.Service
}

// NewService wires the interview service.
func NewService(pg *storage.Postgres, generator *parser.QuestionGenerator, evaluator *evaluation.Service) *Service {
	return &Service{
		pg:        pg,
		generator: generator,
		evaluator: evaluator,
	}
}

// Create generates the question set for the requested position and persists
// the interview under a new UUIDv7 ID.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*models.MockInterview, error) {
	if strings.TrimSpace(req.JobPosition) == "" {
		return nil, fmt.Errorf("job position is required")
	}
	if strings.TrimSpace(req.CreatedBy) == "" {
		return nil, fmt.Errorf("creator is required")
	}

	category := normalizeCategory(req.Category)

	questions, err := s.generator.Generate(ctx, &parser.QuestionRequest{
		JobPosition:    req.JobPosition,
		JobDescription: req.JobDesc,
		JobExperience:  req.JobExperience,
		Category:       category,
		QuestionCount:  req.QuestionCount,
	})
	if err != nil {
		return nil, fmt.Errorf("generating questions: %w", err)
	}

	questionList, err := models.ToJSON(questions)
	if err != nil {
		return nil, fmt.Errorf("encoding question list: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating interview id: %w", err)
	}

	mock := &models.MockInterview{
		MockID:        id.String(),
		JobPosition:   req.JobPosition,
		JobDesc:       req.JobDesc,
		JobExperience: req.JobExperience,
		Category:      category,
		QuestionList:  questionList,
		CreatedBy:     req.CreatedBy,
	}

	if err := s.pg.CreateMockInterview(ctx, mock); err != nil {
		return nil, err
	}

	logger.Info().
		Str("mock_id", mock.MockID).
		Str("job_position", mock.JobPosition).
		Str("category", mock.Category).
		Int("questions", len(questions)).
		Msg("mock interview created")
	return mock, nil
}

// List returns the user's visible interviews, newest first.
func (s *Service) List(ctx context.Context, createdBy string) ([]models.MockInterview, error) {
	return s.pg.FindMockInterviewsByUser(ctx, createdBy)
}

// Get fetches one interview by ID.
func (s *Service) Get(ctx context.Context, mockID string) (*models.MockInterview, error) {
	return s.pg.GetMockInterview(ctx, mockID)
}

// Hide flags an interview hidden so it drops out of listings. Answers and
// proctoring data stay in place.
func (s *Service) Hide(ctx context.Context, mockID string) error {
	if err := s.pg.SetMockInterviewHidden(ctx, mockID, true); err != nil {
		return err
	}
	logger.Info().Str("mock_id", mockID).Msg("mock interview hidden")
	return nil
}

// Delete removes an interview together with its answers and proctoring
// sessions.
func (s *Service) Delete(ctx context.Context, mockID string) error {
	if err := s.pg.DeleteMockInterview(ctx, mockID); err != nil {
		return err
	}
	logger.Info().Str("mock_id", mockID).Msg("mock interview deleted")
	return nil
}

// SubmitAnswer evaluates one answer and persists it with the evaluation
// attached. The interview's category is used when the request does not name
// an interview type.
func (s *Service) SubmitAnswer(ctx context.Context, req *AnswerRequest) (*evaluation.CombinedEvaluation, error) {
	if strings.TrimSpace(req.MockID) == "" || strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("mock id and question are required")
	}

	interviewType := req.InterviewType
	if interviewType == "" {
		if mock, err := s.pg.GetMockInterview(ctx, req.MockID); err == nil {
			interviewType = mock.Category
		}
	}

	result := s.evaluator.Evaluate(ctx, req.Question, req.UserAns, interviewType)

	answer, err := answerRecord(req, result)
	if err != nil {
		return nil, err
	}

	if err := s.pg.SaveUserAnswer(ctx, answer); err != nil {
		return nil, err
	}

	logger.Info().
		Str("mock_id", req.MockID).
		Str("interview_type", result.InterviewType).
		Float64("combined_score", result.CombinedScore).
		Bool("skipped", result.Skipped).
		Msg("answer evaluated")
	return result, nil
}

// answerRecord builds the persisted row for one evaluated answer. Skipped
// and degraded evaluations both flag the answer for follow-up so a default
// score is never mistaken for a real one.
func answerRecord(req *AnswerRequest, result *evaluation.CombinedEvaluation) (*models.UserAnswer, error) {
	labelScores, err := models.ToJSON(result.Result)
	if err != nil {
		return nil, fmt.Errorf("encoding label scores: %w", err)
	}

	return &models.UserAnswer{
		MockID:        req.MockID,
		Question:      req.Question,
		CorrectAns:    req.CorrectAns,
		UserAns:       req.UserAns,
		Feedback:      result.TraditionalFeedback.Feedback,
		Rating:        fmt.Sprintf("%.1f", result.TraditionalFeedback.Rating),
		Suggestions:   strings.Join(result.TraditionalFeedback.Suggestions, "; "),
		LabelScores:   labelScores,
		UserEmail:     req.UserEmail,
		NeedsFollowUp: result.Skipped || result.Degraded,
		InterviewType: result.InterviewType,
		CombinedScore: &result.CombinedScore,
	}, nil
}

// Answers lists the stored answers for one interview.
func (s *Service) Answers(ctx context.Context, mockID, userEmail string) ([]models.UserAnswer, error) {
	return s.pg.FindAnswersByMockID(ctx, mockID, userEmail)
}

func normalizeCategory(category string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
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
