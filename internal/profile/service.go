// Package profile manages candidate profiles and the CV analysis pipeline:
// upload, text extraction, LLM parsing and profile merge.
package profile

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"i-hire-go/internal/logger"
	"i-hire-go/internal/parser"
	"i-hire-go/internal/storage"
	"i-hire-go/internal/storage/models"

	"gorm.io/gorm"
)

// ErrProfileNotFound is returned when the user has no stored profile.
var ErrProfileNotFound = errors.New("user profile not found")

// ErrNoCV is returned when a profile exists but has no uploaded CV.
var ErrNoCV = errors.New("no cv uploaded for this profile")

// presignExpiry bounds the lifetime of generated CV download links.
const presignExpiry = 15 * time.Minute

// ExperienceEntry mirrors the experience JSON stored on the profile row.
type ExperienceEntry struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Duration string `json:"duration"`
}

// EducationEntry mirrors the education JSON stored on the profile row.
type EducationEntry struct {
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Institution string `json:"institution"`
}

// UpdateRequest carries profile fields edited by the user.
type UpdateRequest struct {
	Name            string            `json:"name"`
	Email           string            `json:"email"`
	Skills          []string          `json:"skills"`
	Experience      []ExperienceEntry `json:"experience"`
	Education       []EducationEntry  `json:"education"`
	CurrentPosition string            `json:"currentPosition"`
	Location        string            `json:"location"`
}

// AnalysisResult is the outcome of the CV analysis pipeline.
type AnalysisResult struct {
	Profile     *parser.CVProfile `json:"profile"`
	CVObjectKey string            `json:"cvObjectKey"`
	CVTextKey   string            `json:"cvTextKey"`
	TextLength  int               `json:"textLength"`
}

// Service manages user profiles and CV analysis.
type Service struct {
	pg        *storage.Postgres
	store     storage.ObjectStorage
	extractor parser.DocumentExtractor
	profiles  *parser.ProfileExtractor
}

// NewService wires the profile service.
func NewService(pg *storage.Postgres, store storage.ObjectStorage, extractor parser.DocumentExtractor, profiles *parser.ProfileExtractor) *Service {
	return &Service{
		pg:        pg,
		store:     store,
		extractor: extractor,
		profiles:  profiles,
	}
}

// Get fetches a user's profile.
func (s *Service) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.pg.GetUserProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	return profile, nil
}

// Upsert stores the user-edited profile fields, preserving any CV data
// already attached to the profile.
func (s *Service) Upsert(ctx context.Context, userID string, req *UpdateRequest) (*models.UserProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id is required")
	}

	profile := &models.UserProfile{
		UserID:          userID,
		Name:            req.Name,
		Email:           req.Email,
		CurrentPosition: req.CurrentPosition,
		Location:        req.Location,
	}

	if existing, err := s.pg.GetUserProfile(ctx, userID); err == nil {
		profile.CVObjectKey = existing.CVObjectKey
		profile.CVTextKey = existing.CVTextKey
		profile.CVText = existing.CVText
	}

	var err error
	if profile.Skills, err = models.ToJSON(orEmptySlice(req.Skills)); err != nil {
		return nil, fmt.Errorf("encoding skills: %w", err)
	}
	if profile.Experience, err = models.ToJSON(orEmptyExperience(req.Experience)); err != nil {
		return nil, fmt.Errorf("encoding experience: %w", err)
	}
	if profile.Education, err = models.ToJSON(orEmptyEducation(req.Education)); err != nil {
		return nil, fmt.Errorf("encoding education: %w", err)
	}

	if err := s.pg.UpsertUserProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}
	return profile, nil
}

// CVDownload is one prepared CV download. Exactly one of URL, Data, or Text
// is populated depending on the requested format.
type CVDownload struct {
	Format      string
	URL         string
	FileName    string
	ContentType string
	Data        []byte
	Text        string
}

// DownloadCV prepares the stored CV for download. format is "url" (default,
// a presigned link), "file" (the original bytes), or "text" (the extracted
// text).
func (s *Service) DownloadCV(ctx context.Context, userID, format string) (*CVDownload, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id is required")
	}

	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.CVObjectKey == "" {
		return nil, ErrNoCV
	}

	switch format {
	case "text":
		text := profile.CVText
		if profile.CVTextKey != "" {
			if stored, err := s.store.GetCVText(ctx, profile.CVTextKey); err == nil {
				text = stored
			}
		}
		if text == "" {
			return nil, ErrNoCV
		}
		return &CVDownload{Format: "text", Text: text}, nil

	case "file":
		data, err := s.store.GetCV(ctx, profile.CVObjectKey)
		if err != nil {
			return nil, fmt.Errorf("downloading cv original: %w", err)
		}
		contentType := mime.TypeByExtension(filepath.Ext(profile.CVObjectKey))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		return &CVDownload{
			Format:      "file",
			FileName:    path.Base(profile.CVObjectKey),
			ContentType: contentType,
			Data:        data,
		}, nil

	default:
		url, err := s.store.GetPresignedURL(ctx, profile.CVObjectKey, presignExpiry)
		if err != nil {
			return nil, fmt.Errorf("presigning cv download: %w", err)
		}
		return &CVDownload{Format: "url", URL: url}, nil
	}
}

// AnalyzeCV runs the full pipeline for an uploaded CV: store the original,
// extract its text, parse the text into structured data with the LLM, and
// merge the result into the user's profile.
func (s *Service) AnalyzeCV(ctx context.Context, userID, filename string, data []byte) (*AnalysisResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("cv file is empty")
	}

	objectKey, err := s.store.UploadCVFromBytes(ctx, userID, filepath.Ext(filename), data)
	if err != nil {
		return nil, fmt.Errorf("storing cv original: %w", err)
	}

	text, _, err := s.extractor.ExtractText(ctx, data, filename)
	if err != nil {
		return nil, fmt.Errorf("extracting cv text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text could be extracted from the cv")
	}

	textKey, err := s.store.UploadCVText(ctx, userID, text)
	if err != nil {
		// The parsed text cache is an optimization; analysis continues.
		logger.Warn().Err(err).Str("user_id", userID).Msg("failed to store extracted cv text")
	}

	cvProfile, err := s.profiles.Extract(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("parsing cv: %w", err)
	}

	previousKey, err := s.mergeProfile(ctx, userID, cvProfile, objectKey, textKey, text)
	if err != nil {
		return nil, err
	}
	if previousKey != "" && previousKey != objectKey {
		if err := s.store.DeleteCV(ctx, previousKey); err != nil {
			logger.Warn().Err(err).Str("object_key", previousKey).Msg("failed to remove replaced cv original")
		}
	}

	logger.Info().
		Str("user_id", userID).
		Str("cv_object_key", objectKey).
		Int("text_length", len(text)).
		Int("skills", len(cvProfile.Skills)).
		Msg("cv analyzed")

	return &AnalysisResult{
		Profile:     cvProfile,
		CVObjectKey: objectKey,
		CVTextKey:   textKey,
		TextLength:  len(text),
	}, nil
}

// mergeProfile folds extracted CV data into the stored profile. It returns
// the object key the profile held before the merge so the caller can clean up
// the replaced original.
func (s *Service) mergeProfile(ctx context.Context, userID string, cv *parser.CVProfile, objectKey, textKey, text string) (string, error) {
	profile, err := s.pg.GetUserProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("loading profile: %w", err)
		}
		profile = &models.UserProfile{UserID: userID}
	}
	previousKey := profile.CVObjectKey

	if err := applyCVToProfile(profile, cv, objectKey, textKey, text); err != nil {
		return "", err
	}

	if err := s.pg.UpsertUserProfile(ctx, profile); err != nil {
		return "", fmt.Errorf("saving profile: %w", err)
	}
	return previousKey, nil
}

// applyCVToProfile writes extracted CV data onto the profile row. Extracted
// values win over stale profile fields but never blank out existing data.
func applyCVToProfile(profile *models.UserProfile, cv *parser.CVProfile, objectKey, textKey, text string) error {
	var err error

	if cv.Name != "" {
		profile.Name = cv.Name
	}
	if cv.Email != "" {
		profile.Email = cv.Email
	}
	if len(cv.Skills) > 0 {
		if profile.Skills, err = models.ToJSON(cv.Skills); err != nil {
			return fmt.Errorf("encoding skills: %w", err)
		}
	}
	if len(cv.Experience) > 0 {
		entries := make([]ExperienceEntry, 0, len(cv.Experience))
		for _, exp := range cv.Experience {
			entries = append(entries, ExperienceEntry{
				Title:    exp.Position,
				Company:  exp.Company,
				Duration: exp.Duration,
			})
		}
		if profile.Experience, err = models.ToJSON(entries); err != nil {
			return fmt.Errorf("encoding experience: %w", err)
		}
		if profile.CurrentPosition == "" {
			profile.CurrentPosition = cv.Experience[0].Position
		}
	}
	if len(cv.Education) > 0 {
		entries := make([]EducationEntry, 0, len(cv.Education))
		for _, edu := range cv.Education {
			entries = append(entries, EducationEntry{
				Degree:      edu.Degree,
				Institution: edu.Institution,
			})
		}
		if profile.Education, err = models.ToJSON(entries); err != nil {
			return fmt.Errorf("encoding education: %w", err)
		}
	}

	profile.CVObjectKey = objectKey
	if textKey != "" {
		profile.CVTextKey = textKey
	}
	profile.CVText = text
	return nil
}

func orEmptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyExperience(s []ExperienceEntry) []ExperienceEntry {
	if s == nil {
		return []ExperienceEntry{}
	}
	return s
}

func orEmptyEducation(s []EducationEntry) []EducationEntry {
	if s == nil {
		return []EducationEntry{}
	}
	return s
}
