package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// MockInterview is a generated mock interview owned by a user.
type MockInterview struct {
	MockID        string         `gorm:"type:char(36);primaryKey"`
	JobPosition   string         `gorm:"type:varchar(255);not null"`
	JobDesc       string         `gorm:"type:text;not null"`
	JobExperience string         `gorm:"type:varchar(50);not null"`
	Category      string         `gorm:"type:varchar(50);default:'general'"`
	QuestionList  datatypes.JSON `gorm:"type:jsonb"`
	CreatedBy     string         `gorm:"type:varchar(255);not null;index:idx_mock_interviews_created_by"`
	IsHidden      bool           `gorm:"default:false;index:idx_mock_interviews_is_hidden"`
	CreatedAt     time.Time      `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time      `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP;autoUpdateTime"`
}

func (MockInterview) TableName() string {
	return "mock_interviews"
}

// UserAnswer stores one answered interview question with its evaluation.
type UserAnswer struct {
	ID             uint64         `gorm:"primaryKey;autoIncrement"`
	MockID         string         `gorm:"type:char(36);not null;index:idx_user_answers_mock_id"`
	Question       string         `gorm:"type:text;not null"`
	CorrectAns     string         `gorm:"type:text"`
	UserAns        string         `gorm:"type:text"`
	Feedback       string         `gorm:"type:text"`
	Rating         string         `gorm:"type:varchar(10)"`
	Suggestions    string         `gorm:"type:text"`
	LabelScores    datatypes.JSON `gorm:"type:jsonb"`
	UserEmail      string         `gorm:"type:varchar(255);index:idx_user_answers_user_email"`
	NeedsFollowUp  bool           `gorm:"default:false"`
	InterviewType  string         `gorm:"type:varchar(50);default:'general'"`
	CombinedScore  *float64       `gorm:"type:numeric(4,1)"`
	CreatedAt      time.Time      `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time      `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP;autoUpdateTime"`

	MockInterview *MockInterview `gorm:"foreignKey:MockID;references:MockID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (UserAnswer) TableName() string {
	return "user_answers"
}

// ProctoringSession accumulates cheating-detection state for one
// (session, mock interview) pair. The JSON columns hold the rolling
// detection history and derived counters.
type ProctoringSession struct {
	ID                uint64         `gorm:"primaryKey;autoIncrement"`
	SessionID         string         `gorm:"type:varchar(100);not null;uniqueIndex:uq_proctoring_session_mock,priority:1"`
	MockID            string         `gorm:"type:char(36);not null;uniqueIndex:uq_proctoring_session_mock,priority:2;index:idx_proctoring_sessions_mock_id"`
	UserEmail         string         `gorm:"type:varchar(255)"`
	Status            string         `gorm:"type:varchar(20);default:'active';index:idx_proctoring_sessions_status"`
	StartedAt         time.Time      `gorm:"type:timestamptz;not null"`
	EndedAt           *time.Time     `gorm:"type:timestamptz"`
	DurationSeconds   int64          `gorm:"default:0"`
	RiskScore         int            `gorm:"default:0"`
	AlertsCount       int            `gorm:"default:0"`
	DetectionCount    int            `gorm:"default:0"`
	SeverityLevel     string         `gorm:"type:varchar(10);default:'low'"`
	Violations        datatypes.JSON `gorm:"type:jsonb"`
	Devices           datatypes.JSON `gorm:"type:jsonb"`
	MovementPatterns  datatypes.JSON `gorm:"type:jsonb"`
	DetectionHistory  datatypes.JSON `gorm:"type:jsonb"`
	Alerts            datatypes.JSON `gorm:"type:jsonb"`
	EnhancedMetrics   datatypes.JSON `gorm:"type:jsonb"`
	DetectionSettings datatypes.JSON `gorm:"type:jsonb"`
	LatestDetection   datatypes.JSON `gorm:"type:jsonb"`
	FinalAnalytics    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt         time.Time      `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time      `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP;autoUpdateTime"`

	MockInterview *MockInterview `gorm:"foreignKey:MockID;references:MockID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (ProctoringSession) TableName() string {
	return "proctoring_sessions"
}

// JobPosting is an open position candidates are matched against.
type JobPosting struct {
	JobID          string         `gorm:"type:char(36);primaryKey"`
	JobTitle       string         `gorm:"type:varchar(255);not null"`
	Company        string         `gorm:"type:varchar(255)"`
	City           string         `gorm:"type:varchar(255)"`
	JobDescription string         `gorm:"type:text"`
	Skills         string         `gorm:"type:text"` // comma-separated
	JobCategories  datatypes.JSON `gorm:"type:jsonb"`
	MinExperience  int            `gorm:"default:0"`
	Status         string         `gorm:"type:varchar(50);default:'ACTIVE';index:idx_job_postings_status"`
	CreatedAt      time.Time      `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time      `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP;autoUpdateTime"`
}

func (JobPosting) TableName() string {
	return "job_postings"
}

// UserProfile holds a candidate's profile data used for job matching.
type UserProfile struct {
	UserID          string         `gorm:"type:varchar(255);primaryKey"`
	Name            string         `gorm:"type:varchar(255)"`
	Email           string         `gorm:"type:varchar(255);index:idx_user_profiles_email"`
	Skills          datatypes.JSON `gorm:"type:jsonb"` // []string
	Experience      datatypes.JSON `gorm:"type:jsonb"` // []ExperienceEntry
	Education       datatypes.JSON `gorm:"type:jsonb"`
	CurrentPosition string         `gorm:"type:varchar(255)"`
	Location        string         `gorm:"type:varchar(255)"`
	CVObjectKey     string         `gorm:"type:varchar(1024)"`
	CVTextKey       string         `gorm:"type:varchar(1024)"`
	CVText          string         `gorm:"type:text"`
	CreatedAt       time.Time      `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time      `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP;autoUpdateTime"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// ToJSON marshals any value to datatypes.JSON.
func ToJSON(v interface{}) (datatypes.JSON, error) {
	bytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}
