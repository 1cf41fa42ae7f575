package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleCandidate = "candidate"
	RoleEmployer  = "employer"
)

type User struct {
	ID                       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email                    string    `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	FullName                 string    `gorm:"type:varchar(255)" json:"full_name"`
	Role                     string    `gorm:"type:varchar(20);default:candidate" json:"role"`
	PersonalityTestCompleted bool      `gorm:"default:false" json:"personality_test_completed"`
	AIAnalysisCompleted      bool      `gorm:"default:false" json:"ai_analysis_completed"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	newID(&u.ID)
	return nil
}

// CandidateProfile is the job seeker's profile. Personal info columns are
// refreshed from parsed resumes; the full structured resume is kept as JSON.
type CandidateProfile struct {
	ID                       uuid.UUID                          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                   uuid.UUID                          `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	FullName                 string                             `gorm:"type:varchar(255)" json:"full_name"`
	Email                    string                             `gorm:"type:varchar(255)" json:"email"`
	Phone                    string                             `gorm:"type:varchar(50)" json:"phone"`
	Location                 string                             `gorm:"type:varchar(255)" json:"location"`
	LinkedInURL              string                             `gorm:"column:linkedin_url;type:varchar(255)" json:"linkedin_url"`
	GitHubURL                string                             `gorm:"column:github_url;type:varchar(255)" json:"github_url"`
	WebsiteURL               string                             `gorm:"type:varchar(255)" json:"website_url"`
	Summary                  string                             `gorm:"type:text" json:"summary"`
	Skills                   datatypes.JSONSlice[string]        `json:"skills"`
	Resume                   datatypes.JSONType[*ResumeProfile] `json:"resume"`
	ResumeFilename           string                             `gorm:"type:varchar(255)" json:"resume_filename"`
	ResumeParsedAt           *time.Time                         `json:"resume_parsed_at"`
	PersonalityTestCompleted bool                               `gorm:"default:false" json:"personality_test_completed"`
	AIAnalysisCompleted      bool                               `gorm:"default:false" json:"ai_analysis_completed"`
	CreatedAt                time.Time                          `json:"created_at"`
	UpdatedAt                time.Time                          `json:"updated_at"`
}

func (p *CandidateProfile) BeforeCreate(tx *gorm.DB) error {
	newID(&p.ID)
	return nil
}

// ResumeData returns the parsed resume, or nil when none has been stored.
func (p *CandidateProfile) ResumeData() *ResumeProfile {
	return p.Resume.Data()
}
