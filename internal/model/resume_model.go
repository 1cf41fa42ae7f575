package model

// ResumeProfile is the structured candidate data extracted from a resume.
type ResumeProfile struct {
	PersonalInfo        PersonalInfo      `json:"personal_info"`
	ProfessionalSummary string            `json:"professional_summary"`
	Experience          []ExperienceEntry `json:"experience"`
	Education           []EducationEntry  `json:"education"`
	Skills              []string          `json:"skills"`
	Languages           []string          `json:"languages"`
	Certifications      []string          `json:"certifications"`
	ConfidenceScores    *ResumeConfidence `json:"confidence_scores,omitempty"`
}

type PersonalInfo struct {
	FullName    string `json:"full_name" validate:"notblank"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone,omitempty"`
	Location    string `json:"location,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
	GitHubURL   string `json:"github_url,omitempty"`
	WebsiteURL  string `json:"website_url,omitempty"`
}

type ExperienceEntry struct {
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	Location     string   `json:"location,omitempty"`
	StartDate    *string  `json:"start_date"`
	EndDate      *string  `json:"end_date"`
	IsCurrent    bool     `json:"is_current"`
	Description  string   `json:"description,omitempty"`
	Achievements []string `json:"achievements"`
}

type EducationEntry struct {
	Institution  string   `json:"institution"`
	Degree       string   `json:"degree"`
	FieldOfStudy string   `json:"field_of_study,omitempty"`
	StartDate    *string  `json:"start_date"`
	EndDate      *string  `json:"end_date"`
	GPA          *float64 `json:"gpa,omitempty"`
}

// ResumeConfidence is the model's confidence per section, each 0.0-1.0.
type ResumeConfidence struct {
	Overall      float64 `json:"overall"`
	PersonalInfo float64 `json:"personal_info"`
	Experience   float64 `json:"experience"`
	Education    float64 `json:"education"`
	Skills       float64 `json:"skills"`
}
