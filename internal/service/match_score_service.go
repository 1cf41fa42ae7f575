package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/fadilmartias/hirematch/internal/logger"
	"github.com/fadilmartias/hirematch/internal/model"
	"github.com/fadilmartias/hirematch/internal/validation"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// JobContext is the job side of a match, flattened for prompting.
type JobContext struct {
	Title            string
	Description      string
	CompanyName      string
	CompanyProfile   string
	Requirements     []string
	Responsibilities []string
	SeniorityLevel   string
	EmploymentType   string
	Location         string
	IsRemote         bool
	RequiredSkills   []string
}

// NewJobContext builds the job side of a match. The company's culture
// narrative wins over its generic description when both are set.
func NewJobContext(job *model.Job) JobContext {
	jc := JobContext{
		Title:            job.Title,
		Description:      job.Description,
		Requirements:     job.Requirements,
		Responsibilities: job.Responsibilities,
		SeniorityLevel:   job.SeniorityLevel,
		EmploymentType:   job.EmploymentType,
		Location:         job.Location,
		IsRemote:         job.IsRemote,
		RequiredSkills:   job.RequiredSkills,
	}
	if c := job.Company; c != nil {
		jc.CompanyName = c.Name
		jc.CompanyProfile = strings.TrimSpace(c.CultureDescription)
		if jc.CompanyProfile == "" {
			jc.CompanyProfile = strings.TrimSpace(c.Description)
		}
	}
	return jc
}

// CandidateContext is the candidate side of a match.
type CandidateContext struct {
	Summary     string
	Skills      []string
	Experience  []model.ExperienceEntry
	Education   []model.EducationEntry
	Personality *model.PersonalityAnalysis
}

// NewCandidateContext merges profile columns with the parsed resume. A
// personality analysis is only used once completed.
func NewCandidateContext(profile *model.CandidateProfile, analysis *model.PersonalityAnalysis) CandidateContext {
	cc := CandidateContext{}
	if profile != nil {
		cc.Summary = profile.Summary
		cc.Skills = profile.Skills
		if resume := profile.ResumeData(); resume != nil {
			if cc.Summary == "" {
				cc.Summary = resume.ProfessionalSummary
			}
			if len(cc.Skills) == 0 {
				cc.Skills = resume.Skills
			}
			cc.Experience = resume.Experience
			cc.Education = resume.Education
		}
	}
	if analysis != nil && analysis.IsReady() {
		cc.Personality = analysis
	}
	return cc
}

// MatchResult is the scorer output. Every score is required; out-of-range
// scores are clamped to 0-100.
type MatchResult struct {
	OverallScore     *float64 `json:"overall_score" validate:"required"`
	SkillsScore      *float64 `json:"skills_score" validate:"required"`
	ExperienceScore  *float64 `json:"experience_score" validate:"required"`
	CultureFitScore  *float64 `json:"culture_fit_score" validate:"required"`
	PersonalityScore *float64 `json:"personality_score" validate:"required"`
	Explanation      string   `json:"explanation"`
	Strengths        []string `json:"strengths"`
	Gaps             []string `json:"gaps"`
}

const matchInstruction = `You are a senior technical recruiter scoring how well a candidate fits a job.
Score skills, experience, culture fit and personality fit from 0 to 100, then an overall score from 0 to 100.
Without personality data, score personality fit conservatively around 50 and say so.
Explain the score in two to four sentences and list concrete strengths and gaps.`

type MatchScorer struct {
	client  StructuredClient
	retrier *Retrier
	logger  *zap.Logger
}

func NewMatchScorer(client StructuredClient, retrier *Retrier, log *zap.Logger) *MatchScorer {
	return &MatchScorer{
		client:  client,
		retrier: retrier,
		logger:  logger.Named(log, "match_scorer"),
	}
}

func (s *MatchScorer) CalculateMatchScore(ctx context.Context, job JobContext, candidate CandidateContext) (Result[MatchResult], error) {
	req := ExtractionRequest{
		Instruction: matchInstruction,
		Input:       buildMatchInput(job, candidate),
		Schema:      matchSchema,
	}
	// incomplete scores count as a failed attempt so they are retried
	res, err := Retry(ctx, s.retrier, func(ctx context.Context) (Result[MatchResult], error) {
		res, err := Extract[MatchResult](ctx, s.client, req)
		if err != nil || !res.Success {
			return res, err
		}
		violations, err := validation.Check(res.Data)
		if err != nil {
			return res, err
		}
		if len(violations) > 0 {
			return Failed[MatchResult]("incomplete match score: " + strings.Join(validation.Messages(violations), "; ")), nil
		}
		return res, nil
	})
	if err != nil || !res.Success {
		return res, err
	}

	m := &res.Data
	for _, score := range []*float64{m.OverallScore, m.SkillsScore, m.ExperienceScore, m.CultureFitScore, m.PersonalityScore} {
		*score = clampScore(*score)
	}
	m.Strengths = nonNil(m.Strengths)
	m.Gaps = nonNil(m.Gaps)

	s.logger.Debug("match scored", zap.String("job", job.Title), zap.Float64("overall", *m.OverallScore))
	return res, nil
}

func buildMatchInput(job JobContext, c CandidateContext) string {
	var b strings.Builder

	b.WriteString("# Job\n")
	fmt.Fprintf(&b, "Title: %s\n", job.Title)
	if job.CompanyName != "" {
		fmt.Fprintf(&b, "Company: %s\n", job.CompanyName)
	}
	if job.CompanyProfile != "" {
		fmt.Fprintf(&b, "Company culture: %s\n", job.CompanyProfile)
	}
	fmt.Fprintf(&b, "Role description: %s\n", job.Description)
	writeList(&b, "Requirements", job.Requirements)
	writeList(&b, "Responsibilities", job.Responsibilities)
	fmt.Fprintf(&b, "Seniority: %s\n", orUnspecified(job.SeniorityLevel))
	fmt.Fprintf(&b, "Employment type: %s\n", orUnspecified(job.EmploymentType))
	fmt.Fprintf(&b, "Location: %s (remote: %t)\n", orUnspecified(job.Location), job.IsRemote)
	fmt.Fprintf(&b, "Required skills: %s\n", strings.Join(job.RequiredSkills, ", "))

	b.WriteString("\n# Candidate\n")
	if c.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", c.Summary)
	}
	fmt.Fprintf(&b, "Skills: %s\n", strings.Join(c.Skills, ", "))
	if len(c.Experience) > 0 {
		b.WriteString("Experience:\n")
		for _, e := range c.Experience {
			end := "present"
			if e.EndDate != nil {
				end = *e.EndDate
			}
			start := "unknown"
			if e.StartDate != nil {
				start = *e.StartDate
			}
			fmt.Fprintf(&b, "- %s at %s (%s to %s)", e.Position, e.Company, start, end)
			if e.Description != "" {
				fmt.Fprintf(&b, ": %s", e.Description)
			}
			b.WriteString("\n")
		}
	}
	if len(c.Education) > 0 {
		b.WriteString("Education:\n")
		for _, e := range c.Education {
			fmt.Fprintf(&b, "- %s, %s %s\n", e.Institution, e.Degree, e.FieldOfStudy)
		}
	}

	if p := c.Personality; p != nil {
		b.WriteString("\n# Personality analysis\n")
		fmt.Fprintf(&b, "Problem solving: %s\n", p.ProblemSolvingStyle)
		fmt.Fprintf(&b, "Work preference: %s\n", p.WorkPreference)
		fmt.Fprintf(&b, "Communication: %s\n", p.CommunicationStyle)
		fmt.Fprintf(&b, "Leadership potential: %s\n", p.LeadershipPotential)
		fmt.Fprintf(&b, "Scores: analytical %s, creative %s, leadership %s, teamwork %s\n",
			formatScore(p.AnalyticalScore), formatScore(p.CreativeScore),
			formatScore(p.LeadershipScore), formatScore(p.TeamworkScore))
	} else {
		b.WriteString("\nNo personality analysis is available.\n")
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func orUnspecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unspecified"
	}
	return s
}

func formatScore(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.0f", *v)
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

var matchSchema = objectSchema(map[string]*genai.Schema{
	"overall_score":     numberSchema("Overall fit", 0, 100),
	"skills_score":      numberSchema("Skills fit", 0, 100),
	"experience_score":  numberSchema("Experience fit", 0, 100),
	"culture_fit_score": numberSchema("Culture fit", 0, 100),
	"personality_score": numberSchema("Personality fit", 0, 100),
	"explanation":       stringSchema("Short explanation of the score"),
	"strengths":         arraySchema(stringSchema(""), "Candidate strengths for this job"),
	"gaps":              arraySchema(stringSchema(""), "Gaps against the job requirements"),
}, "overall_score", "skills_score", "experience_score", "culture_fit_score", "personality_score", "explanation")
