package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fadilmartias/hirematch/internal/model"
	"go.uber.org/zap/zaptest"
	"gorm.io/datatypes"
)

func sampleJob() *model.Job {
	return &model.Job{
		Title:          "Backend Engineer",
		Description:    "Build payment APIs.",
		Requirements:   datatypes.JSONSlice[string]{"5 years of Go"},
		RequiredSkills: datatypes.JSONSlice[string]{"Go", "PostgreSQL"},
		SeniorityLevel: "senior",
		IsRemote:       true,
		Company: &model.Company{
			Name:               "Acme",
			Description:        "Acme builds rockets.",
			CultureDescription: "We value ownership and calm collaboration.",
		},
	}
}

func TestNewJobContextPrefersCultureNarrative(t *testing.T) {
	jc := NewJobContext(sampleJob())
	if jc.CompanyProfile != "We value ownership and calm collaboration." {
		t.Fatalf("unexpected company profile %q", jc.CompanyProfile)
	}

	job := sampleJob()
	job.Company.CultureDescription = "  "
	if jc := NewJobContext(job); jc.CompanyProfile != "Acme builds rockets." {
		t.Fatalf("expected description fallback, got %q", jc.CompanyProfile)
	}
}

func TestCalculateMatchScoreUsesCultureText(t *testing.T) {
	doc := `{"overall_score": 104, "skills_score": 90, "experience_score": 75, "culture_fit_score": 80,
		"personality_score": -3, "explanation": "Strong Go background.", "strengths": ["Go"]}`
	client := &stubClient{results: []Result[json.RawMessage]{okJSON(doc)}}
	scorer := NewMatchScorer(client, nil, zaptest.NewLogger(t))

	candidate := NewCandidateContext(&model.CandidateProfile{Skills: datatypes.JSONSlice[string]{"Go"}}, nil)
	res, err := scorer.CalculateMatchScore(context.Background(), NewJobContext(sampleJob()), candidate)
	if err != nil || !res.Success {
		t.Fatalf("expected success, got %+v, %v", res, err)
	}

	input := client.requests[0].Input
	if !strings.Contains(input, "We value ownership and calm collaboration.") {
		t.Error("prompt must contain the culture narrative")
	}
	if strings.Contains(input, "Acme builds rockets.") {
		t.Error("prompt must not contain the generic company description")
	}
	if !strings.Contains(input, "No personality analysis is available.") {
		t.Error("prompt must note the missing personality analysis")
	}

	if *res.Data.OverallScore != 100 || *res.Data.PersonalityScore != 0 {
		t.Fatalf("scores not clamped: %+v", res.Data)
	}
	if res.Data.Gaps == nil {
		t.Fatal("gaps must not be nil")
	}
}

func TestCalculateMatchScoreRetriesIncompleteScores(t *testing.T) {
	complete := `{"overall_score": 70, "skills_score": 80, "experience_score": 60, "culture_fit_score": 75,
		"personality_score": 50, "explanation": "Solid."}`
	client := &stubClient{results: []Result[json.RawMessage]{
		okJSON(`{"explanation": "x"}`),
		okJSON(complete),
	}}
	retrier, _ := instantRetrier(3)
	scorer := NewMatchScorer(client, retrier, zaptest.NewLogger(t))

	res, err := scorer.CalculateMatchScore(context.Background(), NewJobContext(sampleJob()), CandidateContext{})
	if err != nil || !res.Success {
		t.Fatalf("expected success on second attempt, got %+v, %v", res, err)
	}
	if client.calls() != 2 || *res.Data.OverallScore != 70 {
		t.Fatalf("calls = %d, overall = %v", client.calls(), *res.Data.OverallScore)
	}
}

func TestCalculateMatchScoreFailsWithoutScores(t *testing.T) {
	client := &stubClient{results: []Result[json.RawMessage]{okJSON(`{"explanation": "x", "skills_score": 80}`)}}
	retrier, _ := instantRetrier(2)
	scorer := NewMatchScorer(client, retrier, zaptest.NewLogger(t))

	res, err := scorer.CalculateMatchScore(context.Background(), NewJobContext(sampleJob()), CandidateContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success {
		t.Fatalf("expected failure, got %+v", res.Data)
	}
	for _, want := range []string{"Failed after 2 retries", "overall_score is required", "personality_score is required"} {
		if !strings.Contains(res.Error, want) {
			t.Errorf("error %q missing %q", res.Error, want)
		}
	}
	if strings.Contains(res.Error, "skills_score") {
		t.Errorf("skills_score was present: %q", res.Error)
	}
}

func TestNewCandidateContextIgnoresUnfinishedAnalysis(t *testing.T) {
	queued := &model.PersonalityAnalysis{Status: model.AnalysisQueued}
	if cc := NewCandidateContext(nil, queued); cc.Personality != nil {
		t.Fatal("queued analysis must not be used")
	}

	done := &model.PersonalityAnalysis{Status: model.AnalysisCompleted, ProblemSolvingStyle: "Methodical", AnalyticalScore: ptr(85)}
	cc := NewCandidateContext(nil, done)
	if cc.Personality == nil {
		t.Fatal("completed analysis must be used")
	}
	input := buildMatchInput(NewJobContext(sampleJob()), cc)
	if !strings.Contains(input, "Problem solving: Methodical") || !strings.Contains(input, "analytical 85") {
		t.Fatalf("personality missing from prompt:\n%s", input)
	}
}

func TestNewCandidateContextFallsBackToResume(t *testing.T) {
	profile := &model.CandidateProfile{
		Resume: datatypes.NewJSONType(&model.ResumeProfile{
			ProfessionalSummary: "Distributed systems engineer.",
			Skills:              []string{"Go", "Kafka"},
			Experience:          []model.ExperienceEntry{{Company: "Initech", Position: "SRE", IsCurrent: true}},
		}),
	}
	cc := NewCandidateContext(profile, nil)
	if cc.Summary != "Distributed systems engineer." || len(cc.Skills) != 2 || len(cc.Experience) != 1 {
		t.Fatalf("resume data not merged: %+v", cc)
	}
	if input := buildMatchInput(NewJobContext(sampleJob()), cc); !strings.Contains(input, "SRE at Initech (unknown to present)") {
		t.Fatalf("experience missing from prompt:\n%s", input)
	}
}
