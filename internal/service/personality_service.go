package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/fadilmartias/hirematch/internal/logger"
	"github.com/fadilmartias/hirematch/internal/model"
	"github.com/fadilmartias/hirematch/internal/validation"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"google.golang.org/genai"
	"gorm.io/datatypes"
)

// QuestionResponse is one answered personality question as sent to the model.
type QuestionResponse struct {
	QuestionID string `json:"question_id"`
	Category   string `json:"category"`
	Question   string `json:"question"`
	Response   string `json:"response"`
}

// TraitScore is a single named trait in the list form the schema asks for.
type TraitScore struct {
	Trait string  `json:"trait"`
	Score float64 `json:"score"`
}

// TraitScores maps trait names to 0-100 scores. It decodes from either the
// [{"trait", "score"}] list or a {"name": score} object.
type TraitScores map[string]float64

func (t *TraitScores) UnmarshalJSON(data []byte) error {
	doc := gjson.ParseBytes(data)
	if doc.Type == gjson.Null {
		*t = nil
		return nil
	}
	if !doc.IsArray() && !doc.IsObject() {
		return fmt.Errorf("trait_scores: expected a list or an object, got %s", strings.TrimSpace(doc.Raw))
	}

	out := make(TraitScores)
	var bad error
	add := func(name string, score gjson.Result) bool {
		name = strings.TrimSpace(name)
		if name == "" {
			return true
		}
		if score.Type != gjson.Number {
			bad = fmt.Errorf("trait_scores: score of %q is not a number", name)
			return false
		}
		out[name] = score.Float()
		return true
	}
	if doc.IsArray() {
		doc.ForEach(func(_, item gjson.Result) bool {
			return add(item.Get("trait").String(), item.Get("score"))
		})
	} else {
		doc.ForEach(func(key, value gjson.Result) bool {
			return add(key.String(), value)
		})
	}
	if bad != nil {
		return bad
	}
	*t = out
	return nil
}

// PersonalityProfile is the analyzer output. Scores are pointers so a missing
// score can be told apart from zero.
type PersonalityProfile struct {
	ProblemSolvingStyle string      `json:"problem_solving_style" validate:"notblank"`
	InitiativeLevel     string      `json:"initiative_level" validate:"notblank"`
	WorkPreference      string      `json:"work_preference" validate:"notblank"`
	MotivationalFactors []string    `json:"motivational_factors"`
	GrowthAreas         []string    `json:"growth_areas"`
	CommunicationStyle  string      `json:"communication_style" validate:"notblank"`
	LeadershipPotential string      `json:"leadership_potential" validate:"notblank"`
	AnalyticalScore     *float64    `json:"analytical_score" validate:"required,min=0,max=100"`
	CreativeScore       *float64    `json:"creative_score" validate:"required,min=0,max=100"`
	LeadershipScore     *float64    `json:"leadership_score" validate:"required,min=0,max=100"`
	TeamworkScore       *float64    `json:"teamwork_score" validate:"required,min=0,max=100"`
	TraitScores         TraitScores `json:"trait_scores" validate:"dive,min=0,max=100"`
	ConfidenceScore     *float64    `json:"confidence_score" validate:"required,min=0,max=1"`
}

func (p PersonalityProfile) Traits() model.TraitScores {
	traits := make(model.TraitScores, len(p.TraitScores))
	for name, score := range p.TraitScores {
		traits[name] = score
	}
	return traits
}

// ApplyTo copies the result columns onto an analysis row.
func (p PersonalityProfile) ApplyTo(a *model.PersonalityAnalysis) {
	a.ProblemSolvingStyle = p.ProblemSolvingStyle
	a.InitiativeLevel = p.InitiativeLevel
	a.WorkPreference = p.WorkPreference
	a.CommunicationStyle = p.CommunicationStyle
	a.LeadershipPotential = p.LeadershipPotential
	a.MotivationalFactors = nonNil(p.MotivationalFactors)
	a.GrowthAreas = nonNil(p.GrowthAreas)
	a.AnalyticalScore = p.AnalyticalScore
	a.CreativeScore = p.CreativeScore
	a.LeadershipScore = p.LeadershipScore
	a.TeamworkScore = p.TeamworkScore
	a.TraitScores = datatypes.NewJSONType(p.Traits())
	a.ConfidenceScore = p.ConfidenceScore
}

type ValidationReport struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidatePersonalityAnalysis checks every constraint of the analysis and
// reports all violations, not just the first.
func ValidatePersonalityAnalysis(p PersonalityProfile) ValidationReport {
	violations, err := validation.Check(p)
	if err != nil {
		return ValidationReport{Errors: []string{err.Error()}}
	}
	errs := validation.Messages(violations)
	return ValidationReport{Valid: len(errs) == 0, Errors: errs}
}

const personalityInstruction = `You are an organizational psychologist assessing a job seeker's work personality.
Base every conclusion on the candidate's own answers. Be specific and constructive.
Score analytical, creative, leadership and teamwork orientation from 0 to 100.
List additional traits you observe with a 0 to 100 score each.
Report your overall confidence between 0.0 and 1.0; lower it when answers are short or vague.`

type PersonalityAnalyzer struct {
	client  StructuredClient
	retrier *Retrier
	logger  *zap.Logger
}

func NewPersonalityAnalyzer(client StructuredClient, retrier *Retrier, log *zap.Logger) *PersonalityAnalyzer {
	return &PersonalityAnalyzer{
		client:  client,
		retrier: retrier,
		logger:  logger.Named(log, "personality_analyzer"),
	}
}

// AnalyzePersonality turns questionnaire answers into a personality profile.
// The result is not validated; see ValidatePersonalityAnalysis.
func (a *PersonalityAnalyzer) AnalyzePersonality(ctx context.Context, responses []QuestionResponse) (Result[PersonalityProfile], error) {
	if len(responses) == 0 {
		return Failed[PersonalityProfile]("no responses to analyze"), nil
	}

	req := ExtractionRequest{
		Instruction: personalityInstruction,
		Input:       buildPersonalityInput(responses),
		Schema:      personalitySchema,
	}
	res, err := Retry(ctx, a.retrier, func(ctx context.Context) (Result[PersonalityProfile], error) {
		return Extract[PersonalityProfile](ctx, a.client, req)
	})
	if err != nil {
		return res, err
	}
	if res.Success && res.Data.ConfidenceScore != nil {
		res.Confidence = *res.Data.ConfidenceScore
	}
	a.logger.Debug("personality analysis finished",
		zap.Int("responses", len(responses)),
		zap.Bool("success", res.Success),
	)
	return res, nil
}

func buildPersonalityInput(responses []QuestionResponse) string {
	byCategory := make(map[string][]QuestionResponse)
	var categories []string
	for _, r := range responses {
		if _, ok := byCategory[r.Category]; !ok {
			categories = append(categories, r.Category)
		}
		byCategory[r.Category] = append(byCategory[r.Category], r)
	}
	sort.Strings(categories)

	var b strings.Builder
	b.WriteString("Personality questionnaire answers, grouped by category.\n")
	for _, category := range categories {
		fmt.Fprintf(&b, "\n## %s\n", category)
		for _, r := range byCategory[category] {
			fmt.Fprintf(&b, "Q (%s): %s\nA: %s\n", r.QuestionID, r.Question, strings.TrimSpace(r.Response))
		}
	}
	return b.String()
}

var personalitySchema = objectSchema(map[string]*genai.Schema{
	"problem_solving_style": stringSchema("How the candidate approaches problems"),
	"initiative_level":      stringSchema("Degree of self-direction and proactivity"),
	"work_preference":       stringSchema("Preferred working environment and style"),
	"motivational_factors":  arraySchema(stringSchema(""), "What drives the candidate"),
	"growth_areas":          arraySchema(stringSchema(""), "Areas for development"),
	"communication_style":   stringSchema("How the candidate communicates"),
	"leadership_potential":  stringSchema("Assessment of leadership potential"),
	"analytical_score":      numberSchema("Analytical orientation", 0, 100),
	"creative_score":        numberSchema("Creative orientation", 0, 100),
	"leadership_score":      numberSchema("Leadership orientation", 0, 100),
	"teamwork_score":        numberSchema("Teamwork orientation", 0, 100),
	"trait_scores": arraySchema(objectSchema(map[string]*genai.Schema{
		"trait": stringSchema("Trait name"),
		"score": numberSchema("Trait score", 0, 100),
	}, "trait", "score"), "Additional observed traits"),
	"confidence_score": numberSchema("Confidence in this assessment", 0, 1),
},
	"problem_solving_style", "initiative_level", "work_preference", "motivational_factors",
	"growth_areas", "communication_style", "leadership_potential", "analytical_score",
	"creative_score", "leadership_score", "teamwork_score", "trait_scores", "confidence_score",
)

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
