package usecase_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/fadilmartias/hirematch/internal/model"
	"github.com/fadilmartias/hirematch/internal/repository"
	"github.com/fadilmartias/hirematch/internal/service"
	"github.com/fadilmartias/hirematch/internal/testutil"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const completedAnalysisJSON = `{
	"problem_solving_style": "Breaks problems into small experiments",
	"initiative_level": "High",
	"work_preference": "Small autonomous teams",
	"motivational_factors": ["impact", "learning"],
	"growth_areas": ["delegation"],
	"communication_style": "Direct and written-first",
	"leadership_potential": "Emerging technical leader",
	"analytical_score": 85,
	"creative_score": 70,
	"leadership_score": 80,
	"teamwork_score": 88,
	"trait_scores": [{"trait": "curiosity", "score": 91}],
	"confidence_score": 0.85
}`

// fakeClient answers every extraction with the same canned outcome.
type fakeClient struct {
	mu       sync.Mutex
	doc      string
	failure  string
	requests []service.ExtractionRequest
}

func (c *fakeClient) Extract(_ context.Context, req service.ExtractionRequest) (service.Result[json.RawMessage], error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.failure != "" {
		return service.Failed[json.RawMessage](c.failure), nil
	}
	return service.Succeeded(json.RawMessage(c.doc), 0.8), nil
}

func (c *fakeClient) lastInput() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.requests) == 0 {
		return ""
	}
	return c.requests[len(c.requests)-1].Input
}

// singleAttempt keeps failing tests fast.
func singleAttempt() *service.Retrier {
	return service.NewRetrier(1, 0, 0, nil)
}

type fixture struct {
	db    *gorm.DB
	store *repository.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.DB(t)
	return fixture{db: db, store: repository.NewStore(db)}
}

func (f fixture) analysis(t *testing.T, userID uuid.UUID) *model.PersonalityAnalysis {
	t.Helper()
	a, err := f.store.Analyses.FindByUserID(context.Background(), userID)
	if err != nil {
		t.Fatalf("load analysis: %v", err)
	}
	return a
}

func (f fixture) user(t *testing.T, userID uuid.UUID) *model.User {
	t.Helper()
	u, err := f.store.Users.FindUserByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	return u
}
