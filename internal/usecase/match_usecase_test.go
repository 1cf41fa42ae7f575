package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fadilmartias/hirematch/internal/apperror"
	"github.com/fadilmartias/hirematch/internal/model"
	"github.com/fadilmartias/hirematch/internal/service"
	"github.com/fadilmartias/hirematch/internal/testutil"
	"github.com/fadilmartias/hirematch/internal/usecase"
	"github.com/google/uuid"
)

const matchJSON = `{
	"overall_score": 78, "skills_score": 90, "experience_score": 70,
	"culture_fit_score": 75, "personality_score": 65,
	"explanation": "Strong Go skills, lighter on payments.",
	"strengths": ["Go"], "gaps": ["Payments"]
}`

func newMatchUsecase(t *testing.T, f fixture, client service.StructuredClient) *usecase.MatchUsecase {
	t.Helper()
	log := testutil.Logger(t)
	scorer := service.NewMatchScorer(client, singleAttempt(), log)
	return usecase.NewMatchUsecase(f.store, f.store, scorer, log)
}

func TestScoreMatchUpsertsByPair(t *testing.T) {
	f := newFixture(t)
	employer := testutil.SeedUser(t, f.db, model.RoleEmployer)
	candidate := testutil.SeedUser(t, f.db, model.RoleCandidate)
	testutil.SeedProfile(t, f.db, candidate.ID, "Go", "PostgreSQL")
	job := testutil.SeedJob(t, f.db, employer.ID, model.JobStatusPublished)
	client := &fakeClient{doc: matchJSON}
	uc := newMatchUsecase(t, f, client)
	ctx := context.Background()

	first, err := uc.ScoreMatch(ctx, job.ID, candidate.ID)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if first.OverallScore != 78 || first.CultureFitScore != 75 || len(first.Gaps) != 1 {
		t.Fatalf("unexpected score %+v", first)
	}

	input := client.lastInput()
	if !strings.Contains(input, "We value ownership and calm collaboration.") || strings.Contains(input, "Acme builds rockets.") {
		t.Fatalf("company culture not preferred in prompt:\n%s", input)
	}

	second, err := uc.ScoreMatch(ctx, job.ID, candidate.ID)
	if err != nil {
		t.Fatalf("rescore: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("rescoring must update the same row, got %s and %s", first.ID, second.ID)
	}
	scores, total, err := f.store.MatchScores.ListByJob(ctx, job.ID, 0, 10)
	if err != nil || total != 1 || len(scores) != 1 {
		t.Fatalf("expected a single score, got %d (%v)", total, err)
	}
}

func TestScoreMatchFailures(t *testing.T) {
	f := newFixture(t)
	employer := testutil.SeedUser(t, f.db, model.RoleEmployer)
	candidate := testutil.SeedUser(t, f.db, model.RoleCandidate)
	testutil.SeedProfile(t, f.db, candidate.ID, "Go")
	job := testutil.SeedJob(t, f.db, employer.ID, model.JobStatusPublished)
	ctx := context.Background()

	failing := newMatchUsecase(t, f, &fakeClient{failure: "quota exceeded"})
	if _, err := failing.ScoreMatch(ctx, job.ID, candidate.ID); apperror.KindOf(err) != apperror.KindUpstream {
		t.Fatalf("expected upstream failure, got %v", err)
	}
	if _, err := f.store.MatchScores.FindMatchScore(ctx, job.ID, candidate.ID); err == nil {
		t.Fatal("failed scoring must not store a row")
	}

	incomplete := newMatchUsecase(t, f, &fakeClient{doc: `{"explanation": "x"}`})
	if _, err := incomplete.ScoreMatch(ctx, job.ID, candidate.ID); apperror.KindOf(err) != apperror.KindUpstream {
		t.Fatalf("expected upstream failure for missing scores, got %v", err)
	}
	if _, err := f.store.MatchScores.FindMatchScore(ctx, job.ID, candidate.ID); err == nil {
		t.Fatal("incomplete scores must not store a row")
	}

	uc := newMatchUsecase(t, f, &fakeClient{doc: matchJSON})
	if _, err := uc.ScoreMatch(ctx, uuid.New(), candidate.ID); apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("expected job not found, got %v", err)
	}
	if _, err := uc.ScoreMatch(ctx, job.ID, employer.ID); apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("expected profile not found, got %v", err)
	}
}

func TestAuthorizeMatchRequest(t *testing.T) {
	f := newFixture(t)
	employer := testutil.SeedUser(t, f.db, model.RoleEmployer)
	applicant := testutil.SeedUser(t, f.db, model.RoleCandidate)
	stranger := testutil.SeedUser(t, f.db, model.RoleCandidate)
	draft := testutil.SeedJob(t, f.db, employer.ID, model.JobStatusDraft)
	published := testutil.SeedJob(t, f.db, employer.ID, model.JobStatusPublished)
	if err := f.store.Applications.CreateApplication(context.Background(), &model.Application{JobID: draft.ID, UserID: applicant.ID}); err != nil {
		t.Fatalf("seed application: %v", err)
	}
	uc := newMatchUsecase(t, f, &fakeClient{})

	tests := []struct {
		name      string
		requester uuid.UUID
		jobID     uuid.UUID
		kind      apperror.Kind
	}{
		{"owner of draft", employer.ID, draft.ID, ""},
		{"applicant of draft", applicant.ID, draft.ID, ""},
		{"stranger on draft", stranger.ID, draft.ID, apperror.KindForbidden},
		{"stranger on published", stranger.ID, published.ID, ""},
		{"anonymous", uuid.Nil, published.ID, apperror.KindAuthentication},
		{"missing job", employer.ID, uuid.New(), apperror.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.AuthorizeMatchRequest(context.Background(), tt.requester, tt.jobID)
			if tt.kind == "" {
				if err != nil {
					t.Fatalf("expected access, got %v", err)
				}
				return
			}
			if apperror.KindOf(err) != tt.kind {
				t.Fatalf("expected %s, got %v", tt.kind, err)
			}
		})
	}
}

func TestMatchQueueLogsFailuresOnly(t *testing.T) {
	f := newFixture(t)
	employer := testutil.SeedUser(t, f.db, model.RoleEmployer)
	job := testutil.SeedJob(t, f.db, employer.ID, model.JobStatusPublished)
	log := testutil.Logger(t)
	uc := newMatchUsecase(t, f, &fakeClient{doc: matchJSON})
	queue := usecase.NewMatchQueue(usecase.NewInlineRunner(log), uc, log)

	// no profile for the employer: the job fails and the caller never hears of it
	queue.Enqueue(job.ID, employer.ID)

	if _, err := f.store.MatchScores.FindMatchScore(context.Background(), job.ID, employer.ID); err == nil {
		t.Fatal("failed job must not store a score")
	}
}

func TestEnqueueAuthorized(t *testing.T) {
	f := newFixture(t)
	employer := testutil.SeedUser(t, f.db, model.RoleEmployer)
	candidate := testutil.SeedUser(t, f.db, model.RoleCandidate)
	stranger := testutil.SeedUser(t, f.db, model.RoleCandidate)
	testutil.SeedProfile(t, f.db, candidate.ID, "Go")
	draft := testutil.SeedJob(t, f.db, employer.ID, model.JobStatusDraft)
	log := testutil.Logger(t)
	uc := newMatchUsecase(t, f, &fakeClient{doc: matchJSON})
	queue := usecase.NewMatchQueue(usecase.NewInlineRunner(log), uc, log)
	ctx := context.Background()

	if err := uc.EnqueueAuthorized(ctx, queue, stranger.ID, draft.ID, candidate.ID); apperror.KindOf(err) != apperror.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.store.MatchScores.FindMatchScore(ctx, draft.ID, candidate.ID); err == nil {
		t.Fatal("unauthorized request must not be enqueued")
	}

	if err := uc.EnqueueAuthorized(ctx, queue, employer.ID, draft.ID, candidate.ID); err != nil {
		t.Fatalf("owner enqueue: %v", err)
	}
	if _, err := f.store.MatchScores.FindMatchScore(ctx, draft.ID, candidate.ID); err != nil {
		t.Fatalf("expected score after inline run: %v", err)
	}
}
