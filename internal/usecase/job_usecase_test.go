package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/fadilmartias/hirematch/internal/apperror"
	"github.com/fadilmartias/hirematch/internal/model"
	"github.com/fadilmartias/hirematch/internal/testutil"
	"github.com/fadilmartias/hirematch/internal/usecase"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeEmbedder struct {
	texts []string
	err   error
}

func (e *fakeEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	e.texts = append(e.texts, text)
	if e.err != nil {
		return nil, e.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func newJobUsecase(t *testing.T, f fixture, embedder *fakeEmbedder) *usecase.JobUsecase {
	t.Helper()
	log := testutil.Logger(t)
	match := newMatchUsecase(t, f, &fakeClient{doc: matchJSON})
	queue := usecase.NewMatchQueue(usecase.NewInlineRunner(log), match, log)
	if embedder == nil {
		return usecase.NewJobUsecase(f.store, queue, nil, log)
	}
	return usecase.NewJobUsecase(f.store, queue, embedder, log)
}

func TestApplyEnqueuesMatchScore(t *testing.T) {
	f := newFixture(t)
	employer := testutil.SeedUser(t, f.db, model.RoleEmployer)
	candidate := testutil.SeedUser(t, f.db, model.RoleCandidate)
	testutil.SeedProfile(t, f.db, candidate.ID, "Go")
	job := testutil.SeedJob(t, f.db, employer.ID, model.JobStatusPublished)
	uc := newJobUsecase(t, f, nil)
	ctx := context.Background()

	app, err := uc.Apply(ctx, candidate.ID, job.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if app.JobID != job.ID || app.UserID != candidate.ID {
		t.Fatalf("unexpected application %+v", app)
	}
	if _, err := f.store.MatchScores.FindMatchScore(ctx, job.ID, candidate.ID); err != nil {
		t.Fatalf("expected match score after applying: %v", err)
	}

	if _, err := uc.Apply(ctx, candidate.ID, job.ID); apperror.KindOf(err) != apperror.KindConflict {
		t.Fatalf("expected conflict on second application, got %v", err)
	}
}

func TestApplyConcurrentDuplicateIsConflict(t *testing.T) {
	f := newFixture(t)
	employer := testutil.SeedUser(t, f.db, model.RoleEmployer)
	candidate := testutil.SeedUser(t, f.db, model.RoleCandidate)
	job := testutil.SeedJob(t, f.db, employer.ID, model.JobStatusPublished)
	uc := newJobUsecase(t, f, nil)

	// another request inserts the same application right after the existence check
	var once sync.Once
	err := f.db.Callback().Query().After("gorm:query").Register("test:competing_application", func(tx *gorm.DB) {
		if tx.Statement.Table != "applications" {
			return
		}
		once.Do(func() {
			competing := &model.Application{JobID: job.ID, UserID: candidate.ID}
			if err := tx.Session(&gorm.Session{NewDB: true}).Create(competing).Error; err != nil {
				t.Errorf("competing insert: %v", err)
			}
		})
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	_, err = uc.Apply(context.Background(), candidate.ID, job.ID)
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestApplyRequiresPublishedJob(t *testing.T) {
	f := newFixture(t)
	employer := testutil.SeedUser(t, f.db, model.RoleEmployer)
	candidate := testutil.SeedUser(t, f.db, model.RoleCandidate)
	draft := testutil.SeedJob(t, f.db, employer.ID, model.JobStatusDraft)
	uc := newJobUsecase(t, f, nil)

	if _, err := uc.Apply(context.Background(), candidate.ID, draft.ID); apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("expected not found for draft job, got %v", err)
	}
	if _, err := uc.Apply(context.Background(), uuid.Nil, draft.ID); apperror.KindOf(err) != apperror.KindAuthentication {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestListMatchesOwnerOnly(t *testing.T) {
	f := newFixture(t)
	employer := testutil.SeedUser(t, f.db, model.RoleEmployer)
	candidate := testutil.SeedUser(t, f.db, model.RoleCandidate)
	testutil.SeedProfile(t, f.db, candidate.ID, "Go")
	job := testutil.SeedJob(t, f.db, employer.ID, model.JobStatusPublished)
	uc := newJobUsecase(t, f, nil)
	ctx := context.Background()

	if _, err := uc.Apply(ctx, candidate.ID, job.ID); err != nil {
		t.Fatalf("apply: %v", err)
	}

	scores, total, err := uc.ListMatches(ctx, employer.ID, job.ID, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(scores) != 1 || scores[0].UserID != candidate.ID {
		t.Fatalf("unexpected scores %+v (total %d)", scores, total)
	}

	if _, _, err := uc.ListMatches(ctx, candidate.ID, job.ID, 0, 10); apperror.KindOf(err) != apperror.KindForbidden {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
}

func TestIndexJobEmbedding(t *testing.T) {
	f := newFixture(t)
	employer := testutil.SeedUser(t, f.db, model.RoleEmployer)
	other := testutil.SeedUser(t, f.db, model.RoleEmployer)
	job := testutil.SeedJob(t, f.db, employer.ID, model.JobStatusPublished)
	embedder := &fakeEmbedder{}
	uc := newJobUsecase(t, f, embedder)
	ctx := context.Background()

	if err := uc.IndexJobEmbedding(ctx, other.ID, job.ID); apperror.KindOf(err) != apperror.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := uc.IndexJobEmbedding(ctx, employer.ID, job.ID); err != nil {
		t.Fatalf("index: %v", err)
	}
	if len(embedder.texts) != 1 || !strings.Contains(embedder.texts[0], "Backend Engineer") || !strings.Contains(embedder.texts[0], "Go, PostgreSQL") {
		t.Fatalf("unexpected embedding input %q", embedder.texts)
	}

	embedder.err = errors.New("quota")
	if err := uc.IndexJobEmbedding(ctx, employer.ID, job.ID); apperror.KindOf(err) != apperror.KindUpstream {
		t.Fatalf("expected upstream failure, got %v", err)
	}
}

func TestRecommendJobsPreconditions(t *testing.T) {
	f := newFixture(t)
	candidate := testutil.SeedUser(t, f.db, model.RoleCandidate)
	ctx := context.Background()

	if _, err := newJobUsecase(t, f, nil).RecommendJobs(ctx, candidate.ID, 5); apperror.KindOf(err) != apperror.KindUpstream {
		t.Fatalf("expected upstream error without embedder, got %v", err)
	}
	embedder := &fakeEmbedder{}
	uc := newJobUsecase(t, f, embedder)
	if _, err := uc.RecommendJobs(ctx, candidate.ID, 5); apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("expected profile not found, got %v", err)
	}
	if len(embedder.texts) != 0 {
		t.Fatal("nothing must be embedded without a profile")
	}
}
