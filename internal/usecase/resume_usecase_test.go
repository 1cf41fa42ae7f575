package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fadilmartias/hirematch/internal/apperror"
	"github.com/fadilmartias/hirematch/internal/model"
	"github.com/fadilmartias/hirematch/internal/service"
	"github.com/fadilmartias/hirematch/internal/testutil"
	"github.com/fadilmartias/hirematch/internal/usecase"
	"github.com/google/uuid"
)

const resumeJSON = `{
	"personal_info": {"full_name": "Ada Lovelace", "email": "ada@example.com", "location": "London"},
	"professional_summary": "Engineer with a taste for analytical engines.",
	"experience": [{"company": "Babbage & Co", "position": "Engineer", "start_date": "1842", "end_date": null}],
	"education": [],
	"skills": ["Go", "Mathematics"]
}`

func newResumeUsecase(t *testing.T, f fixture, client service.StructuredClient) *usecase.ResumeUsecase {
	t.Helper()
	log := testutil.Logger(t)
	return usecase.NewResumeUsecase(f.store, service.NewResumeParser(client, singleAttempt(), log), log)
}

func TestParseResumeUpdatesProfile(t *testing.T) {
	f := newFixture(t)
	user := testutil.SeedUser(t, f.db, model.RoleCandidate)
	testutil.SeedProfile(t, f.db, user.ID, "COBOL")
	uc := newResumeUsecase(t, f, &fakeClient{doc: resumeJSON})
	ctx := context.Background()

	out, err := uc.ParseResume(ctx, user.ID, "Ada Lovelace, Engineer", "ada.pdf")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !out.Resume.Experience[0].IsCurrent || out.Resume.ConfidenceScores == nil {
		t.Fatalf("resume not normalized: %+v", out.Resume)
	}

	profile, err := f.store.Profiles.FindProfileByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if profile.FullName != "Ada Lovelace" || profile.Location != "London" || profile.ResumeFilename != "ada.pdf" {
		t.Fatalf("profile not refreshed: %+v", profile)
	}
	if len(profile.Skills) != 2 || profile.Skills[0] != "Go" {
		t.Fatalf("skills not replaced: %v", profile.Skills)
	}
	if r := profile.ResumeData(); r == nil || r.PersonalInfo.Email != "ada@example.com" {
		t.Fatalf("resume not stored: %+v", r)
	}
}

func TestParseResumeCreatesMissingProfile(t *testing.T) {
	f := newFixture(t)
	user := testutil.SeedUser(t, f.db, model.RoleCandidate)
	uc := newResumeUsecase(t, f, &fakeClient{doc: resumeJSON})

	if _, err := uc.ParseResume(context.Background(), user.ID, "text", "ada.txt"); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := f.store.Profiles.FindProfileByUserID(context.Background(), user.ID); err != nil {
		t.Fatalf("expected profile to be created: %v", err)
	}
}

func TestParseResumeFailures(t *testing.T) {
	f := newFixture(t)
	user := testutil.SeedUser(t, f.db, model.RoleCandidate)
	ctx := context.Background()

	invalid := newResumeUsecase(t, f, &fakeClient{doc: `{"personal_info": {"full_name": "Ada", "email": "nope"}}`})
	_, err := invalid.ParseResume(ctx, user.ID, "text", "ada.txt")
	if !errors.Is(err, service.ErrInvalidEmailFormat) || apperror.StatusOf(err) != 400 {
		t.Fatalf("expected invalid email validation error, got %v", err)
	}

	down := newResumeUsecase(t, f, &fakeClient{failure: "model unavailable"})
	if _, err := down.ParseResume(ctx, user.ID, "text", "ada.txt"); apperror.StatusOf(err) != 502 {
		t.Fatalf("expected upstream error, got %v", err)
	}

	if _, err := invalid.ParseResume(ctx, uuid.Nil, "text", "ada.txt"); apperror.KindOf(err) != apperror.KindAuthentication {
		t.Fatalf("expected authentication error, got %v", err)
	}
}
