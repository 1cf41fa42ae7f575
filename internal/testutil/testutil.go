package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/fadilmartias/hirematch/internal/model"
	"github.com/fadilmartias/hirematch/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB opens a fresh in-memory SQLite database with every model migrated and
// the default questionnaire seeded.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sqlite handle: %v", err)
	}
	// a single connection keeps the shared in-memory database alive and
	// serialises writers
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := repository.AutoMigrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	if err := repository.NewQuestionRepository(db).EnsureQuestions(context.Background(), model.DefaultQuestions); err != nil {
		tb.Fatalf("seed questions: %v", err)
	}
	return db
}

func Logger(tb testing.TB) *zap.Logger {
	tb.Helper()
	return zaptest.NewLogger(tb)
}

func SeedUser(tb testing.TB, db *gorm.DB, role string) *model.User {
	tb.Helper()
	u := &model.User{
		Email:    uuid.NewString() + "@example.com",
		FullName: "Test User",
		Role:     role,
	}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProfile(tb testing.TB, db *gorm.DB, userID uuid.UUID, skills ...string) *model.CandidateProfile {
	tb.Helper()
	p := &model.CandidateProfile{
		UserID:   userID,
		FullName: "Test Candidate",
		Email:    "candidate@example.com",
		Summary:  "Backend engineer",
		Skills:   skills,
	}
	if err := db.Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func SeedJob(tb testing.TB, db *gorm.DB, employerID uuid.UUID, status string) *model.Job {
	tb.Helper()
	company := &model.Company{
		OwnerID:            employerID,
		Name:               "Acme",
		Description:        "Acme builds rockets.",
		CultureDescription: "We value ownership and calm collaboration.",
	}
	if err := db.Create(company).Error; err != nil {
		tb.Fatalf("seed company: %v", err)
	}
	job := &model.Job{
		CompanyID:      &company.ID,
		EmployerID:     employerID,
		Title:          "Backend Engineer",
		Description:    "Build APIs.",
		Requirements:   []string{"3+ years Go"},
		SeniorityLevel: "mid",
		EmploymentType: "full_time",
		Location:       "Jakarta",
		IsRemote:       true,
		RequiredSkills: []string{"Go", "PostgreSQL"},
		Status:         status,
	}
	if err := db.Create(job).Error; err != nil {
		tb.Fatalf("seed job: %v", err)
	}
	return job
}
