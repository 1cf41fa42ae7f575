package repository

import (
	"context"

	"github.com/fadilmartias/hirematch/internal/model"
	"gorm.io/gorm"
)

// Store groups the repositories bound to one database connection. The request
// path gets a Store on the restricted role and always filters by the owning
// user; background jobs get a Store on the elevated role.
type Store struct {
	db *gorm.DB

	Users        *UserRepository
	Profiles     *ProfileRepository
	Jobs         *JobRepository
	Applications *ApplicationRepository
	Questions    *QuestionRepository
	Responses    *ResponseRepository
	Analyses     *AnalysisRepository
	MatchScores  *MatchScoreRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Users:        NewUserRepository(db),
		Profiles:     NewProfileRepository(db),
		Jobs:         NewJobRepository(db),
		Applications: NewApplicationRepository(db),
		Questions:    NewQuestionRepository(db),
		Responses:    NewResponseRepository(db),
		Analyses:     NewAnalysisRepository(db),
		MatchScores:  NewMatchScoreRepository(db),
	}
}

// Transaction runs fn with a Store bound to a single transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Savepoint runs fn inside a savepoint of the current transaction. If fn fails
// the work done inside it is rolled back and the transaction stays usable.
func (s *Store) Savepoint(name string, fn func() error) error {
	if err := s.db.SavePoint(name).Error; err != nil {
		return err
	}
	if err := fn(); err != nil {
		if rbErr := s.db.RollbackTo(name).Error; rbErr != nil {
			return rbErr
		}
		return err
	}
	return nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}
