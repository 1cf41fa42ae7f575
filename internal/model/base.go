package model

import "github.com/google/uuid"

// newID fills a zero UUID primary key. IDs are generated in Go so the same
// models migrate on Postgres and on the SQLite test store.
func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All returns every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&CandidateProfile{},
		&Company{},
		&Job{},
		&Application{},
		&Question{},
		&PersonalityResponse{},
		&PersonalityAnalysis{},
		&MatchScore{},
	}
}
