// Package repository holds the Postgres access for every table the API owns.
package repository

import (
	"database/sql"
	"errors"
)

var ErrNotFound = errors.New("NOT_FOUND")

// Repositories bundles one repository per table.
type Repositories struct {
	Users       *UserRepository
	Assessments *AssessmentRepository
	Newsletter  *NewsletterRepository
	Premium     *PremiumRepository
	Library     *LibraryRepository
	Downloads   *DownloadRepository
}

func New(db *sql.DB) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(db),
		Assessments: NewAssessmentRepository(db),
		Newsletter:  NewNewsletterRepository(db),
		Premium:     NewPremiumRepository(db),
		Library:     NewLibraryRepository(db),
		Downloads:   NewDownloadRepository(db),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
