// internal/models/user.go
package models

import "time"

// UserProfile is a site visitor identified by email.
type UserProfile struct {
	ID           int64              `json:"id"`
	Email        string             `json:"email"`
	Name         string             `json:"name,omitempty"`
	Age          *int               `json:"age,omitempty"`
	Constitution string             `json:"constitution,omitempty"`
	Answers      []AssessmentAnswer `json:"answers,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}
