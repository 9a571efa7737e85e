// internal/handlers/marketing/newsletter/models.go
package newsletter

import "healing-guide/internal/models"

type SubscribeInput struct {
	Email     string `json:"email"`
	Source    string `json:"source,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type SubscribeOutput struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	DownloadURL string `json:"download_url"`
	// Created is false when an existing subscriber was reactivated.
	Created bool `json:"-"`
}

type UnsubscribeInput struct {
	Email string `json:"email"`
}

type MessageOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type StatsOutput struct {
	Success bool `json:"success"`
	models.NewsletterStats
}
