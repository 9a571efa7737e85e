// internal/handlers/content/library/models.go
package library

import "healing-guide/internal/models"

type Input struct {
	Category string `form:"category"`
	Search   string `form:"search"`
	Page     string `form:"page"`
	Size     string `form:"size"`
}

type Output struct {
	Success bool                 `json:"success"`
	Items   []models.LibraryItem `json:"items"`
	Total   int                  `json:"total"`
	Page    int                  `json:"page"`
	Size    int                  `json:"size"`
	// Source is elasticsearch or database.
	Source string `json:"source"`
}
