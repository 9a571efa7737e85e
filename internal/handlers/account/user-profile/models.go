// internal/handlers/account/user-profile/models.go
package userprofile

import "healing-guide/internal/models"

type Input struct {
	Email        string `json:"email"`
	Name         string `json:"name,omitempty"`
	Age          *int   `json:"age,omitempty"`
	Constitution string `json:"constitution,omitempty"`
}

type Output struct {
	Success bool                `json:"success"`
	User    *models.UserProfile `json:"user"`
}
