package dto

import (
	"time"

	"habittracker/internal/domain/models"
)

type UserDTO struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	CreatedAtUTC time.Time  `json:"createdAtUtc"`
	UpdatedAtUTC *time.Time `json:"updatedAtUtc"`
}

func UserToDTO(u models.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		CreatedAtUTC: u.CreatedAtUTC,
		UpdatedAtUTC: u.UpdatedAtUTC,
	}
}

type StoreGitHubTokenDTO struct {
	AccessToken   string `json:"accessToken" binding:"required,max=1000"`
	ExpiresInDays int    `json:"expiresInDays" binding:"required,gt=0,lte=366"`
}
