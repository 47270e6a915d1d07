package dto

import "time"

type TagDTO struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  *string    `json:"description"`
	CreatedAtUTC time.Time  `json:"createdAtUtc"`
	UpdatedAtUTC *time.Time `json:"updatedAtUtc"`
}

type CreateTagDTO struct {
	Name        string  `json:"name" binding:"required,min=2,max=50"`
	Description *string `json:"description" binding:"omitempty,max=100"`
}

type UpdateTagDTO CreateTagDTO
