package dto

import (
	"time"

	"habittracker/internal/domain/models"
)

type FrequencyDTO struct {
	Type           models.FrequencyType `json:"type" binding:"required,oneof=daily weekly monthly"`
	TimesPerPeriod int                  `json:"timesPerPeriod" binding:"gt=0"`
}

type TargetDTO struct {
	Value int    `json:"value" binding:"gt=0"`
	Unit  string `json:"unit" binding:"required,habit_unit"`
}

type MilestoneDTO struct {
	Target  int `json:"target"`
	Current int `json:"current"`
}

// HabitDTO is the habit representation served by list endpoints.
type HabitDTO struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Description        *string            `json:"description"`
	Type               models.HabitType   `json:"type"`
	Frequency          FrequencyDTO       `json:"frequency"`
	Target             TargetDTO          `json:"target"`
	Status             models.HabitStatus `json:"status"`
	IsArchived         bool               `json:"isArchived"`
	EndDate            *string            `json:"endDate"`
	Milestone          *MilestoneDTO      `json:"milestone"`
	CreatedAtUTC       time.Time          `json:"createdAtUtc"`
	UpdatedAtUTC       *time.Time         `json:"updatedAtUtc"`
	LastCompletedAtUTC *time.Time         `json:"lastCompletedAtUtc"`
}

// HabitWithTagsDTO adds tag names for the single habit endpoint.
type HabitWithTagsDTO struct {
	HabitDTO
	Tags []string `json:"tags"`
}

type CreateMilestoneDTO struct {
	Target int `json:"target" binding:"gt=0"`
}

type CreateHabitDTO struct {
	Name        string              `json:"name" binding:"required,min=2,max=100"`
	Description *string             `json:"description" binding:"omitempty,max=500"`
	Type        models.HabitType    `json:"type" binding:"required,oneof=binary measurable"`
	Frequency   FrequencyDTO        `json:"frequency" binding:"required"`
	Target      TargetDTO           `json:"target" binding:"required"`
	EndDate     *string             `json:"endDate" binding:"omitempty,future_date"`
	Milestone   *CreateMilestoneDTO `json:"milestone" binding:"omitempty"`
}

type UpdateHabitDTO CreateHabitDTO

type UpsertHabitTagsDTO struct {
	TagIDs []string `json:"tagIds" binding:"required,dive,required"`
}
