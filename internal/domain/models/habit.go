package models

import "time"

type HabitType string

const (
	HabitTypeBinary     HabitType = "binary"
	HabitTypeMeasurable HabitType = "measurable"
)

type HabitStatus string

const (
	HabitStatusOngoing   HabitStatus = "ongoing"
	HabitStatusCompleted HabitStatus = "completed"
)

type FrequencyType string

const (
	FrequencyDaily   FrequencyType = "daily"
	FrequencyWeekly  FrequencyType = "weekly"
	FrequencyMonthly FrequencyType = "monthly"
)

type Frequency struct {
	Type           FrequencyType
	TimesPerPeriod int
}

type Target struct {
	Value int
	Unit  string
}

type Milestone struct {
	Target  int
	Current int
}

// Habit is the persisted habit row, owned by one user.
type Habit struct {
	ID                 string
	UserID             string
	Name               string
	Description        *string
	Type               HabitType
	Frequency          Frequency
	Target             Target
	Status             HabitStatus
	IsArchived         bool
	EndDate            *time.Time
	Milestone          *Milestone
	CreatedAtUTC       time.Time
	UpdatedAtUTC       *time.Time
	LastCompletedAtUTC *time.Time

	Tags []Tag
}
