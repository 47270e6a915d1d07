package models

import "time"

type Tag struct {
	ID           string
	UserID       string
	Name         string
	Description  *string
	CreatedAtUTC time.Time
	UpdatedAtUTC *time.Time
}
