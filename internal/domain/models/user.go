package models

import "time"

type User struct {
	ID           string
	Email        string
	Name         string
	CreatedAtUTC time.Time
	UpdatedAtUTC *time.Time
}
