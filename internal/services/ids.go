package services

import (
	"time"

	"habittracker/internal/utils"

	"github.com/google/uuid"
)

// NewID returns prefix + "_" + a time-ordered uuid.
func NewID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + "_" + id.String()
}

type clock struct {
	Now   func() time.Time
	NewID func(prefix string) string
}

func (c clock) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return utils.NowUTC()
}

func (c clock) id(prefix string) string {
	if c.NewID != nil {
		return c.NewID(prefix)
	}
	return NewID(prefix)
}
