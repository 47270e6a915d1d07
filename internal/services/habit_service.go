package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"habittracker/internal/domain"
	"habittracker/internal/domain/models"
	"habittracker/internal/dto"
	"habittracker/internal/repositories"
	"habittracker/internal/sorting"
	"habittracker/internal/utils"
)

// HabitStore is the persistence the habit service needs.
type HabitStore interface {
	List(ctx context.Context, f repositories.HabitFilter, steps []sorting.OrderStep, page, pageSize int) ([]models.Habit, int, error)
	GetByID(ctx context.Context, userID, id string) (models.Habit, error)
	Create(ctx context.Context, h models.Habit) error
	Update(ctx context.Context, h models.Habit) error
	Delete(ctx context.Context, userID, id string) error
	ReplaceTags(ctx context.Context, userID, habitID string, tagIDs []string, now time.Time) (bool, error)
}

// HabitService owns habit use cases for one authenticated user.
type HabitService struct {
	Habits    HabitStore
	RequestID string
	Now       func() time.Time
	NewID     func(prefix string) string
}

func (s HabitService) clock() clock { return clock{Now: s.Now, NewID: s.NewID} }

func (s HabitService) store() HabitStore {
	if s.Habits != nil {
		return s.Habits
	}
	return repositories.HabitRepository{}
}

// List returns a page of the user's habits. pageSize <= 0 returns all.
func (s HabitService) List(ctx context.Context, f repositories.HabitFilter, steps []sorting.OrderStep, page, pageSize int) ([]models.Habit, int, error) {
	if strings.TrimSpace(f.UserID) == "" {
		return nil, 0, domain.ValidationError{Field: "userId", Msg: "user tidak dikenal"}
	}
	f.Search = utils.NormalizeSpace(f.Search)
	return s.store().List(ctx, f, steps, page, pageSize)
}

func (s HabitService) Get(ctx context.Context, userID, id string) (models.Habit, error) {
	return s.store().GetByID(ctx, userID, id)
}

func (s HabitService) Create(ctx context.Context, userID string, in dto.CreateHabitDTO) (models.Habit, error) {
	c := s.clock()
	h, err := in.ToEntity(c.id("h"), userID, c.now())
	if err != nil {
		return models.Habit{}, err
	}
	if err := s.store().Create(ctx, h); err != nil {
		return models.Habit{}, err
	}
	utils.LogEvent(s.RequestID, "habit", "create", "habit_id="+h.ID)
	return h, nil
}

func (s HabitService) Update(ctx context.Context, userID, id string, in dto.UpdateHabitDTO) error {
	h, err := s.store().GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := in.ApplyTo(&h, s.clock().now()); err != nil {
		return err
	}
	if err := s.store().Update(ctx, h); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "habit", "update", "habit_id="+id)
	return nil
}

// Patch applies a JSON Patch document to the habit. Only the name and
// description are written back.
func (s HabitService) Patch(ctx context.Context, userID, id string, doc []byte) error {
	h, err := s.store().GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	in, err := dto.ApplyHabitPatch(h, doc)
	if err != nil {
		return err
	}
	in.ApplyTo(&h, s.clock().now())
	if err := s.store().Update(ctx, h); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "habit", "patch", "habit_id="+id)
	return nil
}

func (s HabitService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store().Delete(ctx, userID, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "habit", "delete", "habit_id="+id)
	return nil
}

// UpsertTags replaces the tag set of a habit owned by the user.
func (s HabitService) UpsertTags(ctx context.Context, userID, habitID string, in dto.UpsertHabitTagsDTO) error {
	if _, err := s.store().GetByID(ctx, userID, habitID); err != nil {
		return err
	}
	changed, err := s.store().ReplaceTags(ctx, userID, habitID, in.TagIDs, s.clock().now())
	if err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "habit", "upsert_tags", fmt.Sprintf("habit_id=%s changed=%t tags=%d", habitID, changed, len(in.TagIDs)))
	return nil
}
