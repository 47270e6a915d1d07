package services

import (
	"context"
	"time"

	"habittracker/internal/domain/models"
	"habittracker/internal/dto"
	"habittracker/internal/repositories"
	"habittracker/internal/sorting"
	"habittracker/internal/utils"
)

type TagStore interface {
	List(ctx context.Context, userID string, steps []sorting.OrderStep, page, pageSize int) ([]models.Tag, int, error)
	GetByID(ctx context.Context, userID, id string) (models.Tag, error)
	Create(ctx context.Context, t models.Tag) error
	Update(ctx context.Context, t models.Tag) error
	Delete(ctx context.Context, userID, id string) error
}

type TagService struct {
	Tags      TagStore
	RequestID string
	Now       func() time.Time
	NewID     func(prefix string) string
}

func (s TagService) store() TagStore {
	if s.Tags != nil {
		return s.Tags
	}
	return repositories.TagRepository{}
}

func (s TagService) List(ctx context.Context, userID string, steps []sorting.OrderStep, page, pageSize int) ([]models.Tag, int, error) {
	return s.store().List(ctx, userID, steps, page, pageSize)
}

func (s TagService) Get(ctx context.Context, userID, id string) (models.Tag, error) {
	return s.store().GetByID(ctx, userID, id)
}

func (s TagService) Create(ctx context.Context, userID string, in dto.CreateTagDTO) (models.Tag, error) {
	c := clock{Now: s.Now, NewID: s.NewID}
	t := in.ToEntity(c.id("t"), userID, c.now())
	if err := s.store().Create(ctx, t); err != nil {
		return models.Tag{}, err
	}
	utils.LogEvent(s.RequestID, "tag", "create", "tag_id="+t.ID)
	return t, nil
}

func (s TagService) Update(ctx context.Context, userID, id string, in dto.UpdateTagDTO) error {
	t, err := s.store().GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	in.ApplyTo(&t, clock{Now: s.Now}.now())
	if err := s.store().Update(ctx, t); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "tag", "update", "tag_id="+id)
	return nil
}

func (s TagService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store().Delete(ctx, userID, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "tag", "delete", "tag_id="+id)
	return nil
}
