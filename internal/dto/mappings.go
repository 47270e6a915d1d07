package dto

import (
	"time"

	"habittracker/internal/domain"
	"habittracker/internal/domain/models"
)

// ToEntity builds a new ongoing habit owned by userID.
func (d CreateHabitDTO) ToEntity(id, userID string, now time.Time) (models.Habit, error) {
	endDate, err := domain.ParseDate(d.EndDate)
	if err != nil {
		return models.Habit{}, domain.ValidationError{Field: "endDate", Msg: "format tanggal harus YYYY-MM-DD", Err: err}
	}
	h := models.Habit{
		ID:          id,
		UserID:      userID,
		Name:        d.Name,
		Description: d.Description,
		Type:        d.Type,
		Frequency: models.Frequency{
			Type:           d.Frequency.Type,
			TimesPerPeriod: d.Frequency.TimesPerPeriod,
		},
		Target: models.Target{
			Value: d.Target.Value,
			Unit:  d.Target.Unit,
		},
		Status:       models.HabitStatusOngoing,
		EndDate:      endDate,
		CreatedAtUTC: now.UTC(),
	}
	if d.Milestone != nil {
		h.Milestone = &models.Milestone{Target: d.Milestone.Target}
	}
	return h, nil
}

func HabitToDTO(h models.Habit) HabitDTO {
	out := HabitDTO{
		ID:          h.ID,
		Name:        h.Name,
		Description: h.Description,
		Type:        h.Type,
		Frequency: FrequencyDTO{
			Type:           h.Frequency.Type,
			TimesPerPeriod: h.Frequency.TimesPerPeriod,
		},
		Target: TargetDTO{
			Value: h.Target.Value,
			Unit:  h.Target.Unit,
		},
		Status:             h.Status,
		IsArchived:         h.IsArchived,
		EndDate:            domain.FormatDate(h.EndDate),
		CreatedAtUTC:       h.CreatedAtUTC,
		UpdatedAtUTC:       h.UpdatedAtUTC,
		LastCompletedAtUTC: h.LastCompletedAtUTC,
	}
	if h.Milestone != nil {
		out.Milestone = &MilestoneDTO{Target: h.Milestone.Target, Current: h.Milestone.Current}
	}
	return out
}

func HabitToDTOWithTags(h models.Habit) HabitWithTagsDTO {
	tags := make([]string, 0, len(h.Tags))
	for _, t := range h.Tags {
		tags = append(tags, t.Name)
	}
	return HabitWithTagsDTO{HabitDTO: HabitToDTO(h), Tags: tags}
}

// ApplyTo copies the update onto h. An existing milestone keeps its progress.
func (d UpdateHabitDTO) ApplyTo(h *models.Habit, now time.Time) error {
	endDate, err := domain.ParseDate(d.EndDate)
	if err != nil {
		return domain.ValidationError{Field: "endDate", Msg: "format tanggal harus YYYY-MM-DD", Err: err}
	}
	h.Name = d.Name
	h.Description = d.Description
	h.Type = d.Type
	h.EndDate = endDate
	h.Frequency = models.Frequency{Type: d.Frequency.Type, TimesPerPeriod: d.Frequency.TimesPerPeriod}
	h.Target = models.Target{Value: d.Target.Value, Unit: d.Target.Unit}
	if d.Milestone != nil {
		if h.Milestone == nil {
			h.Milestone = &models.Milestone{}
		}
		h.Milestone.Target = d.Milestone.Target
	}
	updated := now.UTC()
	h.UpdatedAtUTC = &updated
	return nil
}

// ApplyTo copies the patched fields into h. A removed description clears it.
func (d PatchHabitDTO) ApplyTo(h *models.Habit, now time.Time) {
	h.Name = d.Name
	h.Description = d.Description
	updated := now.UTC()
	h.UpdatedAtUTC = &updated
}

func (d CreateTagDTO) ToEntity(id, userID string, now time.Time) models.Tag {
	return models.Tag{
		ID:           id,
		UserID:       userID,
		Name:         d.Name,
		Description:  d.Description,
		CreatedAtUTC: now.UTC(),
	}
}

func TagToDTO(t models.Tag) TagDTO {
	return TagDTO{
		ID:           t.ID,
		Name:         t.Name,
		Description:  t.Description,
		CreatedAtUTC: t.CreatedAtUTC,
		UpdatedAtUTC: t.UpdatedAtUTC,
	}
}

func (d UpdateTagDTO) ApplyTo(t *models.Tag, now time.Time) {
	t.Name = d.Name
	t.Description = d.Description
	updated := now.UTC()
	t.UpdatedAtUTC = &updated
}
