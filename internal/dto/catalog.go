package dto

import (
	"habittracker/internal/domain/models"
	"habittracker/internal/shaping"
	"habittracker/internal/sorting"
)

// HabitSortMappings lists the sortable habit fields and the entity
// property each one orders by.
var HabitSortMappings = []sorting.Mapping{
	{SortField: "name", Expression: "Name"},
	{SortField: "description", Expression: "Description"},
	{SortField: "type", Expression: "Type"},
	{SortField: "frequency.type", Expression: "Frequency.Type"},
	{SortField: "frequency.timesPerPeriod", Expression: "Frequency.TimesPerPeriod"},
	{SortField: "target.value", Expression: "Target.Value"},
	{SortField: "target.unit", Expression: "Target.Unit"},
	{SortField: "status", Expression: "Status"},
	{SortField: "endDate", Expression: "EndDate"},
	{SortField: "createdAtUtc", Expression: "CreatedAtUtc"},
	{SortField: "updatedAtUtc", Expression: "UpdatedAtUtc"},
	{SortField: "lastCompletedAtUtc", Expression: "LastCompletedAtUtc"},
}

var TagSortMappings = []sorting.Mapping{
	{SortField: "name", Expression: "Name"},
	{SortField: "createdAtUtc", Expression: "CreatedAtUtc"},
}

// SortCatalog builds the catalog used by list endpoints. It fails only on
// a malformed mapping table.
func SortCatalog() (*sorting.Catalog, error) {
	return sorting.NewCatalog(
		sorting.Define[HabitDTO, models.Habit](HabitSortMappings...),
		sorting.Define[TagDTO, models.Tag](TagSortMappings...),
	)
}

// ShapeRegistry registers every DTO a client may request fields of.
func ShapeRegistry() (*shaping.Registry, error) {
	r := shaping.NewRegistry()
	for _, register := range []func(*shaping.Registry) error{
		shaping.Register[HabitDTO],
		shaping.Register[HabitWithTagsDTO],
		shaping.Register[TagDTO],
	} {
		if err := register(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}
