package dto

import (
	"reflect"
	"strings"
	"time"

	"habittracker/internal/domain"
	"habittracker/internal/domain/models"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// AllowedUnits are the measurement units a habit target may use.
var AllowedUnits = []string{
	"minutes", "hours", "steps", "words", "km", "cal",
	"pages", "books", "tasks", "glasses", "sessions",
}

// BinaryUnits are the only units that make sense for yes/no habits.
var BinaryUnits = []string{"sessions", "tasks"}

var today = func() time.Time { return time.Now().UTC() }

// RegisterValidations installs the habit rules on v. The gin binding
// engine is passed in at startup; tests pass validator.New().
func RegisterValidations(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonName)
	if err := v.RegisterValidation("habit_unit", validateUnit); err != nil {
		return err
	}
	if err := v.RegisterValidation("future_date", validateFutureDate); err != nil {
		return err
	}
	v.RegisterStructValidation(validateHabitUnitForType, CreateHabitDTO{}, UpdateHabitDTO{})
	return nil
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func validateUnit(fl validator.FieldLevel) bool {
	return lo.Contains(AllowedUnits, strings.ToLower(fl.Field().String()))
}

func validateFutureDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	d, err := domain.ParseDate(&s)
	if err != nil || d == nil {
		return false
	}
	now := today()
	return d.After(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
}

func validateHabitUnitForType(sl validator.StructLevel) {
	var typ models.HabitType
	var target TargetDTO
	switch d := sl.Current().Interface().(type) {
	case CreateHabitDTO:
		typ, target = d.Type, d.Target
	case UpdateHabitDTO:
		typ, target = d.Type, d.Target
	default:
		return
	}
	if typ == models.HabitTypeBinary && !lo.Contains(BinaryUnits, strings.ToLower(target.Unit)) {
		sl.ReportError(target.Unit, "target.unit", "Unit", "binary_unit", "")
	}
}
