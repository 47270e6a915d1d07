package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"habittracker/internal/domain"
	"habittracker/internal/domain/models"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/go-playground/validator/v10"
)

// PatchHabitDTO holds the habit fields a JSON Patch may change. Other
// paths can be patched but are not written back.
type PatchHabitDTO struct {
	Name        string  `json:"name" binding:"required,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// ApplyHabitPatch applies an RFC 6902 document to the served
// representation of h and returns the validated writable fields.
func ApplyHabitPatch(h models.Habit, doc []byte) (PatchHabitDTO, error) {
	patch, err := jsonpatch.DecodePatch(doc)
	if err != nil {
		return PatchHabitDTO{}, domain.ValidationError{Field: "patch", Msg: "json patch tidak valid", Err: err}
	}
	current, err := json.Marshal(HabitToDTO(h))
	if err != nil {
		return PatchHabitDTO{}, fmt.Errorf("encode habit: %w", err)
	}
	patched, err := patch.Apply(current)
	if err != nil {
		return PatchHabitDTO{}, domain.ValidationError{Field: "patch", Msg: "json patch gagal diterapkan", Err: err}
	}

	var full HabitDTO
	if err := json.Unmarshal(patched, &full); err != nil {
		return PatchHabitDTO{}, domain.ValidationError{Field: "patch", Msg: "hasil patch tidak sesuai habit", Err: err}
	}
	out := PatchHabitDTO{Name: full.Name, Description: full.Description}
	if err := Validate(out); err != nil {
		return PatchHabitDTO{}, err
	}
	return out, nil
}

var structValidator = sync.OnceValues(func() (*validator.Validate, error) {
	v := validator.New()
	v.SetTagName("binding")
	return v, RegisterValidations(v)
})

// Validate runs the binding rules on d outside of request binding.
func Validate(d any) error {
	v, err := structValidator()
	if err != nil {
		return domain.ConfigurationError{Msg: "validator", Err: err}
	}
	err = v.Struct(d)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.ValidationError{Field: fe.Field(), Msg: fmt.Sprintf("gagal aturan '%s'", fe.Tag()), Err: err}
	}
	return err
}
