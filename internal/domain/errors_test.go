package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "habit not found", NotFoundError{Resource: "habit"}.Error())
	assert.Equal(t, "not found", NotFoundError{}.Error())
	assert.Equal(t, "sort: bad", ValidationError{Field: "sort", Msg: "bad"}.Error())
	assert.Equal(t, "bad", ValidationError{Msg: "bad"}.Error())
	assert.Equal(t, "invalid sort", ValidationError{Field: "sort"}.Error())
	assert.Equal(t, "tag conflict: exists", ConflictError{Resource: "tag", Msg: "exists"}.Error())
	assert.Equal(t, "internal error", InternalError{}.Error())
	assert.Equal(t, "catalog: boom", ConfigurationError{Msg: "catalog", Err: errors.New("boom")}.Error())
}

func TestErrorPredicatesSeeThroughWrapping(t *testing.T) {
	cause := errors.New("cause")
	wrapped := fmt.Errorf("list habits: %w", NotFoundError{Resource: "habit", Err: cause})

	assert.True(t, IsNotFound(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.False(t, IsValidation(wrapped))
	assert.True(t, IsValidation(fmt.Errorf("x: %w", ValidationError{Msg: "m"})))
	assert.True(t, IsConflict(ConflictError{}))
	assert.True(t, IsInternal(InternalError{Err: cause}))
	assert.True(t, IsConfiguration(fmt.Errorf("x: %w", ConfigurationError{Err: cause})))
}

func TestDates(t *testing.T) {
	s := "2030-05-06"
	d, err := ParseDate(&s)
	assert.NoError(t, err)
	assert.Equal(t, "2030-05-06", *FormatDate(d))

	d, err = ParseDate(nil)
	assert.NoError(t, err)
	assert.Nil(t, d)
	assert.Nil(t, FormatDate(nil))

	bad := "06/05/2030"
	_, err = ParseDate(&bad)
	assert.Error(t, err)
}
