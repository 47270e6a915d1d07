package domain

import "time"

// RequestContext carries the authenticated caller.
type RequestContext struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// DateLayout is the wire format of date-only values.
const DateLayout = "2006-01-02"

// FormatDate renders a date-only value, nil stays nil.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

// ParseDate parses an optional date-only value.
func ParseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
